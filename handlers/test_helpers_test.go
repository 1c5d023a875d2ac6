package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"court_filing_app_go/config"
	"court_filing_app_go/db"
	"court_filing_app_go/middleware"
	"court_filing_app_go/models"
	"court_filing_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "handlers-test-secret-0123456789abcdef"

var pdfBytes = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")

// recordingSender keeps every email instead of sending it
type recordingSender struct {
	mu   sync.Mutex
	sent []*services.Email
}

func (s *recordingSender) Send(email *services.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return nil
}

func (s *recordingSender) byTemplate(name string) []*services.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*services.Email
	for _, e := range s.sent {
		if e.Template == name {
			out = append(out, e)
		}
	}
	return out
}

type fakeGateway struct {
	orders   int
	validSig string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (string, error) {
	g.orders++
	return fmt.Sprintf("order_h_%d", g.orders), nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == g.validSig
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type fakePDFRenderer struct{}

func (fakePDFRenderer) RenderPDF(ctx context.Context, html string, options services.PDFOptions) ([]byte, error) {
	return []byte("%PDF-1.4 invoice"), nil
}

// testEnv wires the globals handlers depend on
type testEnv struct {
	db      *gorm.DB
	mail    *recordingSender
	gateway *fakeGateway
}

func setupTestDB(t *testing.T) *testEnv {
	// Unique shared memory name isolates tests while letting goroutines share the DB
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))

	env := &testEnv{db: testDB, mail: &recordingSender{}, gateway: &fakeGateway{validSig: "good-signature"}}

	previousDB, previousNotify, previousStorage := db.DB, services.Notify, services.Storage
	previousGateway, previousPDF := services.Gateway, services.PDF

	db.DB = testDB
	notifier := services.NewNotifier(env.mail, nil)
	notifier.Synchronous = true
	services.Notify = notifier
	services.Storage = services.NewLocalStorage(t.TempDir())
	services.Gateway = env.gateway
	services.PDF = fakePDFRenderer{}

	t.Cleanup(func() {
		db.DB, services.Notify, services.Storage = previousDB, previousNotify, previousStorage
		services.Gateway, services.PDF = previousGateway, previousPDF
	})
	return env
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set(middleware.ContextKeyConfig, &config.Config{
		Environment:   "test",
		SessionSecret: testSecret,
		AppURL:        "https://court.example",
	})

	return e, c, rec
}

// jsonContext builds a request context for user with a JSON body
func jsonContext(method, path string, user *models.User, payload interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	_, c, rec := setupEcho(method, path, body)
	if user != nil {
		c.Set(middleware.ContextKeyUser, user)
	}
	return c, rec
}

// multipartContext builds a request context with form fields and one file part
func multipartContext(t *testing.T, path string, user *models.User, fields map[string]string, fileField, fileName, fileType string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, fileName)}
		h["Content-Type"] = []string{fileType}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	_, c, rec := setupEcho(http.MethodPost, path, nil)
	c.Request().Body = io.NopCloser(&buf)
	c.Request().Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if user != nil {
		c.Set(middleware.ContextKeyUser, user)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body middleware.ErrorResponse
	decode(t, rec, &body)
	return body.Code
}

func createUser(t *testing.T, testDB *gorm.DB, email, role string) *models.User {
	hash, err := services.HashPassword("filing2026")
	require.NoError(t, err)
	user := &models.User{
		Name:       "Test " + strings.Split(email, "@")[0],
		Email:      email,
		Password:   hash,
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createCase(t *testing.T, testDB *gorm.DB, owner *models.User, status, paymentStatus string) *models.Case {
	c := &models.Case{
		CaseNumber:    "CASE-2026-" + uuid.New().String()[:6],
		Title:         "Tenancy dispute",
		Plaintiffs:    []string{owner.Name},
		Defendants:    []string{"M. Rao"},
		CaseType:      models.CaseTypeCivil,
		Status:        status,
		PaymentStatus: paymentStatus,
		FilingFee:     services.StandardFilingFee,
		FiledBy:       owner.ID,
	}
	require.NoError(t, testDB.Create(c).Error)
	return c
}
