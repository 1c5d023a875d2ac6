package handlers

import (
	"net/http"
	"strings"
	"testing"

	"court_filing_app_go/middleware"
	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestRegisterHandler(t *testing.T) {
	env := setupTestDB(t)
	createUser(t, env.db, "clerk@example.com", models.RoleAdmin)

	t.Run("Success", func(t *testing.T) {
		c, rec := jsonContext(http.MethodPost, "/api/auth/register", nil, map[string]string{
			"name":     "Asha Kumar",
			"email":    "Asha@Example.com",
			"password": "filing2026",
		})

		require.NoError(t, RegisterHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp sessionResponse
		decode(t, rec, &resp)
		assert.Equal(t, "asha@example.com", resp.User.Email)
		assert.Equal(t, models.RoleUser, resp.User.Role)
		assert.True(t, resp.User.IsVerified)
		assert.NotEmpty(t, resp.Token)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=")

		assert.Len(t, env.mail.byTemplate("welcome"), 1)
		alerts := env.mail.byTemplate("admin_new_user")
		require.Len(t, alerts, 1)
		assert.Equal(t, []string{"clerk@example.com"}, alerts[0].To)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		c, rec := jsonContext(http.MethodPost, "/api/auth/register", nil, map[string]string{
			"name": "Again", "email": "asha@example.com", "password": "filing2026",
		})
		require.NoError(t, RegisterHandler(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Validation", func(t *testing.T) {
		c, rec := jsonContext(http.MethodPost, "/api/auth/register", nil, map[string]string{"email": "not-an-email"})
		require.NoError(t, RegisterHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body middleware.ErrorResponse
		decode(t, rec, &body)
		assert.Equal(t, middleware.CodeValidation, body.Code)
		assert.Contains(t, body.Fields, "name")
		assert.Contains(t, body.Fields, "email")
	})
}

func TestLoginHandler(t *testing.T) {
	env := setupTestDB(t)
	createUser(t, env.db, "filer@example.com", models.RoleUser)

	t.Run("WrongPassword", func(t *testing.T) {
		c, rec := jsonContext(http.MethodPost, "/api/auth/login", nil, map[string]string{"email": "filer@example.com", "password": "nope"})
		require.NoError(t, LoginHandler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, middleware.CodeUnauthorized, errorCode(t, rec))
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		c, rec := jsonContext(http.MethodPost, "/api/auth/login", nil, map[string]string{"email": "ghost@example.com", "password": "filing2026"})
		require.NoError(t, LoginHandler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		c, rec := jsonContext(http.MethodPost, "/api/auth/login", nil, map[string]string{"email": "FILER@example.com", "password": "filing2026"})
		require.NoError(t, LoginHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=")

		var stored models.User
		require.NoError(t, env.db.First(&stored, "email = ?", "filer@example.com").Error)
		assert.NotNil(t, stored.LastLoginAt)
	})
}

func TestLogoutHandler(t *testing.T) {
	c, rec := jsonContext(http.MethodPost, "/api/auth/logout", nil, nil)
	require.NoError(t, LogoutHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestVerifyEmailHandler(t *testing.T) {
	env := setupTestDB(t)

	token := "tok-123"
	user := &models.User{Name: "Pending", Email: "pending@example.com", Password: "x", Role: models.RoleUser, VerificationToken: &token}
	require.NoError(t, env.db.Create(user).Error)

	c, rec := jsonContext(http.MethodGet, "/api/auth/verify-email?token=tok-123", nil, nil)
	require.NoError(t, VerifyEmailHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.VerificationToken)

	c, rec = jsonContext(http.MethodGet, "/api/auth/verify-email?token=tok-123", nil, nil)
	require.NoError(t, VerifyEmailHandler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResendVerificationHandler(t *testing.T) {
	env := setupTestDB(t)
	user := &models.User{Name: "Late", Email: "late@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, env.db.Create(user).Error)

	c, rec := jsonContext(http.MethodPost, "/api/auth/resend-verification", nil, map[string]string{"email": "late@example.com"})
	require.NoError(t, ResendVerificationHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.mail.byTemplate("verification"), 1)
	assert.Contains(t, env.mail.byTemplate("verification")[0].TextBody, "https://court.example/verify-email?token=")

	// Unknown addresses get the same answer and no email
	c, rec = jsonContext(http.MethodPost, "/api/auth/resend-verification", nil, map[string]string{"email": "nobody@example.com"})
	require.NoError(t, ResendVerificationHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.mail.byTemplate("verification"), 1)
}

func TestAdminRequestHandler(t *testing.T) {
	env := setupTestDB(t)
	createUser(t, env.db, "chief@example.com", models.RoleAdmin)

	fields := map[string]string{
		"name":     "New Clerk",
		"email":    "newclerk@example.com",
		"password": "filing2026",
		"phone":    "+91 98000 00000",
	}

	t.Run("MissingPhoto", func(t *testing.T) {
		c, rec := multipartContext(t, "/api/auth/admin-request", nil, fields, "", "", "", nil)
		require.NoError(t, AdminRequestHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RejectsNonImage", func(t *testing.T) {
		c, rec := multipartContext(t, "/api/auth/admin-request", nil, fields, "idPhoto", "id.pdf", "application/pdf", pdfBytes)
		require.NoError(t, AdminRequestHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		c, rec := multipartContext(t, "/api/auth/admin-request", nil, fields, "idPhoto", "id.png", "image/png", pngBytes)
		require.NoError(t, AdminRequestHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var applicant models.User
		require.NoError(t, env.db.First(&applicant, "email = ?", "newclerk@example.com").Error)
		assert.Equal(t, models.RoleAdmin, applicant.Role)
		assert.False(t, applicant.IsVerified)
		assert.True(t, strings.HasPrefix(applicant.IDPhotoURL, "/uploads/admin-verification/"))

		alerts := env.mail.byTemplate("admin_new_user")
		require.Len(t, alerts, 1)
		assert.Equal(t, []string{"chief@example.com"}, alerts[0].To)
	})
}

func TestMeHandlers(t *testing.T) {
	env := setupTestDB(t)
	user := createUser(t, env.db, "me@example.com", models.RoleUser)

	c, rec := jsonContext(http.MethodGet, "/api/me", nil, nil)
	require.NoError(t, GetMeHandler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = jsonContext(http.MethodPatch, "/api/me", user, map[string]string{"phone": "12345", "newPassword": "another2026", "currentPassword": "wrong"})
	require.NoError(t, UpdateMeHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = jsonContext(http.MethodPatch, "/api/me", user, map[string]string{"phone": "12345"})
	require.NoError(t, UpdateMeHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.User
	decode(t, rec, &resp)
	assert.Equal(t, "12345", resp.Phone)
}
