package handlers

import (
	"net/http"
	"testing"

	"court_filing_app_go/middleware"
	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandingHandler(t *testing.T) {
	env := setupTestDB(t)

	t.Run("Anonymous", func(t *testing.T) {
		c, rec := jsonContext(http.MethodGet, "/", nil, nil)
		require.NoError(t, LandingHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Sign in")
	})

	t.Run("SignedInRedirects", func(t *testing.T) {
		user := createUser(t, env.db, "owner@example.com", models.RoleUser)
		c, rec := jsonContext(http.MethodGet, "/", user, nil)
		require.NoError(t, LandingHandler(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})
}

func TestDashboardHandler(t *testing.T) {
	env := setupTestDB(t)
	owner := createUser(t, env.db, "owner@example.com", models.RoleUser)
	other := createUser(t, env.db, "other@example.com", models.RoleUser)
	mine := createCase(t, env.db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
	theirs := createCase(t, env.db, other, models.CaseStatusPending, models.PaymentStatusUnpaid)

	c, rec := jsonContext(http.MethodGet, "/dashboard", owner, nil)
	require.NoError(t, DashboardHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, mine.CaseNumber)
	assert.NotContains(t, body, theirs.CaseNumber)
	assert.Contains(t, body, `data-action="pay"`)
	assert.Contains(t, body, "checkout.razorpay.com")

	t.Run("Anonymous", func(t *testing.T) {
		c, rec := jsonContext(http.MethodGet, "/dashboard", nil, nil)
		require.NoError(t, DashboardHandler(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
	})
}

func TestAdminPageHandler(t *testing.T) {
	env := setupTestDB(t)
	admin := createUser(t, env.db, "admin@example.com", models.RoleAdmin)
	owner := createUser(t, env.db, "owner@example.com", models.RoleUser)
	applicant := createUser(t, env.db, "applicant@example.com", models.RoleAdmin)
	require.NoError(t, env.db.Model(applicant).Update("is_verified", false).Error)
	kase := createCase(t, env.db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)

	c, rec := jsonContext(http.MethodGet, "/admin", admin, nil)
	require.NoError(t, AdminPageHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, kase.CaseNumber)
	assert.Contains(t, body, owner.Name)
	assert.Contains(t, body, applicant.Email)
}

func TestVerifyEmailPageHandler(t *testing.T) {
	setupTestDB(t)

	c, rec := jsonContext(http.MethodGet, "/verify-email?token=bogus", nil, nil)
	require.NoError(t, VerifyEmailPageHandler(c))
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or has expired")
}

func TestUnauthorizedHandler(t *testing.T) {
	setupTestDB(t)

	c, rec := jsonContext(http.MethodGet, "/unauthorized", nil, nil)
	require.NoError(t, UnauthorizedHandler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	env := setupTestDB(t)

	c, rec := jsonContext(http.MethodGet, "/healthz", nil, nil)
	require.NoError(t, HealthHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	c, rec = jsonContext(http.MethodGet, "/healthz", nil, nil)
	require.NoError(t, HealthHandler(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
