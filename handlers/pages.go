package handlers

import (
	"net/http"
	"time"

	"court_filing_app_go/db"
	"court_filing_app_go/middleware"
	"court_filing_app_go/models"
	"court_filing_app_go/services"
	"court_filing_app_go/templates/pages"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

const siteName = "Court Filing"

func renderPage(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// LandingHandler renders the sign-in page, or sends signed-in users to their dashboard
func LandingHandler(c echo.Context) error {
	if user := middleware.GetCurrentUser(c); user != nil && user.IsVerified {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return renderPage(c, http.StatusOK, pages.Landing("Sign in | "+siteName))
}

// RegisterPageHandler renders the registration forms
func RegisterPageHandler(c echo.Context) error {
	return renderPage(c, http.StatusOK, pages.Register("Register | "+siteName))
}

// VerifyEmailPageHandler consumes the link from the verification email
func VerifyEmailPageHandler(c echo.Context) error {
	title := "Email verification | " + siteName
	if _, err := services.VerifyEmail(db.DB, c.QueryParam("token")); err != nil {
		return renderPage(c, middleware.StatusFor(err), pages.VerifyEmailResult(title, false, "This link is invalid or has expired."))
	}
	return renderPage(c, http.StatusOK, pages.VerifyEmailResult(title, true, "Your account is ready."))
}

// VerifyReminderHandler asks unverified users to confirm their address
func VerifyReminderHandler(c echo.Context) error {
	return renderPage(c, http.StatusOK, pages.VerifyReminder("Verify your email | "+siteName, middleware.GetCurrentUser(c)))
}

// UnauthorizedHandler renders the access denied page
func UnauthorizedHandler(c echo.Context) error {
	return renderPage(c, http.StatusForbidden, pages.Unauthorized("Access denied | "+siteName, middleware.GetCurrentUser(c)))
}

// DashboardHandler renders the filer dashboard
func DashboardHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
	}

	now := time.Now()
	firstPage := services.Page{Page: 1, Limit: services.MaxPageSize}

	cases, _, err := services.ListCases(db.DB, user, services.CaseFilter{Page: firstPage})
	if err != nil {
		return err
	}
	hearings, _, err := services.ListHearings(db.DB, user, services.HearingFilter{
		Status:   models.HearingStatusScheduled,
		DateFrom: now.Format("2006-01-02"),
		Page:     services.Page{Page: 1, Limit: 10},
		SortBy:   "date",
	})
	if err != nil {
		return err
	}
	payments, _, err := services.ListPayments(db.DB, user, "", services.Page{Page: 1, Limit: 20})
	if err != nil {
		return err
	}

	gatewayKey := ""
	if services.Gateway != nil {
		gatewayKey = services.Gateway.KeyID()
	}

	return renderPage(c, http.StatusOK, pages.Dashboard("Dashboard | "+siteName, pages.DashboardView{
		User:             user,
		Cases:            cases,
		UpcomingHearings: hearings,
		Payments:         payments,
		Currency:         services.DefaultCurrency,
		RazorpayKeyID:    gatewayKey,
		Now:              now,
	}))
}

// AdminPageHandler renders the admin console
func AdminPageHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
	}
	now := time.Now()

	stats, err := services.GetAdminStats(db.DB, user, now)
	if err != nil {
		return err
	}
	var cases []models.Case
	if err := services.CaseQuery(db.DB, user, services.CaseFilter{}).
		Preload("FiledByUser").
		Order("created_at DESC").
		Limit(services.MaxPageSize).
		Find(&cases).Error; err != nil {
		return err
	}
	evidence, _, err := services.ListEvidence(db.DB, user, services.EvidenceFilter{
		ApprovalStatus: models.ApprovalPending,
		Page:           services.Page{Page: 1, Limit: 50},
	})
	if err != nil {
		return err
	}
	notVerified := false
	applicants, _, err := services.ListUsers(db.DB, user, services.UserFilter{
		Role:     models.RoleAdmin,
		Verified: &notVerified,
		Page:     services.Page{Page: 1, Limit: 50},
	})
	if err != nil {
		return err
	}

	return renderPage(c, http.StatusOK, pages.Admin("Admin | "+siteName, pages.AdminView{
		User:            user,
		Stats:           stats,
		Cases:           cases,
		PendingEvidence: evidence,
		PendingAdmins:   applicants,
		Now:             now,
	}))
}
