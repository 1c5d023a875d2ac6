package handlers

import (
	"errors"
	"net/http"

	"court_filing_app_go/db"
	"court_filing_app_go/logger"
	"court_filing_app_go/middleware"
	"court_filing_app_go/models"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

// loginRequest is the login payload
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is returned after login and registration
type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string      `json:"token"`
}

// startSession signs a token for the user and sets the session cookie
func startSession(c echo.Context, user *models.User) (string, error) {
	cfg := middleware.GetConfig(c)
	token, err := services.IssueSessionToken(cfg.SessionSecret, user, services.DefaultSessionDuration)
	if err != nil {
		return "", err
	}
	middleware.SetSessionCookie(c, cfg, token, services.DefaultSessionDuration)
	return token, nil
}

// RegisterHandler creates a self-service account and signs the user in
func RegisterHandler(c echo.Context) error {
	var in services.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	user, err := services.RegisterUser(db.DB, in)
	if err != nil {
		return respondError(c, err)
	}

	l := links(c)
	services.Notify.Dispatch(services.BuildWelcomeEmail(l, user))
	services.Notify.Dispatch(services.BuildAdminNewUserEmail(l, services.AdminEmails(db.DB), user))

	token, err := startSession(c, user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, sessionResponse{User: user, Token: token})
}

// LoginHandler checks credentials and issues a session
func LoginHandler(c echo.Context) error {
	var in loginRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	if in.Email == "" || in.Password == "" {
		return respondError(c, services.Invalid("email and password are required"))
	}

	user, err := services.Authenticate(db.DB, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			services.Monitor.TrackFailedLogin(c.RealIP(), in.Email)
			return middleware.WriteError(c, http.StatusUnauthorized, "Invalid email or password", nil)
		}
		return respondError(c, err)
	}

	token, err := startSession(c, user)
	if err != nil {
		return respondError(c, err)
	}
	services.Monitor.ResetLogins(c.RealIP())

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return c.JSON(http.StatusOK, sessionResponse{User: user, Token: token})
}

// LogoutHandler clears the session cookie
func LogoutHandler(c echo.Context) error {
	middleware.ClearSessionCookie(c, middleware.GetConfig(c))
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// VerifyEmailHandler consumes a verification token
func VerifyEmailHandler(c echo.Context) error {
	user, err := services.VerifyEmail(db.DB, c.QueryParam("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Email verified",
		"user":    user,
	})
}

// resendRequest is the resend-verification payload
type resendRequest struct {
	Email string `json:"email"`
}

// ResendVerificationHandler mails a fresh verification link. The answer does not reveal
// whether the address is registered.
func ResendVerificationHandler(c echo.Context) error {
	var in resendRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	if in.Email == "" {
		return respondError(c, services.Invalid("email is required"))
	}

	user, err := services.RefreshVerificationToken(db.DB, in.Email)
	switch {
	case err == nil:
		services.Notify.Dispatch(services.BuildVerificationEmail(links(c), user))
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrForbidden):
		logger.Log.WithError(err).Debug("Verification resend skipped")
	default:
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If the account exists and is unverified, a verification email has been sent",
	})
}

// AdminRequestHandler records an administrator application with an identity photo
func AdminRequestHandler(c echo.Context) error {
	photo, closer, err := formUpload(c, "idPhoto")
	if err != nil {
		return respondError(c, err)
	}
	defer closer.Close()

	in := services.RegisterInput{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Phone:    c.FormValue("phone"),
		Address:  c.FormValue("address"),
	}

	user, err := services.RequestAdminAccess(c.Request().Context(), db.DB, in, photo)
	if err != nil {
		return respondError(c, err)
	}

	services.Notify.Dispatch(services.BuildAdminNewUserEmail(links(c), services.AdminEmails(db.DB), user))

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Application received. An administrator will review your request.",
		"user":    user,
	})
}
