package middleware

import (
	"net/http"
	"strings"
	"time"

	"court_filing_app_go/config"
	"court_filing_app_go/db"
	"court_filing_app_go/logger"
	"court_filing_app_go/models"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "court_session"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeyConfig is the context key for the app configuration
	ContextKeyConfig = "config"
)

// Redirect targets of the auth gate
const (
	LoginPath        = "/"
	UnauthorizedPath = "/unauthorized"
	VerifyPath       = "/verify-reminder"
)

// Identity is what the gate knows about the caller
type Identity struct {
	Authenticated bool
	Verified      bool
	Admin         bool
}

// IdentityOf summarizes a user; nil means anonymous
func IdentityOf(user *models.User) Identity {
	if user == nil {
		return Identity{}
	}
	return Identity{Authenticated: true, Verified: user.IsVerified, Admin: user.IsAdmin()}
}

// Decision is the outcome of the auth gate
type Decision int

const (
	Allow Decision = iota
	RequireLogin
	RequireVerification
	Deny
)

var publicExact = map[string]bool{
	"/":                true,
	"/login":           true,
	"/register":        true,
	"/verify-email":    true,
	"/verify-reminder": true,
	"/unauthorized":    true,
	"/healthz":         true,
}

var publicPrefixes = []string{"/static/", "/uploads/", "/api/auth/"}

// IsPublicPath reports whether a path bypasses the gate
func IsPublicPath(path string) bool {
	if publicExact[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsAdminPath reports whether a path needs the admin role
func IsAdminPath(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/") ||
		path == "/api/admin" || strings.HasPrefix(path, "/api/admin/")
}

// IsAPIPath reports whether a path answers with JSON
func IsAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// Decide is the access rule for a request path
func Decide(path string, id Identity) Decision {
	if IsPublicPath(path) {
		return Allow
	}
	if !id.Authenticated {
		return RequireLogin
	}
	if IsAdminPath(path) && !id.Admin {
		return Deny
	}
	if !id.Verified {
		return RequireVerification
	}
	return Allow
}

// Authenticate resolves the caller from the session cookie or a bearer token and applies
// Decide. Page requests are redirected; /api requests get 401 or 403.
func Authenticate(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			user := resolveUser(c, cfg)
			if user != nil {
				c.Set(ContextKeyUser, user)
			}

			decision := Decide(path, IdentityOf(user))
			if decision == Allow {
				return next(c)
			}

			if IsAPIPath(path) {
				switch decision {
				case RequireLogin:
					return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
				case RequireVerification:
					return echo.NewHTTPError(http.StatusForbidden, "Account is not verified")
				default:
					logger.Security("ACCESS_DENIED", user.ID, path)
					return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
				}
			}

			switch decision {
			case RequireLogin:
				return c.Redirect(http.StatusSeeOther, LoginPath)
			case RequireVerification:
				return c.Redirect(http.StatusSeeOther, VerifyPath)
			default:
				logger.Security("ACCESS_DENIED", user.ID, path)
				return c.Redirect(http.StatusSeeOther, UnauthorizedPath)
			}
		}
	}
}

// resolveUser loads the caller so role and verification state are always current
func resolveUser(c echo.Context, cfg *config.Config) *models.User {
	token := sessionToken(c)
	if token == "" {
		return nil
	}
	claims, err := services.ParseSessionToken(cfg.SessionSecret, token)
	if err != nil {
		ClearSessionCookie(c, cfg)
		return nil
	}
	user, err := services.LoadUser(c.Request().Context(), db.DB, claims.Sub)
	if err != nil {
		ClearSessionCookie(c, cfg)
		return nil
	}
	return user
}

func sessionToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SetSessionCookie stores the signed session token
func SetSessionCookie(c echo.Context, cfg *config.Config, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context, cfg *config.Config) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// WithConfig makes the configuration available to handlers
func WithConfig(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyConfig, cfg)
			return next(c)
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetConfig retrieves the configuration from context
func GetConfig(c echo.Context) *config.Config {
	cfg, ok := c.Get(ContextKeyConfig).(*config.Config)
	if !ok {
		return &config.Config{}
	}
	return cfg
}
