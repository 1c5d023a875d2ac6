package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"court_filing_app_go/logger"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Error codes carried in the JSON error body
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the body of every failed API request
type ErrorResponse struct {
	Error   bool                `json:"error"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// CodeFor maps an HTTP status to its error code
func CodeFor(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusRequestEntityTooLarge:
		return CodePayloadTooLarge
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// StatusFor maps a service error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrGatewayNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes the JSON error body
func WriteError(c echo.Context, status int, message string, fields map[string][]string) error {
	return c.JSON(status, ErrorResponse{
		Error:   true,
		Code:    CodeFor(status),
		Message: message,
		Fields:  fields,
	})
}

// HTTPErrorHandler renders every error returned by a handler as an ErrorResponse.
// Internal errors are logged and never leak their text.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := ""
	var fields map[string][]string

	var he *echo.HTTPError
	var ve *services.ValidationError
	switch {
	case errors.As(err, &he):
		status = he.Code
		message = fmt.Sprint(he.Message)
		if he.Internal != nil {
			logger.Log.WithError(he.Internal).Debug("HTTP error internal cause")
		}
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		message = ve.Error()
		fields = ve.Fields
	default:
		status = StatusFor(err)
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Request().URL.Path,
		}).WithError(err).Error("Request failed")
	}
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = WriteError(c, status, message, fields)
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to write error response")
	}
}
