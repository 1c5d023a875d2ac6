package handlers

import (
	"errors"
	"net/http"
	"strings"

	"court_filing_app_go/logger"
	"court_filing_app_go/middleware"
	"court_filing_app_go/models"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error onto the JSON error body
func respondError(c echo.Context, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return middleware.WriteError(c, http.StatusBadRequest, ve.Error(), ve.Fields)
	}

	status := middleware.StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).WithError(err).Error("Handler failed")
		return middleware.WriteError(c, status, "Internal server error", nil)
	}
	return middleware.WriteError(c, status, err.Error(), nil)
}

// bindJSON decodes the request body into v
func bindJSON(c echo.Context, v interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return services.Invalid("invalid request body")
	}
	return nil
}

// requireUser returns the caller or an unauthorized error
func requireUser(c echo.Context) (*models.User, error) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return nil, services.ErrUnauthorized
	}
	return user, nil
}

// links builds email links from the configured public URL
func links(c echo.Context) services.Links {
	return services.Links{AppURL: middleware.GetConfig(c).AppURL}
}

// listResponse is the envelope of paginated list endpoints
type listResponse struct {
	Data       interface{}         `json:"data"`
	Pagination services.Pagination `json:"pagination"`
}

func pageFromQuery(c echo.Context) services.Page {
	return services.ParsePage(c.QueryParam("page"), c.QueryParam("limit"))
}

// splitTags accepts tags as repeated form values or one comma separated value
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
