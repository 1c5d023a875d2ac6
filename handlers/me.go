package handlers

import (
	"net/http"

	"court_filing_app_go/db"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetMeHandler returns the signed-in user
func GetMeHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMeHandler lets the signed-in user edit their profile and password
func UpdateMeHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.ProfileUpdate
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	updated, err := services.UpdateProfile(db.DB, user, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
