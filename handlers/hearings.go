package handlers

import (
	"net/http"

	"court_filing_app_go/db"
	"court_filing_app_go/logger"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

// CreateHearingHandler schedules a hearing and notifies the case owner
func CreateHearingHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.CreateHearingInput
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	hearing, hearingCase, err := services.CreateHearing(db.DB, user, in)
	if err != nil {
		return respondError(c, err)
	}

	if hearingCase.FiledByUser != nil {
		services.Notify.Dispatch(services.BuildHearingNotificationEmail(
			hearingCase.FiledByUser, hearingCase, hearing, services.HearingNoticeScheduled))
	}

	return c.JSON(http.StatusCreated, hearing)
}

// GetHearingsHandler returns a page of hearings visible to the caller
func GetHearingsHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	hearings, pagination, err := services.ListHearings(db.DB, user, services.HearingFilter{
		Status:    c.QueryParam("status"),
		CaseID:    c.QueryParam("caseId"),
		DateFrom:  c.QueryParam("dateFrom"),
		DateTo:    c.QueryParam("dateTo"),
		Search:    c.QueryParam("search"),
		Page:      pageFromQuery(c),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Data: hearings, Pagination: pagination})
}

// GetHearingHandler returns one hearing
func GetHearingHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	hearing, err := services.GetHearing(db.DB, user, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, hearing)
}

// UpdateHearingHandler edits a hearing. A changed date or status sends one notice to the owner.
func UpdateHearingHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.HearingUpdate
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	result, err := services.UpdateHearing(db.DB, user, c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}

	h := result.Hearing
	if result.NotificationType != "" {
		if h.Case == nil || h.Case.FiledByUser == nil {
			logger.Log.WithField("hearing_id", h.ID).Warn("Hearing has no case owner, notice skipped")
		} else {
			services.Notify.Dispatch(services.BuildHearingNotificationEmail(h.Case.FiledByUser, h.Case, h, result.NotificationType))
		}
	}

	return c.JSON(http.StatusOK, h)
}

// DeleteHearingHandler removes a hearing. Admin only.
func DeleteHearingHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := services.DeleteHearing(db.DB, user, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Hearing deleted"})
}
