package handlers

import (
	"net/http"

	"court_filing_app_go/db"
	"court_filing_app_go/logger"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

func caseFilterFromQuery(c echo.Context) services.CaseFilter {
	return services.CaseFilter{
		Status:        c.QueryParam("status"),
		CaseType:      c.QueryParam("caseType"),
		PaymentStatus: c.QueryParam("paymentStatus"),
		Search:        c.QueryParam("search"),
		Page:          pageFromQuery(c),
		SortBy:        c.QueryParam("sortBy"),
		SortOrder:     c.QueryParam("sortOrder"),
	}
}

// CreateCaseHandler files a new case and notifies the admins and the filer
func CreateCaseHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.CreateCaseInput
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	created, err := services.CreateCase(db.DB, user, in)
	if err != nil {
		return respondError(c, err)
	}

	l := links(c)
	services.Notify.Dispatch(services.BuildAdminNewCaseEmail(l, services.AdminEmails(db.DB), created, user.Name))
	services.Notify.Dispatch(services.BuildCaseFiledEmail(l, user, created))

	return c.JSON(http.StatusCreated, created)
}

// GetCasesHandler returns a page of cases visible to the caller
func GetCasesHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	cases, pagination, err := services.ListCases(db.DB, user, caseFilterFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Data: cases, Pagination: pagination})
}

// GetCaseHandler returns a case with its hearings, evidence and payments
func GetCaseHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	detail, err := services.GetCaseDetail(db.DB, user, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateCaseHandler applies a partial update; a status change emails the owner
func UpdateCaseHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.CaseUpdate
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	result, err := services.UpdateCase(db.DB, user, c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}

	if result.StatusChanged {
		owner, err := services.LoadUser(c.Request().Context(), db.DB, result.Case.FiledBy)
		if err != nil {
			logger.Log.WithField("case_id", result.Case.ID).WithError(err).Warn("Case owner not found, status email skipped")
		} else {
			services.Notify.Dispatch(services.BuildCaseStatusChangedEmail(links(c), owner, result.Case, result.PreviousStatus))
		}
	}

	return c.JSON(http.StatusOK, result.Case)
}

// DeleteCaseHandler removes a case with its hearings and evidence records
func DeleteCaseHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if _, err := services.DeleteCase(db.DB, user, c.Param("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Case deleted"})
}
