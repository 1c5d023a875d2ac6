package handlers

import (
	"net/http"
	"strconv"
	"time"

	"court_filing_app_go/db"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListUsersHandler returns a page of accounts. Admin only.
func ListUsersHandler(c echo.Context) error {
	caller, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	filter := services.UserFilter{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
		Page:   pageFromQuery(c),
	}
	if v := c.QueryParam("isVerified"); v != "" {
		if verified, err := strconv.ParseBool(v); err == nil {
			filter.Verified = &verified
		}
	}

	users, pagination, err := services.ListUsers(db.DB, caller, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Data: users, Pagination: pagination})
}

// GetUserHandler returns one account. Admin only.
func GetUserHandler(c echo.Context) error {
	caller, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := services.GetUser(db.DB, caller, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUserHandler edits an account; activating an applicant sends them a welcome email
func UpdateUserHandler(c echo.Context) error {
	caller, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.AdminUserUpdate
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	result, err := services.UpdateUser(db.DB, caller, c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	if result.Activated {
		services.Notify.Dispatch(services.BuildWelcomeEmail(links(c), result.User))
	}
	return c.JSON(http.StatusOK, result.User)
}

// DeleteUserHandler removes an account. Admins cannot delete themselves.
func DeleteUserHandler(c echo.Context) error {
	caller, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := services.DeleteUser(c.Request().Context(), db.DB, caller, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted"})
}

// AdminStatsHandler returns dashboard counters
func AdminStatsHandler(c echo.Context) error {
	caller, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := services.GetAdminStats(db.DB, caller, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// SecurityAlertsHandler lists recent failed-login alerts. Admin only.
func SecurityAlertsHandler(c echo.Context) error {
	caller, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := services.Authorize(caller, "", services.RuleAdminOnly); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": services.Monitor.GetRecentAlerts()})
}

// ExportCasesHandler streams the filtered case list as an xlsx workbook
func ExportCasesHandler(c echo.Context) error {
	caller, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	buf, err := services.ExportCasesXLSX(db.DB, caller, caseFilterFromQuery(c), now)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+services.ExportFileName(now)+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
