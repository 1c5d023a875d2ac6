package handlers

import (
	"net/http"

	"court_filing_app_go/db"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

// createOrderRequest is the create-order payload
type createOrderRequest struct {
	CaseID string `json:"caseId"`
}

// CreateOrderHandler opens a gateway order for a case's filing fee
func CreateOrderHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in createOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	order, err := services.CreateOrder(c.Request().Context(), db.DB, services.Gateway, user, in.CaseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// VerifyPaymentHandler checks the checkout signature and settles the payment
func VerifyPaymentHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.VerifyInput
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	payment, err := services.VerifyPayment(db.DB, services.Gateway, user, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Payment verified",
		"payment": payment,
	})
}

// GetPaymentsHandler lists the caller's payments (admins: all)
func GetPaymentsHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	payments, pagination, err := services.ListPayments(db.DB, user, c.QueryParam("caseId"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Data: payments, Pagination: pagination})
}

// GetPaymentHandler returns one payment
func GetPaymentHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	payment, err := services.GetPayment(db.DB, user, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// InvoiceHandler renders the PDF invoice of a completed payment
func InvoiceHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	pdf, filename, err := services.GenerateInvoicePDF(c.Request().Context(), db.DB, services.PDF, user, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
