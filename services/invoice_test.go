package services

import (
	"context"
	"testing"
	"time"

	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePDFRenderer struct {
	html string
}

func (r *fakePDFRenderer) RenderPDF(ctx context.Context, html string, options PDFOptions) ([]byte, error) {
	r.html = html
	return []byte("%PDF-1.4 fake"), nil
}

func TestInvoiceNumber(t *testing.T) {
	at := time.Unix(1767225600, 0)
	assert.Equal(t, "INV-3F2A9C1B-1767225600", InvoiceNumber("3f2a9c1b-7d4e-4a6b-9c3d-2e1f0a9b8c7d", at))
	assert.Equal(t, "INV-AB-1767225600", InvoiceNumber("ab", at))
}

func TestRenderInvoiceHTML(t *testing.T) {
	paidAt := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	data := InvoiceData{
		InvoiceNumber: "INV-3F2A9C1B-1767225600",
		IssuedAt:      time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
		PaidAt:        paidAt,
		CustomerName:  "Asha <Rao>",
		CustomerEmail: "asha@example.com",
		CaseNumber:    "CASE-2026-000042",
		CaseTitle:     "Boundary dispute",
		Description:   "Court filing fee (property)",
		Amount:        2000,
		Currency:      "INR",
		PaymentMethod: "razorpay",
		TransactionID: "pay_123",
		ReceiptID:     "rcpt_abc",
	}

	html, err := RenderInvoiceHTML(data)
	require.NoError(t, err)
	assert.Contains(t, html, "INV-3F2A9C1B-1767225600")
	assert.Contains(t, html, "CASE-2026-000042")
	assert.Contains(t, html, "INR 2000.00")
	assert.Contains(t, html, "pay_123")
	assert.Contains(t, html, "05 Jan 2026")
	assert.Contains(t, html, "Asha &lt;Rao&gt;")

	again, err := RenderInvoiceHTML(data)
	require.NoError(t, err)
	assert.Equal(t, html, again)
}

func TestGenerateInvoicePDF(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "inv-owner@example.com", models.RoleUser)
	stranger := createUser(t, db, "inv-stranger@example.com", models.RoleUser)
	gw := &fakeGateway{validSig: "ok"}
	renderer := &fakePDFRenderer{}
	ctx := context.Background()

	c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
	order, err := CreateOrder(ctx, db, gw, owner, c.ID)
	require.NoError(t, err)

	_, _, err = GenerateInvoicePDF(ctx, db, renderer, owner, order.Payment.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = VerifyPayment(db, gw, owner, VerifyInput{OrderID: order.OrderID, PaymentID: "pay_789", Signature: "ok"})
	require.NoError(t, err)

	pdf, name, err := GenerateInvoicePDF(ctx, db, renderer, owner, order.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf))
	assert.Regexp(t, `^INV-[0-9A-F]{8}-\d+\.pdf$`, name)
	assert.Contains(t, renderer.html, c.CaseNumber)
	assert.Contains(t, renderer.html, "pay_789")

	_, _, err = GenerateInvoicePDF(ctx, db, renderer, stranger, order.Payment.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
