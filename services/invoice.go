package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"court_filing_app_go/models"

	"gorm.io/gorm"
)

// InvoiceData is everything printed on an invoice
type InvoiceData struct {
	InvoiceNumber string
	IssuedAt      time.Time
	PaidAt        time.Time

	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string

	CaseNumber string
	CaseTitle  string
	CaseType   string

	Description   string
	Amount        float64
	Currency      string
	PaymentMethod string
	TransactionID string
	ReceiptID     string
}

// InvoiceNumber builds INV-<payment id prefix>-<unix seconds>
func InvoiceNumber(paymentID string, at time.Time) string {
	prefix := strings.ReplaceAll(paymentID, "-", "")
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("INV-%s-%d", strings.ToUpper(prefix), at.Unix())
}

// NewInvoiceData collects invoice fields from a completed payment with Case and User loaded
func NewInvoiceData(p *models.Payment, issuedAt time.Time) InvoiceData {
	data := InvoiceData{
		InvoiceNumber: InvoiceNumber(p.ID, issuedAt),
		IssuedAt:      issuedAt,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.Method,
		ReceiptID:     p.ReceiptID,
	}
	if p.PaymentDate != nil {
		data.PaidAt = *p.PaymentDate
	}
	if p.TransactionID != nil {
		data.TransactionID = *p.TransactionID
	}
	if p.User != nil {
		data.CustomerName = p.User.Name
		data.CustomerEmail = p.User.Email
		data.CustomerPhone = p.User.Phone
		data.CustomerAddress = p.User.Address
	}
	if p.Case != nil {
		data.CaseNumber = p.Case.CaseNumber
		data.CaseTitle = p.Case.Title
		data.CaseType = p.Case.CaseType
		data.Description = "Court filing fee (" + p.Case.CaseType + ")"
	}
	return data
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"amount": FormatAmount,
	"date":   func(t time.Time) string { return t.Format("02 Jan 2006") },
}).Parse(invoiceHTML))

// RenderInvoiceHTML lays out the invoice as a standalone HTML page.
// The same data always renders the same document.
func RenderInvoiceHTML(data InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.String(), nil
}

// GenerateInvoicePDF renders the invoice of a completed payment
func GenerateInvoicePDF(ctx context.Context, db *gorm.DB, renderer PDFRenderer, caller *models.User, paymentID string) ([]byte, string, error) {
	payment, err := GetPayment(db, caller, paymentID)
	if err != nil {
		return nil, "", err
	}
	if !payment.IsCompleted() {
		return nil, "", fmt.Errorf("invoices are only available for completed payments: %w", ErrConflict)
	}
	if renderer == nil {
		return nil, "", fmt.Errorf("pdf renderer is not configured")
	}

	data := NewInvoiceData(payment, time.Now())
	html, err := RenderInvoiceHTML(data)
	if err != nil {
		return nil, "", err
	}
	pdf, err := renderer.RenderPDF(ctx, html, InvoicePDFOptions())
	if err != nil {
		return nil, "", err
	}
	return pdf, data.InvoiceNumber + ".pdf", nil
}

const invoiceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.InvoiceNumber}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2933; font-size: 12px; margin: 0; }
  header { border-bottom: 3px solid #1e3a8a; padding-bottom: 12px; margin-bottom: 24px; }
  header h1 { margin: 0; color: #1e3a8a; font-size: 22px; }
  header p { margin: 2px 0 0; color: #52606d; }
  .meta { display: flex; justify-content: space-between; margin-bottom: 24px; }
  .meta div { width: 48%; }
  .meta h2 { font-size: 11px; text-transform: uppercase; color: #7b8794; margin: 0 0 6px; }
  .meta p { margin: 2px 0; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
  th { text-align: left; background: #f0f4f8; padding: 8px; border-bottom: 1px solid #d9e2ec; }
  td { padding: 8px; border-bottom: 1px solid #d9e2ec; }
  .right { text-align: right; }
  .total td { font-weight: bold; font-size: 14px; border-bottom: none; }
  .payment p { margin: 2px 0; }
  footer { margin-top: 48px; border-top: 1px solid #d9e2ec; padding-top: 8px; color: #7b8794; font-size: 10px; text-align: center; }
</style>
</head>
<body>
<header>
  <h1>Court Filing Services</h1>
  <p>Tax invoice for court filing fees</p>
</header>

<section class="meta">
  <div>
    <h2>Billed to</h2>
    <p>{{.CustomerName}}</p>
    <p>{{.CustomerEmail}}</p>
    {{if .CustomerPhone}}<p>{{.CustomerPhone}}</p>{{end}}
    {{if .CustomerAddress}}<p>{{.CustomerAddress}}</p>{{end}}
  </div>
  <div>
    <h2>Invoice</h2>
    <p>Number: {{.InvoiceNumber}}</p>
    <p>Issued: {{date .IssuedAt}}</p>
    {{if not .PaidAt.IsZero}}<p>Paid: {{date .PaidAt}}</p>{{end}}
    <p>Case: {{.CaseNumber}}</p>
    <p>Receipt: {{.ReceiptID}}</p>
  </div>
</section>

<table>
  <thead>
    <tr><th>Description</th><th>Case</th><th class="right">Amount</th></tr>
  </thead>
  <tbody>
    <tr><td>{{.Description}}</td><td>{{.CaseTitle}}</td><td class="right">{{amount .Amount .Currency}}</td></tr>
    <tr class="total"><td colspan="2" class="right">Total paid</td><td class="right">{{amount .Amount .Currency}}</td></tr>
  </tbody>
</table>

<section class="payment">
  <p>Payment method: {{.PaymentMethod}}</p>
  <p>Transaction ID: {{.TransactionID}}</p>
</section>

<footer>
  This invoice was generated electronically and does not require a signature.
</footer>
</body>
</html>
`
