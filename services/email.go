package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"
	"time"

	"court_filing_app_go/config"
	"court_filing_app_go/logger"
	"court_filing_app_go/models"
	"court_filing_app_go/templates/emails"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
	Template string // template name, for logs and tests
}

// MailSender delivers one email synchronously
type MailSender interface {
	Send(email *Email) error
}

// EmailTemplates is the template source; tests may swap it
var EmailTemplates fs.FS = emails.FS

// loadTemplate renders templateName.html and templateName.txt
func loadTemplate(templateName string, data interface{}) (html string, text string, err error) {
	htmlSrc, err := fs.ReadFile(EmailTemplates, templateName+".html")
	if err != nil {
		return "", "", fmt.Errorf("failed to read template %s.html: %w", templateName, err)
	}
	htmlTmpl, err := htmltemplate.New(templateName + ".html").Parse(string(htmlSrc))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.html: %w", templateName, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.html: %w", templateName, err)
	}

	textSrc, err := fs.ReadFile(EmailTemplates, templateName+".txt")
	if err != nil {
		return "", "", fmt.Errorf("failed to read template %s.txt: %w", templateName, err)
	}
	textTmpl, err := texttemplate.New(templateName + ".txt").Parse(string(textSrc))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.txt: %w", templateName, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.txt: %w", templateName, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// buildEmail renders a template. When rendering fails the fallback text is used so the
// recipient still gets something.
func buildEmail(templateName, subject, fallback string, data interface{}, to ...string) *Email {
	htmlBody, textBody, err := loadTemplate(templateName, data)
	if err != nil {
		logger.Log.WithField("template", templateName).WithError(err).Error("Failed to render email template")
		htmlBody = "<p>" + htmltemplate.HTMLEscapeString(fallback) + "</p>"
		textBody = fallback
	}
	return &Email{
		To:       append([]string{}, to...),
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
		Template: templateName,
	}
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"id": sent.Id, "to": email.To}).Info("Email sent via Resend")
	return nil
}

// logEmailToConsole logs email details in test mode
func logEmailToConsole(email *Email) {
	logger.Log.WithFields(logrus.Fields{
		"to":       email.To,
		"subject":  email.Subject,
		"template": email.Template,
	}).Info("Email (test mode, not sent)\n" + truncate(email.TextBody, 500))
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// ResendSender is the production MailSender
type ResendSender struct {
	cfg *config.Config
}

// NewResendSender creates a MailSender backed by SendEmail
func NewResendSender(cfg *config.Config) *ResendSender {
	return &ResendSender{cfg: cfg}
}

func (s *ResendSender) Send(email *Email) error {
	return SendEmail(s.cfg, email)
}

// Links builds absolute URLs for emails
type Links struct {
	AppURL string
}

func (l Links) url(path string) string {
	return strings.TrimSuffix(l.AppURL, "/") + path
}

// Dashboard returns the dashboard URL
func (l Links) Dashboard() string { return l.url("/dashboard") }

// Verify returns the email verification URL for a token
func (l Links) Verify(token string) string { return l.url("/verify-email?token=" + token) }

// Case returns the dashboard deep link of a case
func (l Links) Case(caseID string) string { return l.url("/dashboard?case=" + caseID) }

// AdminCase returns the admin review link of a case
func (l Links) AdminCase(caseID string) string { return l.url("/admin?case=" + caseID) }

// AdminUsers returns the admin user management link
func (l Links) AdminUsers() string { return l.url("/admin?tab=users") }

// FormatAmount renders a money amount for humans
func FormatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

// BuildWelcomeEmail creates a welcome email for new users
func BuildWelcomeEmail(links Links, user *models.User) *Email {
	data := map[string]interface{}{
		"UserName":     user.Name,
		"DashboardURL": links.Dashboard(),
		"VerifyURL":    "",
	}
	if user.VerificationToken != nil && !user.IsVerified {
		data["VerifyURL"] = links.Verify(*user.VerificationToken)
	}
	return buildEmail("welcome", "Welcome to Court Filing",
		"Welcome, "+user.Name+". Your account is ready.", data, user.Email)
}

// BuildVerificationEmail creates an email verification message
func BuildVerificationEmail(links Links, user *models.User) *Email {
	token, expires := "", ""
	if user.VerificationToken != nil {
		token = *user.VerificationToken
	}
	if user.VerificationTokenExpiry != nil {
		expires = user.VerificationTokenExpiry.Format(time.RFC1123)
	}
	return buildEmail("verification", "Verify your email address",
		"Verify your account: "+links.Verify(token),
		map[string]interface{}{
			"UserName":  user.Name,
			"VerifyURL": links.Verify(token),
			"ExpiresAt": expires,
		}, user.Email)
}

// BuildAdminNewCaseEmail alerts administrators about a newly filed case
func BuildAdminNewCaseEmail(links Links, adminEmails []string, c *models.Case, filedByName string) *Email {
	return buildEmail("admin_new_case", "New case filed: "+c.CaseNumber,
		"New case "+c.CaseNumber+" filed by "+filedByName,
		map[string]interface{}{
			"CaseNumber":  c.CaseNumber,
			"Title":       c.Title,
			"CaseType":    c.CaseType,
			"FiledByName": filedByName,
			"FilingFee":   FormatAmount(c.FilingFee, DefaultCurrency),
			"ReviewURL":   links.AdminCase(c.ID),
		}, adminEmails...)
}

// BuildAdminNewUserEmail alerts administrators about a registration or admin application
func BuildAdminNewUserEmail(links Links, adminEmails []string, user *models.User) *Email {
	kind := "user registration"
	if user.IsAdmin() {
		kind = "administrator application"
	}
	return buildEmail("admin_new_user", "New "+kind+": "+user.Name,
		"New "+kind+": "+user.Name+" ("+user.Email+")",
		map[string]interface{}{
			"Kind":        kind,
			"UserName":    user.Name,
			"UserEmail":   user.Email,
			"JoinedAt":    user.CreatedAt.Format("2 Jan 2006 15:04"),
			"NeedsReview": !user.IsVerified,
			"ReviewURL":   links.AdminUsers(),
		}, adminEmails...)
}

// BuildCaseFiledEmail confirms a filing to its owner
func BuildCaseFiledEmail(links Links, owner *models.User, c *models.Case) *Email {
	return buildEmail("case_filed", "Case filed: "+c.CaseNumber,
		"Your case "+c.CaseNumber+" has been filed.",
		map[string]interface{}{
			"UserName":   owner.Name,
			"CaseNumber": c.CaseNumber,
			"Title":      c.Title,
			"FilingFee":  FormatAmount(c.FilingFee, DefaultCurrency),
			"CaseURL":    links.Case(c.ID),
		}, owner.Email)
}

// BuildCaseStatusChangedEmail tells the owner about a status change
func BuildCaseStatusChangedEmail(links Links, owner *models.User, c *models.Case, previous string) *Email {
	return buildEmail("case_status_changed", fmt.Sprintf("Case %s is now %s", c.CaseNumber, c.Status),
		fmt.Sprintf("Case %s status changed to %s", c.CaseNumber, c.Status),
		map[string]interface{}{
			"UserName":       owner.Name,
			"CaseNumber":     c.CaseNumber,
			"Title":          c.Title,
			"Status":         c.Status,
			"PreviousStatus": previous,
			"CaseURL":        links.Case(c.ID),
		}, owner.Email)
}

func hearingData(owner *models.User, c *models.Case, h *models.Hearing) map[string]interface{} {
	return map[string]interface{}{
		"UserName":   owner.Name,
		"CaseNumber": c.CaseNumber,
		"Title":      c.Title,
		"Date":       h.Date.Format("Monday, 2 January 2006"),
		"Time":       h.Time,
		"Location":   h.Location,
		"Judge":      h.Judge,
		"Notes":      h.Notes,
	}
}

// BuildHearingNotificationEmail tells the owner a hearing was scheduled or changed
func BuildHearingNotificationEmail(owner *models.User, c *models.Case, h *models.Hearing, notificationType string) *Email {
	data := hearingData(owner, c, h)
	data["Type"] = notificationType
	return buildEmail("hearing_notification", fmt.Sprintf("Hearing %s: %s", notificationType, c.CaseNumber),
		fmt.Sprintf("Hearing %s for case %s on %s", notificationType, c.CaseNumber, h.DateString()),
		data, owner.Email)
}

// BuildHearingReminderEmail reminds the owner of tomorrow's hearing
func BuildHearingReminderEmail(owner *models.User, c *models.Case, h *models.Hearing) *Email {
	return buildEmail("hearing_reminder", "Reminder: hearing tomorrow for "+c.CaseNumber,
		fmt.Sprintf("Your hearing for %s is on %s at %s", c.CaseNumber, h.DateString(), h.Time),
		hearingData(owner, c, h), owner.Email)
}

// BuildEvidenceDecisionEmail tells the uploader whether their evidence was accepted
func BuildEvidenceDecisionEmail(links Links, uploader *models.User, c *models.Case, e *models.Evidence) *Email {
	return buildEmail("evidence_decision", fmt.Sprintf("Evidence %s: %s", e.ApprovalStatus, e.Title),
		fmt.Sprintf("Your evidence %q was %s", e.Title, e.ApprovalStatus),
		map[string]interface{}{
			"UserName":      uploader.Name,
			"CaseNumber":    c.CaseNumber,
			"EvidenceTitle": e.Title,
			"Decision":      e.ApprovalStatus,
			"Rejected":      e.ApprovalStatus == models.ApprovalRejected,
			"Notes":         e.Notes,
			"CaseURL":       links.Case(c.ID),
		}, uploader.Email)
}
