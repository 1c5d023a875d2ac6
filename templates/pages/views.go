// Package pages holds the server-rendered pages. Edit the .templ sources and regenerate.
package pages

//go:generate templ generate

import (
	"time"

	"court_filing_app_go/models"
	"court_filing_app_go/services"
)

// DashboardView holds the data of the filer dashboard
type DashboardView struct {
	User             *models.User
	Cases            []models.Case
	UpcomingHearings []models.Hearing
	Payments         []models.Payment
	Currency         string
	RazorpayKeyID    string
	Now              time.Time
}

// AdminView holds the data of the admin dashboard
type AdminView struct {
	User            *models.User
	Stats           *services.AdminStats
	Cases           []models.Case
	PendingEvidence []models.Evidence
	PendingAdmins   []models.User
	Now             time.Time
}

var caseTypes = []string{
	models.CaseTypeCivil, models.CaseTypeCriminal, models.CaseTypeFamily, models.CaseTypeCommercial,
	models.CaseTypeProperty, models.CaseTypeLabor, models.CaseTypeCybercrime, models.CaseTypeOther,
}

func paidCases(cases []models.Case) []models.Case {
	var out []models.Case
	for _, c := range cases {
		if c.IsPaid() {
			out = append(out, c)
		}
	}
	return out
}

func hearingCaseNumber(h models.Hearing) string {
	if h.Case == nil {
		return ""
	}
	return h.Case.CaseNumber
}

func filerName(c models.Case) string {
	if c.FiledByUser == nil {
		return ""
	}
	return c.FiledByUser.Name
}

func userEmail(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Email
}
