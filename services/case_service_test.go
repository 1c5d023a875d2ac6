package services

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCalculateFilingFee(t *testing.T) {
	tests := []struct {
		caseType string
		want     float64
	}{
		{"criminal", HighFilingFee},
		{"commercial", HighFilingFee},
		{"cybercrime", HighFilingFee},
		{"Criminal", HighFilingFee},
		{"civil", StandardFilingFee},
		{"family", StandardFilingFee},
		{"maritime", StandardFilingFee},
		{"", StandardFilingFee},
	}

	for _, tt := range tests {
		t.Run(tt.caseType, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateFilingFee(tt.caseType))
		})
	}
	assert.Equal(t, float64(5000), HighFilingFee)
	assert.Equal(t, float64(2000), StandardFilingFee)
}

func TestGenerateCaseNumber(t *testing.T) {
	number, err := GenerateCaseNumber(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CASE-2026-\d{6}$`), number)
}

func TestEnsureUniqueCaseNumber(t *testing.T) {
	db := setupTestDB(t)
	number, err := EnsureUniqueCaseNumber(db)
	require.NoError(t, err)
	assert.Regexp(t, fmt.Sprintf(`^CASE-%d-\d{6}$`, time.Now().Year()), number)
}

func TestCreateCase(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com", models.RoleUser)

	c, err := CreateCase(db, owner, CreateCaseInput{
		Title:      "State v. <b>Doe</b>",
		Plaintiffs: []string{"State", " "},
		Defendants: []string{"J. Doe"},
		CaseType:   "Criminal",
	})
	require.NoError(t, err)
	assert.Equal(t, "State v. Doe", c.Title)
	assert.Equal(t, []string{"State"}, c.Plaintiffs)
	assert.Equal(t, models.CaseTypeCriminal, c.CaseType)
	assert.Equal(t, HighFilingFee, c.FilingFee)
	assert.Equal(t, models.CaseStatusPending, c.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, c.PaymentStatus)
	assert.Equal(t, owner.ID, c.FiledBy)

	t.Run("Defaults to civil", func(t *testing.T) {
		c, err := CreateCase(db, owner, CreateCaseInput{Title: "Rent", Plaintiffs: []string{"A"}, Defendants: []string{"B"}})
		require.NoError(t, err)
		assert.Equal(t, models.CaseTypeCivil, c.CaseType)
		assert.Equal(t, StandardFilingFee, c.FilingFee)
	})

	t.Run("Requires parties", func(t *testing.T) {
		_, err := CreateCase(db, owner, CreateCaseInput{Title: "No parties", Plaintiffs: []string{"A"}})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "defendants")
	})

	t.Run("Requires title", func(t *testing.T) {
		_, err := CreateCase(db, owner, CreateCaseInput{Plaintiffs: []string{"A"}, Defendants: []string{"B"}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Ampersands and apostrophes are stored as typed", func(t *testing.T) {
		c, err := CreateCase(db, owner, CreateCaseInput{
			Title:      "Smith & Sons v. O'Brien",
			Plaintiffs: []string{"Smith & Sons"},
			Defendants: []string{"Sean O'Brien"},
		})
		require.NoError(t, err)

		var stored models.Case
		require.NoError(t, db.First(&stored, "id = ?", c.ID).Error)
		assert.Equal(t, "Smith & Sons v. O'Brien", stored.Title)
		assert.Equal(t, []string{"Sean O'Brien"}, stored.Defendants)

		found, _, err := ListCases(db, owner, CaseFilter{Search: "O'Brien", Page: ParsePage("", "")})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, c.ID, found[0].ID)
	})
}

func TestListCases(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "list-owner@example.com", models.RoleUser)
	other := createUser(t, db, "list-other@example.com", models.RoleUser)
	admin := createUser(t, db, "list-admin@example.com", models.RoleAdmin)

	mine := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
	createCase(t, db, owner, models.CaseStatusApproved, models.PaymentStatusPaid)
	theirs := createCase(t, db, other, models.CaseStatusPending, models.PaymentStatusUnpaid)
	db.Model(theirs).Update("defendants", `["Zed Industries"]`)

	t.Run("Non-admin sees own cases", func(t *testing.T) {
		cases, meta, err := ListCases(db, owner, CaseFilter{Page: ParsePage("", "")})
		require.NoError(t, err)
		assert.Len(t, cases, 2)
		assert.Equal(t, int64(2), meta.Total)
	})

	t.Run("Admin sees all", func(t *testing.T) {
		_, meta, err := ListCases(db, admin, CaseFilter{Page: ParsePage("", "")})
		require.NoError(t, err)
		assert.Equal(t, int64(3), meta.Total)
	})

	t.Run("Filters", func(t *testing.T) {
		cases, _, err := ListCases(db, owner, CaseFilter{Status: models.CaseStatusPending, PaymentStatus: models.PaymentStatusUnpaid, Page: ParsePage("", "")})
		require.NoError(t, err)
		require.Len(t, cases, 1)
		assert.Equal(t, mine.ID, cases[0].ID)
	})

	t.Run("Search across parties", func(t *testing.T) {
		cases, _, err := ListCases(db, admin, CaseFilter{Search: "zed", Page: ParsePage("", "")})
		require.NoError(t, err)
		require.Len(t, cases, 1)
		assert.Equal(t, theirs.ID, cases[0].ID)
	})

	t.Run("Pagination", func(t *testing.T) {
		cases, meta, err := ListCases(db, admin, CaseFilter{Page: ParsePage("2", "2"), SortBy: "caseNumber", SortOrder: "asc"})
		require.NoError(t, err)
		assert.Len(t, cases, 1)
		assert.Equal(t, 2, meta.TotalPages)
	})
}

func TestGetCaseDetail(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "detail-owner@example.com", models.RoleUser)
	stranger := createUser(t, db, "detail-stranger@example.com", models.RoleUser)
	c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)

	late := time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC)
	early := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	db.Create(&models.Hearing{CaseID: c.ID, Date: late, Time: "09:00", Location: "Room 1"})
	db.Create(&models.Hearing{CaseID: c.ID, Date: early, Time: "14:00", Location: "Room 2"})
	db.Create(&models.Hearing{CaseID: c.ID, Date: early, Time: "10:00", Location: "Room 3"})

	detail, err := GetCaseDetail(db, owner, c.ID)
	require.NoError(t, err)
	require.Len(t, detail.Hearings, 3)
	assert.Equal(t, "Room 3", detail.Hearings[0].Location)
	assert.Equal(t, "Room 2", detail.Hearings[1].Location)
	assert.Equal(t, "Room 1", detail.Hearings[2].Location)
	require.NotNil(t, detail.FiledByUser)
	assert.Equal(t, owner.Email, detail.FiledByUser.Email)

	_, err = GetCaseDetail(db, stranger, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = GetCaseDetail(db, owner, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCase(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "upd-owner@example.com", models.RoleUser)
	admin := createUser(t, db, "upd-admin@example.com", models.RoleAdmin)

	t.Run("Owner changes are limited to the allow-list", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
		res, err := UpdateCase(db, owner, c.ID, CaseUpdate{
			Description: strPtr("Updated facts"),
			Title:       strPtr("Sneaky title"),
			Status:      strPtr(models.CaseStatusApproved),
			CaseType:    strPtr("criminal"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Updated facts", res.Case.Description)
		assert.Equal(t, "Boundary dispute", res.Case.Title)
		assert.Equal(t, models.CaseStatusPending, res.Case.Status)
		assert.Equal(t, StandardFilingFee, res.Case.FilingFee)
		assert.False(t, res.StatusChanged)
	})

	t.Run("Admin approves a pending case", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
		res, err := UpdateCase(db, admin, c.ID, CaseUpdate{Status: strPtr(models.CaseStatusApproved)})
		require.NoError(t, err)
		assert.True(t, res.StatusChanged)
		assert.Equal(t, models.CaseStatusPending, res.PreviousStatus)
		assert.Equal(t, models.CaseStatusApproved, res.Case.Status)
	})

	t.Run("Illegal transition is rejected", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusCompleted, models.PaymentStatusPaid)
		_, err := UpdateCase(db, admin, c.ID, CaseUpdate{Status: strPtr(models.CaseStatusPending)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Case type change reprices an unpaid case", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
		res, err := UpdateCase(db, admin, c.ID, CaseUpdate{CaseType: strPtr("commercial")})
		require.NoError(t, err)
		assert.Equal(t, HighFilingFee, res.Case.FilingFee)
	})

	t.Run("Paid requires a completed payment", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusPending)
		_, err := UpdateCase(db, admin, c.ID, CaseUpdate{PaymentStatus: strPtr(models.PaymentStatusPaid)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Stranger is forbidden", func(t *testing.T) {
		stranger := createUser(t, db, "upd-stranger@example.com", models.RoleUser)
		c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
		_, err := UpdateCase(db, stranger, c.ID, CaseUpdate{Description: strPtr("x")})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestUpdateCasePaymentLookupFailure(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, "lookup-admin@example.com", models.RoleAdmin)
	owner := createUser(t, db, "lookup-owner@example.com", models.RoleUser)
	c := createCase(t, db, owner, models.CaseStatusApproved, models.PaymentStatusPending)
	require.NoError(t, db.Migrator().DropTable(&models.Payment{}))

	_, err := UpdateCase(db, admin, c.ID, CaseUpdate{PaymentStatus: strPtr(models.PaymentStatusPaid)})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)

	var stored models.Case
	require.NoError(t, db.First(&stored, "id = ?", c.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
}

func TestDeleteCase(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "del-owner@example.com", models.RoleUser)
	admin := createUser(t, db, "del-admin@example.com", models.RoleAdmin)

	t.Run("Owner withdraws a pending case with its records", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusPaid)
		db.Create(&models.Hearing{CaseID: c.ID, Date: time.Now(), Location: "Room 1"})
		db.Create(&models.Evidence{CaseID: c.ID, UploadedBy: owner.ID, Title: "Deed", FileURL: "/uploads/x", StorageKey: "evidence/" + c.ID + "/1-deed.pdf", FileName: "deed.pdf", FileSize: 1})
		db.Create(&models.Payment{CaseID: c.ID, UserID: owner.ID, Amount: 2000, GatewayOrderID: "order_del", ReceiptID: "rcpt_del", Status: models.PaymentCompleted})

		orphaned, err := DeleteCase(db, owner, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"evidence/" + c.ID + "/1-deed.pdf"}, orphaned)

		var hearings, evidence, payments int64
		db.Model(&models.Hearing{}).Where("case_id = ?", c.ID).Count(&hearings)
		db.Model(&models.Evidence{}).Where("case_id = ?", c.ID).Count(&evidence)
		db.Model(&models.Payment{}).Where("case_id = ?", c.ID).Count(&payments)
		assert.Zero(t, hearings)
		assert.Zero(t, evidence)
		assert.Equal(t, int64(1), payments) // payment history is kept
	})

	t.Run("Owner cannot delete an approved case", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusApproved, models.PaymentStatusUnpaid)
		_, err := DeleteCase(db, owner, c.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Admin deletes unconditionally", func(t *testing.T) {
		c := createCase(t, db, owner, models.CaseStatusInProgress, models.PaymentStatusPaid)
		_, err := DeleteCase(db, admin, c.ID)
		require.NoError(t, err)

		var count int64
		db.Model(&models.Case{}).Where("id = ?", c.ID).Count(&count)
		assert.Zero(t, count)
	})
}

func TestAdminEmails(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "a1@court.test", models.RoleAdmin)
	applicant := createUser(t, db, "a2@court.test", models.RoleAdmin)
	db.Model(applicant).Update("is_verified", false)
	createUser(t, db, "u1@court.test", models.RoleUser)

	assert.Equal(t, []string{"a1@court.test"}, AdminEmails(db))
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: DefaultPageSize}, ParsePage("", ""))
	assert.Equal(t, Page{Page: 3, Limit: MaxPageSize}, ParsePage("3", "500"))
	assert.Equal(t, Page{Page: 1, Limit: DefaultPageSize}, ParsePage("-1", "abc"))

	huge := ParsePage("9223372036854775807", "100")
	assert.Equal(t, MaxPage, huge.Page)
	assert.Greater(t, huge.Offset(), 0)
	assert.Equal(t, 1, ParsePage("99999999999999999999", "").Page)
	assert.Equal(t, 3, Page{Page: 1, Limit: 10}.Meta(21).TotalPages)
}
