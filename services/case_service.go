package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Filing fees in major currency units
const (
	HighFilingFee     float64 = 5000
	StandardFilingFee float64 = 2000
)

// DefaultCurrency is the currency fees are charged in; set from PAYMENT_CURRENCY at startup
var DefaultCurrency = "INR"

var highFeeCaseTypes = map[string]bool{
	models.CaseTypeCriminal:   true,
	models.CaseTypeCommercial: true,
	models.CaseTypeCybercrime: true,
}

// CalculateFilingFee returns the fee for a case type. Unknown types pay the standard fee.
func CalculateFilingFee(caseType string) float64 {
	if highFeeCaseTypes[strings.ToLower(strings.TrimSpace(caseType))] {
		return HighFilingFee
	}
	return StandardFilingFee
}

// GenerateCaseNumber builds a case number
// Format: CASE-{YEAR}-{6 random digits}
// Example: CASE-2026-048213
func GenerateCaseNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate case number: %w", err)
	}
	return fmt.Sprintf("CASE-%d-%06d", now.Year(), n.Int64()), nil
}

// EnsureUniqueCaseNumber generates a unique case number with retry logic
// Retries up to maxRetries times if a collision occurs
func EnsureUniqueCaseNumber(db *gorm.DB) (string, error) {
	const maxRetries = 10

	for i := 0; i < maxRetries; i++ {
		caseNumber, err := GenerateCaseNumber(time.Now())
		if err != nil {
			return "", err
		}

		var count int64
		if err := db.Model(&models.Case{}).Where("case_number = ?", caseNumber).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check case number uniqueness: %w", err)
		}
		if count == 0 {
			return caseNumber, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique case number after %d retries", maxRetries)
}

// CreateCaseInput is the filing payload
type CreateCaseInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=10000"`
	Plaintiffs   []string `json:"plaintiffs" validate:"required,min=1"`
	Defendants   []string `json:"defendants" validate:"required,min=1"`
	CaseType     string   `json:"caseType" validate:"max=50"`
	ReliefSought string   `json:"reliefSought" validate:"max=5000"`
	CaseValue    *float64 `json:"caseValue" validate:"omitempty,gte=0"`
	Court        string   `json:"court" validate:"max=200"`
}

// CreateCase files a new case for the owner. Status starts pending and unpaid.
func CreateCase(db *gorm.DB, owner *models.User, in CreateCaseInput) (*models.Case, error) {
	in.Title = CleanText(in.Title)
	in.Plaintiffs = CleanList(in.Plaintiffs)
	in.Defendants = CleanList(in.Defendants)
	in.CaseType = strings.ToLower(CleanText(in.CaseType))
	if in.CaseType == "" {
		in.CaseType = models.CaseTypeCivil
	}
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}

	caseNumber, err := EnsureUniqueCaseNumber(db)
	if err != nil {
		return nil, err
	}

	c := &models.Case{
		CaseNumber:    caseNumber,
		Title:         in.Title,
		Description:   CleanText(in.Description),
		Plaintiffs:    in.Plaintiffs,
		Defendants:    in.Defendants,
		CaseType:      in.CaseType,
		Status:        models.CaseStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		FilingFee:     CalculateFilingFee(in.CaseType),
		ReliefSought:  CleanText(in.ReliefSought),
		CaseValue:     in.CaseValue,
		Court:         CleanText(in.Court),
		FiledBy:       owner.ID,
	}
	if err := db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"case_id": c.ID, "case_number": c.CaseNumber, "user_id": owner.ID}).Info("Case filed")
	return c, nil
}

// LoadCase fetches a case and checks the caller against rule
func LoadCase(db *gorm.DB, caller *models.User, id string, rule Rule) (*models.Case, error) {
	var c models.Case
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "case")
	}
	if err := Authorize(caller, c.FiledBy, rule); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCaseDetail returns a case with its owner, hearings, evidence and payments
func GetCaseDetail(db *gorm.DB, caller *models.User, id string) (*models.Case, error) {
	var c models.Case
	err := db.
		Preload("FiledByUser").
		Preload("Hearings", func(tx *gorm.DB) *gorm.DB { return tx.Order("date ASC, time ASC") }).
		Preload("Evidence", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		Preload("Payments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "case")
	}
	if err := Authorize(caller, c.FiledBy, RuleOwnerOrAdmin); err != nil {
		return nil, err
	}
	return &c, nil
}

// CaseFilter holds the list query parameters
type CaseFilter struct {
	Status        string
	CaseType      string
	PaymentStatus string
	Search        string
	Page          Page
	SortBy        string
	SortOrder     string
}

var caseSortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"title":         "title",
	"caseNumber":    "case_number",
	"status":        "status",
	"caseType":      "case_type",
	"paymentStatus": "payment_status",
	"filingFee":     "filing_fee",
}

// CaseQuery builds the filtered, caller-scoped query without pagination
func CaseQuery(db *gorm.DB, caller *models.User, f CaseFilter) *gorm.DB {
	query := db.Model(&models.Case{})

	// Admins see all cases, everyone else only their own
	if !caller.IsAdmin() {
		query = query.Where("filed_by = ?", caller.ID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CaseType != "" {
		query = query.Where("case_type = ?", strings.ToLower(f.CaseType))
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}
	if strings.TrimSpace(f.Search) != "" {
		pattern := likePattern(f.Search)
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(case_number) LIKE ? OR LOWER(plaintiffs) LIKE ? OR LOWER(defendants) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	return query
}

// ListCases returns one page of cases visible to the caller
func ListCases(db *gorm.DB, caller *models.User, f CaseFilter) ([]models.Case, Pagination, error) {
	query := CaseQuery(db, caller, f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count cases: %w", err)
	}

	sort := ParseSort(f.SortBy, f.SortOrder, caseSortColumns, Sort{Column: "created_at", Desc: true})
	var cases []models.Case
	if err := query.
		Order(sort.Clause()).
		Limit(f.Page.Limit).
		Offset(f.Page.Offset()).
		Find(&cases).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to fetch cases: %w", err)
	}

	return cases, f.Page.Meta(total), nil
}

// CaseUpdate is a partial update. Nil fields are left untouched.
type CaseUpdate struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Plaintiffs    *[]string `json:"plaintiffs"`
	Defendants    *[]string `json:"defendants"`
	CaseType      *string   `json:"caseType"`
	Status        *string   `json:"status"`
	PaymentStatus *string   `json:"paymentStatus"`
	FilingFee     *float64  `json:"filingFee"`
	ReliefSought  *string   `json:"reliefSought"`
	CaseValue     *float64  `json:"caseValue"`
	Court         *string   `json:"court"`
}

// OwnerEditable drops every field the case owner may not change
func (u CaseUpdate) OwnerEditable() CaseUpdate {
	return CaseUpdate{
		Description:  u.Description,
		Plaintiffs:   u.Plaintiffs,
		Defendants:   u.Defendants,
		ReliefSought: u.ReliefSought,
		CaseValue:    u.CaseValue,
	}
}

// CaseUpdateResult reports what an update changed
type CaseUpdateResult struct {
	Case           *models.Case
	PreviousStatus string
	StatusChanged  bool
}

// UpdateCase applies a partial update. Non-admin owners are limited to the owner allow-list;
// other fields are ignored without error.
func UpdateCase(db *gorm.DB, caller *models.User, id string, in CaseUpdate) (*CaseUpdateResult, error) {
	c, err := LoadCase(db, caller, id, RuleOwnerOrAdmin)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		in = in.OwnerEditable()
	}

	result := &CaseUpdateResult{Case: c, PreviousStatus: c.Status}

	if in.Title != nil {
		title := CleanText(*in.Title)
		if title == "" {
			return nil, Invalid("title cannot be empty")
		}
		c.Title = title
	}
	if in.Description != nil {
		c.Description = CleanText(*in.Description)
	}
	if in.Plaintiffs != nil {
		list := CleanList(*in.Plaintiffs)
		if len(list) == 0 {
			return nil, Invalid("at least one plaintiff is required")
		}
		c.Plaintiffs = list
	}
	if in.Defendants != nil {
		list := CleanList(*in.Defendants)
		if len(list) == 0 {
			return nil, Invalid("at least one defendant is required")
		}
		c.Defendants = list
	}
	if in.ReliefSought != nil {
		c.ReliefSought = CleanText(*in.ReliefSought)
	}
	if in.CaseValue != nil {
		if *in.CaseValue < 0 {
			return nil, Invalid("case value cannot be negative")
		}
		c.CaseValue = in.CaseValue
	}
	if in.Court != nil {
		c.Court = CleanText(*in.Court)
	}
	if in.CaseType != nil {
		caseType := strings.ToLower(CleanText(*in.CaseType))
		if caseType == "" {
			return nil, Invalid("case type cannot be empty")
		}
		if caseType != c.CaseType && !c.IsPaid() && in.FilingFee == nil {
			c.FilingFee = CalculateFilingFee(caseType)
		}
		c.CaseType = caseType
	}
	if in.FilingFee != nil {
		if *in.FilingFee < 0 {
			return nil, Invalid("filing fee cannot be negative")
		}
		c.FilingFee = *in.FilingFee
	}
	if in.Status != nil && *in.Status != c.Status {
		if err := models.CaseTransitions.Check(c.Status, *in.Status); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		c.Status = *in.Status
		result.StatusChanged = true
	}
	if in.PaymentStatus != nil && *in.PaymentStatus != c.PaymentStatus {
		if !models.IsValidPaymentStatus(*in.PaymentStatus) {
			return nil, Invalid("unknown payment status %q", *in.PaymentStatus)
		}
		if *in.PaymentStatus == models.PaymentStatusPaid {
			var completed int64
			if err := db.Model(&models.Payment{}).Where("case_id = ? AND status = ?", c.ID, models.PaymentCompleted).Count(&completed).Error; err != nil {
				return nil, fmt.Errorf("failed to check payments: %w", err)
			}
			if completed == 0 {
				return nil, Invalid("a case can only be marked paid after a completed payment")
			}
		}
		c.PaymentStatus = *in.PaymentStatus
	}

	if err := db.Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}
	return result, nil
}

// DeleteCase removes a case with its hearings and evidence records in one transaction.
// Owners may only withdraw pending or draft cases. Stored evidence files are left in place;
// their keys are returned and logged as orphaned.
func DeleteCase(db *gorm.DB, caller *models.User, id string) ([]string, error) {
	c, err := LoadCase(db, caller, id, RuleOwnerOrAdmin)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !c.OwnerDeletable() {
		return nil, fmt.Errorf("only pending or draft cases can be withdrawn: %w", ErrForbidden)
	}

	var orphaned []string
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Evidence{}).Where("case_id = ?", c.ID).Pluck("storage_key", &orphaned).Error; err != nil {
			return err
		}
		if err := tx.Where("case_id = ?", c.ID).Delete(&models.Hearing{}).Error; err != nil {
			return err
		}
		if err := tx.Where("case_id = ?", c.ID).Delete(&models.Evidence{}).Error; err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete case: %w", err)
	}

	if len(orphaned) > 0 {
		logger.Log.WithFields(logrus.Fields{"case_id": c.ID, "keys": orphaned}).Warn("Case deleted, evidence files left in storage")
	}
	return orphaned, nil
}

// AdminEmails lists the addresses of verified administrators
func AdminEmails(db *gorm.DB) []string {
	var emails []string
	if err := db.Model(&models.User{}).
		Where("role = ? AND is_verified = ?", models.RoleAdmin, true).
		Pluck("email", &emails).Error; err != nil {
		logger.Log.WithError(err).Warn("Failed to load admin emails")
	}
	return emails
}

// LoadUser fetches a user by id
func LoadUser(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	var u models.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}
