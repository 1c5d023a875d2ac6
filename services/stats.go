package services

import (
	"fmt"
	"time"

	"court_filing_app_go/models"

	"gorm.io/gorm"
)

// AdminStats is the admin dashboard summary
type AdminStats struct {
	TotalCases       int64            `json:"totalCases"`
	CasesByStatus    map[string]int64 `json:"casesByStatus"`
	CasesByPayment   map[string]int64 `json:"casesByPaymentStatus"`
	TotalUsers       int64            `json:"totalUsers"`
	PendingAdmins    int64            `json:"pendingAdminRequests"`
	PendingEvidence  int64            `json:"pendingEvidence"`
	UpcomingHearings int64            `json:"upcomingHearings"`
	Revenue          float64          `json:"revenue"`
	Currency         string           `json:"currency"`
}

type groupCount struct {
	Bucket string
	Count  int64
}

func countBy(db *gorm.DB, model interface{}, column string) (map[string]int64, error) {
	var rows []groupCount
	if err := db.Model(model).Select(column + " AS bucket, COUNT(*) AS count").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Bucket] = r.Count
	}
	return out, nil
}

// GetAdminStats aggregates counts for the admin dashboard. Admin only.
func GetAdminStats(db *gorm.DB, caller *models.User, now time.Time) (*AdminStats, error) {
	if err := Authorize(caller, "", RuleAdminOnly); err != nil {
		return nil, err
	}
	stats := &AdminStats{Currency: DefaultCurrency}

	var err error
	if stats.CasesByStatus, err = countBy(db, &models.Case{}, "status"); err != nil {
		return nil, fmt.Errorf("failed to count cases by status: %w", err)
	}
	if stats.CasesByPayment, err = countBy(db, &models.Case{}, "payment_status"); err != nil {
		return nil, fmt.Errorf("failed to count cases by payment status: %w", err)
	}
	for _, n := range stats.CasesByStatus {
		stats.TotalCases += n
	}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&models.User{}).Where("role = ? AND is_verified = ?", models.RoleAdmin, false).
		Count(&stats.PendingAdmins).Error; err != nil {
		return nil, fmt.Errorf("failed to count admin requests: %w", err)
	}
	if err := db.Model(&models.Evidence{}).Where("approval_status = ?", models.ApprovalPending).
		Count(&stats.PendingEvidence).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending evidence: %w", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := db.Model(&models.Hearing{}).
		Where("status IN ? AND date >= ?", []string{models.HearingStatusScheduled, models.HearingStatusPostponed}, today).
		Count(&stats.UpcomingHearings).Error; err != nil {
		return nil, fmt.Errorf("failed to count upcoming hearings: %w", err)
	}

	if err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.Revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return stats, nil
}
