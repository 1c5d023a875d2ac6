package services

import (
	"fmt"
	"strings"
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notification types sent to case owners about hearings
const (
	HearingNoticeScheduled = "scheduled"
	HearingNoticePostponed = "postponed"
	HearingNoticeCompleted = "completed"
	HearingNoticeCancelled = "cancelled"
	HearingNoticeClosed    = "closed"
)

// HearingNotificationType picks the notice for an update.
// A moved date wins unless the hearing is being cancelled.
func HearingNotificationType(dateChanged bool, newStatus string) string {
	if dateChanged && newStatus != models.HearingStatusCancelled {
		return HearingNoticePostponed
	}
	switch newStatus {
	case models.HearingStatusScheduled:
		return HearingNoticeScheduled
	case models.HearingStatusPostponed:
		return HearingNoticePostponed
	case models.HearingStatusCompleted:
		return HearingNoticeCompleted
	case models.HearingStatusCancelled:
		return HearingNoticeCancelled
	default:
		return HearingNoticeClosed
	}
}

// ParseHearingDate reads a YYYY-MM-DD day
func ParseHearingDate(s string) (time.Time, error) {
	d, err := time.Parse(models.HearingDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, Invalid("date must use the YYYY-MM-DD format")
	}
	return d, nil
}

// CreateHearingInput is the scheduling payload
type CreateHearingInput struct {
	CaseID   string `json:"caseId" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time" validate:"omitempty,hhmm"`
	Location string `json:"location" validate:"required,max=300"`
	Judge    string `json:"judge" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=5000"`
}

// CreateHearing schedules a hearing. Admin only; the case must exist.
// The returned case is loaded with its owner for notification.
func CreateHearing(db *gorm.DB, caller *models.User, in CreateHearingInput) (*models.Hearing, *models.Case, error) {
	if err := Authorize(caller, "", RuleAdminOnly); err != nil {
		return nil, nil, err
	}
	in.Location = CleanText(in.Location)
	if err := ValidateStruct(&in); err != nil {
		return nil, nil, err
	}
	date, err := ParseHearingDate(in.Date)
	if err != nil {
		return nil, nil, err
	}

	var c models.Case
	if err := db.Preload("FiledByUser").First(&c, "id = ?", in.CaseID).Error; err != nil {
		return nil, nil, notFoundOr(err, "case")
	}

	h := &models.Hearing{
		CaseID:    c.ID,
		Date:      date,
		Time:      in.Time,
		Location:  in.Location,
		Judge:     CleanText(in.Judge),
		Status:    models.HearingStatusScheduled,
		Notes:     CleanText(in.Notes),
		CreatedBy: caller.ID,
	}
	if err := db.Create(h).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create hearing: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"hearing_id": h.ID, "case_id": c.ID, "date": h.DateString()}).Info("Hearing scheduled")
	return h, &c, nil
}

// HearingFilter holds the list query parameters
type HearingFilter struct {
	Status    string
	CaseID    string
	DateFrom  string
	DateTo    string
	Search    string
	Page      Page
	SortBy    string
	SortOrder string
}

var hearingSortColumns = map[string]string{
	"date":      "date",
	"time":      "time",
	"status":    "status",
	"location":  "location",
	"createdAt": "created_at",
}

// ListHearings returns one page of hearings visible to the caller
func ListHearings(db *gorm.DB, caller *models.User, f HearingFilter) ([]models.Hearing, Pagination, error) {
	query := db.Model(&models.Hearing{})

	if !caller.IsAdmin() {
		query = query.Where("case_id IN (?)", db.Model(&models.Case{}).Select("id").Where("filed_by = ?", caller.ID))
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CaseID != "" {
		query = query.Where("case_id = ?", f.CaseID)
	}
	if f.DateFrom != "" {
		from, err := ParseHearingDate(f.DateFrom)
		if err != nil {
			return nil, Pagination{}, err
		}
		query = query.Where("date >= ?", from)
	}
	if f.DateTo != "" {
		to, err := ParseHearingDate(f.DateTo)
		if err != nil {
			return nil, Pagination{}, err
		}
		// inclusive upper bound
		query = query.Where("date < ?", to.AddDate(0, 0, 1))
	}
	if strings.TrimSpace(f.Search) != "" {
		pattern := likePattern(f.Search)
		query = query.Where("LOWER(location) LIKE ? OR LOWER(judge) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count hearings: %w", err)
	}

	sort := ParseSort(f.SortBy, f.SortOrder, hearingSortColumns, Sort{Column: "date", Desc: false})
	var hearings []models.Hearing
	if err := query.
		Preload("Case").
		Order(sort.Clause()).
		Limit(f.Page.Limit).
		Offset(f.Page.Offset()).
		Find(&hearings).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to fetch hearings: %w", err)
	}
	return hearings, f.Page.Meta(total), nil
}

// GetHearing loads a hearing for an admin or the owner of its case
func GetHearing(db *gorm.DB, caller *models.User, id string) (*models.Hearing, error) {
	var h models.Hearing
	if err := db.Preload("Case").First(&h, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "hearing")
	}
	ownerID := ""
	if h.Case != nil {
		ownerID = h.Case.FiledBy
	}
	if err := Authorize(caller, ownerID, RuleOwnerOrAdmin); err != nil {
		return nil, err
	}
	return &h, nil
}

// HearingUpdate is a partial update. Nil fields are left untouched.
type HearingUpdate struct {
	Date     *string `json:"date"`
	Time     *string `json:"time"`
	Location *string `json:"location"`
	Judge    *string `json:"judge"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

// HearingUpdateResult carries the saved hearing and the notice to send, if any
type HearingUpdateResult struct {
	Hearing          *models.Hearing
	DateChanged      bool
	StatusChanged    bool
	NotificationType string
}

// UpdateHearing merges the update into the stored hearing. Admin only.
func UpdateHearing(db *gorm.DB, caller *models.User, id string, in HearingUpdate) (*HearingUpdateResult, error) {
	if err := Authorize(caller, "", RuleAdminOnly); err != nil {
		return nil, err
	}
	var h models.Hearing
	if err := db.Preload("Case.FiledByUser").First(&h, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "hearing")
	}
	before := h

	if in.Date != nil {
		date, err := ParseHearingDate(*in.Date)
		if err != nil {
			return nil, err
		}
		h.Date = date
	}
	if in.Time != nil {
		if *in.Time != "" && !isClockTime(*in.Time) {
			return nil, Invalid("time must use the HH:MM format")
		}
		h.Time = *in.Time
	}
	if in.Location != nil {
		location := CleanText(*in.Location)
		if location == "" {
			return nil, Invalid("location cannot be empty")
		}
		h.Location = location
	}
	if in.Judge != nil {
		h.Judge = CleanText(*in.Judge)
	}
	if in.Notes != nil {
		h.Notes = CleanText(*in.Notes)
	}
	if in.Status != nil {
		if err := models.HearingTransitions.Check(h.Status, *in.Status); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		h.Status = *in.Status
	}

	if err := db.Omit("Case").Save(&h).Error; err != nil {
		return nil, fmt.Errorf("failed to update hearing: %w", err)
	}

	result := &HearingUpdateResult{
		Hearing:       &h,
		DateChanged:   !before.Date.Equal(h.Date),
		StatusChanged: before.Status != h.Status,
	}
	if result.DateChanged || result.StatusChanged {
		result.NotificationType = HearingNotificationType(result.DateChanged, h.Status)
	}
	return result, nil
}

// DeleteHearing hard-deletes a hearing. Admin only.
func DeleteHearing(db *gorm.DB, caller *models.User, id string) error {
	if err := Authorize(caller, "", RuleAdminOnly); err != nil {
		return err
	}
	res := db.Delete(&models.Hearing{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete hearing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("hearing %w", ErrNotFound)
	}
	return nil
}

// DueReminders returns scheduled hearings on the day after now that have not been reminded
func DueReminders(db *gorm.DB, now time.Time) ([]models.Hearing, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	var hearings []models.Hearing
	err := db.Preload("Case.FiledByUser").
		Where("status = ? AND reminder_sent_at IS NULL AND date >= ? AND date < ?",
			models.HearingStatusScheduled, day, day.AddDate(0, 0, 1)).
		Find(&hearings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load due reminders: %w", err)
	}
	return hearings, nil
}

// MarkReminded stamps reminder_sent_at on a hearing
func MarkReminded(db *gorm.DB, h *models.Hearing, at time.Time) error {
	return db.Model(&models.Hearing{}).Where("id = ?", h.ID).Update("reminder_sent_at", at).Error
}
