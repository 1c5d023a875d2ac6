package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hearing status constants
const (
	HearingStatusScheduled = "scheduled"
	HearingStatusCompleted = "completed"
	HearingStatusPostponed = "postponed"
	HearingStatusCancelled = "cancelled"
)

// HearingDateLayout is the wire format of Hearing.Date
const HearingDateLayout = "2006-01-02"

// Hearing is a court session scheduled for a case
type Hearing struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CaseID string `gorm:"type:uuid;not null;index" json:"caseId"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Date     time.Time `gorm:"not null;index" json:"date"`
	Time     string    `gorm:"size:5" json:"time"` // HH:MM
	Location string    `gorm:"not null" json:"location"`
	Judge    string    `json:"judge,omitempty"`
	Status   string    `gorm:"not null;default:scheduled;index" json:"status"`
	Notes    string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedBy      string     `gorm:"type:uuid" json:"createdBy"`
	ReminderSentAt *time.Time `json:"reminderSentAt,omitempty"`
}

// BeforeCreate hook to generate UUID
func (h *Hearing) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.Status == "" {
		h.Status = HearingStatusScheduled
	}
	return nil
}

// TableName specifies the table name for Hearing model
func (Hearing) TableName() string {
	return "hearings"
}

// DateString returns the hearing day as YYYY-MM-DD
func (h *Hearing) DateString() string {
	return h.Date.Format(HearingDateLayout)
}

// IsValidHearingStatus checks if a hearing status is valid
func IsValidHearingStatus(status string) bool {
	switch status {
	case HearingStatusScheduled, HearingStatusCompleted, HearingStatusPostponed, HearingStatusCancelled:
		return true
	}
	return false
}
