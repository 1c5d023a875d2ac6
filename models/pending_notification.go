package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingNotification is an email that failed to send and waits for another attempt
type PendingNotification struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	To       []string `gorm:"type:text;serializer:json;not null" json:"to"`
	Subject  string   `gorm:"not null" json:"subject"`
	HTMLBody string   `gorm:"type:text" json:"htmlBody"`
	TextBody string   `gorm:"type:text" json:"textBody"`

	Attempts      int       `gorm:"not null;default:0" json:"attempts"`
	LastError     string    `gorm:"type:text" json:"lastError,omitempty"`
	NextAttemptAt time.Time `gorm:"index" json:"nextAttemptAt"`
}

func (n *PendingNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (PendingNotification) TableName() string {
	return "pending_notifications"
}
