package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Evidence approval states
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Evidence is a file submitted in support of a case
type Evidence struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"uploadedAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CaseID string `gorm:"type:uuid;not null;index" json:"caseId"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	UploadedBy     string `gorm:"type:uuid;not null;index" json:"uploadedBy"`
	UploadedByUser *User  `gorm:"foreignKey:UploadedBy" json:"uploadedByUser,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// File metadata
	FileURL    string `gorm:"not null" json:"fileUrl"`
	StorageKey string `gorm:"not null" json:"-"` // Not exposed in JSON
	FileName   string `gorm:"not null" json:"fileName"`
	FileType   string `json:"fileType"`
	FileSize   int64  `gorm:"not null" json:"fileSize"`

	// Review
	ApprovalStatus string     `gorm:"not null;default:pending;index" json:"approvalStatus"`
	IsApproved     bool       `gorm:"not null;default:false" json:"isApproved"`
	ApprovedBy     *string    `gorm:"type:uuid" json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	Tags           []string   `gorm:"type:text;serializer:json" json:"tags"`
}

// BeforeCreate hook to generate UUID
func (e *Evidence) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.ApprovalStatus == "" {
		e.ApprovalStatus = ApprovalPending
	}
	return nil
}

// TableName specifies the table name for Evidence model
func (Evidence) TableName() string {
	return "evidence"
}

// IsPendingReview reports whether an admin has not decided on the evidence yet
func (e *Evidence) IsPendingReview() bool {
	return e.ApprovalStatus == ApprovalPending
}
