package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusDraft      = "draft"
	CaseStatusPending    = "pending"
	CaseStatusApproved   = "approved"
	CaseStatusRejected   = "rejected"
	CaseStatusInProgress = "inProgress"
	CaseStatusCompleted  = "completed"
)

// Case payment status constants
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Case types with a dedicated fee tier. Any other value is accepted and billed at the standard fee.
const (
	CaseTypeCivil      = "civil"
	CaseTypeCriminal   = "criminal"
	CaseTypeFamily     = "family"
	CaseTypeCommercial = "commercial"
	CaseTypeProperty   = "property"
	CaseTypeLabor      = "labor"
	CaseTypeCybercrime = "cybercrime"
	CaseTypeOther      = "other"
)

// Case represents a case filed with the court
type Case struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CaseNumber  string   `gorm:"not null;uniqueIndex" json:"caseNumber"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Plaintiffs  []string `gorm:"type:text;serializer:json" json:"plaintiffs"`
	Defendants  []string `gorm:"type:text;serializer:json" json:"defendants"`
	CaseType    string   `gorm:"not null;default:civil;index" json:"caseType"`

	// Lifecycle
	Status        string  `gorm:"not null;default:pending;index" json:"status"`
	PaymentStatus string  `gorm:"not null;default:unpaid;index" json:"paymentStatus"`
	FilingFee     float64 `gorm:"not null" json:"filingFee"`

	ReliefSought string   `gorm:"type:text" json:"reliefSought,omitempty"`
	CaseValue    *float64 `json:"caseValue,omitempty"`
	Court        string   `json:"court,omitempty"`

	// Owner
	FiledBy     string `gorm:"type:uuid;not null;index" json:"filedBy"`
	FiledByUser *User  `gorm:"foreignKey:FiledBy" json:"filedByUser,omitempty"`

	// Aggregates, loaded on the detail view
	Hearings []Hearing  `gorm:"foreignKey:CaseID" json:"hearings,omitempty"`
	Evidence []Evidence `gorm:"foreignKey:CaseID" json:"evidence,omitempty"`
	Payments []Payment  `gorm:"foreignKey:CaseID" json:"payments,omitempty"`
}

// BeforeCreate hook to generate UUID and default lifecycle fields
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = CaseStatusPending
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = PaymentStatusUnpaid
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsPaid reports whether the filing fee has been settled
func (c *Case) IsPaid() bool {
	return c.PaymentStatus == PaymentStatusPaid
}

// OwnerDeletable reports whether the filer may still withdraw the case
func (c *Case) OwnerDeletable() bool {
	return c.Status == CaseStatusPending || c.Status == CaseStatusDraft
}

// IsValidCaseStatus checks if a status is valid
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusDraft, CaseStatusPending, CaseStatusApproved,
		CaseStatusRejected, CaseStatusInProgress, CaseStatusCompleted:
		return true
	}
	return false
}

// IsValidPaymentStatus checks if a case payment status is valid
func IsValidPaymentStatus(status string) bool {
	return status == PaymentStatusUnpaid || status == PaymentStatusPending || status == PaymentStatusPaid
}
