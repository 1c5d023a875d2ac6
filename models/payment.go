package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment status constants
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment methods
const (
	PaymentMethodRazorpay = "razorpay"
)

// Payment is one attempt to settle a case's filing fee through the gateway
type Payment struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CaseID string `gorm:"type:uuid;not null;index" json:"caseId"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	UserID string `gorm:"type:uuid;not null;index" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Amount   float64 `gorm:"not null" json:"amount"` // major units
	Currency string  `gorm:"not null;default:INR" json:"currency"`
	Method   string  `gorm:"not null;default:razorpay" json:"method"`
	Status   string  `gorm:"not null;default:pending;index" json:"status"`

	GatewayOrderID string  `gorm:"not null;uniqueIndex" json:"gatewayOrderId"`
	TransactionID  *string `json:"transactionId,omitempty"` // gateway payment id
	ReceiptID      string  `gorm:"not null" json:"receiptId"`
	ReceiptURL     string  `json:"receiptUrl,omitempty"`

	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return nil
}

// TableName specifies the table name for Payment model
func (Payment) TableName() string {
	return "payments"
}

// IsCompleted reports whether the payment settled successfully
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentCompleted
}
