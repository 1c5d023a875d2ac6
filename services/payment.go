package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxReceiptLength is the gateway's limit on receipt identifiers
const MaxReceiptLength = 40

// ToMinorUnits converts a fee in major units to the gateway's smallest unit
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// NewReceiptID returns a unique receipt identifier within the gateway limit
func NewReceiptID() string {
	// rcpt_ + 27 char ksuid
	return "rcpt_" + ksuid.New().String()
}

// InvoicePath is the route that serves the PDF invoice of a payment
func InvoicePath(paymentID string) string {
	return "/api/payments/" + paymentID + "/invoice"
}

// Order is what the checkout widget needs to collect a payment
type Order struct {
	Payment     *models.Payment `json:"payment"`
	OrderID     string          `json:"orderId"`
	Amount      int64           `json:"amount"` // minor units
	Currency    string          `json:"currency"`
	KeyID       string          `json:"keyId"`
	CaseNumber  string          `json:"caseNumber"`
	Description string          `json:"description"`
}

// CreateOrder opens a gateway order for the case's filing fee and records a pending payment.
// The case moves from unpaid to pending.
func CreateOrder(ctx context.Context, db *gorm.DB, gateway PaymentGateway, caller *models.User, caseID string) (*Order, error) {
	if gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	if strings.TrimSpace(caseID) == "" {
		return nil, Invalid("caseId is required")
	}
	c, err := LoadCase(db, caller, caseID, RuleOwnerOrAdmin)
	if err != nil {
		return nil, err
	}
	if c.IsPaid() {
		return nil, fmt.Errorf("case %s is already paid: %w", c.CaseNumber, ErrConflict)
	}
	if c.FilingFee <= 0 {
		return nil, Invalid("case has no filing fee to pay")
	}

	receipt := NewReceiptID()
	amount := ToMinorUnits(c.FilingFee)
	orderID, err := gateway.CreateOrder(ctx, amount, DefaultCurrency, receipt, map[string]string{
		"caseId":     c.ID,
		"caseNumber": c.CaseNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	payment := &models.Payment{
		CaseID:         c.ID,
		UserID:         caller.ID,
		Amount:         c.FilingFee,
		Currency:       DefaultCurrency,
		Method:         models.PaymentMethodRazorpay,
		Status:         models.PaymentPending,
		GatewayOrderID: orderID,
		ReceiptID:      receipt,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Case{}).
			Where("id = ? AND payment_status = ?", c.ID, models.PaymentStatusUnpaid).
			Update("payment_status", models.PaymentStatusPending).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"case_id":    c.ID,
		"order_id":   orderID,
		"amount":     amount,
	}).Info("Payment order created")

	return &Order{
		Payment:     payment,
		OrderID:     orderID,
		Amount:      amount,
		Currency:    DefaultCurrency,
		KeyID:       gateway.KeyID(),
		CaseNumber:  c.CaseNumber,
		Description: "Filing fee for " + c.CaseNumber,
	}, nil
}

// VerifyInput is the checkout widget's success callback payload
type VerifyInput struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// ErrSignatureMismatch marks a payment whose gateway signature did not verify
var ErrSignatureMismatch = &ValidationError{Message: "payment signature verification failed"}

// VerifyPayment checks the gateway signature. On a match the payment completes and the case
// is marked paid in one transaction; on a mismatch the payment fails and the case is untouched.
func VerifyPayment(db *gorm.DB, gateway PaymentGateway, caller *models.User, in VerifyInput) (*models.Payment, error) {
	if gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := db.First(&payment, "gateway_order_id = ?", in.OrderID).Error; err != nil {
		return nil, notFoundOr(err, "payment")
	}
	if err := Authorize(caller, payment.UserID, RuleOwnerOrAdmin); err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, fmt.Errorf("payment is already %s: %w", payment.Status, ErrConflict)
	}

	fields := logrus.Fields{"payment_id": payment.ID, "order_id": in.OrderID, "case_id": payment.CaseID}

	if !gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		reason := "signature verification failed"
		if err := db.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":         models.PaymentFailed,
				"failure_reason": reason,
				"transaction_id": in.PaymentID,
			}).Error; err != nil {
			logger.Log.WithFields(fields).WithError(err).Error("Failed to mark payment as failed")
		}
		logger.Security("PAYMENT_SIGNATURE_MISMATCH", caller.ID, fmt.Sprintf("order=%s payment=%s", in.OrderID, in.PaymentID))
		return nil, ErrSignatureMismatch
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, "id = ?", payment.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.PaymentPending {
			return fmt.Errorf("payment is already %s: %w", locked.Status, ErrConflict)
		}

		var c models.Case
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", locked.CaseID).Error; err != nil {
			return notFoundOr(err, "case")
		}

		now := time.Now()
		transactionID := in.PaymentID
		locked.Status = models.PaymentCompleted
		locked.TransactionID = &transactionID
		locked.PaymentDate = &now
		locked.ReceiptURL = InvoicePath(locked.ID)
		locked.FailureReason = ""
		if err := tx.Save(&locked).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Case{}).Where("id = ?", c.ID).
			Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
			return err
		}
		payment = locked
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to complete payment: %w", err)
	}

	logger.Log.WithFields(fields).Info("Payment completed")
	return &payment, nil
}

// ListPayments returns the caller's payments, newest first (admins: all)
func ListPayments(db *gorm.DB, caller *models.User, caseID string, page Page) ([]models.Payment, Pagination, error) {
	query := db.Model(&models.Payment{})
	if !caller.IsAdmin() {
		query = query.Where("user_id = ?", caller.ID)
	}
	if caseID != "" {
		query = query.Where("case_id = ?", caseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count payments: %w", err)
	}
	var payments []models.Payment
	if err := query.Preload("Case").
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&payments).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, page.Meta(total), nil
}

// GetPayment loads a payment with its case and payer for the payer or an admin
func GetPayment(db *gorm.DB, caller *models.User, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Preload("Case").Preload("User").First(&payment, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "payment")
	}
	if err := Authorize(caller, payment.UserID, RuleOwnerOrAdmin); err != nil {
		return nil, err
	}
	return &payment, nil
}
