package services

import (
	"context"
	"errors"
	"fmt"

	"court_filing_app_go/config"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// PaymentGateway is the order/signature API of the card processor
type PaymentGateway interface {
	// CreateOrder registers an order for amountMinor (paise for INR) and returns its id
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (string, error)
	// VerifySignature checks the signature the checkout widget returned
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID is the public key the checkout widget is opened with
	KeyID() string
}

// Gateway is the configured payment gateway
var Gateway PaymentGateway

// ErrGatewayNotConfigured is returned when no Razorpay credentials are set
var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

// RazorpayGateway talks to Razorpay through the official SDK
type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

// NewRazorpayGateway builds the gateway from RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET
func NewRazorpayGateway(cfg *config.Config) (*RazorpayGateway, error) {
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		return nil, ErrGatewayNotConfigured
	}
	return &RazorpayGateway{
		client: razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		keyID:  cfg.RazorpayKeyID,
		secret: cfg.RazorpayKeySecret,
	}, nil
}

func (g *RazorpayGateway) KeyID() string { return g.keyID }

// CreateOrder creates a Razorpay order. The SDK call is not context aware.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create failed: %w", err)
	}
	id, _ := order["id"].(string)
	if id == "" {
		return "", fmt.Errorf("razorpay order create returned no id")
	}
	return id, nil
}

// VerifySignature recomputes the HMAC of "<order>|<payment>" with the key secret
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, g.secret)
}
