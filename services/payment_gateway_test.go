package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"court_filing_app_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRazorpayGatewayRequiresKeys(t *testing.T) {
	_, err := NewRazorpayGateway(&config.Config{RazorpayKeyID: "rzp_test_1"})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestRazorpayGatewayVerifySignature(t *testing.T) {
	gw, err := NewRazorpayGateway(&config.Config{RazorpayKeyID: "rzp_test_1", RazorpayKeySecret: "s3cr3t"})
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_1", gw.KeyID())

	mac := hmac.New(sha256.New, []byte("s3cr3t"))
	mac.Write([]byte("order_abc|pay_xyz"))
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, gw.VerifySignature("order_abc", "pay_xyz", signature))
	assert.False(t, gw.VerifySignature("order_abc", "pay_other", signature))
	assert.False(t, gw.VerifySignature("order_abc", "pay_xyz", "tampered"))
}
