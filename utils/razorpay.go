package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/aryan-guptta-2007/immersaai/config"
)

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrSecretNotSet     = errors.New("webhook secret not configured")
)

// VerifyWebhookSignature checks the provider's HMAC-SHA256 hex signature over
// the raw body. It must run before the payload is parsed or acted on. A
// missing secret fails closed: the request is never trusted.
func VerifyWebhookSignature(payload []byte, signature, secret string) error {
	if secret == "" {
		return ErrSecretNotSet
	}
	if signature == "" {
		return ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// CreateCheckoutOrder creates a Razorpay order for the given amount in paise
// and returns the provider's order id.
func CreateCheckoutOrder(amount int64, receipt string) (string, error) {
	if config.AppConfig.RazorpayKeyID == "" || config.AppConfig.RazorpayKeySecret == "" {
		return "", errors.New("razorpay API keys are not configured")
	}

	client := razorpay.NewClient(config.AppConfig.RazorpayKeyID, config.AppConfig.RazorpayKeySecret)

	data := map[string]interface{}{
		"amount":   amount,
		"currency": "INR",
		"receipt":  receipt,
	}
	order, err := client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", errors.New("order response missing id")
	}
	return orderID, nil
}
