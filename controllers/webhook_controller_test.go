package controller

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/config"
	"github.com/aryan-guptta-2007/immersaai/models"
)

const webhookTestSecret = "test-webhook-secret"

func newWebhookApp(db *gorm.DB) *fiber.App {
	wc := NewWebhookController(db, testLogger())
	app := fiber.New()
	app.Post("/api/payments/webhook", wc.HandlePaymentWebhook)
	return app
}

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func capturedEvent(orderID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":%q}}}}`,
		orderID))
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("x-razorpay-signature", signature)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func createCheckoutPayment(t *testing.T, db *gorm.DB, user *models.User, orderID string) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		UserID:  user.ID,
		Amount:  99900,
		Tier:    models.TierCreator,
		OrderID: &orderID,
		Status:  models.PaymentPending,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestWebhook_CapturedPaymentUpgradesUser(t *testing.T) {
	config.AppConfig.RazorpayWebhookSecret = webhookTestSecret
	db := setupTestDB(t)
	app := newWebhookApp(db)
	user := createUser(t, db, "buyer@example.com", models.PlanFree)
	payment := createCheckoutPayment(t, db, user, "order_test_1")

	payload := capturedEvent("order_test_1")
	resp := postWebhook(t, app, payload, signPayload(payload, webhookTestSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloadedPayment models.Payment
	require.NoError(t, db.First(&reloadedPayment, payment.ID).Error)
	assert.Equal(t, models.PaymentSuccess, reloadedPayment.Status)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.Equal(t, models.PlanPro, reloadedUser.Plan)
}

func TestWebhook_ReplayIsNoOp(t *testing.T) {
	config.AppConfig.RazorpayWebhookSecret = webhookTestSecret
	db := setupTestDB(t)
	app := newWebhookApp(db)
	user := createUser(t, db, "buyer@example.com", models.PlanFree)
	payment := createCheckoutPayment(t, db, user, "order_test_1")

	payload := capturedEvent("order_test_1")
	signature := signPayload(payload, webhookTestSecret)

	for i := 0; i < 2; i++ {
		resp := postWebhook(t, app, payload, signature)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var reloadedPayment models.Payment
	require.NoError(t, db.First(&reloadedPayment, payment.ID).Error)
	assert.Equal(t, models.PaymentSuccess, reloadedPayment.Status)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.Equal(t, models.PlanPro, reloadedUser.Plan)
}

func TestWebhook_TamperedBodyDoesNotMutate(t *testing.T) {
	config.AppConfig.RazorpayWebhookSecret = webhookTestSecret
	db := setupTestDB(t)
	app := newWebhookApp(db)
	user := createUser(t, db, "buyer@example.com", models.PlanFree)
	payment := createCheckoutPayment(t, db, user, "order_test_1")

	payload := capturedEvent("order_test_1")
	signature := signPayload(payload, webhookTestSecret)
	tampered := capturedEvent("order_test_other")

	resp := postWebhook(t, app, tampered, signature)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var reloadedPayment models.Payment
	require.NoError(t, db.First(&reloadedPayment, payment.ID).Error)
	assert.Equal(t, models.PaymentPending, reloadedPayment.Status)
}

func TestWebhook_MissingSignature(t *testing.T) {
	config.AppConfig.RazorpayWebhookSecret = webhookTestSecret
	db := setupTestDB(t)
	app := newWebhookApp(db)

	resp := postWebhook(t, app, capturedEvent("order_test_1"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_MissingSecretFailsClosed(t *testing.T) {
	config.AppConfig.RazorpayWebhookSecret = ""
	db := setupTestDB(t)
	app := newWebhookApp(db)

	payload := capturedEvent("order_test_1")
	// Even a correctly signed request is refused when the secret is absent
	resp := postWebhook(t, app, payload, signPayload(payload, webhookTestSecret))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebhook_IrrelevantEventIsAcknowledged(t *testing.T) {
	config.AppConfig.RazorpayWebhookSecret = webhookTestSecret
	db := setupTestDB(t)
	app := newWebhookApp(db)
	user := createUser(t, db, "buyer@example.com", models.PlanFree)
	payment := createCheckoutPayment(t, db, user, "order_test_1")

	payload := []byte(`{"event":"payment.authorized","payload":{"payment":{"entity":{"order_id":"order_test_1"}}}}`)
	resp := postWebhook(t, app, payload, signPayload(payload, webhookTestSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloadedPayment models.Payment
	require.NoError(t, db.First(&reloadedPayment, payment.ID).Error)
	assert.Equal(t, models.PaymentPending, reloadedPayment.Status)
}

func TestWebhook_UnknownOrderIsAcknowledged(t *testing.T) {
	config.AppConfig.RazorpayWebhookSecret = webhookTestSecret
	db := setupTestDB(t)
	app := newWebhookApp(db)

	payload := capturedEvent("order_placed_elsewhere")
	resp := postWebhook(t, app, payload, signPayload(payload, webhookTestSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
}
