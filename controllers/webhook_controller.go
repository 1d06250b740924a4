package controller

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/config"
	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

type WebhookController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewWebhookController(db *gorm.DB, logger *log.Logger) *WebhookController {
	return &WebhookController{
		DB:     db,
		Logger: logger,
	}
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandlePaymentWebhook processes asynchronous payment notifications from the
// checkout provider. The signature is verified over the raw body before any
// parsing or state change. Store failures return 5xx so the provider
// redelivers; replays of an already finalized payment are no-ops.
func (wc *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("x-razorpay-signature")

	err := utils.VerifyWebhookSignature(body, signature, config.AppConfig.RazorpayWebhookSecret)
	switch {
	case errors.Is(err, utils.ErrSecretNotSet):
		// Fail closed: an unverifiable request is never trusted
		wc.Logger.Println("CRITICAL: RAZORPAY_WEBHOOK_SECRET is not set")
		return utils.Fail(c, fiber.StatusInternalServerError, "Webhook secret not configured")
	case errors.Is(err, utils.ErrMissingSignature):
		return utils.Fail(c, fiber.StatusBadRequest, "Missing signature")
	case err != nil:
		utils.LogEvent("webhook_signature_mismatch", map[string]interface{}{"ip": c.IP()})
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid payload")
	}

	// The provider sends many event types; anything but a capture is
	// acknowledged without action
	if event.Event != "payment.captured" && event.Event != "order.paid" {
		return c.JSON(fiber.Map{"status": "ok"})
	}

	orderID := event.Payload.Payment.Entity.OrderID

	var payment models.Payment
	if err := wc.DB.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orders placed outside this system (e.g. dashboard test
			// events) must not trigger endless redelivery
			wc.Logger.Printf("Payment record for order %s not found", orderID)
			return c.JSON(fiber.Map{"status": "ok"})
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to load payment")
	}

	err = wc.DB.Transaction(func(tx *gorm.DB) error {
		// The status guard makes redelivery a no-op: only the first
		// capture flips the row and upgrades the plan
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status <> ?", payment.ID, models.PaymentSuccess).
			Update("status", models.PaymentSuccess)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return tx.Model(&models.User{}).
			Where("id = ?", payment.UserID).
			Update("plan", models.PlanPro).Error
	})
	if err != nil {
		utils.LogError("webhook_finalize", err, map[string]interface{}{
			"order_id":   orderID,
			"payment_id": payment.ID,
		})
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to finalize payment")
	}

	wc.Logger.Printf("Verified payment for order %s via webhook", orderID)
	return c.JSON(fiber.Map{"status": "ok"})
}
