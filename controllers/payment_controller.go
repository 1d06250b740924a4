package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

type PaymentController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewPaymentController(db *gorm.DB, logger *log.Logger) *PaymentController {
	return &PaymentController{
		DB:     db,
		Logger: logger,
	}
}

type SubmitGenerationPaymentRequest struct {
	GenerationID uint   `json:"generationId" validate:"required"`
	UpiTxnID     string `json:"upiTxnId" validate:"required,min=10"`
	Tier         string `json:"tier"`
}

// SubmitGenerationPayment records a claimed UPI reference against a
// generation and queues it for manual verification. It never grants access
// by itself.
func (pc *PaymentController) SubmitGenerationPayment(c *fiber.Ctx) error {
	var req SubmitGenerationPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid UPI Transaction ID. Must be at least 10 characters.")
	}

	var generation models.Generation
	if err := pc.DB.First(&generation, req.GenerationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, "Generation not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to load generation")
	}

	// Fraud protection: cannot resubmit once SUBMITTED or resolved
	if generation.PaymentStatus != models.GenerationPending {
		return utils.Fail(c, fiber.StatusBadRequest, "This generation has already been submitted for payment or is already approved.")
	}

	// Expiry protection: the 24h window is inclusive at the boundary, and
	// the EXPIRED value tells the client to regenerate rather than retry
	if generation.Expired(time.Now()) {
		return utils.FailCode(c, fiber.StatusBadRequest, utils.CodeExpired,
			"This generation link has expired (24h limit). Please regenerate.")
	}

	if taken, err := pc.referenceInUse(req.UpiTxnID); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to verify reference")
	} else if taken {
		return utils.Fail(c, fiber.StatusBadRequest, "This UPI reference number has already been submitted.")
	}

	// Conditional update so two racing submissions cannot both pass the
	// status check
	res := pc.DB.Model(&models.Generation{}).
		Where("id = ? AND payment_status = ?", generation.ID, models.GenerationPending).
		Updates(map[string]interface{}{
			"payment_status": models.GenerationSubmitted,
			"upi_txn_id":     req.UpiTxnID,
		})
	if res.Error != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to submit payment")
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "This generation has already been submitted for payment or is already approved.")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "UPI transaction submitted for review",
	})
}

type SubmitUpgradePaymentRequest struct {
	UpiTxnID      string `json:"upiTxnId" validate:"required,min=10"`
	PlanRequested string `json:"planRequested" validate:"required"`
}

// SubmitUpgradePayment records a claimed UPI reference for an account-wide
// PRO upgrade. The price is resolved server-side; the client never supplies
// an amount.
func (pc *PaymentController) SubmitUpgradePayment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req SubmitUpgradePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error())
	}

	if user.IsPro() {
		return utils.Fail(c, fiber.StatusBadRequest, "You are already a PRO user.")
	}

	if taken, err := pc.referenceInUse(req.UpiTxnID); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to verify reference")
	} else if taken {
		return utils.Fail(c, fiber.StatusBadRequest, "This UPI reference number has already been submitted.")
	}

	amount, ok := models.UpgradePricing[req.PlanRequested]
	if !ok {
		amount = models.UpgradePricing[models.PlanFree]
	}

	payment := models.Payment{
		UserID: user.ID,
		Amount: amount,
		Tier:   models.PlanPro, // every tier selection resolves to a PRO upgrade
		UpiID:  &req.UpiTxnID,
		Status: models.PaymentPending,
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to submit payment")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment submitted. Access will be unlocked upon admin verification.",
		"payment": fiber.Map{"id": payment.ID, "status": payment.Status},
	})
}

type CheckoutOrderRequest struct {
	Tier string `json:"tier" validate:"required"`
}

// CreateCheckoutOrder creates a hosted-checkout order with the payment
// provider and persists the pending payment carrying the provider's order id
// so the webhook can match it later.
func (pc *PaymentController) CreateCheckoutOrder(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CheckoutOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	amount, ok := models.TierPricing[req.Tier]
	if !ok {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid tier selected")
	}

	orderID, err := utils.CreateCheckoutOrder(amount, "receipt_"+uuid.NewString())
	if err != nil {
		pc.Logger.Printf("Checkout order creation failed: %v", err)
		utils.LogError("checkout_order", err, map[string]interface{}{
			"user_id": user.ID,
			"tier":    req.Tier,
		})
		return utils.Fail(c, fiber.StatusInternalServerError, "Error creating order")
	}

	payment := models.Payment{
		UserID:  user.ID,
		Amount:  amount,
		Tier:    req.Tier,
		OrderID: &orderID,
		Status:  models.PaymentPending,
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to record order")
	}

	return c.JSON(fiber.Map{
		"id":       orderID,
		"currency": "INR",
		"amount":   amount,
	})
}

// referenceInUse enforces global uniqueness of a claimed UPI reference
// across both payment flows.
func (pc *PaymentController) referenceInUse(upiTxnID string) (bool, error) {
	var count int64
	if err := pc.DB.Model(&models.Payment{}).
		Where("upi_id = ?", upiTxnID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	if err := pc.DB.Model(&models.Generation{}).
		Where("upi_txn_id = ?", upiTxnID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
