package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

type AdminController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAdminController(db *gorm.DB, logger *log.Logger) *AdminController {
	return &AdminController{
		DB:     db,
		Logger: logger,
	}
}

type ApprovePaymentRequest struct {
	PaymentID uint   `json:"paymentId" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=APPROVE REJECT"`
}

// ApprovePayment finalizes a pending plan payment. APPROVE flips the payment
// to SUCCESS and upgrades the owning user to PRO in one transaction, so a
// partial apply cannot occur. Both actions are one-shot: a payment that has
// left PENDING rejects further admin actions.
func (ac *AdminController) ApprovePayment(c *fiber.Ctx) error {
	var req ApprovePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid payload")
	}

	var payment models.Payment
	if err := ac.DB.First(&payment, req.PaymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, "Payment not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to load payment")
	}

	if payment.Status != models.PaymentPending {
		return utils.Fail(c, fiber.StatusBadRequest, "Payment has already been resolved")
	}

	if req.Action == ActionApprove {
		err := ac.DB.Transaction(func(tx *gorm.DB) error {
			// Conditional update: if a concurrent admin action resolved
			// the row first, zero rows match and nothing is applied
			res := tx.Model(&models.Payment{}).
				Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
				Update("status", models.PaymentSuccess)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}

			return tx.Model(&models.User{}).
				Where("id = ?", payment.UserID).
				Update("plan", models.PlanPro).Error
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusBadRequest, "Payment has already been resolved")
		}
		if err != nil {
			utils.LogError("payment_approve", err, map[string]interface{}{"payment_id": payment.ID})
			return utils.Fail(c, fiber.StatusInternalServerError, "Failed to process approval")
		}

		utils.LogEvent("payment_approved", map[string]interface{}{
			"payment_id": payment.ID,
			"user_id":    payment.UserID,
		})
		return c.JSON(fiber.Map{"success": true, "message": "User upgraded to Pro!"})
	}

	res := ac.DB.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
		Update("status", models.PaymentRejected)
	if res.Error != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to process rejection")
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Payment has already been resolved")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Payment rejected."})
}

type ApproveGenerationRequest struct {
	GenerationID uint   `json:"generationId" validate:"required"`
	Action       string `json:"action" validate:"required,oneof=APPROVE REJECT"`
}

// ApproveGeneration resolves a generation-scoped UPI payment. The unlock is
// per-generation: no user plan is touched. A claimed reference normally moves
// the row to SUBMITTED first, but direct approval of a PENDING one is also
// accepted; terminal states reject further actions.
func (ac *AdminController) ApproveGeneration(c *fiber.Ctx) error {
	var req ApproveGenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid payload")
	}

	var generation models.Generation
	if err := ac.DB.First(&generation, req.GenerationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, "Generation not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to load generation")
	}

	newStatus := models.GenerationSuccess
	message := "Payment approved."
	if req.Action == ActionReject {
		newStatus = models.GenerationRejected
		message = "Payment rejected."
	}

	res := ac.DB.Model(&models.Generation{}).
		Where("id = ? AND payment_status IN ?", generation.ID,
			[]string{models.GenerationPending, models.GenerationSubmitted}).
		Update("payment_status", newStatus)
	if res.Error != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to process approval")
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Generation payment has already been resolved")
	}

	utils.LogEvent("generation_payment_"+req.Action, map[string]interface{}{
		"generation_id": generation.ID,
	})
	return c.JSON(fiber.Map{"success": true, "message": message})
}

// ListPending returns everything awaiting manual verification, newest first:
// pending plan payments with minimal owner info, and generations with a
// submitted UPI reference.
func (ac *AdminController) ListPending(c *fiber.Ctx) error {
	type pendingPayment struct {
		ID        uint      `json:"id"`
		Amount    int64     `json:"amount"`
		Tier      string    `json:"tier"`
		UpiID     *string   `json:"upi_id,omitempty"`
		OrderID   *string   `json:"order_id,omitempty"`
		CreatedAt time.Time `json:"created_at"`
		UserName  *string   `json:"user_name,omitempty"`
		UserEmail string    `json:"user_email"`
	}

	var payments []pendingPayment
	if err := ac.DB.Model(&models.Payment{}).
		Select("payments.id, payments.amount, payments.tier, payments.upi_id, payments.order_id, payments.created_at, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = payments.user_id").
		Where("payments.status = ?", models.PaymentPending).
		Order("payments.created_at DESC").
		Scan(&payments).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to list pending payments")
	}

	var generations []models.Generation
	if err := ac.DB.Where("payment_status = ?", models.GenerationSubmitted).
		Order("created_at DESC").
		Find(&generations).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to list pending generations")
	}

	return c.JSON(fiber.Map{
		"payments":    payments,
		"generations": generations,
	})
}
