package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

type EntitlementController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEntitlementController(db *gorm.DB, logger *log.Logger) *EntitlementController {
	return &EntitlementController{
		DB:     db,
		Logger: logger,
	}
}

// GetEntitlement reports the caller's effective plan and, for FREE accounts,
// the generations left today. Pure read; the generate handler applies the
// same rule before calling the content provider.
func (ec *EntitlementController) GetEntitlement(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.IsPro() {
		return c.JSON(fiber.Map{
			"plan":      models.PlanPro,
			"remaining": nil,
		})
	}

	count, err := dailyGenerationCount(ec.DB, user.ID)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to check quota")
	}

	remaining := int64(FreeDailyQuota) - count
	if remaining < 0 {
		remaining = 0
	}

	return c.JSON(fiber.Map{
		"plan":      models.PlanFree,
		"remaining": remaining,
	})
}
