package controller

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

// FreeDailyQuota is the number of generations a non-PRO identity may create
// per calendar day (local midnight reset).
const FreeDailyQuota = 5

type GenerateController struct {
	DB           *gorm.DB
	Orchestrator *utils.Orchestrator
	Logger       *log.Logger
}

func NewGenerateController(db *gorm.DB, orchestrator *utils.Orchestrator, logger *log.Logger) *GenerateController {
	return &GenerateController{
		DB:           db,
		Orchestrator: orchestrator,
		Logger:       logger,
	}
}

type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// Generate handles prompt submission. Anonymous callers are allowed; the
// daily quota applies only to authenticated non-PRO identities. Collaborator
// failures degrade to the local synthesizer and are never surfaced.
func (gc *GenerateController) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Prompt is required")
	}

	user, _ := c.Locals("user").(*models.User)

	// Quota check happens before the collaborator call so over-quota
	// requests never consume provider tokens
	if user != nil && !user.IsPro() {
		count, err := dailyGenerationCount(gc.DB, user.ID)
		if err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, "Failed to check quota")
		}
		if count >= FreeDailyQuota {
			return utils.Fail(c, fiber.StatusForbidden, "Daily free limit reached. Upgrade to Pro.")
		}
	}

	content := gc.Orchestrator.Generate(c.Context(), req.Prompt)

	// Persist best-effort: a store failure is logged, the generated content
	// is still returned to the caller
	generation := models.Generation{
		Prompt:        req.Prompt,
		Theme:         content.Theme,
		PaymentStatus: models.GenerationPending,
	}
	if user != nil {
		generation.UserID = &user.ID
	}
	if blob, err := json.Marshal(content); err == nil {
		generation.Content = string(blob)
	}

	response := fiber.Map{
		"theme":       content.Theme,
		"headline":    content.Headline,
		"subheadline": content.Subheadline,
		"features":    content.Features,
	}

	if err := gc.DB.Create(&generation).Error; err != nil {
		gc.Logger.Printf("Failed to persist generation: %v", err)
		utils.LogError("generation_persist", err, map[string]interface{}{"prompt": req.Prompt})
	} else {
		response["id"] = generation.ID
	}

	return c.JSON(response)
}

// ListMyGenerations returns the caller's generations, newest first
func (gc *GenerateController) ListMyGenerations(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var generations []models.Generation
	if err := gc.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&generations).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to load generations")
	}

	return c.JSON(fiber.Map{"generations": generations})
}

// Explore returns recent paid generations for the public explore feed
func (gc *GenerateController) Explore(c *fiber.Ctx) error {
	var generations []models.Generation
	if err := gc.DB.Where("payment_status = ?", models.GenerationSuccess).
		Order("created_at DESC").
		Limit(20).
		Find(&generations).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to load feed")
	}

	type exploreItem struct {
		ID       uint   `json:"id"`
		Theme    string `json:"theme"`
		Headline string `json:"headline"`
	}

	items := make([]exploreItem, 0, len(generations))
	for _, g := range generations {
		item := exploreItem{ID: g.ID, Theme: g.Theme}
		var content utils.BrandContent
		if err := json.Unmarshal([]byte(g.Content), &content); err == nil {
			item.Headline = content.Headline
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{"generations": items})
}

// dailyGenerationCount counts the identity's generations since local midnight
func dailyGenerationCount(db *gorm.DB, userID uint) (int64, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := db.Model(&models.Generation{}).
		Where("user_id = ? AND created_at >= ?", userID, midnight).
		Count(&count).Error
	return count, err
}
