package controller

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

func newGenerateApp(db *gorm.DB, user *models.User) *fiber.App {
	// No API key, so generation always runs through the local synthesizer
	gc := NewGenerateController(db, utils.NewOrchestrator("", testLogger()), testLogger())
	app := fiber.New()
	app.Post("/api/generate", withUser(user), gc.Generate)
	app.Get("/api/generations", withUser(user), gc.ListMyGenerations)
	app.Get("/api/explore", gc.Explore)
	return app
}

func TestGenerate_Anonymous(t *testing.T) {
	db := setupTestDB(t)
	app := newGenerateApp(db, nil)

	resp := postJSON(t, app, "/api/generate", fiber.Map{"prompt": "stealth cybersecurity startup"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	assert.Equal(t, "cyber", body["theme"])
	assert.NotEmpty(t, body["headline"])
	features := body["features"].([]interface{})
	require.Len(t, features, 3)
	for _, f := range features {
		feature := f.(map[string]interface{})
		assert.NotEmpty(t, feature["title"])
		assert.NotEmpty(t, feature["description"])
	}

	// The generation is persisted without an owner, awaiting payment
	var generation models.Generation
	require.NoError(t, db.First(&generation, uint(body["id"].(float64))).Error)
	assert.Nil(t, generation.UserID)
	assert.Equal(t, models.GenerationPending, generation.PaymentStatus)
	assert.Equal(t, "cyber", generation.Theme)
}

func TestGenerate_MissingPrompt(t *testing.T) {
	db := setupTestDB(t)
	app := newGenerateApp(db, nil)

	resp := postJSON(t, app, "/api/generate", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "free@example.com", models.PlanFree)
	app := newGenerateApp(db, user)

	for i := 0; i < FreeDailyQuota; i++ {
		createGeneration(t, db, &user.ID, models.GenerationPending)
	}

	resp := postJSON(t, app, "/api/generate", fiber.Map{"prompt": "another idea"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "limit")
}

func TestGenerate_ProIsUnlimited(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "pro@example.com", models.PlanPro)
	app := newGenerateApp(db, user)

	for i := 0; i < 50; i++ {
		createGeneration(t, db, &user.ID, models.GenerationPending)
	}

	resp := postJSON(t, app, "/api/generate", fiber.Map{"prompt": "yet another idea"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerate_OwnedGenerationRecordsUser(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "owner@example.com", models.PlanFree)
	app := newGenerateApp(db, user)

	resp := postJSON(t, app, "/api/generate", fiber.Map{"prompt": "luxury travel agency"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "luxury", body["theme"])

	var generation models.Generation
	require.NoError(t, db.First(&generation, uint(body["id"].(float64))).Error)
	require.NotNil(t, generation.UserID)
	assert.Equal(t, user.ID, *generation.UserID)
}

func TestListMyGenerations(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "owner@example.com", models.PlanFree)
	other := createUser(t, db, "other@example.com", models.PlanFree)
	app := newGenerateApp(db, user)

	createGeneration(t, db, &user.ID, models.GenerationPending)
	createGeneration(t, db, &user.ID, models.GenerationSuccess)
	createGeneration(t, db, &other.ID, models.GenerationPending)

	resp := getJSON(t, app, "/api/generations")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["generations"].([]interface{}), 2)
}

func TestExplore_OnlyPaidGenerations(t *testing.T) {
	db := setupTestDB(t)
	app := newGenerateApp(db, nil)

	paid := createGeneration(t, db, nil, models.GenerationSuccess)
	require.NoError(t, db.Model(paid).
		Update("content", `{"theme":"default","headline":"Ship It Faster"}`).Error)
	createGeneration(t, db, nil, models.GenerationPending)
	createGeneration(t, db, nil, models.GenerationRejected)

	resp := getJSON(t, app, "/api/explore")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	items := body["generations"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Ship It Faster", item["headline"])
}
