package controller

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/models"
)

func newEntitlementApp(db *gorm.DB, user *models.User) *fiber.App {
	ec := NewEntitlementController(db, testLogger())
	app := fiber.New()
	app.Get("/api/entitlement", withUser(user), ec.GetEntitlement)
	return app
}

func TestGetEntitlement_Free(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "free@example.com", models.PlanFree)
	app := newEntitlementApp(db, user)

	createGeneration(t, db, &user.ID, models.GenerationPending)
	createGeneration(t, db, &user.ID, models.GenerationPending)

	resp := getJSON(t, app, "/api/entitlement")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.PlanFree, body["plan"])
	assert.Equal(t, float64(3), body["remaining"])
}

func TestGetEntitlement_FreeExhausted(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "free@example.com", models.PlanFree)
	app := newEntitlementApp(db, user)

	for i := 0; i < FreeDailyQuota+2; i++ {
		createGeneration(t, db, &user.ID, models.GenerationPending)
	}

	resp := getJSON(t, app, "/api/entitlement")
	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["remaining"])
}

func TestGetEntitlement_Pro(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "pro@example.com", models.PlanPro)
	app := newEntitlementApp(db, user)

	resp := getJSON(t, app, "/api/entitlement")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.PlanPro, body["plan"])
	assert.Nil(t, body["remaining"])
}
