package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// In-memory sqlite is per-connection; a second pooled connection would
	// see an empty schema
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Generation{},
		&models.Payment{},
	))
	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// withUser stands in for the JWT middleware and injects a resolved identity
func withUser(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
			c.Locals("userID", user.ID)
		}
		return c.Next()
	}
}

func createUser(t *testing.T, db *gorm.DB, email, plan string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		IsActive:     true,
		Plan:         plan,
		TokenVersion: 1,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createGeneration(t *testing.T, db *gorm.DB, userID *uint, status string) *models.Generation {
	t.Helper()
	generation := &models.Generation{
		UserID:        userID,
		Prompt:        "a test prompt",
		Theme:         models.ThemeDefault,
		PaymentStatus: status,
	}
	require.NoError(t, db.Create(generation).Error)
	return generation
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
