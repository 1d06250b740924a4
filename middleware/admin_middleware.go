package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aryan-guptta-2007/immersaai/config"
	"github.com/aryan-guptta-2007/immersaai/models"
)

// AdminOnly restricts a route to the configured administrator identity.
// Must run after Protected(). The match is an exact email comparison.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok || user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		if config.AppConfig.AdminEmail == "" || user.Email != config.AppConfig.AdminEmail {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		return c.Next()
	}
}
