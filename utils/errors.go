package utils

import "github.com/gofiber/fiber/v2"

// Machine-matched error values. Clients string-match CodeExpired to switch
// from a retry flow to a regenerate flow, so it must stay stable.
const (
	CodeExpired = "EXPIRED"
)

// Fail writes the standard error body used across the API.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// FailCode writes an error body carrying a stable machine-readable error
// value plus a human-readable message.
func FailCode(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}
