package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aryan-guptta-2007/immersaai/config"
	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

var (
	errNoToken        = errors.New("no token supplied")
	errBadAuthFormat  = errors.New("invalid authorization format")
	errInvalidToken   = errors.New("invalid or expired token")
	errUserNotFound   = errors.New("user not found")
	errInactiveUser   = errors.New("account is not active")
	errStaleTokenVers = errors.New("invalid token version")
)

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c)
		if err != nil {
			status := fiber.StatusUnauthorized
			message := err.Error()
			switch {
			case errors.Is(err, errNoToken):
				message = "Authorization required"
			case errors.Is(err, errInactiveUser):
				status = fiber.StatusForbidden
			}
			return c.Status(status).JSON(fiber.Map{"error": message})
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid token is present
// but lets anonymous or badly credentialed requests through. Used by the
// generation endpoint, which allows anonymous use under the IP throttle.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, err := resolveUser(c); err == nil {
			c.Locals("user", user)
			c.Locals("userID", user.ID)
		}
		return c.Next()
	}
}

// resolveUser extracts and validates the JWT from the Authorization header or
// the access_token cookie and loads the account it names.
func resolveUser(c *fiber.Ctx) (*models.User, error) {
	var token string
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return nil, errBadAuthFormat
		}
		token = tokenParts[1]
	} else {
		token = c.Cookies("access_token")
		if token == "" {
			return nil, errNoToken
		}
	}

	claims, err := utils.ParseJWTToken(token)
	if err != nil {
		return nil, errInvalidToken
	}

	var user models.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		return nil, errUserNotFound
	}

	if !user.IsActive {
		return nil, errInactiveUser
	}

	if claims.TokenVersion != user.TokenVersion {
		return nil, errStaleTokenVers
	}

	return &user, nil
}
