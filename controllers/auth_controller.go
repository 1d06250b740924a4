package controller

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/config"
	"github.com/aryan-guptta-2007/immersaai/models"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

var googleOAuthConfig *oauth2.Config

// InitGoogleOAuth builds the OAuth client config. Call after config.LoadConfig.
func InitGoogleOAuth() {
	googleOAuthConfig = &oauth2.Config{
		ClientID:     config.AppConfig.Google.ClientID,
		ClientSecret: config.AppConfig.Google.ClientSecret,
		RedirectURL:  config.AppConfig.Google.RedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func GoogleOAuth(c *fiber.Ctx) error {
	// Generate OAuth state token with CSRF protection
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate state token")
	}
	state := hex.EncodeToString(stateBytes)

	// Store state in HTTP-only secure cookie with short expiry
	cookie := new(fiber.Cookie)
	cookie.Name = "oauth_state"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.HTTPOnly = true
	cookie.Secure = true
	cookie.SameSite = "Lax"
	c.Cookie(cookie)

	url := googleOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

func GoogleOAuthCallback(c *fiber.Ctx) error {
	// Verify state token from cookie
	state := c.Query("state")
	cookieState := c.Cookies("oauth_state")

	if state == "" || cookieState == "" || state != cookieState {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid state parameter")
	}

	c.ClearCookie("oauth_state")

	code := c.Query("code")
	if code == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "Authorization code not provided")
	}

	// Exchange code for token
	token, err := googleOAuthConfig.Exchange(context.Background(), code)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to exchange token: "+err.Error())
	}

	// Get user info
	client := googleOAuthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to get user info: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return utils.Fail(c, fiber.StatusInternalServerError, "Google API error: "+string(body))
	}

	var googleUser struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Picture  string `json:"picture"`
		Verified bool   `json:"verified_email"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to parse user info: "+err.Error())
	}

	if googleUser.Email == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "Google account email is required")
	}
	if err := checkmail.ValidateFormat(googleUser.Email); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Google account email is malformed")
	}

	// Find or create user
	var user models.User
	err = config.DB.Where("email = ?", googleUser.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				Email:          googleUser.Email,
				Name:           &googleUser.Name,
				GoogleID:       &googleUser.ID,
				GoogleImageURL: &googleUser.Picture,
				EmailVerified:  googleUser.Verified,
				IsActive:       true,
				Plan:           models.PlanFree,
				TokenVersion:   1,
			}

			if err := config.DB.Create(&user).Error; err != nil {
				return utils.Fail(c, fiber.StatusInternalServerError, "Failed to create user: "+err.Error())
			}
		} else {
			return utils.Fail(c, fiber.StatusInternalServerError, "Database error: "+err.Error())
		}
	} else {
		// Update Google info if needed
		updateNeeded := false
		if user.GoogleID == nil || *user.GoogleID != googleUser.ID {
			user.GoogleID = &googleUser.ID
			updateNeeded = true
		}
		if user.GoogleImageURL == nil || *user.GoogleImageURL != googleUser.Picture {
			user.GoogleImageURL = &googleUser.Picture
			updateNeeded = true
		}
		if !user.EmailVerified && googleUser.Verified {
			user.EmailVerified = true
			updateNeeded = true
		}

		// Invalidate all previous sessions if the Google identity changed
		if updateNeeded {
			user.TokenVersion = user.TokenVersion + 1
			if err := config.DB.Save(&user).Error; err != nil {
				return utils.Fail(c, fiber.StatusInternalServerError, "Failed to update user: "+err.Error())
			}

			if err := config.DB.Model(&models.RefreshToken{}).
				Where("user_id = ? AND is_revoked = ?", user.ID, false).
				Update("is_revoked", true).Error; err != nil {
				utils.LogError("revoke_sessions", err, map[string]interface{}{"user_id": user.ID})
			}
		}
	}

	// Generate tokens
	accessToken, refreshToken, _, err := utils.GenerateJWTToken(&user, c.Get("User-Agent"), c.IP())
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate tokens: "+err.Error())
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.Redirect(config.AppConfig.FrontendURL+"/dashboard", fiber.StatusTemporaryRedirect)
}

func RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		// Fall back to cookie if no body was sent
		req.RefreshToken = c.Cookies("refresh_token")
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies("refresh_token")
	}
	if req.RefreshToken == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "refresh_token is required")
	}

	accessToken, refreshToken, err := utils.RefreshTokens(req.RefreshToken, c.Get("User-Agent"), c.IP())
	if err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func Logout(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := config.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", user.ID, false).
		Update("is_revoked", true).Error; err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to revoke sessions")
	}

	c.ClearCookie("access_token")
	c.ClearCookie("refresh_token")

	return c.JSON(fiber.Map{"success": true})
}

func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(user)
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	accessCookie := new(fiber.Cookie)
	accessCookie.Name = "access_token"
	accessCookie.Value = accessToken
	accessCookie.Expires = time.Now().Add(15 * time.Minute)
	accessCookie.HTTPOnly = true
	accessCookie.Secure = true
	accessCookie.SameSite = "Lax"
	c.Cookie(accessCookie)

	refreshCookie := new(fiber.Cookie)
	refreshCookie.Name = "refresh_token"
	refreshCookie.Value = refreshToken
	refreshCookie.Expires = time.Now().Add(7 * 24 * time.Hour)
	refreshCookie.HTTPOnly = true
	refreshCookie.Secure = true
	refreshCookie.SameSite = "Lax"
	c.Cookie(refreshCookie)
}
