package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aryan-guptta-2007/immersaai/config"
	"github.com/aryan-guptta-2007/immersaai/models"
)

type Claims struct {
	UserID       uint   `json:"user_id"`
	SessionID    string `json:"session_id"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// GenerateJWTToken issues an access/refresh pair for the user and records the
// session so refresh tokens can be revoked later.
func GenerateJWTToken(user *models.User, userAgent, ip string) (string, string, string, error) {
	sessionID := uuid.NewString()

	accessClaims := &Claims{
		UserID:       user.ID,
		SessionID:    sessionID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		return "", "", "", err
	}

	refreshClaims := &Claims{
		UserID:       user.ID,
		SessionID:    sessionID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(refreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		return "", "", "", err
	}

	session := models.RefreshToken{
		UserID:    user.ID,
		SessionID: sessionID,
		UserAgent: userAgent,
		IPAddress: ip,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := config.DB.Create(&session).Error; err != nil {
		return "", "", "", err
	}

	return accessTokenString, refreshTokenString, sessionID, nil
}

func ParseJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// RefreshTokens rotates a refresh token: the old session is revoked and a new
// access/refresh pair is issued.
func RefreshTokens(refreshToken, userAgent, ip string) (string, string, error) {
	claims, err := ParseJWTToken(refreshToken)
	if err != nil {
		return "", "", err
	}

	var session models.RefreshToken
	if err := config.DB.Where("session_id = ? AND is_revoked = ?", claims.SessionID, false).
		First(&session).Error; err != nil {
		return "", "", errors.New("session not found or revoked")
	}
	if time.Now().After(session.ExpiresAt) {
		return "", "", errors.New("refresh token expired")
	}

	var user models.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		return "", "", errors.New("user not found")
	}
	if claims.TokenVersion != user.TokenVersion {
		return "", "", errors.New("invalid token version")
	}

	if err := config.DB.Model(&session).Update("is_revoked", true).Error; err != nil {
		return "", "", err
	}

	access, refresh, _, err := GenerateJWTToken(&user, userAgent, ip)
	return access, refresh, err
}
