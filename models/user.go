package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan values for User.Plan
const (
	PlanFree = "FREE"
	PlanPro  = "PRO"
)

// User represents an account created on first Google sign-in
type User struct {
	gorm.Model

	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Profile information
	Name *string `json:"name,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Entitlement: FREE or PRO. Only an approved payment moves this to PRO;
	// there is no downgrade path.
	Plan string `gorm:"default:'FREE'" json:"plan"`

	// Incremented to invalidate previously issued tokens
	TokenVersion int `gorm:"default:1" json:"-"`

	// Relations
	Generations []Generation `gorm:"foreignKey:UserID" json:"generations,omitempty"`
	Payments    []Payment    `gorm:"foreignKey:UserID" json:"payments,omitempty"`
}

// IsPro reports whether the account holds the account-wide paid entitlement.
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}

// RefreshToken tracks issued refresh tokens so sessions can be revoked
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	SessionID string    `gorm:"not null;uniqueIndex" json:"session_id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	IsRevoked bool      `gorm:"default:false" json:"is_revoked"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	User User `json:"-"`
}
