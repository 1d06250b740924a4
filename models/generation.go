package models

import (
	"time"

	"gorm.io/gorm"
)

// Theme values produced by the generation engine
const (
	ThemeCyber   = "cyber"
	ThemeLuxury  = "luxury"
	ThemeNeural  = "neural"
	ThemeDefault = "default"
)

// Generation payment states. Transitions only move forward:
// PENDING -> SUBMITTED -> SUCCESS or REJECTED. SUCCESS is terminal.
const (
	GenerationPending   = "PENDING"
	GenerationSubmitted = "SUBMITTED"
	GenerationSuccess   = "SUCCESS"
	GenerationRejected  = "REJECTED"
)

// PaymentWindow is how long after creation a generation accepts a payment
// reference. Past it the client is told to regenerate instead.
const PaymentWindow = 24 * time.Hour

// Generation records one prompt-to-content invocation. Anonymous generations
// are allowed, so UserID is nullable.
type Generation struct {
	gorm.Model
	UserID *uint  `gorm:"index" json:"user_id,omitempty"`
	Prompt string `gorm:"not null" json:"prompt"`
	Theme  string `gorm:"not null;default:'default'" json:"theme"`

	// Full structured brand content as JSON
	Content string `gorm:"type:text" json:"content"`

	PaymentStatus string `gorm:"not null;default:'PENDING';index" json:"payment_status"`

	// Claimed UPI reference, globally unique across generations and payments
	UpiTxnID *string `gorm:"uniqueIndex" json:"upi_txn_id,omitempty"`

	User *User `json:"-"`
}

// Expired reports whether the payment-submission window has closed.
// The boundary is inclusive: exactly 24h old is already expired.
func (g *Generation) Expired(now time.Time) bool {
	return now.Sub(g.CreatedAt) >= PaymentWindow
}

// Unlocked reports whether this generation's export/deploy features are paid
// for. A PRO owner is checked separately by the caller; this covers the
// per-generation UPI unlock only.
func (g *Generation) Unlocked() bool {
	return g.PaymentStatus == GenerationSuccess
}
