package models

import "gorm.io/gorm"

// Payment states. One-shot: once a payment leaves PENDING no further admin
// action on it is accepted.
const (
	PaymentPending  = "PENDING"
	PaymentSuccess  = "SUCCESS"
	PaymentRejected = "REJECTED"
)

// Checkout tiers offered on the pricing page
const (
	TierStudent = "Student"
	TierCreator = "Creator"
	TierAgency  = "Agency"
)

// TierPricing maps checkout tiers to amounts in paise. Prices are resolved
// server-side only; a client-supplied amount is never trusted.
var TierPricing = map[string]int64{
	TierStudent: 49900,  // ₹499
	TierCreator: 99900,  // ₹999
	TierAgency:  299900, // ₹2999
}

// UpgradePricing maps a requested plan to the manual-UPI upgrade price in
// rupees. Any tier selection currently resolves to a PRO upgrade.
var UpgradePricing = map[string]int64{
	PlanPro:  999,
	PlanFree: 499,
}

// Payment records a plan purchase, either a manually verified UPI reference
// or a hosted-checkout order finalized by webhook.
type Payment struct {
	gorm.Model
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Amount int64  `gorm:"not null" json:"amount"`
	Tier   string `gorm:"not null" json:"tier"`

	// Exactly one of these identifies the payment externally
	UpiID   *string `gorm:"uniqueIndex" json:"upi_id,omitempty"`
	OrderID *string `gorm:"uniqueIndex" json:"order_id,omitempty"`

	Status string `gorm:"not null;default:'PENDING';index" json:"status"`

	User User `json:"-"`
}
