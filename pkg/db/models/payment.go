package models

import (
	"strings"
	"time"
)

// Payment tracks the connected Stripe account of a store. A store has at most
// one payment row (unique store_id).
type Payment struct {
	ID                     int64      `gorm:"column:id;primaryKey;autoIncrement"`
	StoreID                int64      `gorm:"column:store_id;not null;uniqueIndex"`
	StripeAccountID        *string    `gorm:"column:stripe_account_id"`
	StripeAccountCreatedAt *time.Time `gorm:"column:stripe_account_created_at"`
	DetailsSubmitted       bool       `gorm:"column:details_submitted;not null;default:false"`
	CreatedAt              time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// AccountID returns the trimmed connected account id, or "" when unset.
func (p *Payment) AccountID() string {
	if p == nil || p.StripeAccountID == nil {
		return ""
	}
	return strings.TrimSpace(*p.StripeAccountID)
}
