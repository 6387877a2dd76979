package models

import "time"

// Store is a seller storefront owned by a user.
type Store struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          string    `gorm:"column:user_id;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	Description     *string   `gorm:"column:description"`
	StripeAccountID *string   `gorm:"column:stripe_account_id"`
	Active          bool      `gorm:"column:active;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
