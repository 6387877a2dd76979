package models

import "time"

// NewsletterSubscription is one newsletter signup. Email is stored lowercased
// and unique; UserID is set when the subscriber was signed in.
type NewsletterSubscription struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	UserID    *string   `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
