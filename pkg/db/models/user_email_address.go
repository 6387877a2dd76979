package models

// UserEmailAddress is one address attached to a directory user.
type UserEmailAddress struct {
	ID           string `gorm:"column:id;primaryKey"`
	UserID       string `gorm:"column:user_id;not null;index"`
	EmailAddress string `gorm:"column:email_address;not null"`
	Verified     bool   `gorm:"column:verified;not null;default:false"`
}
