package models

import (
	"time"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
)

// User mirrors a record of the external user directory. IDs are issued by
// the auth provider.
type User struct {
	ID                    string             `gorm:"column:id;primaryKey"`
	FirstName             *string            `gorm:"column:first_name"`
	LastName              *string            `gorm:"column:last_name"`
	PrimaryEmailAddressID *string            `gorm:"column:primary_email_address_id"`
	PrivateMetadata       dbtypes.JSONMap    `gorm:"column:private_metadata;type:jsonb;not null;default:'{}'"`
	EmailAddresses        []UserEmailAddress `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// PrimaryEmail returns the address flagged as primary, if loaded.
func (u *User) PrimaryEmail() *UserEmailAddress {
	if u == nil || u.PrimaryEmailAddressID == nil {
		return nil
	}
	for i := range u.EmailAddresses {
		if u.EmailAddresses[i].ID == *u.PrimaryEmailAddressID {
			return &u.EmailAddresses[i]
		}
	}
	return nil
}
