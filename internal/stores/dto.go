package stores

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// StoreDTO is the API representation of a store.
type StoreDTO struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	StripeAccountID *string   `json:"stripeAccountId,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FromModel maps a store row to its DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:              m.ID,
		UserID:          m.UserID,
		Name:            m.Name,
		Description:     m.Description,
		StripeAccountID: m.StripeAccountID,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
