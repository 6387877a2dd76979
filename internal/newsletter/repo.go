package newsletter

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists newsletter subscriptions.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to subscription operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ExistsByEmail reports whether email is already subscribed. email must be normalized.
func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.NewsletterSubscription{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a subscription row.
func (r *Repository) Create(ctx context.Context, sub *models.NewsletterSubscription) error {
	return r.DB(ctx).Create(sub).Error
}
