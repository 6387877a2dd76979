package stores

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a store by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Store, error) {
	return r.FindByIDWithTx(r.DB(ctx), id)
}

// FindByIDWithTx loads a store using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id int64) (*models.Store, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var store models.Store
	if err := tx.First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns the stores owned by userID, oldest first.
func (r *Repository) FindByOwner(ctx context.Context, userID string) ([]models.Store, error) {
	var stores []models.Store
	if err := r.DB(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// CountByOwner counts the stores owned by userID.
func (r *Repository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Store{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStripeConnectionWithTx records the connected account on the store and
// activates it.
func (r *Repository) UpdateStripeConnectionWithTx(tx *gorm.DB, store *models.Store) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if store == nil {
		return fmt.Errorf("store is required")
	}
	res := tx.Model(&models.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]any{
			"stripe_account_id": store.StripeAccountID,
			"active":            store.Active,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
