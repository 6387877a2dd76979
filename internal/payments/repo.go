package payments

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists the payment row of each store.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to payment operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByStoreID loads the payment row of a store.
func (r *Repository) FindByStoreID(ctx context.Context, storeID int64) (*models.Payment, error) {
	return r.FindByStoreIDWithTx(r.DB(ctx), storeID)
}

// FindByStoreIDWithTx loads the payment row of a store using the provided transaction.
func (r *Repository) FindByStoreIDWithTx(tx *gorm.DB, storeID int64) (*models.Payment, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var payment models.Payment
	if err := tx.First(&payment, "store_id = ?", storeID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateAccountStatusWithTx stores the details-submitted flag and the account
// creation time reported by Stripe.
func (r *Repository) UpdateAccountStatusWithTx(tx *gorm.DB, payment *models.Payment) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if payment == nil {
		return fmt.Errorf("payment is required")
	}
	res := tx.Model(&models.Payment{}).
		Where("store_id = ?", payment.StoreID).
		Updates(map[string]any{
			"details_submitted":         payment.DetailsSubmitted,
			"stripe_account_created_at": payment.StripeAccountCreatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertAccount records the connected account id of a store, creating the
// payment row when the store has none. Replacing an account resets its
// onboarding state.
func (r *Repository) UpsertAccount(ctx context.Context, storeID int64, accountID string) (*models.Payment, error) {
	payment := &models.Payment{StoreID: storeID, StripeAccountID: &accountID}
	err := r.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"stripe_account_id":         accountID,
			"details_submitted":         false,
			"stripe_account_created_at": nil,
		}),
	}).Create(payment).Error
	if err != nil {
		return nil, err
	}
	return payment, nil
}
