package users

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository exposes the user-directory persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a user and their email addresses.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.FindByIDWithTx(r.DB(ctx), id)
}

// FindByIDWithTx loads a user using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id string) (*models.User, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var user models.User
	if err := tx.Preload("EmailAddresses").First(&user, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePrivateMetadataWithTx stores the full private metadata object of a user.
func (r *Repository) UpdatePrivateMetadataWithTx(tx *gorm.DB, user *models.User) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if user == nil {
		return fmt.Errorf("user is required")
	}
	res := tx.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("private_metadata", user.PrivateMetadata)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAfter returns up to limit users with an id greater than afterID, ordered
// by id. An empty afterID starts from the beginning.
func (r *Repository) ListAfter(ctx context.Context, afterID string, limit int) ([]models.User, error) {
	q := r.DB(ctx).Order("id ASC").Limit(limit)
	if afterID != "" {
		q = q.Where("id > ?", afterID)
	}
	var out []models.User
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
