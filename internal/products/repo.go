package products

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository reads product listings.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to product reads.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByName returns products whose name contains term, case-insensitively,
// newest first.
func (r *Repository) SearchByName(ctx context.Context, term string, limit int) ([]models.Product, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	var rows []models.Product
	err := r.DB(ctx).
		Select("id", "store_id", "name", "category", "price", "created_at").
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
