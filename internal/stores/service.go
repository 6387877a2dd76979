package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type storeRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Store, error)
	FindByOwner(ctx context.Context, userID string) ([]models.Store, error)
	CountByOwner(ctx context.Context, userID string) (int64, error)
}

// Service exposes store operations.
type Service interface {
	GetByID(ctx context.Context, id int64) (*StoreDTO, error)
	ListByOwner(ctx context.Context, userID string) ([]StoreDTO, error)
	CountByOwner(ctx context.Context, userID string) (int64, error)
	AuthorizeOwner(ctx context.Context, userID string, storeID int64) error
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*StoreDTO, error) {
	store, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) ListByOwner(ctx context.Context, userID string) ([]StoreDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	rows, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CountByOwner(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	count, err := s.repo.CountByOwner(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stores")
	}
	return count, nil
}

// AuthorizeOwner fails with FORBIDDEN unless userID owns the store.
func (s *service) AuthorizeOwner(ctx context.Context, userID string, storeID int64) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	store, err := s.load(ctx, storeID)
	if err != nil {
		return err
	}
	if store.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "store access denied")
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Store, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store id")
	}
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}
