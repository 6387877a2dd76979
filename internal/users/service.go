package users

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type usersRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDWithTx(tx *gorm.DB, id string) (*models.User, error)
	UpdatePrivateMetadataWithTx(tx *gorm.DB, user *models.User) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the user-directory adapter used by the billing and newsletter flows.
type Service interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdatePrivateMetadata(ctx context.Context, id string, patch map[string]any) error
}

type ServiceParams struct {
	Repo     usersRepository
	TxRunner txRunner
}

type service struct {
	repo usersRepository
	tx   txRunner
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("users repository required")
	}
	if params.TxRunner == nil {
		return nil, errors.New("tx runner required")
	}
	return &service{repo: params.Repo, tx: params.TxRunner}, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// UpdatePrivateMetadata merges patch into the stored private metadata. Keys
// not named in patch are preserved; nil values are stored as null.
func (s *service) UpdatePrivateMetadata(ctx context.Context, id string, patch map[string]any) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			return err
		}
		user.PrivateMetadata = user.PrivateMetadata.Merge(patch)
		return s.repo.UpdatePrivateMetadataWithTx(tx, user)
	})
	if err == nil {
		return nil
	}
	if repo.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update private metadata")
}
