package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

type paymentRepository interface {
	FindByStoreID(ctx context.Context, storeID int64) (*models.Payment, error)
	FindByStoreIDWithTx(tx *gorm.DB, storeID int64) (*models.Payment, error)
	UpdateAccountStatusWithTx(tx *gorm.DB, payment *models.Payment) error
	UpsertAccount(ctx context.Context, storeID int64, accountID string) (*models.Payment, error)
}

type storeRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Store, error)
	FindByIDWithTx(tx *gorm.DB, id int64) (*models.Store, error)
	UpdateStripeConnectionWithTx(tx *gorm.DB, store *models.Store) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the connected Stripe account of seller stores.
type Service interface {
	GetAccountStatus(ctx context.Context, storeID int64) (*AccountStatus, error)
	CreateAccountLink(ctx context.Context, storeID int64) (string, error)
	PreparePaymentIntent(ctx context.Context, input PaymentIntentInput) (*PaymentIntentDraft, error)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Payments paymentRepository
	Stores   storeRepository
	Stripe   StripeConnectClient
	TxRunner txRunner
	App      config.AppConfig
	Logger   *logger.Logger
}

// AccountStatus is the connection state of a store. Account and Payment are
// nil when the store has no account yet.
type AccountStatus struct {
	IsConnected bool
	Account     *stripe.Account
	Payment     *models.Payment
}

type service struct {
	payments paymentRepository
	stores   storeRepository
	stripe   StripeConnectClient
	tx       txRunner
	app      config.AppConfig
	logg     *logger.Logger
}

// NewService builds a payment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Payments == nil {
		return nil, errors.New("payment repository required")
	}
	if params.Stores == nil {
		return nil, errors.New("store repository required")
	}
	if params.Stripe == nil {
		return nil, errors.New("stripe client required")
	}
	if params.TxRunner == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{
		payments: params.Payments,
		stores:   params.Stores,
		stripe:   params.Stripe,
		tx:       params.TxRunner,
		app:      params.App,
		logg:     params.Logger,
	}, nil
}

// GetAccountStatus reports whether the store's Stripe account finished
// onboarding. The first read after onboarding copies the submitted state into
// the payment and store rows in one transaction.
func (s *service) GetAccountStatus(ctx context.Context, storeID int64) (*AccountStatus, error) {
	notConnected := &AccountStatus{}

	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if repo.IsNotFound(err) {
			return notConnected, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	payment, err := s.payments.FindByStoreID(ctx, storeID)
	if err != nil {
		if repo.IsNotFound(err) {
			return notConnected, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	accountID := payment.AccountID()
	if accountID == "" {
		return notConnected, nil
	}

	acct, err := s.stripe.GetAccount(ctx, accountID)
	if err != nil {
		if pkgstripe.IsResourceMissing(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "stripe account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve stripe account")
	}
	if acct == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe returned no account")
	}

	if acct.DetailsSubmitted && !payment.DetailsSubmitted {
		if err := s.syncSubmittedAccount(ctx, storeID, acct); err != nil {
			return nil, err
		}
		payment.DetailsSubmitted = true
		payment.StripeAccountCreatedAt = accountCreatedAt(acct)
	}

	return &AccountStatus{
		IsConnected: acct.DetailsSubmitted && payment.DetailsSubmitted,
		Account:     acct,
		Payment:     payment,
	}, nil
}

func (s *service) syncSubmittedAccount(ctx context.Context, storeID int64, acct *stripe.Account) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		payment, err := s.payments.FindByStoreIDWithTx(tx, storeID)
		if err != nil {
			return err
		}
		payment.DetailsSubmitted = true
		payment.StripeAccountCreatedAt = accountCreatedAt(acct)
		if err := s.payments.UpdateAccountStatusWithTx(tx, payment); err != nil {
			return err
		}

		store, err := s.stores.FindByIDWithTx(tx, storeID)
		if err != nil {
			return err
		}
		accountID := acct.ID
		store.StripeAccountID = &accountID
		store.Active = true
		return s.stores.UpdateStripeConnectionWithTx(tx, store)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync stripe account")
	}

	logCtx := s.logg.WithStoreID(ctx, storeID)
	s.logg.Info(logCtx, "stripe account details submitted; store activated")
	return nil
}

// CreateAccountLink returns a Stripe onboarding URL for a store that is not yet
// connected, creating the Stripe account on first use.
func (s *service) CreateAccountLink(ctx context.Context, storeID int64) (string, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if repo.IsNotFound(err) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	var accountID string
	status, err := s.GetAccountStatus(ctx, storeID)
	switch {
	case pkgstripe.IsResourceMissing(err):
		// The account was deleted on Stripe; onboard a fresh one in its place.
		s.logg.Warn(s.logg.WithStoreID(ctx, storeID), "stripe account missing; creating a new one")
	case err != nil:
		return "", err
	case status.IsConnected:
		return "", pkgerrors.New(pkgerrors.CodeConflict, "store already connected to stripe")
	default:
		accountID = status.Payment.AccountID()
	}

	if accountID == "" {
		accountID, err = s.createAccount(ctx, storeID)
		if err != nil {
			return "", err
		}
	}

	storeURL := s.app.AbsoluteURL(fmt.Sprintf("/dashboard/stores/%d", storeID))
	link, err := s.stripe.CreateAccountLink(ctx, &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(storeURL),
		ReturnURL:  stripe.String(storeURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account link")
	}
	if link == nil || link.URL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "stripe returned no account link url")
	}
	return link.URL, nil
}

func (s *service) createAccount(ctx context.Context, storeID int64) (string, error) {
	acct, err := s.stripe.CreateAccount(ctx, &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeStandard)),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe account")
	}
	if acct == nil || acct.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "stripe returned no account")
	}
	if _, err := s.payments.UpsertAccount(ctx, storeID, acct.ID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store stripe account")
	}
	return acct.ID, nil
}

func accountCreatedAt(acct *stripe.Account) *time.Time {
	if acct == nil || acct.Created == 0 {
		return nil
	}
	created := time.Unix(acct.Created, 0).UTC()
	return &created
}
