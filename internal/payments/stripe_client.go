package payments

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/account"
	"github.com/stripe/stripe-go/v84/accountlink"

	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

const providerStripe = "stripe"

// StripeConnectClient exposes the Stripe Connect operations used by the payment service.
type StripeConnectClient interface {
	GetAccount(ctx context.Context, id string) (*stripe.Account, error)
	CreateAccount(ctx context.Context, params *stripe.AccountParams) (*stripe.Account, error)
	CreateAccountLink(ctx context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error)
}

type stripeClientWrapper struct {
	metrics *metrics.ProviderMetrics
}

// NewStripeClient wraps the configured Stripe client so the payment service can be tested.
func NewStripeClient(api *pkgstripe.Client, m *metrics.ProviderMetrics) StripeConnectClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{metrics: m}
}

func (w *stripeClientWrapper) GetAccount(ctx context.Context, id string) (*stripe.Account, error) {
	started := time.Now()
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := account.GetByID(id, params)
	w.metrics.Observe(providerStripe, "account_get", started, err)
	return acct, err
}

func (w *stripeClientWrapper) CreateAccount(ctx context.Context, params *stripe.AccountParams) (*stripe.Account, error) {
	started := time.Now()
	if params != nil {
		params.Context = ctx
	}
	acct, err := account.New(params)
	w.metrics.Observe(providerStripe, "account_create", started, err)
	return acct, err
}

func (w *stripeClientWrapper) CreateAccountLink(ctx context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	started := time.Now()
	if params != nil {
		params.Context = ctx
	}
	link, err := accountlink.New(params)
	w.metrics.Observe(providerStripe, "account_link_create", started, err)
	return link, err
}
