package subscriptions

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v84"
	portalsession "github.com/stripe/stripe-go/v84/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/subscription"

	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

const providerStripe = "stripe"

// StripeBillingClient exposes the subset of Stripe operations required by the subscription service.
type StripeBillingClient interface {
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	NewBillingPortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

type stripeClientWrapper struct {
	metrics *metrics.ProviderMetrics
}

// NewStripeClient wraps the configured Stripe client so the subscription service can be tested.
func NewStripeClient(api *pkgstripe.Client, m *metrics.ProviderMetrics) StripeBillingClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{metrics: m}
}

func (w *stripeClientWrapper) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	started := time.Now()
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(id, params)
	w.metrics.Observe(providerStripe, "subscription_get", started, err)
	return sub, err
}

func (w *stripeClientWrapper) NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	started := time.Now()
	if params != nil {
		params.Context = ctx
	}
	sess, err := checkoutsession.New(params)
	w.metrics.Observe(providerStripe, "checkout_session_create", started, err)
	return sess, err
}

func (w *stripeClientWrapper) NewBillingPortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	started := time.Now()
	if params != nil {
		params.Context = ctx
	}
	sess, err := portalsession.New(params)
	w.metrics.Observe(providerStripe, "billing_portal_session_create", started, err)
	return sess, err
}
