package subscriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

// gracePeriod keeps a plan active for a day after the billing period ends so
// renewals that land late do not downgrade the user.
const gracePeriod = 24 * time.Hour

type userDirectory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdatePrivateMetadata(ctx context.Context, id string, patch map[string]any) error
}

type storeCounter interface {
	CountByOwner(ctx context.Context, userID string) (int64, error)
}

// Service resolves and manages seller subscription plans.
type Service interface {
	Plans() []PlanWithCounts
	GetUserSubscriptionPlan(ctx context.Context, userID string) (*UserSubscriptionPlan, error)
	ManageSubscription(ctx context.Context, userID string, input ManageSubscriptionInput) (string, error)
	DashboardRedirect(ctx context.Context, userID string) (string, error)
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Users      userDirectory
	Stores     storeCounter
	Stripe     StripeBillingClient
	Catalog    *Catalog
	BillingURL string
	Logger     *logger.Logger
	Now        func() time.Time
}

// UserSubscriptionPlan is the resolved billing state of a user. Plan is nil
// when a subscribed user's price id is not in the catalog.
type UserSubscriptionPlan struct {
	Plan                   *Plan      `json:"plan"`
	StripeSubscriptionID   string     `json:"stripeSubscriptionId,omitempty"`
	StripeCurrentPeriodEnd *time.Time `json:"stripeCurrentPeriodEnd"`
	StripeCustomerID       string     `json:"stripeCustomerId,omitempty"`
	IsSubscribed           bool       `json:"isSubscribed"`
	IsCanceled             bool       `json:"isCanceled"`
}

// PlanWithCounts is a catalog entry with its structured feature limits.
type PlanWithCounts struct {
	Plan
	FeatureCounts
}

type service struct {
	users      userDirectory
	stores     storeCounter
	stripe     StripeBillingClient
	catalog    *Catalog
	billingURL string
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, errors.New("user directory required")
	}
	if params.Stores == nil {
		return nil, errors.New("store counter required")
	}
	if params.Stripe == nil {
		return nil, errors.New("stripe client required")
	}
	if params.Catalog == nil {
		return nil, errors.New("plan catalog required")
	}
	if strings.TrimSpace(params.BillingURL) == "" {
		return nil, errors.New("billing url required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	warnOnFeatureCopyDrift(params.Catalog, params.Logger)
	return &service{
		users:      params.Users,
		stores:     params.Stores,
		stripe:     params.Stripe,
		catalog:    params.Catalog,
		billingURL: params.BillingURL,
		logg:       params.Logger,
		now:        now,
	}, nil
}

func (s *service) Plans() []PlanWithCounts {
	plans := s.catalog.Plans()
	out := make([]PlanWithCounts, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanWithCounts{Plan: p, FeatureCounts: p.FeatureCounts()})
	}
	return out
}

// warnOnFeatureCopyDrift flags plans whose display copy no longer scrapes to
// the structured limits served to clients.
func warnOnFeatureCopyDrift(catalog *Catalog, logg *logger.Logger) int {
	drifted := 0
	for _, p := range catalog.Plans() {
		scraped := catalog.FeaturedStoreAndProductCounts(p.ID)
		if scraped == p.FeatureCounts() {
			continue
		}
		drifted++
		ctx := logg.WithFields(context.Background(), map[string]any{
			"plan":                  string(p.ID),
			"featured_stores":       p.FeaturedStores,
			"featured_products":     p.FeaturedProducts,
			"scraped_store_count":   scraped.FeaturedStoreCount,
			"scraped_product_count": scraped.FeaturedProductCount,
		})
		logg.Warn(ctx, "plan feature copy disagrees with structured limits")
	}
	return drifted
}

// GetUserSubscriptionPlan resolves the user's plan from private metadata and,
// for an active subscription, Stripe. Any failure to read the subscription
// clears the stored billing keys and yields (nil, nil).
func (s *service) GetUserSubscriptionPlan(ctx context.Context, userID string) (*UserSubscriptionPlan, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	meta, err := ParseSubscriptionMetadata(user.PrivateMetadata)
	if err != nil {
		return nil, err
	}

	isSubscribed := meta.IsSubscribed(s.now())
	var plan *Plan
	if isSubscribed {
		if p, ok := s.catalog.ByPriceID(meta.StripePriceID); ok {
			plan = &p
		}
	} else {
		p := s.catalog.Default()
		plan = &p
	}

	isCanceled := false
	if isSubscribed && meta.StripeSubscriptionID != "" {
		sub, err := s.stripe.GetSubscription(ctx, meta.StripeSubscriptionID)
		if err == nil && sub == nil {
			err = errors.New("empty subscription response")
		}
		if err != nil {
			return nil, s.resetSubscription(ctx, user.ID, meta.StripeSubscriptionID, err)
		}
		isCanceled = sub.CancelAtPeriodEnd
	}

	return &UserSubscriptionPlan{
		Plan:                   plan,
		StripeSubscriptionID:   meta.StripeSubscriptionID,
		StripeCurrentPeriodEnd: meta.StripeCurrentPeriodEnd,
		StripeCustomerID:       meta.StripeCustomerID,
		IsSubscribed:           isSubscribed,
		IsCanceled:             isCanceled,
	}, nil
}

func (s *service) resetSubscription(ctx context.Context, userID, subscriptionID string, cause error) error {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":           userID,
		"subscription_id":   subscriptionID,
		"stripe_error_code": pkgstripe.ErrorCode(cause),
	})
	s.logg.Warn(logCtx, "stripe subscription lookup failed; clearing billing metadata: "+cause.Error())

	if err := s.users.UpdatePrivateMetadata(ctx, userID, clearSubscriptionPatch()); err != nil {
		s.logg.Error(logCtx, "failed to clear billing metadata", err)
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset subscription metadata")
	}
	return nil
}

// DashboardRedirect picks the dashboard landing path for the user.
func (s *service) DashboardRedirect(ctx context.Context, userID string) (string, error) {
	plan, err := s.GetUserSubscriptionPlan(ctx, userID)
	if err != nil {
		return "", err
	}
	count, err := s.stores.CountByOwner(ctx, userID)
	if err != nil {
		return "", err
	}
	return DashboardRedirectPath(count, plan, s.now()), nil
}
