package subscriptions

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	testStdPrice = "price_std"
	testProPrice = "price_pro"
	testBilling  = "https://shop.example.com/dashboard/billing"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type stubUsers struct {
	user        *models.User
	getErr      error
	updateErr   error
	updateCalls int
	lastPatch   map[string]any
}

func (s *stubUsers) GetUser(ctx context.Context, id string) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.user == nil || s.user.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.user, nil
}

func (s *stubUsers) UpdatePrivateMetadata(ctx context.Context, id string, patch map[string]any) error {
	s.updateCalls++
	s.lastPatch = patch
	if s.updateErr != nil {
		return s.updateErr
	}
	s.user.PrivateMetadata = s.user.PrivateMetadata.Merge(patch)
	return nil
}

type stubStores struct {
	count int64
	err   error
}

func (s stubStores) CountByOwner(ctx context.Context, userID string) (int64, error) {
	return s.count, s.err
}

type stubStripe struct {
	sub        *stripe.Subscription
	subErr     error
	subCalls   int
	checkout   *stripe.CheckoutSession
	portal     *stripe.BillingPortalSession
	sessionErr error

	checkoutParams *stripe.CheckoutSessionParams
	portalParams   *stripe.BillingPortalSessionParams
}

func (s *stubStripe) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	s.subCalls++
	return s.sub, s.subErr
}

func (s *stubStripe) NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.checkoutParams = params
	return s.checkout, s.sessionErr
}

func (s *stubStripe) NewBillingPortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	s.portalParams = params
	return s.portal, s.sessionErr
}

func testCatalog() *Catalog {
	return NewCatalog(config.StripeConfig{StandardPriceID: testStdPrice, ProPriceID: testProPrice})
}

func newTestService(t *testing.T, users *stubUsers, stores stubStores, sc *stubStripe) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:      users,
		Stores:     stores,
		Stripe:     sc,
		Catalog:    testCatalog(),
		BillingURL: testBilling,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:        func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func userWithMetadata(md map[string]any) *models.User {
	emailID := "idn_user_1"
	return &models.User{
		ID:                    "user_1",
		PrimaryEmailAddressID: &emailID,
		PrivateMetadata:       md,
		EmailAddresses: []models.UserEmailAddress{
			{ID: emailID, UserID: "user_1", EmailAddress: "seller@example.com", Verified: true},
		},
	}
}

func subscribedMetadata(priceID string, periodEnd time.Time) map[string]any {
	return map[string]any{
		metaPriceID:          priceID,
		metaCustomerID:       "cus_123",
		metaSubscriptionID:   "sub_123",
		metaCurrentPeriodEnd: periodEnd.Format(time.RFC3339),
	}
}
