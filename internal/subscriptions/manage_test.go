package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestManageSubscriptionRequiresUser(t *testing.T) {
	svc := newTestService(t, &stubUsers{}, stubStores{}, &stubStripe{})

	_, err := svc.ManageSubscription(context.Background(), " ", ManageSubscriptionInput{StripePriceID: testStdPrice})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
}

func TestManageSubscriptionRejectsUnknownPrice(t *testing.T) {
	users := &stubUsers{user: userWithMetadata(nil)}
	svc := newTestService(t, users, stubStores{}, &stubStripe{})

	_, err := svc.ManageSubscription(context.Background(), "user_1", ManageSubscriptionInput{StripePriceID: "price_other"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestManageSubscriptionCurrentPlanOpensPortal(t *testing.T) {
	users := &stubUsers{user: userWithMetadata(subscribedMetadata(testStdPrice, testNow.Add(time.Hour)))}
	sc := &stubStripe{
		sub:    &stripe.Subscription{ID: "sub_123"},
		portal: &stripe.BillingPortalSession{URL: "https://billing.stripe.com/p/session"},
	}
	svc := newTestService(t, users, stubStores{}, sc)

	url, err := svc.ManageSubscription(context.Background(), "user_1", ManageSubscriptionInput{StripePriceID: testStdPrice})
	require.NoError(t, err)
	require.Equal(t, "https://billing.stripe.com/p/session", url)
	require.NotNil(t, sc.portalParams)
	require.Equal(t, "cus_123", *sc.portalParams.Customer)
	require.Equal(t, testBilling, *sc.portalParams.ReturnURL)
	require.Nil(t, sc.checkoutParams)
}

func TestManageSubscriptionUpgradeCreatesCheckout(t *testing.T) {
	users := &stubUsers{user: userWithMetadata(subscribedMetadata(testStdPrice, testNow.Add(time.Hour)))}
	sc := &stubStripe{
		sub:      &stripe.Subscription{ID: "sub_123"},
		checkout: &stripe.CheckoutSession{URL: "https://checkout.stripe.com/c/pay"},
	}
	svc := newTestService(t, users, stubStores{}, sc)

	url, err := svc.ManageSubscription(context.Background(), "user_1", ManageSubscriptionInput{StripePriceID: testProPrice})
	require.NoError(t, err)
	require.Equal(t, "https://checkout.stripe.com/c/pay", url)

	params := sc.checkoutParams
	require.NotNil(t, params)
	require.Equal(t, testBilling, *params.SuccessURL)
	require.Equal(t, testBilling, *params.CancelURL)
	require.Equal(t, string(stripe.CheckoutSessionModeSubscription), *params.Mode)
	require.Equal(t, string(stripe.CheckoutSessionBillingAddressCollectionAuto), *params.BillingAddressCollection)
	require.Len(t, params.PaymentMethodTypes, 1)
	require.Equal(t, "card", *params.PaymentMethodTypes[0])
	require.Len(t, params.LineItems, 1)
	require.Equal(t, testProPrice, *params.LineItems[0].Price)
	require.Equal(t, int64(1), *params.LineItems[0].Quantity)
	require.Equal(t, "seller@example.com", *params.CustomerEmail)
	require.Equal(t, "user_1", params.Metadata["userId"])
}

func TestManageSubscriptionSkipsUnverifiedEmail(t *testing.T) {
	user := userWithMetadata(nil)
	user.EmailAddresses[0].Verified = false
	sc := &stubStripe{checkout: &stripe.CheckoutSession{URL: "https://checkout.stripe.com/c/pay"}}
	svc := newTestService(t, &stubUsers{user: user}, stubStores{}, sc)

	_, err := svc.ManageSubscription(context.Background(), "user_1", ManageSubscriptionInput{StripePriceID: testStdPrice})
	require.NoError(t, err)
	require.Nil(t, sc.checkoutParams.CustomerEmail)
}

func TestManageSubscriptionEmptyURLIsDependencyError(t *testing.T) {
	users := &stubUsers{user: userWithMetadata(nil)}
	sc := &stubStripe{checkout: &stripe.CheckoutSession{}}
	svc := newTestService(t, users, stubStores{}, sc)

	_, err := svc.ManageSubscription(context.Background(), "user_1", ManageSubscriptionInput{StripePriceID: testStdPrice})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
}
