package subscriptions

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ManageSubscriptionInput selects the plan the user wants to manage or buy.
// Subscription state is resolved server side from the user's metadata.
type ManageSubscriptionInput struct {
	StripePriceID string `json:"stripePriceId" validate:"required"`
}

// ManageSubscription returns a Stripe URL: the billing portal when the user is
// already subscribed to the requested plan, a checkout session otherwise.
func (s *service) ManageSubscription(ctx context.Context, userID string, input ManageSubscriptionInput) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
	}
	priceID := strings.TrimSpace(input.StripePriceID)
	if _, ok := s.catalog.ByPriceID(priceID); !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown stripe price id").
			WithDetails(map[string]any{"stripePriceId": input.StripePriceID})
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	current, err := s.GetUserSubscriptionPlan(ctx, userID)
	if err != nil {
		return "", err
	}

	if current != nil && current.IsSubscribed && current.StripeCustomerID != "" && current.isOnPrice(priceID) {
		params := &stripe.BillingPortalSessionParams{
			Customer:  stripe.String(current.StripeCustomerID),
			ReturnURL: stripe.String(s.billingURL),
		}
		sess, err := s.stripe.NewBillingPortalSession(ctx, params)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create billing portal session")
		}
		if sess == nil || sess.URL == "" {
			return "", pkgerrors.New(pkgerrors.CodeDependency, "billing portal session returned no url")
		}
		return sess.URL, nil
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:               stripe.String(s.billingURL),
		CancelURL:                stripe.String(s.billingURL),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		Mode:                     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
	}
	if email := user.PrimaryEmail(); email != nil && email.Verified && strings.TrimSpace(email.EmailAddress) != "" {
		params.CustomerEmail = stripe.String(email.EmailAddress)
	}
	params.AddMetadata("userId", user.ID)

	sess, err := s.stripe.NewCheckoutSession(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	if sess == nil || sess.URL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "checkout session returned no url")
	}
	return sess.URL, nil
}

func (p *UserSubscriptionPlan) isOnPrice(priceID string) bool {
	return p.Plan != nil && p.Plan.StripePriceID == priceID
}
