package payments

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// CartCookieName holds the shopper's cart id.
const CartCookieName = "cartId"

// CartLineItem is one requested product of a checkout.
type CartLineItem struct {
	ProductID   int64   `json:"id" validate:"required,gt=0"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	Subcategory *string `json:"subcategory,omitempty"`
}

// PaymentIntentInput is the checkout request for one store.
type PaymentIntentInput struct {
	StoreID     int64
	Items       []CartLineItem
	CartIDValue string
}

// PaymentIntentDraft is everything needed to create the payment intent on the
// connected account.
type PaymentIntentDraft struct {
	StripeAccountID string            `json:"stripeAccountId"`
	Metadata        map[string]string `json:"metadata"`
}

// PreparePaymentIntent checks that the store can take payments and assembles
// the intent metadata. The intent itself is not created here.
func (s *service) PreparePaymentIntent(ctx context.Context, input PaymentIntentInput) (*PaymentIntentDraft, error) {
	status, err := s.GetAccountStatus(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}
	if !status.IsConnected || status.Payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store not connected to stripe")
	}
	accountID := status.Payment.AccountID()
	if accountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stripe account not found")
	}

	items := input.Items
	if items == nil {
		items = []CartLineItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode line items")
	}

	return &PaymentIntentDraft{
		StripeAccountID: accountID,
		Metadata: map[string]string{
			"cartId": ParseCartID(input.CartIDValue),
			"items":  string(encoded),
		},
	}, nil
}

// ParseCartID normalizes the cart cookie value; anything but an integer is "".
func ParseCartID(raw string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
