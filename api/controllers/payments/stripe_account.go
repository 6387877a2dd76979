package payments

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	paymentsvc "github.com/angelmondragon/storefront-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type accountResponse struct {
	ID               string `json:"id"`
	DetailsSubmitted bool   `json:"detailsSubmitted"`
	ChargesEnabled   bool   `json:"chargesEnabled"`
	PayoutsEnabled   bool   `json:"payoutsEnabled"`
}

type paymentResponse struct {
	StoreID                int64      `json:"storeId"`
	StripeAccountID        string     `json:"stripeAccountId"`
	StripeAccountCreatedAt *time.Time `json:"stripeAccountCreatedAt"`
	DetailsSubmitted       bool       `json:"detailsSubmitted"`
}

type accountStatusResponse struct {
	IsConnected bool             `json:"isConnected"`
	Account     *accountResponse `json:"account"`
	Payment     *paymentResponse `json:"payment"`
}

type paymentIntentRequest struct {
	Items []paymentsvc.CartLineItem `json:"items" validate:"dive"`
}

func toAccountStatusResponse(status *paymentsvc.AccountStatus) accountStatusResponse {
	out := accountStatusResponse{IsConnected: status.IsConnected}
	if acct := status.Account; acct != nil {
		out.Account = &accountResponse{
			ID:               acct.ID,
			DetailsSubmitted: acct.DetailsSubmitted,
			ChargesEnabled:   acct.ChargesEnabled,
			PayoutsEnabled:   acct.PayoutsEnabled,
		}
	}
	if p := status.Payment; p != nil {
		out.Payment = &paymentResponse{
			StoreID:                p.StoreID,
			StripeAccountID:        p.AccountID(),
			StripeAccountCreatedAt: p.StripeAccountCreatedAt,
			DetailsSubmitted:       p.DetailsSubmitted,
		}
	}
	return out
}

func storeIDFrom(r *http.Request) (int64, error) {
	if id, ok := middleware.StoreIDFromContext(r.Context()); ok {
		return id, nil
	}
	return validators.ParseIDParam(r, "storeId")
}

// AccountStatus reports the store's Stripe connection.
func AccountStatus(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		storeID, err := storeIDFrom(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := svc.GetAccountStatus(ctx, storeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAccountStatusResponse(status))
	}
}

// AccountLink returns the Stripe onboarding URL for the store.
func AccountLink(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		storeID, err := storeIDFrom(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		url, err := svc.CreateAccountLink(ctx, storeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}

// PaymentIntent assembles the payment-intent draft of a checkout. The cart id
// comes from the cartId cookie.
func PaymentIntent(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		storeID, err := validators.ParseIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req paymentIntentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cartID := ""
		if c, err := r.Cookie(paymentsvc.CartCookieName); err == nil {
			cartID = c.Value
		}

		draft, err := svc.PreparePaymentIntent(ctx, paymentsvc.PaymentIntentInput{
			StoreID:     storeID,
			Items:       req.Items,
			CartIDValue: cartID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if draft == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "empty payment intent draft"))
			return
		}
		responses.WriteSuccess(w, draft)
	}
}
