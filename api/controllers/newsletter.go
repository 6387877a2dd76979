package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/newsletter"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	newsletterSuccessMessage = "You have successfully joined our newsletter."
	newsletterFailureMessage = "Something went wrong, please try again."
)

type newsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewsletterSubscribe answers in plain text; every failure maps to the same
// 400 message and the cause is only logged.
func NewsletterSubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req newsletterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.LogError(ctx, logg, err)
			responses.WriteText(w, http.StatusBadRequest, newsletterFailureMessage)
			return
		}

		err := svc.Subscribe(ctx, newsletter.SubscribeInput{
			Email:  req.Email,
			UserID: middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.LogError(ctx, logg, err)
			responses.WriteText(w, http.StatusBadRequest, newsletterFailureMessage)
			return
		}
		responses.WriteText(w, http.StatusOK, newsletterSuccessMessage)
	}
}
