package billing

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/subscriptions"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type planListResponse struct {
	Plans []subscriptions.PlanWithCounts `json:"plans"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type redirectResponse struct {
	Path string `json:"path"`
}

// PlansList returns the plan catalog with feature limits.
func PlansList(svc subscriptions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, planListResponse{Plans: svc.Plans()})
	}
}

// CurrentPlan returns the caller's resolved plan. The data is null when the
// stored subscription was stale and has just been cleared.
func CurrentPlan(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		plan, err := svc.GetUserSubscriptionPlan(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

// ManageSubscription returns the Stripe checkout or billing-portal URL.
func ManageSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input subscriptions.ManageSubscriptionInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		url, err := svc.ManageSubscription(ctx, middleware.UserIDFromContext(ctx), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, urlResponse{URL: url})
	}
}

// DashboardRedirect returns where the dashboard should send the caller.
func DashboardRedirect(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		path, err := svc.DashboardRedirect(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, redirectResponse{Path: path})
	}
}
