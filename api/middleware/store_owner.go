package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type storeAuthorizer interface {
	AuthorizeOwner(ctx context.Context, userID string, storeID int64) error
}

// RequireStoreOwner resolves the {storeId} route param and rejects callers who
// do not own that store. Must run after Auth.
func RequireStoreOwner(stores storeAuthorizer, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID, err := validators.ParseIDParam(r, "storeId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if err := stores.AuthorizeOwner(r.Context(), UserIDFromContext(r.Context()), storeID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithStoreID(r.Context(), storeID)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, storeID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
