package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/stores"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type storeListResponse struct {
	Stores []stores.StoreDTO `json:"stores"`
}

// StoresList returns the caller's stores in creation order.
func StoresList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := svc.ListByOwner(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if list == nil {
			list = []stores.StoreDTO{}
		}
		responses.WriteSuccess(w, storeListResponse{Stores: list})
	}
}
