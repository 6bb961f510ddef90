package http

import (
	"net/http"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
)

// listOrders answers with the session owner's orders, newest first.
// An optional ?status= query narrows the listing.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		writeError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	orders, err := h.services.AccountService.Orders(ctx, userID, r.URL.Query().Get("status"))
	if err != nil {
		log.Err(err).Msg("order listing failed")
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, orders, http.StatusOK)
}

// listAddresses answers with the session owner's saved shipping
// addresses, most recently updated first.
func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		writeError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	addresses, err := h.services.AccountService.Addresses(ctx, userID)
	if err != nil {
		log.Err(err).Msg("address listing failed")
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, addresses, http.StatusOK)
}
