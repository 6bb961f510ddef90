package http

import (
	"net/http"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
)

// health reports process and storage liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.pinger.PingContext(r.Context()); err != nil {
		log.Err(err).Msg("database ping failed")
		utils.WriteJSON(w, map[string]string{"status": "degraded"}, http.StatusServiceUnavailable)
		return
	}

	utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
