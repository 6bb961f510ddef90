package http

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	resp, err := h.services.AuthService.Login(ctx, req, clientAddr(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info().Str("user_id", resp.User.UserID).Msg("user logged in")
	utils.WriteJSON(w, resp, http.StatusOK)
}

// logout answers 204 regardless of whether a session existed: revocation
// is idempotent and the caller learns nothing about token validity.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	token, err := bearerToken(r)
	if err != nil {
		// no usable token means nothing to revoke
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err = h.services.AuthService.Logout(ctx, token); err != nil {
		log.Err(err).Msg("logout failed")
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// me answers with the profile of the session owner. The auth middleware
// already resolved the account; asking the store again would double the
// round-trips per request.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, user.View(), http.StatusOK)
}

func (h *Handler) setupPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.SetupPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	resp, err := h.services.AuthService.SetupPassword(ctx, req, clientAddr(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info().Str("user_id", resp.User.UserID).Msg("password established")
	utils.WriteJSON(w, resp, http.StatusOK)
}

// resendSetup always answers 202: whether the email maps to an account,
// and whether a message was actually sent, is not disclosed.
func (h *Handler) resendSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ResendSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.ResendSetup(ctx, req, clientAddr(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// clientAddr extracts the client host from the request, dropping the
// ephemeral port so rate-limit keys survive reconnects.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
