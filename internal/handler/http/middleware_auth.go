package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
)

// auth is an HTTP middleware that enforces session-based authentication.
//
// It extracts the bearer token from the "Authorization" header, resolves
// it through [service.AuthService.CurrentUser] — which also performs lazy
// expiry of stale sessions — and, on success, stores the owning user id,
// the session id and the resolved account in the request context under
// [utils.UserIDCtxKey], [utils.SessionIDCtxKey] and [utils.UserCtxKey]
// before delegating to the next handler.
//
// Every rejection is HTTP 401 with the same generic body: whether the
// token was absent, malformed, revoked or expired is visible in logs only.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		token, err := bearerToken(r)
		if err != nil {
			log.Err(err).Send()
			writeError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, session, err := h.services.AuthService.CurrentUser(ctx, token)
		if err != nil {
			log.Err(err).Msg("session validation failed")
			writeError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		// Store the identities and the resolved account in the context so
		// downstream handlers can retrieve them without a second lookup.
		ctx = context.WithValue(ctx, utils.UserIDCtxKey, user.UserID)
		ctx = context.WithValue(ctx, utils.SessionIDCtxKey, session.SessionID)
		ctx = context.WithValue(ctx, utils.UserCtxKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrEmptyAuthorizationHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidAuthorizationHeader
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}
