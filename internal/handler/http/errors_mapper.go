package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/service"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

// writeServiceError maps a service-layer failure onto the wire. External
// messages stay generic: which credential or token check failed is never
// encoded in the response, only in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	var denied *service.RateLimitedError
	if errors.As(err, &denied) {
		seconds := int64(math.Ceil(denied.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
		utils.WriteJSON(w, models.ErrorResponse{
			Error:             service.ErrRateLimited.Error(),
			RetryAfterSeconds: seconds,
		}, http.StatusTooManyRequests)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidDataProvided):
		writeError(w, service.ErrInvalidDataProvided.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, service.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrPasswordNotSet):
		writeError(w, service.ErrPasswordNotSet.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrNotAuthenticated):
		writeError(w, service.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrTokenInvalid):
		writeError(w, service.ErrTokenInvalid.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidSignature):
		writeError(w, service.ErrInvalidSignature.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrMalformedEvent):
		writeError(w, service.ErrMalformedEvent.Error(), http.StatusBadRequest)
	default:
		log.Err(err).Msg("unexpected error reached the transport layer")
		writeError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	utils.WriteJSON(w, models.ErrorResponse{Error: message}, statusCode)
}
