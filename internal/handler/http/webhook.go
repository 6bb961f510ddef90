package http

import (
	"io"
	"net/http"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
)

// signatureHeader carries the provider's MAC over the raw request body.
const signatureHeader = "X-Payment-Signature"

// maxEventBytes caps webhook bodies well above any legitimate event size.
const maxEventBytes = 1 << 20

// paymentWebhook ingests one payment-provider event delivery. The body is
// read raw: the signature covers the exact bytes on the wire, so any
// re-serialization before verification would break authenticity.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		log.Err(err).Msg("failed to read event body")
		writeError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	result, err := h.services.PaymentService.Ingest(ctx, body, r.Header.Get(signatureHeader))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if result.Ignored {
		utils.WriteJSON(w, map[string]bool{"received": true}, http.StatusOK)
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}
