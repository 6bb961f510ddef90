package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Recoverer)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/logout", h.logout)
		r.Post("/api/auth/password/setup", h.setupPassword)
		r.Post("/api/auth/password/resend", h.resendSetup)
		r.Post("/api/webhooks/payment", h.paymentWebhook)
		r.Get("/api/health", h.health)
	})

	// routes behind a validated session
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/auth/me", h.me)
		r.Get("/api/orders", h.listOrders)
		r.Get("/api/addresses", h.listAddresses)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
