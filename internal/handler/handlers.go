package handler

import (
	"github.com/mkhasanov/storefront/internal/config"
	"github.com/mkhasanov/storefront/internal/handler/http"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, cfg config.Server, pinger http.Pinger, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, pinger, logger),
	}, nil
}
