package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mkhasanov/storefront/internal/config"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/service"
)

var (
	ErrMailGatewayRejected    = errors.New("mail gateway rejected the message")
	ErrMailGatewayUnavailable = errors.New("mail gateway unavailable")
)

// setupMessage is the wire shape of a credential-setup delivery request
// to the mail gateway.
type setupMessage struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Name      string    `json:"name,omitempty"`
	Template  string    `json:"template"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const setupTemplate = "password-setup"

// mailGateway delivers password-setup messages through an HTTP mail
// gateway. It is the production implementation of
// [service.NotificationSender]; the plaintext token passes through here
// on its way to the user and is never logged.
type mailGateway struct {
	client *resty.Client
	from   string
	logger *logger.Logger
}

// NewMailGateway constructs a gateway-backed notification sender from the
// mailer config.
func NewMailGateway(cfg config.Mailer, logger *logger.Logger) service.NotificationSender {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &mailGateway{
		client: cli,
		from:   cfg.From,
		logger: logger,
	}
}

// SendPasswordSetup posts the setup message to the gateway. A 2xx answer
// reports NotificationSent; anything else is an error for the caller to
// log, never to surface to an end user.
func (m *mailGateway) SendPasswordSetup(ctx context.Context, email, name, token string, expiresAt time.Time) (service.NotificationOutcome, error) {
	log := logger.FromContext(ctx)

	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(setupMessage{
			From:      m.from,
			To:        email,
			Name:      name,
			Template:  setupTemplate,
			Token:     token,
			ExpiresAt: expiresAt,
		}).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMailGatewayUnavailable, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		log.Warn().Int("status", resp.StatusCode()).Msg("mail gateway answered with an error status")
		return "", fmt.Errorf("%w: http %d", ErrMailGatewayRejected, resp.StatusCode())
	}

	return service.NotificationSent, nil
}
