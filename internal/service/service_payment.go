package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkhasanov/storefront/internal/config"
	"github.com/mkhasanov/storefront/internal/crypto"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/store"
	"github.com/mkhasanov/storefront/models"
)

// providerName tags orders with the payment provider that produced the
// event. A second provider would arrive with its own secret and name.
const providerName = "stripe"

// signatureTolerance bounds the age of a signed event timestamp,
// defeating replay of captured deliveries.
const signatureTolerance = 5 * time.Minute

// paymentService ingests payment-provider webhook events: authenticity
// check, event-type filter, field extraction, then a single transactional
// application of the whole write set.
type paymentService struct {
	payments store.PaymentRepository
	sender   NotificationSender

	webhookSecret string

	// production disables the unsigned-event fallback: in production
	// every delivery must carry a valid signature.
	production bool

	setupTokenTTL time.Duration

	now func() time.Time

	logger *logger.Logger
}

// NewPaymentService constructs a PaymentService from the transactional
// payment repository, the notification collaborator and the app config.
func NewPaymentService(payments store.PaymentRepository, sender NotificationSender, cfg config.App, logger *logger.Logger) PaymentService {
	return &paymentService{
		payments:      payments,
		sender:        sender,
		webhookSecret: cfg.WebhookSecret,
		production:    cfg.IsProduction(),
		setupTokenTTL: cfg.SetupTokenTTL,
		now:           time.Now,
		logger:        logger,
	}
}

// Ingest processes one raw event delivery.
//
// Returns:
//   - ErrInvalidSignature when the signature header fails verification.
//     Outside production an unsigned delivery (empty header) is accepted
//     for testing; a present header is always verified.
//   - ErrMalformedEvent when the body is not parseable or email or
//     payment reference cannot be derived.
//   - A result with Ignored set for event kinds outside the handled set.
//   - Otherwise the transactional outcome; duplicate deliveries of an
//     already-recorded payment reference report AlreadyProcessed and
//     write nothing.
func (p *paymentService) Ingest(ctx context.Context, body []byte, signatureHeader string) (models.IngestResult, error) {
	log := logger.FromContext(ctx)

	if signatureHeader == "" && !p.production {
		log.Warn().Msg("accepting unsigned event, non-production fallback")
	} else {
		if err := crypto.VerifyEventSignature(body, signatureHeader, p.webhookSecret, signatureTolerance, p.now()); err != nil {
			log.Info().Err(err).Msg("event signature rejected")
			return models.IngestResult{}, ErrInvalidSignature
		}
	}

	var event models.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Info().Err(err).Msg("event body is not valid JSON")
		return models.IngestResult{}, ErrMalformedEvent
	}

	if event.Type != models.EventCheckoutCompleted && event.Type != models.EventPaymentSucceeded {
		log.Debug().Str("event_type", event.Type).Msg("event kind outside handled set, acknowledged")
		return models.IngestResult{Ignored: true}, nil
	}

	details, err := extractDetails(event)
	if err != nil {
		log.Info().Err(err).Str("event_id", event.EventID).Msg("event rejected during extraction")
		return models.IngestResult{}, err
	}

	// pre-mint the setup token so the digest can be inserted inside the
	// transaction; the plaintext survives only until the notification
	plaintext, err := crypto.NewOpaqueToken()
	if err != nil {
		log.Err(err).Msg("setup token generation failed")
		return models.IngestResult{}, fmt.Errorf("setup token generation failed: %w", err)
	}

	outcome, err := p.payments.Apply(ctx, store.PaymentApplication{
		Details:  details,
		Provider: providerName,
		SetupToken: models.SetupToken{
			TokenDigest: crypto.SetupDigest(plaintext),
			ExpiresAt:   p.now().Add(p.setupTokenTTL),
		},
	})
	if err != nil {
		log.Err(err).Str("payment_ref", details.PaymentRef).Msg("payment application failed")
		return models.IngestResult{}, fmt.Errorf("payment application failed: %w", err)
	}

	if outcome.Result.AlreadyProcessed {
		log.Info().Str("payment_ref", details.PaymentRef).Msg("duplicate event delivery, no writes performed")
		return outcome.Result, nil
	}

	log.Info().
		Str("payment_ref", details.PaymentRef).
		Str("order_id", outcome.Result.OrderID).
		Str("user_id", outcome.Result.UserID).
		Bool("token_issued", outcome.TokenIssued).
		Msg("payment event applied")

	// post-commit: the order is durable, a failed delivery is recoverable
	// through the manual resend path
	if outcome.TokenIssued {
		sendOutcome, sendErr := p.sender.SendPasswordSetup(ctx, details.Email, details.Name, plaintext, p.now().Add(p.setupTokenTTL))
		if sendErr != nil {
			log.Err(sendErr).Str("user_id", outcome.Result.UserID).Msg("setup notification delivery failed")
		} else {
			log.Info().Str("user_id", outcome.Result.UserID).Str("outcome", string(sendOutcome)).Msg("setup notification processed")
		}
	}

	return outcome.Result, nil
}

// extractDetails normalizes the provider's event shape: email lowercased,
// amount converted from minor to major currency units, shipping block
// mapped when present. Email and payment reference are mandatory.
func extractDetails(event models.PaymentEvent) (models.PaymentDetails, error) {
	object := event.Data.Object

	email := object.CustomerEmail
	if email == "" {
		email = object.ReceiptEmail
	}
	email = normalizeEmail(email)
	if email == "" {
		return models.PaymentDetails{}, fmt.Errorf("%w: no purchaser email", ErrMalformedEvent)
	}
	if object.ID == "" {
		return models.PaymentDetails{}, fmt.Errorf("%w: no payment reference", ErrMalformedEvent)
	}

	minorUnits := object.AmountTotal
	if event.Type == models.EventPaymentSucceeded {
		minorUnits = object.Amount
	}

	name := object.CustomerName
	if name == "" {
		name = object.Shipping.Name
	}

	details := models.PaymentDetails{
		Email:      email,
		Name:       name,
		Phone:      object.Phone,
		PaymentRef: object.ID,
		Amount:     float64(minorUnits) / 100,
		Currency:   object.Currency,
	}

	address := models.ShippingAddress{
		Line1:      object.Shipping.Address.Line1,
		Line2:      object.Shipping.Address.Line2,
		City:       object.Shipping.Address.City,
		Region:     object.Shipping.Address.State,
		PostalCode: object.Shipping.Address.PostalCode,
		Country:    object.Shipping.Address.Country,
	}
	if !address.Empty() {
		details.Address = address
		details.HasAddress = true
	}

	return details, nil
}
