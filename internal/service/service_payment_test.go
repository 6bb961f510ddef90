package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/mkhasanov/storefront/internal/crypto"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/store"
	"github.com/mkhasanov/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type mockPaymentRepo struct {
	applyFn func(ctx context.Context, app store.PaymentApplication) (store.PaymentOutcome, error)
	calls   int
	lastApp store.PaymentApplication
}

func (m *mockPaymentRepo) Apply(ctx context.Context, app store.PaymentApplication) (store.PaymentOutcome, error) {
	m.calls++
	m.lastApp = app
	if m.applyFn != nil {
		return m.applyFn(ctx, app)
	}
	return store.PaymentOutcome{
		Result: models.IngestResult{OrderID: "o-1", UserID: "u-1"},
	}, nil
}

type paymentFixture struct {
	payments *mockPaymentRepo
	sender   *mockSender
	svc      *paymentService
}

func newPaymentFixture(production bool) *paymentFixture {
	f := &paymentFixture{
		payments: &mockPaymentRepo{},
		sender:   &mockSender{},
	}
	f.svc = &paymentService{
		payments:      f.payments,
		sender:        f.sender,
		webhookSecret: testWebhookSecret,
		production:    production,
		setupTokenTTL: 48 * time.Hour,
		now:           time.Now,
		logger:        logger.Nop(),
	}
	return f
}

func signBody(body []byte, secret string, ts time.Time) string {
	timestamp := fmt.Sprintf("%d", ts.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutEvent(email, paymentRef string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"id": %q,
			"customer_email": %q,
			"customer_name": "Buyer",
			"phone": "+15550001111",
			"amount_total": 4990,
			"currency": "usd",
			"shipping": {
				"name": "Buyer",
				"address": {
					"line1": "1 Main St",
					"city": "Springfield",
					"state": "IL",
					"postal_code": "12345",
					"country": "US"
				}
			}
		}}
	}`, paymentRef, email))
}

func TestIngest_SignedEventFullPipeline(t *testing.T) {
	f := newPaymentFixture(true)

	var sentToken string
	f.sender.sendFn = func(_ context.Context, email, name, token string, _ time.Time) (NotificationOutcome, error) {
		require.Equal(t, "buyer@example.com", email)
		sentToken = token
		return NotificationSent, nil
	}
	f.payments.applyFn = func(_ context.Context, app store.PaymentApplication) (store.PaymentOutcome, error) {
		return store.PaymentOutcome{
			Result:      models.IngestResult{OrderID: "o-1", UserID: "u-1"},
			TokenIssued: true,
		}, nil
	}

	body := checkoutEvent("Buyer@Example.COM", "pi_123")
	result, err := f.svc.Ingest(context.Background(), body, signBody(body, testWebhookSecret, time.Now()))
	require.NoError(t, err)

	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, "o-1", result.OrderID)

	app := f.payments.lastApp
	assert.Equal(t, "buyer@example.com", app.Details.Email, "email must be normalized")
	assert.Equal(t, "pi_123", app.Details.PaymentRef)
	assert.InDelta(t, 49.90, app.Details.Amount, 0.0001, "minor units must become major units")
	assert.Equal(t, "stripe", app.Provider)
	assert.True(t, app.Details.HasAddress)
	assert.Equal(t, "IL", app.Details.Address.Region)

	require.Equal(t, 1, f.sender.calls)
	assert.Equal(t, crypto.SetupDigest(sentToken), app.SetupToken.TokenDigest,
		"transaction must have stored the digest of the delivered plaintext")
}

func TestIngest_BadSignature(t *testing.T) {
	f := newPaymentFixture(true)

	body := checkoutEvent("buyer@example.com", "pi_123")
	_, err := f.svc.Ingest(context.Background(), body, signBody(body, "wrong-secret", time.Now()))
	require.ErrorIs(t, err, ErrInvalidSignature)
	assert.Zero(t, f.payments.calls, "rejected events must not reach the store")
}

func TestIngest_UnsignedFallback(t *testing.T) {
	body := checkoutEvent("buyer@example.com", "pi_123")

	t.Run("accepted outside production", func(t *testing.T) {
		f := newPaymentFixture(false)
		_, err := f.svc.Ingest(context.Background(), body, "")
		require.NoError(t, err)
		assert.Equal(t, 1, f.payments.calls)
	})

	t.Run("rejected in production", func(t *testing.T) {
		f := newPaymentFixture(true)
		_, err := f.svc.Ingest(context.Background(), body, "")
		require.ErrorIs(t, err, ErrInvalidSignature)
		assert.Zero(t, f.payments.calls)
	})

	t.Run("present header is verified even outside production", func(t *testing.T) {
		f := newPaymentFixture(false)
		_, err := f.svc.Ingest(context.Background(), body, "t=1,v1=deadbeef")
		require.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestIngest_StaleSignature(t *testing.T) {
	f := newPaymentFixture(true)

	body := checkoutEvent("buyer@example.com", "pi_123")
	header := signBody(body, testWebhookSecret, time.Now().Add(-time.Hour))
	_, err := f.svc.Ingest(context.Background(), body, header)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestIngest_UnhandledKindIsAcknowledged(t *testing.T) {
	f := newPaymentFixture(false)

	body := []byte(`{"id": "evt_2", "type": "invoice.created", "data": {"object": {"id": "in_1"}}}`)
	result, err := f.svc.Ingest(context.Background(), body, "")
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Zero(t, f.payments.calls, "ignored kinds must not reach the store")
}

func TestIngest_MalformedEvents(t *testing.T) {
	f := newPaymentFixture(false)

	t.Run("not json", func(t *testing.T) {
		_, err := f.svc.Ingest(context.Background(), []byte("{nope"), "")
		require.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := f.svc.Ingest(context.Background(), checkoutEvent("", "pi_123"), "")
		require.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("missing payment reference", func(t *testing.T) {
		_, err := f.svc.Ingest(context.Background(), checkoutEvent("buyer@example.com", ""), "")
		require.ErrorIs(t, err, ErrMalformedEvent)
	})

	assert.Zero(t, f.payments.calls)
}

func TestIngest_PaymentIntentAmountField(t *testing.T) {
	f := newPaymentFixture(false)

	body := []byte(`{
		"id": "evt_3",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_456",
			"receipt_email": "buyer@example.com",
			"amount": 1200,
			"currency": "eur"
		}}
	}`)
	_, err := f.svc.Ingest(context.Background(), body, "")
	require.NoError(t, err)

	app := f.payments.lastApp
	assert.InDelta(t, 12.00, app.Details.Amount, 0.0001)
	assert.Equal(t, "eur", app.Details.Currency)
	assert.False(t, app.Details.HasAddress)
}

func TestIngest_DuplicateDelivery(t *testing.T) {
	f := newPaymentFixture(false)

	f.payments.applyFn = func(_ context.Context, _ store.PaymentApplication) (store.PaymentOutcome, error) {
		return store.PaymentOutcome{
			Result: models.IngestResult{AlreadyProcessed: true, OrderID: "o-1", UserID: "u-1"},
		}, nil
	}

	result, err := f.svc.Ingest(context.Background(), checkoutEvent("buyer@example.com", "pi_123"), "")
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	assert.Zero(t, f.sender.calls, "duplicate deliveries must not notify")
}

func TestIngest_NoTokenNoNotification(t *testing.T) {
	f := newPaymentFixture(false)

	f.payments.applyFn = func(_ context.Context, _ store.PaymentApplication) (store.PaymentOutcome, error) {
		return store.PaymentOutcome{
			Result:      models.IngestResult{OrderID: "o-1", UserID: "u-1"},
			TokenIssued: false,
		}, nil
	}

	_, err := f.svc.Ingest(context.Background(), checkoutEvent("buyer@example.com", "pi_123"), "")
	require.NoError(t, err)
	assert.Zero(t, f.sender.calls)
}

func TestIngest_StoreFailurePropagates(t *testing.T) {
	f := newPaymentFixture(false)

	f.payments.applyFn = func(_ context.Context, _ store.PaymentApplication) (store.PaymentOutcome, error) {
		return store.PaymentOutcome{}, store.ErrTransientStore
	}

	_, err := f.svc.Ingest(context.Background(), checkoutEvent("buyer@example.com", "pi_123"), "")
	require.ErrorIs(t, err, store.ErrTransientStore, "store failures must surface so the provider redelivers")
}
