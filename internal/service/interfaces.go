package service

import (
	"context"
	"time"

	"github.com/mkhasanov/storefront/models"
)

// AuthService covers the credential and session lifecycle: login,
// logout, session introspection, password establishment via setup
// tokens, and manual re-delivery of setup links.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest, remote string) (models.LoginResponse, error)

	// Logout revokes the session behind the bearer token. Idempotent: an
	// absent or already-revoked token is not an error.
	Logout(ctx context.Context, token string) error

	// CurrentUser resolves the bearer token to its session and owning
	// user. Expired sessions are deleted on sight and reported as
	// ErrNotAuthenticated, same as absent ones.
	CurrentUser(ctx context.Context, token string) (models.User, models.Session, error)

	// SetupPassword redeems a one-time setup token, stores the new
	// password credential, revokes every existing session of the account
	// and answers with a fresh one.
	SetupPassword(ctx context.Context, req models.SetupPasswordRequest, remote string) (models.LoginResponse, error)

	// ResendSetup re-delivers a setup link for a passwordless account.
	// Always succeeds from the caller's point of view; unknown emails,
	// established passwords and live-token suppression are internal
	// outcomes only.
	ResendSetup(ctx context.Context, req models.ResendSetupRequest, remote string) error
}

// AccountService exposes the authenticated user's own purchase data.
// Callers are resolved by the session middleware; the user id is always
// the session owner's, never client-supplied.
type AccountService interface {
	// Orders lists the user's orders, newest first, optionally narrowed
	// to a status.
	Orders(ctx context.Context, userID, status string) ([]models.Order, error)

	// Addresses lists the user's saved shipping addresses, most recently
	// updated first.
	Addresses(ctx context.Context, userID string) ([]models.ShippingAddress, error)
}

// PaymentService ingests signed payment-provider events.
type PaymentService interface {
	Ingest(ctx context.Context, body []byte, signatureHeader string) (models.IngestResult, error)
}

// NotificationOutcome is what a delivery attempt reports back.
type NotificationOutcome string

const (
	NotificationSent    NotificationOutcome = "sent"
	NotificationSkipped NotificationOutcome = "skipped"
)

// NotificationSender delivers a credential-setup message out-of-band.
// The plaintext token appears here exactly once on its way to the user;
// it is never persisted.
type NotificationSender interface {
	SendPasswordSetup(ctx context.Context, email, name, token string, expiresAt time.Time) (NotificationOutcome, error)
}
