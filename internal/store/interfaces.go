package store

import (
	"context"

	"github.com/mkhasanov/storefront/models"
)

// UserRepository persists account records.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID string) (models.User, error)
}

// SessionRepository persists login sessions, keyed by token digest.
type SessionRepository interface {
	// CreateSession inserts the session and then prunes the user's rows
	// already past expiry beyond the newest retention entries. Prune
	// failures are logged, never returned: retention is housekeeping,
	// not a precondition for correctness.
	CreateSession(ctx context.Context, session models.Session, retention int) (models.Session, error)
	FindByDigest(ctx context.Context, digest string) (models.Session, error)
	Touch(ctx context.Context, sessionID string) error
	// DeleteByDigest removes a session and reports whether a row existed.
	DeleteByDigest(ctx context.Context, digest string) (bool, error)
	DeleteByID(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// SetupTokenRepository persists one-time password-setup tokens.
// Redemption is not exposed here: a token is only ever consumed inside
// the password-establishment transaction of [CredentialRepository].
type SetupTokenRepository interface {
	CreateToken(ctx context.Context, token models.SetupToken) (models.SetupToken, error)
	// FindByDigest is the post-failure classification read used for
	// structured logging; never expose its distinction to callers.
	FindByDigest(ctx context.Context, digest string) (models.SetupToken, error)
	HasLiveToken(ctx context.Context, userID string) (bool, error)
}

// CredentialRepository establishes a password credential from a setup
// token as one database transaction.
type CredentialRepository interface {
	// EstablishPassword atomically redeems the token with the given
	// digest, verifies the owner's email binding, stores the password
	// hash and revokes every session of the account. All of it commits
	// together: any failure — including an email mismatch or a transient
	// driver error — rolls the redemption back, so the token stays
	// usable and the caller may retry with the same plaintext.
	//
	// Returns ErrTokenNotRedeemable when the digest is absent, used, or
	// expired (exactly one of two concurrent redemptions succeeds), and
	// ErrTokenEmailMismatch when the token belongs to another account.
	EstablishPassword(ctx context.Context, digest, email, passwordHash string) (models.User, error)
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	UserID string
	Status string
	Limit  uint64
}

// OrderRepository reads order records. Order creation happens only inside
// the payment transaction, never through this interface.
type OrderRepository interface {
	FindByPaymentRef(ctx context.Context, paymentRef string) (models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
}

// AddressRepository persists per-user shipping addresses, deduplicated by
// the (line1, postal_code, country) triple.
type AddressRepository interface {
	Upsert(ctx context.Context, address models.ShippingAddress) (models.ShippingAddress, error)
	ListByUser(ctx context.Context, userID string) ([]models.ShippingAddress, error)
}

// PaymentApplication carries everything the payment transaction needs.
// SetupToken is pre-minted by the caller (id, digest, expiry); the
// transaction inserts it only when the resolved user has no password
// credential and no live token.
type PaymentApplication struct {
	Details    models.PaymentDetails
	Provider   string
	SetupToken models.SetupToken
}

// PaymentOutcome reports what the payment transaction actually did.
type PaymentOutcome struct {
	Result      models.IngestResult
	User        models.User
	TokenIssued bool
}

// PaymentRepository applies one payment event as a single transaction:
// idempotency gate, user upsert, address upsert, order insert, and
// conditional setup-token insert all commit or roll back together.
type PaymentRepository interface {
	Apply(ctx context.Context, app PaymentApplication) (PaymentOutcome, error)
}
