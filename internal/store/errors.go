package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when creating a user fails because
	// an account with the same normalized email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least
	// one user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrNoSessionWasFound is returned when a session lookup by token
	// digest matches no row.
	ErrNoSessionWasFound = errors.New("no session was found")

	// ErrTokenNotRedeemable is returned when the conditional redemption
	// update matches no row: the token is absent, already used, or
	// expired. The three cases are distinguished by [SetupTokenRepository.
	// FindByDigest] for logging only, never surfaced to external callers.
	ErrTokenNotRedeemable = errors.New("setup token is not redeemable")

	// ErrNoTokenWasFound is returned when a setup-token lookup by digest
	// matches no row.
	ErrNoTokenWasFound = errors.New("no setup token was found")

	// ErrTokenEmailMismatch is returned when a redeemable token is
	// presented together with an email that does not belong to the
	// token's owner. The enclosing transaction rolls back, so the token
	// stays unused. Externally indistinguishable from any other invalid
	// token.
	ErrTokenEmailMismatch = errors.New("setup token email mismatch")

	// ErrNoOrderWasFound is returned when an order lookup by payment
	// reference matches no row.
	ErrNoOrderWasFound = errors.New("no order was found")

	// ErrDuplicatePaymentRef is returned when an order insert collides
	// with the payment_ref unique constraint: a concurrent delivery of
	// the same event won the race. Callers treat it as already-processed.
	ErrDuplicatePaymentRef = errors.New("payment reference already recorded")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrTransientStore marks failures the classifier deems retryable
	// (connection loss, serialization failure, deadlock). Callers may
	// retry the whole operation; every write path is idempotency-guarded.
	ErrTransientStore = errors.New("transient store failure")

	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
