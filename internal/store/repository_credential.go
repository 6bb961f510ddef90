package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/models"
)

// credentialRepository runs the password-establishment write set as one
// database transaction. The token redemption, the email-binding check,
// the password write and the bulk session revocation commit together: a
// failure at any step rolls the redemption back, so the single-use token
// is only ever consumed by a fully established password.
type credentialRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCredentialRepository constructs a [CredentialRepository] backed by
// the provided database connection and logger.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

// EstablishPassword redeems the token with the given digest and stores
// the password hash for its owner.
//
// The redemption is the same conditional UPDATE used everywhere: of two
// concurrent calls with the same digest, exactly one sees a row and the
// other observes [ErrTokenNotRedeemable]. An email mismatch or any later
// failure aborts the transaction, leaving the token unused.
func (r *credentialRepository) EstablishPassword(ctx context.Context, digest, email, passwordHash string) (models.User, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.EstablishPassword").Msg("failed to begin credential transaction")
		return models.User{}, r.db.wrapStoreError(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var userID string
	if err = tx.QueryRowContext(ctx, redeemSetupToken, digest).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrTokenNotRedeemable
		}
		log.Err(err).Str("func", "*credentialRepository.EstablishPassword").Msg("error: token redemption failed")
		return models.User{}, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	var user models.User
	var storedHash sql.NullString
	row := tx.QueryRowContext(ctx, findUserByID, userID)
	if err = row.Scan(&user.UserID, &user.Email, &user.Name, &user.Phone, &storedHash, &user.CreatedAt); err != nil {
		log.Err(err).Str("func", "*credentialRepository.EstablishPassword").Str("user_id", userID).Msg("error: token owner lookup failed")
		return models.User{}, r.db.wrapStoreError(ErrScanningRow, err)
	}

	if user.Email != email {
		log.Info().Str("func", "*credentialRepository.EstablishPassword").Str("user_id", userID).Msg("setup token presented with mismatched email")
		return models.User{}, ErrTokenEmailMismatch
	}

	if _, err = tx.ExecContext(ctx, setUserPassword, userID, passwordHash); err != nil {
		log.Err(err).Str("func", "*credentialRepository.EstablishPassword").Str("user_id", userID).Msg("error: password update failed")
		return models.User{}, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	// account-level security event: every pre-existing session dies with
	// the same commit that establishes the credential
	if _, err = tx.ExecContext(ctx, deleteUserSessions, userID); err != nil {
		log.Err(err).Str("func", "*credentialRepository.EstablishPassword").Str("user_id", userID).Msg("error: bulk session revocation failed")
		return models.User{}, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*credentialRepository.EstablishPassword").Str("user_id", userID).Msg("failed to commit credential transaction")
		return models.User{}, r.db.wrapStoreError(ErrCommitingTransaction, err)
	}

	user.PasswordHash = passwordHash
	return user, nil
}
