package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

// setupTokenRepository is the PostgreSQL-backed implementation of
// [SetupTokenRepository].
type setupTokenRepository struct {
	logger *logger.Logger
	db     *DB
	ids    *utils.UUIDGenerator
}

// NewSetupTokenRepository constructs a [SetupTokenRepository] backed by
// the provided database connection and logger.
func NewSetupTokenRepository(db *DB, logger *logger.Logger) SetupTokenRepository {
	logger.Debug().Msg("creating setup token repository")
	return &setupTokenRepository{
		db:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
	}
}

// CreateToken persists a new setup-token row and returns it fully
// populated.
func (r *setupTokenRepository) CreateToken(ctx context.Context, token models.SetupToken) (models.SetupToken, error) {
	log := logger.FromContext(ctx)

	if token.TokenID == "" {
		token.TokenID = r.ids.Generate()
	}

	row := r.db.QueryRowContext(ctx, createSetupToken, token.TokenID, token.UserID, token.TokenDigest, token.ExpiresAt)

	var saved models.SetupToken
	if err := row.Scan(&saved.TokenID, &saved.UserID, &saved.TokenDigest, &saved.ExpiresAt, &saved.UsedAt, &saved.CreatedAt); err != nil {
		log.Err(err).Str("func", "*setupTokenRepository.CreateToken").Str("user_id", token.UserID).Msg("error: setup token insert failed")
		return models.SetupToken{}, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	return saved, nil
}

// FindByDigest retrieves the token row regardless of its state. It exists
// so a failed redemption can be classified (absent, used, expired) for
// structured logs; the distinction must never reach an external caller.
func (r *setupTokenRepository) FindByDigest(ctx context.Context, digest string) (models.SetupToken, error) {
	log := logger.FromContext(ctx)

	var token models.SetupToken
	row := r.db.QueryRowContext(ctx, findSetupTokenByDigest, digest)
	if err := row.Scan(&token.TokenID, &token.UserID, &token.TokenDigest, &token.ExpiresAt, &token.UsedAt, &token.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SetupToken{}, ErrNoTokenWasFound
		}
		log.Err(err).Str("func", "*setupTokenRepository.FindByDigest").Msg("error: token lookup failed")
		return models.SetupToken{}, r.db.wrapStoreError(ErrScanningRow, err)
	}

	return token, nil
}

// HasLiveToken reports whether the user owns at least one unused,
// unexpired setup token.
func (r *setupTokenRepository) HasLiveToken(ctx context.Context, userID string) (bool, error) {
	log := logger.FromContext(ctx)

	var exists bool
	row := r.db.QueryRowContext(ctx, hasLiveSetupToken, userID)
	if err := row.Scan(&exists); err != nil {
		log.Err(err).Str("func", "*setupTokenRepository.HasLiveToken").Str("user_id", userID).Msg("error: live token check failed")
		return false, r.db.wrapStoreError(ErrExecutingQuery, err)
	}

	return exists, nil
}
