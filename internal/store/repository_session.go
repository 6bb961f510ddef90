package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

// sessionRepository is the PostgreSQL-backed implementation of
// [SessionRepository]. Sessions are stored by token digest only; the table
// never sees a plaintext token.
type sessionRepository struct {
	logger *logger.Logger
	db     *DB
	ids    *utils.UUIDGenerator
}

// NewSessionRepository constructs a [SessionRepository] backed by the
// provided database connection and logger.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		db:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
	}
}

// CreateSession inserts the session row and then prunes the owning user's
// expired rows beyond the retention cap. The prune is best-effort: its
// failure is logged and the created session is still returned.
func (r *sessionRepository) CreateSession(ctx context.Context, session models.Session, retention int) (models.Session, error) {
	log := logger.FromContext(ctx)

	if session.SessionID == "" {
		session.SessionID = r.ids.Generate()
	}

	row := r.db.QueryRowContext(ctx, createSession, session.SessionID, session.UserID, session.TokenDigest, session.ExpiresAt)

	var saved models.Session
	if err := row.Scan(&saved.SessionID, &saved.UserID, &saved.TokenDigest, &saved.ExpiresAt, &saved.CreatedAt, &saved.LastUsedAt); err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateSession").Str("user_id", session.UserID).Msg("error: session insert failed")
		return models.Session{}, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	if _, err := r.db.ExecContext(ctx, pruneUserSessions, session.UserID, retention); err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateSession").Str("user_id", session.UserID).Msg("session retention prune failed")
	}

	return saved, nil
}

// FindByDigest retrieves the session whose stored token digest matches.
// Returns [ErrNoSessionWasFound] when no row matches.
func (r *sessionRepository) FindByDigest(ctx context.Context, digest string) (models.Session, error) {
	log := logger.FromContext(ctx)

	var session models.Session
	row := r.db.QueryRowContext(ctx, findSessionByDigest, digest)
	if err := row.Scan(&session.SessionID, &session.UserID, &session.TokenDigest, &session.ExpiresAt, &session.CreatedAt, &session.LastUsedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrNoSessionWasFound
		}
		log.Err(err).Str("func", "*sessionRepository.FindByDigest").Msg("error: session lookup failed")
		return models.Session{}, r.db.wrapStoreError(ErrScanningRow, err)
	}

	return session, nil
}

// Touch updates the session's last-used timestamp.
func (r *sessionRepository) Touch(ctx context.Context, sessionID string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, touchSession, sessionID); err != nil {
		log.Err(err).Str("func", "*sessionRepository.Touch").Str("session_id", sessionID).Msg("error: session touch failed")
		return r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	return nil
}

// DeleteByDigest removes the session with the given token digest and
// reports whether a row was actually deleted.
func (r *sessionRepository) DeleteByDigest(ctx context.Context, digest string) (bool, error) {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, deleteSessionByDigest, digest)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.DeleteByDigest").Msg("error: session delete failed")
		return false, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	return affected > 0, nil
}

// DeleteByID removes the session row by identifier. Used by lazy expiry.
func (r *sessionRepository) DeleteByID(ctx context.Context, sessionID string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteSessionByID, sessionID); err != nil {
		log.Err(err).Str("func", "*sessionRepository.DeleteByID").Str("session_id", sessionID).Msg("error: session delete failed")
		return r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	return nil
}

// DeleteAllForUser removes every session owned by the user. Used on
// account-level security events such as password establishment.
func (r *sessionRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteUserSessions, userID); err != nil {
		log.Err(err).Str("func", "*sessionRepository.DeleteAllForUser").Str("user_id", userID).Msg("error: bulk session delete failed")
		return r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	return nil
}
