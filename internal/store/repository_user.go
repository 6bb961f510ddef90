package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation and lookup against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
	ids    *utils.UUIDGenerator
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
	}
}

// CreateUser persists a new account record and returns the fully populated
// [models.User] with server-assigned fields.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists].
//   - Any other driver-level error → classified and wrapped.
//   - Scan failure → wrapped as [ErrScanningRow].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.UserID == "" {
		user.UserID = r.ids.Generate()
	}

	row := r.db.QueryRowContext(ctx, createUser, user.UserID, user.Email, user.Name, user.Phone, nullIfEmpty(user.PasswordHash))

	var saved models.User
	var passwordHash sql.NullString
	if err := row.Scan(&saved.UserID, &saved.Email, &saved.Name, &saved.Phone, &passwordHash, &saved.CreatedAt); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Str("email", user.Email).Msg("error: user insert failed")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrEmailAlreadyExists
		}
		return models.User{}, r.db.wrapStoreError(ErrExecutingStatement, err)
	}
	saved.PasswordHash = passwordHash.String

	return saved, nil
}

// FindUserByEmail retrieves the account whose normalized email matches.
//
// Error handling:
//   - [sql.ErrNoRows] → [ErrNoUserWasFound].
//   - Any other driver-level error → classified and wrapped.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findUserByEmail, email)
	return r.scanUser(ctx, row, func(err error) {
		log.Err(err).Str("func", "*userRepository.FindUserByEmail").Msg("error: user lookup by email failed")
	})
}

// FindUserByID retrieves the account with the given identifier.
func (r *userRepository) FindUserByID(ctx context.Context, userID string) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findUserByID, userID)
	return r.scanUser(ctx, row, func(err error) {
		log.Err(err).Str("func", "*userRepository.FindUserByID").Str("user_id", userID).Msg("error: user lookup by id failed")
	})
}

func (r *userRepository) scanUser(_ context.Context, row *sql.Row, logErr func(error)) (models.User, error) {
	var user models.User
	var passwordHash sql.NullString

	if err := row.Scan(&user.UserID, &user.Email, &user.Name, &user.Phone, &passwordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		logErr(err)
		return models.User{}, r.db.wrapStoreError(ErrScanningRow, err)
	}
	user.PasswordHash = passwordHash.String

	return user, nil
}

// nullIfEmpty maps an empty string to SQL NULL so that "no credential"
// stays distinguishable from an empty hash at the schema level.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
