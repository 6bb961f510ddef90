package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

// paymentRepository applies a payment event as one database transaction.
// The idempotency gate, user upsert, address upsert, order insert and the
// conditional setup-token insert commit together, so a failure at any
// step leaves no partial state behind.
type paymentRepository struct {
	logger *logger.Logger
	db     *DB
	ids    *utils.UUIDGenerator
}

// NewPaymentRepository constructs a [PaymentRepository] backed by the
// provided database connection and logger.
func NewPaymentRepository(db *DB, logger *logger.Logger) PaymentRepository {
	logger.Debug().Msg("creating payment repository")
	return &paymentRepository{
		db:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
	}
}

// Apply runs the payment write set.
//
// A payment reference that already has an order short-circuits to an
// already-processed outcome without writing anything. Two instances
// racing on the same reference both pass the in-tx gate at worst; the
// unique constraint on orders.payment_ref then fails exactly one insert,
// which is reported as already-processed rather than as an error.
func (r *paymentRepository) Apply(ctx context.Context, app PaymentApplication) (PaymentOutcome, error) {
	log := logger.FromContext(ctx)
	details := app.Details

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*paymentRepository.Apply").Msg("failed to begin payment transaction")
		return PaymentOutcome{}, r.db.wrapStoreError(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// idempotency gate
	existing, err := r.orderByPaymentRef(ctx, tx, details.PaymentRef)
	if err == nil {
		log.Info().Str("func", "*paymentRepository.Apply").Str("payment_ref", details.PaymentRef).Msg("payment reference already processed")
		return alreadyProcessedOutcome(existing), nil
	}
	if !errors.Is(err, ErrNoOrderWasFound) {
		return PaymentOutcome{}, err
	}

	user, err := r.upsertUser(ctx, tx, details)
	if err != nil {
		return PaymentOutcome{}, err
	}

	if details.HasAddress && !details.Address.Empty() {
		if err = r.upsertAddress(ctx, tx, user.UserID, details.Address); err != nil {
			return PaymentOutcome{}, err
		}
	}

	order := models.Order{
		UserID:     user.UserID,
		Email:      details.Email,
		Amount:     details.Amount,
		Currency:   details.Currency,
		Status:     models.OrderStatusPaid,
		Provider:   app.Provider,
		PaymentRef: details.PaymentRef,
	}
	order, err = r.insertOrder(ctx, tx, order)
	if err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			// lost the race: the other writer's order row is the outcome
			log.Info().Str("func", "*paymentRepository.Apply").Str("payment_ref", details.PaymentRef).Msg("concurrent writer recorded the order first")
			return r.concurrentOutcome(ctx, details.PaymentRef)
		}
		return PaymentOutcome{}, err
	}

	tokenIssued := false
	if !user.HasPassword() {
		tokenIssued, err = r.issueSetupToken(ctx, tx, user.UserID, app.SetupToken)
		if err != nil {
			return PaymentOutcome{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*paymentRepository.Apply").Str("payment_ref", details.PaymentRef).Msg("failed to commit payment transaction")
		return PaymentOutcome{}, r.db.wrapStoreError(ErrCommitingTransaction, err)
	}

	return PaymentOutcome{
		Result: models.IngestResult{
			OrderID: order.OrderID,
			UserID:  user.UserID,
		},
		User:        user,
		TokenIssued: tokenIssued,
	}, nil
}

func (r *paymentRepository) orderByPaymentRef(ctx context.Context, tx *sql.Tx, paymentRef string) (models.Order, error) {
	row := tx.QueryRowContext(ctx, findOrderByPaymentRef, paymentRef)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Order{}, ErrNoOrderWasFound
		}
		logger.FromContext(ctx).Err(err).Str("func", "*paymentRepository.orderByPaymentRef").Msg("error: idempotency lookup failed")
		return models.Order{}, r.db.wrapStoreError(ErrScanningRow, err)
	}

	return order, nil
}

// upsertUser resolves the purchaser account: inserts a fresh row, or on
// an email match fills in name and phone only where the existing row has
// none. Established profile data is never overwritten by event payloads.
func (r *paymentRepository) upsertUser(ctx context.Context, tx *sql.Tx, details models.PaymentDetails) (models.User, error) {
	row := tx.QueryRowContext(ctx, upsertUserByEmail, r.ids.Generate(), details.Email, details.Name, details.Phone)

	var user models.User
	var passwordHash sql.NullString
	if err := row.Scan(&user.UserID, &user.Email, &user.Name, &user.Phone, &passwordHash, &user.CreatedAt); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*paymentRepository.upsertUser").Msg("error: user upsert failed")
		return models.User{}, r.db.wrapStoreError(ErrExecutingStatement, err)
	}
	user.PasswordHash = passwordHash.String

	return user, nil
}

func (r *paymentRepository) upsertAddress(ctx context.Context, tx *sql.Tx, userID string, address models.ShippingAddress) error {
	row := tx.QueryRowContext(ctx, upsertShippingAddress,
		r.ids.Generate(),
		userID,
		address.Line1,
		address.Line2,
		address.City,
		address.Region,
		address.PostalCode,
		address.Country,
	)

	var saved models.ShippingAddress
	err := row.Scan(
		&saved.AddressID,
		&saved.UserID,
		&saved.Line1,
		&saved.Line2,
		&saved.City,
		&saved.Region,
		&saved.PostalCode,
		&saved.Country,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*paymentRepository.upsertAddress").Str("user_id", userID).Msg("error: address upsert failed")
		return r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	return nil
}

func (r *paymentRepository) insertOrder(ctx context.Context, tx *sql.Tx, order models.Order) (models.Order, error) {
	if order.OrderID == "" {
		order.OrderID = r.ids.Generate()
	}

	row := tx.QueryRowContext(ctx, createOrder,
		order.OrderID,
		order.UserID,
		order.Email,
		order.Amount,
		order.Currency,
		order.Status,
		order.Provider,
		order.PaymentRef,
	)

	if err := row.Scan(&order.OrderID, &order.CreatedAt); err != nil {
		if postgresError(err) != pgerrcode.UniqueViolation {
			logger.FromContext(ctx).Err(err).Str("func", "*paymentRepository.insertOrder").Str("payment_ref", order.PaymentRef).Msg("error: order insert failed")
		}
		return models.Order{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return order, nil
}

// issueSetupToken inserts the pre-minted token unless the user already
// holds a live one. Reports whether a row was actually inserted.
func (r *paymentRepository) issueSetupToken(ctx context.Context, tx *sql.Tx, userID string, token models.SetupToken) (bool, error) {
	log := logger.FromContext(ctx)

	var hasLive bool
	if err := tx.QueryRowContext(ctx, hasLiveSetupToken, userID).Scan(&hasLive); err != nil {
		log.Err(err).Str("func", "*paymentRepository.issueSetupToken").Str("user_id", userID).Msg("error: live token check failed")
		return false, r.db.wrapStoreError(ErrScanningRow, err)
	}
	if hasLive {
		return false, nil
	}

	if token.TokenID == "" {
		token.TokenID = r.ids.Generate()
	}
	token.UserID = userID

	_, err := tx.ExecContext(ctx, insertSetupToken, token.TokenID, token.UserID, token.TokenDigest, token.ExpiresAt)
	if err != nil {
		log.Err(err).Str("func", "*paymentRepository.issueSetupToken").Str("user_id", userID).Msg("error: setup token insert failed")
		return false, r.db.wrapStoreError(ErrExecutingStatement, err)
	}

	return true, nil
}

// concurrentOutcome resolves an order-insert unique violation: the row
// the concurrent writer committed is read back and reported as the
// already-processed result.
func (r *paymentRepository) concurrentOutcome(ctx context.Context, paymentRef string) (PaymentOutcome, error) {
	row := r.db.QueryRowContext(ctx, findOrderByPaymentRef, paymentRef)

	order, err := scanOrder(row)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*paymentRepository.concurrentOutcome").Str("payment_ref", paymentRef).Msg("error: post-conflict order lookup failed")
		return PaymentOutcome{}, ErrDuplicatePaymentRef
	}

	return alreadyProcessedOutcome(order), nil
}

func alreadyProcessedOutcome(order models.Order) PaymentOutcome {
	return PaymentOutcome{
		Result: models.IngestResult{
			AlreadyProcessed: true,
			OrderID:          order.OrderID,
			UserID:           order.UserID,
		},
	}
}
