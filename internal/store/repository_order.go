package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/models"
)

// orderRepository is the PostgreSQL-backed read side for orders. Order
// rows are only ever created inside the payment transaction (see
// [paymentRepository]); this repository serves lookups and listings.
type orderRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewOrderRepository constructs an [OrderRepository] backed by the
// provided database connection and logger.
func NewOrderRepository(db *DB, logger *logger.Logger) OrderRepository {
	logger.Debug().Msg("creating order repository")
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// FindByPaymentRef retrieves the order recorded for a payment reference.
// Returns [ErrNoOrderWasFound] when no row matches — for the ingestion
// pipeline that means the event has not been processed yet.
func (r *orderRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (models.Order, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findOrderByPaymentRef, paymentRef)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Order{}, ErrNoOrderWasFound
		}
		log.Err(err).Str("func", "*orderRepository.FindByPaymentRef").Msg("error: order lookup failed")
		return models.Order{}, r.db.wrapStoreError(ErrScanningRow, err)
	}

	return order, nil
}

// ListOrders retrieves orders matching the filter, newest first. The
// query is built dynamically: UserID is mandatory, Status and Limit are
// applied only when set.
func (r *orderRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select(
		"order_id", "user_id", "email", "amount", "currency", "status", "provider", "payment_ref",
		"COALESCE(tracking_number, '')", "COALESCE(carrier, '')", "created_at",
	).
		From("orders").
		Where(sq.Eq{"user_id": filter.UserID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*orderRepository.ListOrders").Msg("failed to build orders query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*orderRepository.ListOrders").Str("user_id", filter.UserID).Msg("failed to execute orders query")
		return nil, r.db.wrapStoreError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0, 16)
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*orderRepository.ListOrders").Msg("failed to scan order row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		orders = append(orders, order)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "*orderRepository.ListOrders").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return orders, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (models.Order, error) {
	var order models.Order
	var userID sql.NullString

	err := row.Scan(
		&order.OrderID,
		&userID,
		&order.Email,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&order.Provider,
		&order.PaymentRef,
		&order.TrackingNumber,
		&order.Carrier,
		&order.CreatedAt,
	)
	if err != nil {
		return models.Order{}, err
	}
	order.UserID = userID.String

	return order, nil
}
