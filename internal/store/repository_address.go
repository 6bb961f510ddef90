package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

// addressRepository persists shipping addresses with per-user
// deduplication on (line1, postal_code, country).
type addressRepository struct {
	logger *logger.Logger
	db     *DB
	ids    *utils.UUIDGenerator
}

// NewAddressRepository constructs an [AddressRepository] backed by the
// provided database connection and logger.
func NewAddressRepository(db *DB, logger *logger.Logger) AddressRepository {
	logger.Debug().Msg("creating address repository")
	return &addressRepository{
		db:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
	}
}

// Upsert inserts the address or, when the user already has a row with
// the same dedup key, refreshes its mutable fields. The returned value
// carries the canonical row either way.
func (r *addressRepository) Upsert(ctx context.Context, address models.ShippingAddress) (models.ShippingAddress, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, upsertShippingAddress,
		r.ids.Generate(),
		address.UserID,
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
		log.Err(err).Str("func", "*addressRepository.Upsert").Str("user_id", address.UserID).Msg("failed to upsert shipping address")
		return models.ShippingAddress{}, r.db.wrapStoreError(ErrExecutingQuery, err)
	}

	return saved, nil
}

// ListByUser retrieves the user's saved addresses, most recently
// updated first.
func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]models.ShippingAddress, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select(
		"address_id", "user_id", "line1", "line2", "city", "region", "postal_code", "country",
		"created_at", "updated_at",
	).
		From("shipping_addresses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*addressRepository.ListByUser").Msg("failed to build addresses query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*addressRepository.ListByUser").Str("user_id", userID).Msg("failed to execute addresses query")
		return nil, r.db.wrapStoreError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	addresses := make([]models.ShippingAddress, 0, 4)
	for rows.Next() {
		var address models.ShippingAddress
		scanErr := rows.Scan(
			&address.AddressID,
			&address.UserID,
			&address.Line1,
			&address.Line2,
			&address.City,
			&address.Region,
			&address.PostalCode,
			&address.Country,
			&address.CreatedAt,
			&address.UpdatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*addressRepository.ListByUser").Msg("failed to scan address row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		addresses = append(addresses, address)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "*addressRepository.ListByUser").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return addresses, nil
}
