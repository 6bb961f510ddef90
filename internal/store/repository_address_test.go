package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkhasanov/storefront/internal/utils"
	"github.com/mkhasanov/storefront/models"
)

var addressColumns = []string{
	"address_id", "user_id", "line1", "line2", "city", "region", "postal_code", "country",
	"created_at", "updated_at",
}

func newTestAddressRepo(t *testing.T) (*addressRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, conn := newTestDB(t)
	repo := &addressRepository{
		db:     db,
		logger: db.logger,
		ids:    utils.NewUUIDGenerator(),
	}
	return repo, mock, conn
}

func TestUpsertAddress_ReturnsCanonicalRow(t *testing.T) {
	repo, mock, conn := newTestAddressRepo(t)
	defer conn.Close()

	now := time.Now()
	address := models.ShippingAddress{
		UserID:     "u-1",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}

	rows := sqlmock.NewRows(addressColumns).
		AddRow("a-1", "u-1", "1 Main St", "", "Springfield", "", "12345", "US", now, now)

	mock.ExpectQuery("INSERT INTO shipping_addresses").
		WithArgs(sqlmock.AnyArg(), "u-1", "1 Main St", "", "Springfield", "", "12345", "US").
		WillReturnRows(rows)

	saved, err := repo.Upsert(context.Background(), address)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.AddressID != "a-1" {
		t.Errorf("expected canonical row id a-1, got %s", saved.AddressID)
	}
}

func TestUpsertAddress_QueryError(t *testing.T) {
	repo, mock, conn := newTestAddressRepo(t)
	defer conn.Close()

	mock.ExpectQuery("INSERT INTO shipping_addresses").
		WillReturnError(errors.New("db is down"))

	_, err := repo.Upsert(context.Background(), models.ShippingAddress{UserID: "u-1", Line1: "1 Main St"})
	if !errors.Is(err, ErrExecutingQuery) {
		t.Fatalf("expected ErrExecutingQuery, got %v", err)
	}
}

func TestListAddressesByUser(t *testing.T) {
	repo, mock, conn := newTestAddressRepo(t)
	defer conn.Close()

	now := time.Now()
	rows := sqlmock.NewRows(addressColumns).
		AddRow("a-2", "u-1", "2 Oak Ave", "", "Springfield", "", "12345", "US", now, now).
		AddRow("a-1", "u-1", "1 Main St", "", "Springfield", "", "12345", "US", now, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT address_id.+FROM shipping_addresses.+ORDER BY updated_at DESC").
		WithArgs("u-1").
		WillReturnRows(rows)

	addresses, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addresses))
	}
	if addresses[0].AddressID != "a-2" {
		t.Errorf("expected most recently updated first, got %s", addresses[0].AddressID)
	}
}
