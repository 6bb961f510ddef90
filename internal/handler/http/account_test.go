package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/service"
	"github.com/mkhasanov/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAccountHandler builds a handler whose auth middleware resolves every
// bearer token to the fixed user "u-1".
func newAccountHandler(t *testing.T, account service.AccountService) *Handler {
	t.Helper()
	auth := &mockAuthService{
		currentUserFn: func(_ context.Context, _ string) (models.User, models.Session, error) {
			return models.User{UserID: "u-1", Email: "buyer@example.com"}, models.Session{SessionID: "s-1"}, nil
		},
	}
	svcs := &service.Services{
		AuthService:    auth,
		AccountService: account,
	}
	return NewHandler(svcs, &stubPinger{}, logger.Nop())
}

func TestListOrdersHandler_Success(t *testing.T) {
	account := &mockAccountService{
		ordersFn: func(_ context.Context, userID, status string) ([]models.Order, error) {
			assert.Equal(t, "u-1", userID, "listing must be scoped to the session owner")
			assert.Equal(t, "paid", status)
			return []models.Order{{
				OrderID:    "o-1",
				Email:      "buyer@example.com",
				Amount:     49.90,
				Currency:   "usd",
				Status:     models.OrderStatusPaid,
				Provider:   "stripe",
				PaymentRef: "pi_123",
				CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			}}, nil
		},
	}
	h := newAccountHandler(t, account)

	req := httptest.NewRequest(http.MethodGet, "/api/orders?status=paid", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "o-1", orders[0].OrderID)
	assert.Equal(t, "pi_123", orders[0].PaymentRef)
}

func TestListOrdersHandler_BadStatus(t *testing.T) {
	account := &mockAccountService{
		ordersFn: func(_ context.Context, _, status string) ([]models.Order, error) {
			return nil, service.ErrInvalidDataProvided
		},
	}
	h := newAccountHandler(t, account)

	req := httptest.NewRequest(http.MethodGet, "/api/orders?status=bogus", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersHandler_Unauthenticated(t *testing.T) {
	h := newAccountHandler(t, &mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAddressesHandler_Success(t *testing.T) {
	account := &mockAccountService{
		addressesFn: func(_ context.Context, userID string) ([]models.ShippingAddress, error) {
			assert.Equal(t, "u-1", userID)
			return []models.ShippingAddress{{
				Line1:      "12 Herzl St",
				City:       "Tel Aviv",
				PostalCode: "6688312",
				Country:    "IL",
			}}, nil
		},
	}
	h := newAccountHandler(t, account)

	req := httptest.NewRequest(http.MethodGet, "/api/addresses", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var addresses []models.ShippingAddress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addresses))
	require.Len(t, addresses, 1)
	assert.Equal(t, "12 Herzl St", addresses[0].Line1)
}
