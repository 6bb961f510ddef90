package service

import (
	"context"
	"fmt"

	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/store"
	"github.com/mkhasanov/storefront/models"
)

// defaultOrderPageSize caps a single listing so an account with a long
// purchase history cannot pull the whole table in one call.
const defaultOrderPageSize = 50

type accountService struct {
	orders    store.OrderRepository
	addresses store.AddressRepository

	logger *logger.Logger
}

func NewAccountService(orders store.OrderRepository, addresses store.AddressRepository, logger *logger.Logger) AccountService {
	return &accountService{
		orders:    orders,
		addresses: addresses,
		logger:    logger,
	}
}

func (s *accountService) Orders(ctx context.Context, userID, status string) ([]models.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	switch status {
	case "", models.OrderStatusPaid, models.OrderStatusShipped:
	default:
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidDataProvided, status)
	}

	orders, err := s.orders.ListOrders(ctx, store.OrderFilter{
		UserID: userID,
		Status: status,
		Limit:  defaultOrderPageSize,
	})
	if err != nil {
		s.logger.Err(err).Str("func", "*accountService.Orders").Str("user_id", userID).Msg("order listing failed")
		return nil, err
	}

	return orders, nil
}

func (s *accountService) Addresses(ctx context.Context, userID string) ([]models.ShippingAddress, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Err(err).Str("func", "*accountService.Addresses").Str("user_id", userID).Msg("address listing failed")
		return nil, err
	}

	return addresses, nil
}
