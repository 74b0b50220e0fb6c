// Package orders implements the user-facing select → proceed → confirm
// conversation. Transitions re-validate the product reference on every
// step because the catalog may change between button presses.
package orders

import (
	"context"
	"fmt"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage"
	"log/slog"
)

// Flow states tracked per user. Confirmed is terminal; the session
// returns to idle so a repeated confirm press is recognized as stale
// instead of producing a duplicate order.
const (
	StateShown   state.State = "order_shown"
	StatePending state.State = "order_pending"
)

// Customer identifies the ordering user as seen by the transport.
type Customer struct {
	ID       int64
	Username *string
}

// Service drives the order flow against the product and order stores.
type Service struct {
	products storage.ProductStore
	orders   storage.OrderStore
	sessions state.Manager
}

// New wires the order flow service.
func New(products storage.ProductStore, orders storage.OrderStore, sessions state.Manager) *Service {
	return &Service{products: products, orders: orders, sessions: sessions}
}

// Select validates the product reference from a deep link and moves the
// user to the shown state. Absence leaves the user idle.
func (s *Service) Select(ctx context.Context, userID int64, productID string) (*domain.Product, error) {
	p, err := s.lookup(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	s.sessions.SetState(userID, StateShown)
	logger.Debug(ctx, "service.orders", "flow.select",
		slog.Int64("user_id", userID),
		slog.String("product_id", productID),
	)
	return p, nil
}

// Proceed re-validates the product before asking for confirmation; the
// product may have been removed since it was shown.
func (s *Service) Proceed(ctx context.Context, userID int64, productID string) (*domain.Product, error) {
	p, err := s.lookup(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	s.sessions.SetState(userID, StatePending)
	logger.Debug(ctx, "service.orders", "flow.proceed",
		slog.Int64("user_id", userID),
		slog.String("product_id", productID),
	)
	return p, nil
}

// Confirm re-validates a third time, snapshots the product name into a
// new order, and commits it. Only a successful append reaches the
// confirmed state; every failure resets the user to idle with no
// partial write. A confirm outside the pending state is stale and
// mutates nothing.
func (s *Service) Confirm(ctx context.Context, cust Customer, productID string) (*domain.Order, error) {
	if s.sessions.GetState(cust.ID) != StatePending {
		return nil, fmt.Errorf("%w: confirm for user %d", domain.ErrStaleAction, cust.ID)
	}

	p, err := s.lookup(ctx, cust.ID, productID)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		UserID:      cust.ID,
		Username:    cust.Username,
		ProductID:   p.ID,
		ProductName: p.Name,
	}
	created, err := s.orders.Append(ctx, order)
	if err != nil {
		s.sessions.ClearState(cust.ID)
		logger.Error(ctx, "service.orders", "flow.confirm.failed",
			slog.Int64("user_id", cust.ID),
			slog.String("product_id", productID),
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	s.sessions.ClearState(cust.ID)
	logger.Info(ctx, "service.orders", "flow.confirmed",
		slog.Int64("user_id", cust.ID),
		slog.String("product_id", created.ProductID),
		slog.String("product_name", created.ProductName),
	)
	return &created, nil
}

// lookup resolves the product or resets the user to idle on absence.
func (s *Service) lookup(ctx context.Context, userID int64, productID string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		s.sessions.ClearState(userID)
		logger.Debug(ctx, "service.orders", "flow.product_missing",
			slog.Int64("user_id", userID),
			slog.String("product_id", productID),
		)
		return nil, fmt.Errorf("%w: id %q", domain.ErrProductNotFound, productID)
	}
	return p, nil
}
