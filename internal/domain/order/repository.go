package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// Repository defines persistence operations for orders.
//
// SaveWithStatusGuard implements the transition compare-and-swap: the write
// only lands when the stored status still equals expectedStatus, otherwise
// shared.ErrInvalidTransition comes back and nothing changes. Concurrent
// transitions on one order therefore see exactly one winner.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]Order, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]Order, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// Create inserts a new order.
	Create(ctx context.Context, o *Order) error

	// SaveWithStatusGuard persists the order only if its stored status still
	// equals expectedStatus.
	SaveWithStatusGuard(ctx context.Context, o *Order, expectedStatus Status) error

	// GenerateOrderNumber produces the next human-readable order number.
	GenerateOrderNumber(ctx context.Context) (string, error)
}
