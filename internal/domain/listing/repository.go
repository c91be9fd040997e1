package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// Repository defines persistence operations for listings.
//
// ReserveStock and RestoreStock are the inventory ledger: ReserveStock must be
// a single conditional update (quantity >= n guard) so two buyers racing for
// the last unit cannot both succeed. Both join an ambient transaction when
// the context carries one.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]Listing, error)
	Save(ctx context.Context, l *Listing) error

	// ReserveStock atomically decrements stock by quantity, failing with
	// shared.ErrInsufficientStock when not enough stock remains.
	ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error

	// RestoreStock atomically returns quantity units of stock to the listing.
	RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error
}
