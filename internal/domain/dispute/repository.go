package dispute

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// Tally is the vote count snapshot a resolution verdict was computed from
type Tally struct {
	ForBuyer  int
	ForSeller int
}

// Repository defines the persistence contract for disputes and their votes
type Repository interface {
	// FindByID retrieves a dispute by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Dispute, error)

	// FindOpenByOrderID retrieves the unresolved dispute for an order, if any.
	// Returns shared.ErrNotFound when none is open.
	FindOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*Dispute, error)

	// FindByOrderID retrieves all disputes ever opened for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Dispute, error)

	// List retrieves disputes matching the filter
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Dispute], error)

	// Create persists a new dispute. The store enforces at most one open
	// dispute per order; a conflicting insert returns
	// shared.ErrDuplicateDispute.
	Create(ctx context.Context, d *Dispute) error

	// Save persists dispute changes guarded by the expected current status.
	// A concurrent transition that already moved the dispute makes the
	// guarded update match nothing and Save returns
	// shared.ErrInvalidTransition.
	SaveWithStatusGuard(ctx context.Context, d *Dispute, expected Status) error

	// SaveResolution persists the resolution verdict guarded by the expected
	// status and the tally the verdict was computed from. A vote committed
	// after the tally was read makes the guarded update match nothing and
	// SaveResolution returns shared.ErrConcurrencyConflict.
	SaveResolution(ctx context.Context, d *Dispute, expected Status, tally Tally) error

	// AddVote persists a vote and increments the dispute's tally in one
	// transaction. The unique (dispute_id, voter_id) constraint rejects a
	// second vote from the same voter with shared.ErrAlreadyVoted, not a
	// check-then-insert.
	AddVote(ctx context.Context, d *Dispute, v *Vote) error

	// FindVotes retrieves all votes cast on a dispute
	FindVotes(ctx context.Context, disputeID uuid.UUID) ([]*Vote, error)
}
