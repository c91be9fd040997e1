package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/shared"
)

// Repository defines the persistence contract for reviews and the rating
// averages derived from them
type Repository interface {
	// FindByID retrieves a review by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// FindByOrderAndReviewer retrieves the review one party wrote for an
	// order. Returns shared.ErrNotFound when none exists.
	FindByOrderAndReviewer(ctx context.Context, orderID, reviewerID uuid.UUID) (*Review, error)

	// FindByReviewee retrieves reviews received by a user
	FindByReviewee(ctx context.Context, revieweeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Review], error)

	// Create persists a new review and updates the reviewee's average rating
	// in the same transaction. The unique (order_id, reviewer_id) constraint
	// rejects a second review with shared.ErrDuplicateReview.
	Create(ctx context.Context, r *Review) error

	// Save persists edits to an existing review
	Save(ctx context.Context, r *Review) error

	// Delete removes a review and recomputes the reviewee's average rating
	// from the remaining rows in the same transaction
	Delete(ctx context.Context, r *Review) error

	// AverageRating returns the reviewee's current average, rounded to one
	// decimal place, or zero when no reviews remain
	AverageRating(ctx context.Context, revieweeID uuid.UUID) (decimal.Decimal, error)
}
