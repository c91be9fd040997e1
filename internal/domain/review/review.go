package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// EditWindow is how long the author may amend a review after creation
const EditWindow = 7 * 24 * time.Hour

// Review is one party's rating of the other after a confirmed order. The
// rating is immutable; only the comment and images can be edited, and only by
// the author within the edit window. One review per (order, reviewer).
type Review struct {
	shared.BaseAggregateRoot
	OrderID    uuid.UUID
	ReviewerID uuid.UUID
	RevieweeID uuid.UUID
	Rating     int
	Comment    string
	Images     []string
}

// NewReview creates a review. The caller must have verified the order is
// confirmed and that the reviewer and reviewee are its two parties.
func NewReview(orderID, reviewerID, revieweeID uuid.UUID, rating int, comment string, images []string) (*Review, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order ID cannot be empty")
	}
	if reviewerID == uuid.Nil || revieweeID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reviewer and reviewee IDs cannot be empty")
	}
	if reviewerID == revieweeID {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Cannot review yourself")
	}
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Rating must be between 1 and 5")
	}
	if len(comment) > 2000 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Review comment is too long")
	}

	return &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		ReviewerID:        reviewerID,
		RevieweeID:        revieweeID,
		Rating:            rating,
		Comment:           comment,
		Images:            images,
	}, nil
}

// Edit replaces the comment and images. Only the author may edit, the rating
// never changes, and the edit window is measured from creation.
func (r *Review) Edit(editorID uuid.UUID, comment string, images []string, now time.Time) error {
	if editorID != r.ReviewerID {
		return shared.NewDomainError("FORBIDDEN", "Only the author can edit a review")
	}
	if now.After(r.CreatedAt.Add(EditWindow)) {
		return shared.NewDomainError("FORBIDDEN", "The review edit window has closed")
	}
	if len(comment) > 2000 {
		return shared.NewDomainError("VALIDATION_ERROR", "Review comment is too long")
	}

	r.Comment = comment
	r.Images = images
	r.UpdatedAt = now

	return nil
}

// CanBeDeletedBy reports whether the actor may remove this review
func (r *Review) CanBeDeletedBy(actorID uuid.UUID) bool {
	return actorID == r.ReviewerID
}
