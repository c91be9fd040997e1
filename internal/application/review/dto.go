package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/review"
)

// CreateReviewRequest represents a request to review a confirmed order
type CreateReviewRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Rating  int       `json:"rating" binding:"required,min=1,max=5"`
	Comment string    `json:"comment" binding:"max=2000"`
	Images  []string  `json:"images"`
}

// UpdateReviewRequest represents an author's edit. The rating is immutable
// and has no field here.
type UpdateReviewRequest struct {
	Comment string   `json:"comment" binding:"max=2000"`
	Images  []string `json:"images"`
}

// ReviewListFilter represents filter options for review lists
type ReviewListFilter struct {
	Page     int `form:"page" binding:"min=0"`
	PageSize int `form:"page_size" binding:"min=0,max=100"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	Images     []string  `json:"images,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RatingResponse represents a user's aggregate rating
type RatingResponse struct {
	UserID        uuid.UUID       `json:"user_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
}

// ToReviewResponse converts a domain review to the response representation
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		OrderID:    r.OrderID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Images:     r.Images,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ToReviewResponses converts a slice of reviews
func ToReviewResponses(reviews []*review.Review) []ReviewResponse {
	responses := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		responses[i] = ToReviewResponse(r)
	}
	return responses
}
