package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/order"
	"github.com/kbridge/backend/internal/domain/review"
	"github.com/kbridge/backend/internal/domain/shared"
)

// Service handles reviews and the rating averages derived from them. The
// repository keeps review writes and average recomputation atomic.
type Service struct {
	reviewRepo review.Repository
	orderRepo  order.Repository
	now        func() time.Time
}

// NewService creates a new review Service
func NewService(reviewRepo review.Repository, orderRepo order.Repository) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		now:        time.Now,
	}
}

// Create writes a review for a confirmed order. The reviewer must be a party
// to the order; the reviewee is the other party.
func (s *Service) Create(ctx context.Context, reviewerID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.IsConfirmed() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Only confirmed orders can be reviewed")
	}

	var revieweeID uuid.UUID
	switch reviewerID {
	case o.BuyerID:
		revieweeID = o.SellerID
	case o.SellerID:
		revieweeID = o.BuyerID
	default:
		return nil, shared.NewDomainError("FORBIDDEN", "Only a party to the order can review it")
	}

	r, err := review.NewReview(o.ID, reviewerID, revieweeID, req.Rating, req.Comment, req.Images)
	if err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	response := ToReviewResponse(r)
	return &response, nil
}

// Update edits a review's comment and images within the author's edit window
func (s *Service) Update(ctx context.Context, reviewID, editorID uuid.UUID, req UpdateReviewRequest) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if err := r.Edit(editorID, req.Comment, req.Images, s.now()); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	response := ToReviewResponse(r)
	return &response, nil
}

// Delete removes a review. The reviewee's average is recomputed from the
// remaining reviews in the same transaction as the delete.
func (s *Service) Delete(ctx context.Context, reviewID, actorID uuid.UUID) error {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.CanBeDeletedBy(actorID) {
		return shared.NewDomainError("FORBIDDEN", "Only the author can delete a review")
	}

	return s.reviewRepo.Delete(ctx, r)
}

// GetByID retrieves a review
func (s *Service) GetByID(ctx context.Context, reviewID uuid.UUID) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	response := ToReviewResponse(r)
	return &response, nil
}

// ListReceived retrieves reviews a user has received
func (s *Service) ListReceived(ctx context.Context, revieweeID uuid.UUID, filter ReviewListFilter) ([]ReviewResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	page, err := s.reviewRepo.FindByReviewee(ctx, revieweeID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, 0, err
	}

	return ToReviewResponses(page.Items), page.Total, nil
}

// GetRating retrieves a user's average rating, zero when unreviewed
func (s *Service) GetRating(ctx context.Context, userID uuid.UUID) (*RatingResponse, error) {
	avg, err := s.reviewRepo.AverageRating(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RatingResponse{UserID: userID, AverageRating: avg}, nil
}
