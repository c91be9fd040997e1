package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kbridge/backend/internal/domain/review"
	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/infrastructure/persistence/models"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a review by its ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderAndReviewer finds the review one party wrote for an order
func (r *GormReviewRepository) FindByOrderAndReviewer(ctx context.Context, orderID, reviewerID uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	err := r.conn(ctx).
		Where("order_id = ? AND reviewer_id = ?", orderID, reviewerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReviewee finds reviews received by a user
func (r *GormReviewRepository) FindByReviewee(ctx context.Context, revieweeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*review.Review], error) {
	var total int64
	err := r.conn(ctx).Model(&models.ReviewModel{}).
		Where("reviewee_id = ?", revieweeID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	var modelRows []models.ReviewModel
	query := applyFilter(
		r.conn(ctx).Model(&models.ReviewModel{}).Where("reviewee_id = ?", revieweeID),
		filter,
	)
	if err := query.Find(&modelRows).Error; err != nil {
		return nil, err
	}

	reviews := make([]*review.Review, len(modelRows))
	for i := range modelRows {
		reviews[i] = modelRows[i].ToDomain()
	}

	page := shared.NewPaginated(reviews, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Create inserts a new review and folds its rating into the reviewee's
// average in the same transaction
func (r *GormReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	var model models.ReviewModel
	model.FromDomain(rev)

	return dbFromContext(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrDuplicateReview
			}
			return err
		}
		return r.recomputeRating(tx, rev.RevieweeID)
	})
}

// Save persists edits to an existing review. Rating is immutable after
// creation so the average is untouched.
func (r *GormReviewRepository) Save(ctx context.Context, rev *review.Review) error {
	var model models.ReviewModel
	model.FromDomain(rev)

	result := r.conn(ctx).Model(&models.ReviewModel{}).
		Where("id = ?", rev.ID).
		Updates(map[string]interface{}{
			"comment":    model.Comment,
			"images":     model.Images,
			"version":    gorm.Expr("version + 1"),
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}

	rev.IncrementVersion()
	return nil
}

// Delete removes a review and recomputes the reviewee's average from the
// remaining rows in the same transaction
func (r *GormReviewRepository) Delete(ctx context.Context, rev *review.Review) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.ReviewModel{}, "id = ?", rev.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return r.recomputeRating(tx, rev.RevieweeID)
	})
}

// AverageRating returns the reviewee's current average rating
func (r *GormReviewRepository) AverageRating(ctx context.Context, revieweeID uuid.UUID) (decimal.Decimal, error) {
	var rating models.UserRatingModel
	err := r.conn(ctx).First(&rating, "user_id = ?", revieweeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return rating.AverageRating, nil
}

// recomputeRating rebuilds the materialized average from the review rows.
// ROUND(.., 1) keeps the stored average at one decimal place; a user with no
// remaining reviews goes back to zero.
func (r *GormReviewRepository) recomputeRating(tx *gorm.DB, revieweeID uuid.UUID) error {
	return tx.Exec(`
		INSERT INTO user_ratings (user_id, average_rating, review_count)
		SELECT ?, COALESCE(ROUND(AVG(rating)::numeric, 1), 0), COUNT(*)
		FROM reviews WHERE reviewee_id = ?
		ON CONFLICT (user_id) DO UPDATE SET
			average_rating = EXCLUDED.average_rating,
			review_count = EXCLUDED.review_count`,
		revieweeID, revieweeID,
	).Error
}
