package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbridge/backend/internal/domain/listing"
	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/infrastructure/persistence/models"
)

// GormListingRepository implements listing.Repository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

func (r *GormListingRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var model models.ListingModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySeller finds listings belonging to a seller
func (r *GormListingRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]listing.Listing, error) {
	var modelRows []models.ListingModel
	query := applyFilter(
		r.conn(ctx).Model(&models.ListingModel{}).Where("seller_id = ?", sellerID),
		filter,
	)
	if err := query.Find(&modelRows).Error; err != nil {
		return nil, err
	}

	listings := make([]listing.Listing, len(modelRows))
	for i := range modelRows {
		listings[i] = *modelRows[i].ToDomain()
	}
	return listings, nil
}

// Save persists a listing, creating or fully updating it
func (r *GormListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	var model models.ListingModel
	model.FromDomain(l)
	return r.conn(ctx).Save(&model).Error
}

// ReserveStock decrements stock by quantity in a single conditional update.
// The quantity >= ? guard makes concurrent reservations for the last unit
// resolve to one winner; a listing drained to zero flips to SOLD_OUT in the
// same statement.
func (r *GormListingRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error {
	result := r.conn(ctx).Model(&models.ListingModel{}).
		Where("id = ? AND status = ? AND quantity >= ?", id, listing.StatusActive, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"status":     gorm.Expr("CASE WHEN quantity - ? = 0 THEN ? ELSE status END", quantity, listing.StatusSoldOut),
			"updated_at": gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// RestoreStock returns quantity units of stock, reactivating a sold-out
// listing
func (r *GormListingRepository) RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error {
	result := r.conn(ctx).Model(&models.ListingModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"status":     gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", listing.StatusSoldOut, listing.StatusActive),
			"updated_at": gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
