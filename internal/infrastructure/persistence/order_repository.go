package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbridge/backend/internal/domain/order"
	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.conn(ctx).First(&model, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuyer finds orders placed by a buyer
func (r *GormOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	return r.findWhere(ctx, "buyer_id = ?", buyerID, filter)
}

// FindBySeller finds orders received by a seller
func (r *GormOrderRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	return r.findWhere(ctx, "seller_id = ?", sellerID, filter)
}

func (r *GormOrderRepository) findWhere(ctx context.Context, cond string, arg any, filter shared.Filter) ([]order.Order, error) {
	var modelRows []models.OrderModel
	query := applyFilter(
		r.conn(ctx).Model(&models.OrderModel{}).Where(cond, arg),
		filter,
	)
	if err := query.Find(&modelRows).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(modelRows))
	for i := range modelRows {
		orders[i] = *modelRows[i].ToDomain()
	}
	return orders, nil
}

// CountByStatus counts orders in a given status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&models.OrderModel{}).
		Where("status = ?", status.String()).
		Count(&count).Error
	return count, err
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	var model models.OrderModel
	model.FromDomain(o)
	return r.conn(ctx).Create(&model).Error
}

// SaveWithStatusGuard persists the order only if its stored status still
// equals expectedStatus. Losing the compare-and-swap means another
// transition already won; the caller gets INVALID_TRANSITION and nothing is
// written.
func (r *GormOrderRepository) SaveWithStatusGuard(ctx context.Context, o *order.Order, expectedStatus order.Status) error {
	var model models.OrderModel
	model.FromDomain(o)

	result := r.conn(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", o.ID, expectedStatus.String()).
		Updates(map[string]interface{}{
			"status":                 model.Status,
			"carrier_id":             model.CarrierID,
			"tracking_number":        model.TrackingNumber,
			"escrow_state":           model.EscrowState,
			"gateway_reference":      model.GatewayReference,
			"escrow_amount_krw":      model.EscrowAmountKRW,
			"escrow_amount_cny":      model.EscrowAmountCNY,
			"refunded_to_buyer_krw":  model.RefundedToBuyerKRW,
			"refunded_to_buyer_cny":  model.RefundedToBuyerCNY,
			"released_to_seller_krw": model.ReleasedToSellerKRW,
			"released_to_seller_cny": model.ReleasedToSellerCNY,
			"escrow_settled_at":      model.EscrowSettledAt,
			"paid_at":                model.PaidAt,
			"shipped_at":             model.ShippedAt,
			"delivered_at":           model.DeliveredAt,
			"confirmed_at":           model.ConfirmedAt,
			"disputed_at":            model.DisputedAt,
			"cancelled_at":           model.CancelledAt,
			"buyer_refund_rate":      model.BuyerRefundRate,
			"version":                gorm.Expr("version + 1"),
			"updated_at":             model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidTransition
	}

	o.IncrementVersion()
	return nil
}

// GenerateOrderNumber produces the next order number.
// Format: KB-YYYY-NNNNNN (e.g. KB-2026-000001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("KB-%d-", year)

	var lastOrder models.OrderModel
	err := r.conn(ctx).
		Model(&models.OrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%06d", prefix, nextNum), nil
}
