package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/order"
	"github.com/kbridge/backend/internal/domain/pricing"
)

// ==================== Order DTOs ====================

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	ListingID         uuid.UUID `json:"listing_id" binding:"required"`
	Quantity          int       `json:"quantity" binding:"required,min=1"`
	ShippingAddress   string    `json:"shipping_address" binding:"required,min=1,max=500"`
	DestinationRegion string    `json:"destination_region"`
	CarrierID         *string   `json:"carrier_id"`
}

// MarkPaidRequest carries the payment method hint for capture
type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=CARD ALIPAY WALLET"`
}

// MarkShippedRequest represents the seller's shipment declaration
type MarkShippedRequest struct {
	TrackingNumber string   `json:"tracking_number" binding:"required,min=1,max=100"`
	CarrierID      string   `json:"carrier_id" binding:"required,min=1,max=50"`
	EvidencePhotos []string `json:"evidence_photos" binding:"required,min=1"`
}

// OrderListFilter represents filter options for order lists
type OrderListFilter struct {
	Status   *order.Status `form:"status"`
	Page     int           `form:"page" binding:"min=0"`
	PageSize int           `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string        `form:"order_by"`
	OrderDir string        `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MoneyPairResponse carries a dual-currency amount in API responses
type MoneyPairResponse struct {
	KRW decimal.Decimal `json:"krw"`
	CNY decimal.Decimal `json:"cny"`
}

// EscrowResponse represents the escrow facts of an order
type EscrowResponse struct {
	State            string             `json:"state"`
	GatewayReference string             `json:"gateway_reference,omitempty"`
	Amount           MoneyPairResponse  `json:"amount"`
	RefundedToBuyer  *MoneyPairResponse `json:"refunded_to_buyer,omitempty"`
	ReleasedToSeller *MoneyPairResponse `json:"released_to_seller,omitempty"`
	SettledAt        *time.Time         `json:"settled_at,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID         `json:"id"`
	OrderNumber     string            `json:"order_number"`
	ListingID       uuid.UUID         `json:"listing_id"`
	ListingTitle    string            `json:"listing_title"`
	BuyerID         uuid.UUID         `json:"buyer_id"`
	SellerID        uuid.UUID         `json:"seller_id"`
	Quantity        int               `json:"quantity"`
	ItemPrice       MoneyPairResponse `json:"item_price"`
	ShippingFee     MoneyPairResponse `json:"shipping_fee"`
	PlatformFee     MoneyPairResponse `json:"platform_fee"`
	Total           MoneyPairResponse `json:"total"`
	FeeRate         decimal.Decimal   `json:"fee_rate"`
	ShippingAddress string            `json:"shipping_address"`
	CarrierID       *string           `json:"carrier_id,omitempty"`
	TrackingNumber  string            `json:"tracking_number,omitempty"`
	Status          string            `json:"status"`
	Escrow          EscrowResponse    `json:"escrow"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	ShippedAt       *time.Time        `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time        `json:"delivered_at,omitempty"`
	ConfirmedAt     *time.Time        `json:"confirmed_at,omitempty"`
	DisputedAt      *time.Time        `json:"disputed_at,omitempty"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	BuyerRefundRate *int              `json:"buyer_refund_rate,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Version         int               `json:"version"`
}

// ==================== Bundle shipping DTOs ====================

// BundleItemInput is one cart line in a bundle shipping quote request
type BundleItemInput struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// BundleShippingRequest represents a cart-level shipping quote request
type BundleShippingRequest struct {
	Items             []BundleItemInput `json:"items" binding:"required,min=1"`
	DestinationRegion string            `json:"destination_region"`
}

// BundleGroupResponse represents one seller group in the quote
type BundleGroupResponse struct {
	SellerID            uuid.UUID         `json:"seller_id"`
	ItemCount           int               `json:"item_count"`
	DiscountPercent     int               `json:"discount_percent"`
	TotalWeightKg       decimal.Decimal   `json:"total_weight_kg"`
	OriginalShipping    MoneyPairResponse `json:"original_shipping"`
	Discount            MoneyPairResponse `json:"discount"`
	OverweightSurcharge MoneyPairResponse `json:"overweight_surcharge"`
	DiscountedShipping  MoneyPairResponse `json:"discounted_shipping"`
	Message             string            `json:"message"`
}

// BundleShippingResponse represents the cart-level quote
type BundleShippingResponse struct {
	Groups             []BundleGroupResponse `json:"groups"`
	OriginalShipping   MoneyPairResponse     `json:"original_shipping"`
	DiscountedShipping MoneyPairResponse     `json:"discounted_shipping"`
	Discount           MoneyPairResponse     `json:"discount"`
}

// ==================== Converters ====================

func toMoneyPair(d interface {
	AmountKRW() decimal.Decimal
	AmountCNY() decimal.Decimal
}) MoneyPairResponse {
	return MoneyPairResponse{KRW: d.AmountKRW(), CNY: d.AmountCNY()}
}

// ToEscrowResponse converts escrow facts to the response representation
func ToEscrowResponse(e order.Escrow) EscrowResponse {
	resp := EscrowResponse{
		State:            e.State.String(),
		GatewayReference: e.GatewayReference,
		Amount:           toMoneyPair(e.Amount),
		SettledAt:        e.SettledAt,
	}
	if e.State == order.EscrowStateRefunded || e.State == order.EscrowStateSplit || e.State == order.EscrowStateReleased {
		refunded := toMoneyPair(e.RefundedToBuyer)
		released := toMoneyPair(e.ReleasedToSeller)
		resp.RefundedToBuyer = &refunded
		resp.ReleasedToSeller = &released
	}
	return resp
}

// ToOrderResponse converts a domain order to the response representation
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		ListingID:       o.ListingID,
		ListingTitle:    o.ListingTitle,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		Quantity:        o.Quantity,
		ItemPrice:       toMoneyPair(o.ItemPrice),
		ShippingFee:     toMoneyPair(o.ShippingFee),
		PlatformFee:     toMoneyPair(o.PlatformFee),
		Total:           toMoneyPair(o.Total),
		FeeRate:         o.FeeRate,
		ShippingAddress: o.ShippingAddress,
		CarrierID:       o.CarrierID,
		TrackingNumber:  o.TrackingNumber,
		Status:          o.Status.String(),
		Escrow:          ToEscrowResponse(o.Escrow),
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		ConfirmedAt:     o.ConfirmedAt,
		DisputedAt:      o.DisputedAt,
		CancelledAt:     o.CancelledAt,
		BuyerRefundRate: o.BuyerRefundRate,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

// ToBundleShippingResponse converts a bundle summary to the response
// representation
func ToBundleShippingResponse(s pricing.BundleSummary) BundleShippingResponse {
	groups := make([]BundleGroupResponse, len(s.Groups))
	for i, g := range s.Groups {
		groups[i] = BundleGroupResponse{
			SellerID:            g.SellerID,
			ItemCount:           g.ItemCount,
			DiscountPercent:     g.DiscountPercent,
			TotalWeightKg:       g.TotalWeightKg,
			OriginalShipping:    toMoneyPair(g.OriginalShipping),
			Discount:            toMoneyPair(g.Discount),
			OverweightSurcharge: toMoneyPair(g.OverweightSurcharge),
			DiscountedShipping:  toMoneyPair(g.DiscountedShipping),
			Message:             g.Message,
		}
	}
	return BundleShippingResponse{
		Groups:             groups,
		OriginalShipping:   toMoneyPair(s.OriginalShipping),
		DiscountedShipping: toMoneyPair(s.DiscountedShipping),
		Discount:           toMoneyPair(s.Discount),
	}
}
