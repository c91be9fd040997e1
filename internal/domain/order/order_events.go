package order

import (
	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderPaid      = "OrderPaid"
	EventTypeOrderShipped   = "OrderShipped"
	EventTypeOrderDelivered = "OrderDelivered"
	EventTypeOrderConfirmed = "OrderConfirmed"
	EventTypeOrderCancelled = "OrderCancelled"
	EventTypeOrderDisputed  = "OrderDisputed"
	EventTypeOrderResolved  = "OrderResolved"
)

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	ListingID   uuid.UUID `json:"listing_id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Quantity    int       `json:"quantity"`
	TotalKRW    string    `json:"total_krw"`
	TotalCNY    string    `json:"total_cny"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		ListingID:       o.ListingID,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		Quantity:        o.Quantity,
		TotalKRW:        o.Total.AmountKRW().String(),
		TotalCNY:        o.Total.AmountCNY().String(),
	}
}

// OrderPaidEvent is raised when payment capture succeeds and escrow opens
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	SellerID         uuid.UUID `json:"seller_id"`
	GatewayReference string    `json:"gateway_reference"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		SellerID:         o.SellerID,
		GatewayReference: o.Escrow.GatewayReference,
	}
}

// OrderShippedEvent is raised when the seller ships
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	TrackingNumber string    `json:"tracking_number"`
}

// NewOrderShippedEvent creates a new OrderShippedEvent
func NewOrderShippedEvent(o *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		TrackingNumber:  o.TrackingNumber,
	}
}

// OrderDeliveredEvent is raised when the carrier reports delivery
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	BuyerID uuid.UUID `json:"buyer_id"`
}

// NewOrderDeliveredEvent creates a new OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		BuyerID:         o.BuyerID,
	}
}

// OrderConfirmedEvent is raised when the buyer confirms and escrow releases
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID `json:"order_id"`
	SellerID uuid.UUID `json:"seller_id"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		SellerID:        o.SellerID,
	}
}

// OrderCancelledEvent is raised when an unpaid order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	ListingID uuid.UUID `json:"listing_id"`
	Quantity  int       `json:"quantity"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ListingID:       o.ListingID,
		Quantity:        o.Quantity,
	}
}

// OrderDisputedEvent is raised when a dispute is opened against the order
type OrderDisputedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID `json:"order_id"`
	BuyerID  uuid.UUID `json:"buyer_id"`
	SellerID uuid.UUID `json:"seller_id"`
}

// NewOrderDisputedEvent creates a new OrderDisputedEvent
func NewOrderDisputedEvent(o *Order) *OrderDisputedEvent {
	return &OrderDisputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDisputed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
	}
}

// OrderResolvedEvent is raised when dispute resolution settles the order
type OrderResolvedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	BuyerRefundRate int       `json:"buyer_refund_rate"`
	FinalStatus     string    `json:"final_status"`
}

// NewOrderResolvedEvent creates a new OrderResolvedEvent
func NewOrderResolvedEvent(o *Order, buyerRefundRate int) *OrderResolvedEvent {
	return &OrderResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderResolved, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		BuyerRefundRate: buyerRefundRate,
		FinalStatus:     o.Status.String(),
	}
}
