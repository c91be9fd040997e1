package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// Status represents the status of an order
type Status string

const (
	StatusPendingPayment    Status = "PENDING_PAYMENT"
	StatusPaid              Status = "PAID"
	StatusShipping          Status = "SHIPPING"
	StatusDelivered         Status = "DELIVERED"
	StatusConfirmed         Status = "CONFIRMED"
	StatusDisputed          Status = "DISPUTED"
	StatusCancelled         Status = "CANCELLED"
	StatusRefunded          Status = "REFUNDED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
)

// IsValid checks if the status is a known order status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusShipping, StatusDelivered,
		StatusConfirmed, StatusDisputed, StatusCancelled, StatusRefunded,
		StatusPartiallyRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no transition leaves
func (s Status) IsTerminal() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusRefunded, StatusPartiallyRefunded:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// Buyer confirm is legal from SHIPPING as well as DELIVERED: a buyer who
// already has the parcel may confirm before the carrier reports delivery.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPendingPayment:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusShipping || target == StatusDisputed
	case StatusShipping:
		return target == StatusDelivered || target == StatusConfirmed || target == StatusDisputed
	case StatusDelivered:
		return target == StatusConfirmed || target == StatusDisputed
	case StatusDisputed:
		return target == StatusConfirmed || target == StatusRefunded || target == StatusPartiallyRefunded
	case StatusConfirmed, StatusCancelled, StatusRefunded, StatusPartiallyRefunded:
		return false // Terminal states
	}
	return false
}

// CanBeDisputed returns true if a dispute may be opened while in this status
func (s Status) CanBeDisputed() bool {
	return s == StatusPaid || s == StatusShipping || s == StatusDelivered
}

// Order is the aggregate root for a purchase. It owns the payment and
// shipping facts and enforces the lifecycle transitions; pricing amounts are
// computed once at creation and never change afterwards.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	ListingID       uuid.UUID
	ListingTitle    string
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Quantity        int
	ItemPrice       valueobject.DualMoney
	ShippingFee     valueobject.DualMoney
	PlatformFee     valueobject.DualMoney
	Total           valueobject.DualMoney
	FeeRate         decimal.Decimal
	ShippingAddress string
	CarrierID       *string
	TrackingNumber  string
	Status          Status
	Escrow          Escrow
	PaidAt          *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	ConfirmedAt     *time.Time
	DisputedAt      *time.Time
	CancelledAt     *time.Time
	BuyerRefundRate *int
}

// NewOrder creates an order in PENDING_PAYMENT. The total is computed from
// the parts here, so total = item + shipping + fee holds per currency by
// construction.
func NewOrder(orderNumber string, listingID uuid.UUID, listingTitle string, buyerID, sellerID uuid.UUID, quantity int, itemPrice, shippingFee, platformFee valueobject.DualMoney, feeRate decimal.Decimal, shippingAddress string, carrierID *string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order number cannot be empty")
	}
	if listingID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Listing ID cannot be empty")
	}
	if buyerID == uuid.Nil || sellerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Buyer and seller IDs cannot be empty")
	}
	if buyerID == sellerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Cannot order your own listing")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if shippingAddress == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shipping address cannot be empty")
	}
	if itemPrice.IsNegative() || shippingFee.IsNegative() || platformFee.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Amounts cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		ListingID:         listingID,
		ListingTitle:      listingTitle,
		BuyerID:           buyerID,
		SellerID:          sellerID,
		Quantity:          quantity,
		ItemPrice:         itemPrice,
		ShippingFee:       shippingFee,
		PlatformFee:       platformFee,
		Total:             itemPrice.Add(shippingFee).Add(platformFee),
		FeeRate:           feeRate,
		ShippingAddress:   shippingAddress,
		CarrierID:         carrierID,
		Status:            StatusPendingPayment,
		Escrow:            Escrow{State: EscrowStateNone},
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// transitionError builds the uniform rejection for an illegal transition
func (o *Order) transitionError(target Status) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
}

// MarkPaid records the external payment capture and opens escrow for the
// order total. Legal only from PENDING_PAYMENT.
func (o *Order) MarkPaid(gatewayReference string) error {
	if !o.Status.CanTransitionTo(StatusPaid) {
		return o.transitionError(StatusPaid)
	}
	if gatewayReference == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Gateway reference cannot be empty")
	}

	if err := o.Escrow.Open(gatewayReference, o.Total); err != nil {
		return err
	}

	now := time.Now()
	o.Status = StatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// MarkShipped records the shipment. Legal only from PAID. The caller is
// responsible for having collected at least one shipment evidence photo.
func (o *Order) MarkShipped(trackingNumber string, carrierID string) error {
	if !o.Status.CanTransitionTo(StatusShipping) {
		return o.transitionError(StatusShipping)
	}
	if trackingNumber == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Tracking number cannot be empty")
	}
	if carrierID == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Carrier cannot be empty")
	}

	now := time.Now()
	o.Status = StatusShipping
	o.TrackingNumber = trackingNumber
	o.CarrierID = &carrierID
	o.ShippedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderShippedEvent(o))

	return nil
}

// MarkDelivered records carrier delivery. Legal only from SHIPPING.
func (o *Order) MarkDelivered() error {
	if o.Status != StatusShipping {
		return o.transitionError(StatusDelivered)
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// Confirm completes the order and releases the full escrow to the seller.
// Only the order's buyer may confirm, from DELIVERED or SHIPPING.
func (o *Order) Confirm(buyerID uuid.UUID) error {
	if buyerID != o.BuyerID {
		return shared.NewDomainError("FORBIDDEN", "Only the buyer can confirm the order")
	}
	if !o.Status.CanTransitionTo(StatusConfirmed) || o.Status == StatusDisputed {
		return o.transitionError(StatusConfirmed)
	}

	if err := o.Escrow.Release(); err != nil {
		return err
	}

	now := time.Now()
	o.Status = StatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// Cancel aborts an unpaid order. Stock restoration is the caller's duty,
// performed in the same transaction as this status write.
func (o *Order) Cancel() error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return o.transitionError(StatusCancelled)
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// MarkDisputed moves the order into adjudication. Legal from PAID, SHIPPING
// or DELIVERED; invoked by the dispute context atomically with dispute
// creation.
func (o *Order) MarkDisputed() error {
	if !o.Status.CanBeDisputed() {
		return o.transitionError(StatusDisputed)
	}

	now := time.Now()
	o.Status = StatusDisputed
	o.DisputedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderDisputedEvent(o))

	return nil
}

// ApplyResolution settles the escrow per the refund rate and moves the order
// to its terminal status: REFUNDED at 100, CONFIRMED at 0, otherwise
// PARTIALLY_REFUNDED. Legal only from DISPUTED.
func (o *Order) ApplyResolution(buyerRefundRate int) error {
	if o.Status != StatusDisputed {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot resolve order in %s status", o.Status))
	}
	if buyerRefundRate < 0 || buyerRefundRate > 100 {
		return shared.NewDomainError("VALIDATION_ERROR", "Refund rate must be between 0 and 100")
	}

	if err := o.Escrow.Settle(buyerRefundRate); err != nil {
		return err
	}

	var target Status
	switch buyerRefundRate {
	case 100:
		target = StatusRefunded
	case 0:
		target = StatusConfirmed
	default:
		target = StatusPartiallyRefunded
	}

	now := time.Now()
	o.Status = target
	o.BuyerRefundRate = &buyerRefundRate
	if target == StatusConfirmed {
		o.ConfirmedAt = &now
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderResolvedEvent(o, buyerRefundRate))

	return nil
}

// CheckMoneyConservation verifies total = item + shipping + fee in both
// currencies. Holds by construction; exposed for audits and tests.
func (o *Order) CheckMoneyConservation() bool {
	return o.Total.Equals(o.ItemPrice.Add(o.ShippingFee).Add(o.PlatformFee))
}

// IsConfirmed returns true if the order reached CONFIRMED
func (o *Order) IsConfirmed() bool {
	return o.Status == StatusConfirmed
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}
