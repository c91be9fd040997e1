package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/listing"
	"github.com/kbridge/backend/internal/domain/order"
	"github.com/kbridge/backend/internal/domain/pricing"
	"github.com/kbridge/backend/internal/domain/shared"
)

// OrderService drives the order lifecycle. Stock reservation, status
// transitions and escrow settlement all run inside storage transactions; the
// payment gateway is only ever called outside them.
type OrderService struct {
	orderRepo      order.Repository
	listingRepo    listing.Repository
	pricingEngine  *pricing.Engine
	shippingCalc   *pricing.ShippingCalculator
	gateway        order.PaymentGateway
	notifier       order.Notifier
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.Repository,
	listingRepo listing.Repository,
	pricingEngine *pricing.Engine,
	shippingCalc *pricing.ShippingCalculator,
	gateway order.PaymentGateway,
	notifier order.Notifier,
	txManager shared.TransactionManager,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		listingRepo:   listingRepo,
		pricingEngine: pricingEngine,
		shippingCalc:  shippingCalc,
		gateway:       gateway,
		notifier:      notifier,
		txManager:     txManager,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create places an order: prices the quote, then reserves stock and inserts
// the order in one transaction. The stock decrement is a conditional update,
// so two buyers racing for the last unit see one success and one
// INSUFFICIENT_STOCK.
func (s *OrderService) Create(ctx context.Context, buyerID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	l, err := s.listingRepo.FindByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	if buyerID == l.SellerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Cannot order your own listing")
	}
	if !l.IsOrderable() || req.Quantity > l.Quantity {
		return nil, shared.ErrInsufficientStock
	}

	shippingFee, err := s.shippingCalc.Fee(pricing.ShipmentSpec{
		ActualWeightKg:    l.UnitWeightKg.Mul(intToDecimal(req.Quantity)),
		Direction:         l.Direction,
		DestinationRegion: req.DestinationRegion,
	})
	if err != nil {
		return nil, err
	}

	quote, err := s.pricingEngine.BuildQuote(l.UnitPrice, req.Quantity, l.SellerBusinessVerified, shippingFee)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, l.ID, l.Title, buyerID, l.SellerID, req.Quantity,
		quote.ItemPrice, quote.ShippingFee, quote.PlatformFee, quote.FeeRate,
		req.ShippingAddress, req.CarrierID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.listingRepo.ReserveStock(txCtx, l.ID, req.Quantity); err != nil {
			return err
		}
		return s.orderRepo.Create(txCtx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.notifier.Notify(ctx, o.SellerID, order.EventTypeOrderCreated, map[string]any{
		"order_number": o.OrderNumber,
		"listing_id":   o.ListingID,
	})

	response := ToOrderResponse(o)
	return &response, nil
}

// MarkPaid captures payment at the gateway and then records it. The capture
// happens before and outside the storage transaction; if the status guard
// then loses a race, the captured funds are returned.
func (s *OrderService) MarkPaid(ctx context.Context, orderID, buyerID uuid.UUID, req MarkPaidRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the buyer can pay for the order")
	}
	if o.Status != order.StatusPendingPayment {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Order is not awaiting payment")
	}

	gatewayRef, err := s.gateway.Capture(ctx, o.ID, o.Total.KRW())
	if err != nil {
		return nil, err
	}

	if err := o.MarkPaid(gatewayRef); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithStatusGuard(ctx, o, order.StatusPendingPayment); err != nil {
		// A concurrent transition won; the capture must not be kept.
		if refundErr := s.gateway.Refund(ctx, gatewayRef, o.Total.KRW()); refundErr != nil {
			// The refund is retried by the payout reconciliation collaborator.
			s.notifier.Notify(ctx, o.BuyerID, "RefundDeferred", map[string]any{
				"order_number": o.OrderNumber,
			})
		}
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.notifier.Notify(ctx, o.SellerID, order.EventTypeOrderPaid, map[string]any{
		"order_number": o.OrderNumber,
	})

	response := ToOrderResponse(o)
	return &response, nil
}

// MarkShipped records the seller's shipment. At least one evidence photo
// reference is required before the transition is attempted.
func (s *OrderService) MarkShipped(ctx context.Context, orderID, sellerID uuid.UUID, req MarkShippedRequest) (*OrderResponse, error) {
	if len(req.EvidencePhotos) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one shipment evidence photo is required")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the seller can ship the order")
	}

	previous := o.Status
	if err := o.MarkShipped(req.TrackingNumber, req.CarrierID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithStatusGuard(ctx, o, previous); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.notifier.Notify(ctx, o.BuyerID, order.EventTypeOrderShipped, map[string]any{
		"order_number":    o.OrderNumber,
		"tracking_number": o.TrackingNumber,
	})

	response := ToOrderResponse(o)
	return &response, nil
}

// MarkDelivered records carrier delivery, reported by the logistics or
// scheduler service account. Neither party may report it themselves: the
// delivered status starts the buyer's auto-confirm window, so a party-driven
// transition would let a seller release escrow without a real delivery.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID, actorID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorID == o.BuyerID || actorID == o.SellerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Delivery is reported by the carrier, not by a party to the order")
	}

	previous := o.Status
	if err := o.MarkDelivered(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithStatusGuard(ctx, o, previous); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.notifier.Notify(ctx, o.BuyerID, order.EventTypeOrderDelivered, map[string]any{
		"order_number": o.OrderNumber,
	})

	response := ToOrderResponse(o)
	return &response, nil
}

// Confirm completes the order on the buyer's say-so and releases the full
// escrow to the seller
func (s *OrderService) Confirm(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	if err := o.Confirm(buyerID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithStatusGuard(ctx, o, previous); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.notifier.Notify(ctx, o.SellerID, order.EventTypeOrderConfirmed, map[string]any{
		"order_number": o.OrderNumber,
	})

	response := ToOrderResponse(o)
	return &response, nil
}

// Cancel aborts an unpaid order and returns its stock in the same
// transaction as the status write
func (s *OrderService) Cancel(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the buyer can cancel the order")
	}

	previous := o.Status
	if err := o.Cancel(); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.SaveWithStatusGuard(txCtx, o, previous); err != nil {
			return err
		}
		return s.listingRepo.RestoreStock(txCtx, o.ListingID, o.Quantity)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order visible to the requesting party
func (s *OrderService) GetByID(ctx context.Context, orderID, requesterID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != requesterID && o.SellerID != requesterID {
		return nil, shared.NewDomainError("FORBIDDEN", "Not a party to this order")
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListBought retrieves the requester's purchases
func (s *OrderService) ListBought(ctx context.Context, buyerID uuid.UUID, filter OrderListFilter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByBuyer(ctx, buyerID, toDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// ListSold retrieves the requester's sales
func (s *OrderService) ListSold(ctx context.Context, sellerID uuid.UUID, filter OrderListFilter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindBySeller(ctx, sellerID, toDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// publishEvents drains and publishes the aggregate's buffered events.
// Publication is best effort; handlers run asynchronously.
func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	o.ClearDomainEvents()
}

func toDomainFilter(filter OrderListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	return domainFilter
}
