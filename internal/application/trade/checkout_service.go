package trade

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/kbridge/backend/internal/domain/listing"
	"github.com/kbridge/backend/internal/domain/pricing"
)

// CheckoutService prices carts before an order exists. Quotes are
// request-scoped and never persisted.
type CheckoutService struct {
	listingRepo  listing.Repository
	shippingCalc *pricing.ShippingCalculator
	bundleCalc   *pricing.BundleCalculator
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(listingRepo listing.Repository, shippingCalc *pricing.ShippingCalculator, bundleCalc *pricing.BundleCalculator) *CheckoutService {
	return &CheckoutService{
		listingRepo:  listingRepo,
		shippingCalc: shippingCalc,
		bundleCalc:   bundleCalc,
	}
}

// CalculateBundleShipping prices each cart line individually, then groups by
// seller and applies the tiered bundle discount. The locale selects the
// language of the per-group savings message.
func (s *CheckoutService) CalculateBundleShipping(ctx context.Context, req BundleShippingRequest, locale language.Tag) (*BundleShippingResponse, error) {
	cartItems := make([]pricing.CartItem, 0, len(req.Items))

	for _, input := range req.Items {
		l, err := s.listingRepo.FindByID(ctx, input.ListingID)
		if err != nil {
			return nil, err
		}

		lineWeight := l.UnitWeightKg.Mul(intToDecimal(input.Quantity))
		fee, err := s.shippingCalc.Fee(pricing.ShipmentSpec{
			ActualWeightKg:    lineWeight,
			Direction:         l.Direction,
			DestinationRegion: req.DestinationRegion,
		})
		if err != nil {
			return nil, err
		}

		cartItems = append(cartItems, pricing.CartItem{
			ListingID:   l.ID,
			SellerID:    l.SellerID,
			Quantity:    input.Quantity,
			ShippingFee: fee,
			WeightKg:    l.UnitWeightKg,
		})
	}

	summary, err := s.bundleCalc.Calculate(cartItems, locale)
	if err != nil {
		return nil, err
	}

	response := ToBundleShippingResponse(summary)
	return &response, nil
}

func intToDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
