package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// Platform fee rates by seller tier
var (
	feeRateBusinessVerified = decimal.NewFromFloat(0.03)
	feeRateStandard         = decimal.NewFromFloat(0.05)
)

// Quote is the priced breakdown for one order. Total always equals
// item + shipping + fee in each currency.
type Quote struct {
	ItemPrice   valueobject.DualMoney
	ShippingFee valueobject.DualMoney
	PlatformFee valueobject.DualMoney
	Total       valueobject.DualMoney
	FeeRate     decimal.Decimal
}

// Engine computes item prices and platform fees. All methods are pure.
type Engine struct{}

// NewEngine creates a new pricing engine
func NewEngine() *Engine {
	return &Engine{}
}

// FeeRate returns the platform commission rate for the seller tier
func (e *Engine) FeeRate(sellerBusinessVerified bool) decimal.Decimal {
	if sellerBusinessVerified {
		return feeRateBusinessVerified
	}
	return feeRateStandard
}

// PlatformFee computes the commission on an item price. The KRW and CNY fees
// are each rounded in their own currency (whole won, fen); neither is derived
// from the other.
func (e *Engine) PlatformFee(itemPrice valueobject.DualMoney, feeRate decimal.Decimal) valueobject.DualMoney {
	hundred := decimal.NewFromInt(100)
	percent := feeRate.Mul(hundred)
	return valueobject.NewDualMoney(
		itemPrice.AmountKRW().Mul(percent).Div(hundred).Round(0),
		itemPrice.AmountCNY().Mul(percent).Div(hundred).Round(2),
	)
}

// BuildQuote prices an order: unit price times quantity, platform fee per the
// seller tier, plus the supplied shipping fee.
func (e *Engine) BuildQuote(unitPrice valueobject.DualMoney, quantity int, sellerBusinessVerified bool, shippingFee valueobject.DualMoney) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if unitPrice.IsNegative() || shippingFee.IsNegative() {
		return Quote{}, shared.NewDomainError("VALIDATION_ERROR", "Amounts cannot be negative")
	}

	itemPrice := unitPrice.MultiplyByInt(int64(quantity))
	feeRate := e.FeeRate(sellerBusinessVerified)
	platformFee := e.PlatformFee(itemPrice, feeRate)

	return Quote{
		ItemPrice:   itemPrice,
		ShippingFee: shippingFee,
		PlatformFee: platformFee,
		Total:       itemPrice.Add(shippingFee).Add(platformFee),
		FeeRate:     feeRate,
	}, nil
}
