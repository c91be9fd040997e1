package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// Bundle discount tiers: minimum item count -> discount percent, applied to
// the single highest line fee in the group ("ship together, pay the biggest
// box's fee, discounted").
var bundleTiers = []struct {
	minItems int
	percent  int
}{
	{10, 100},
	{5, 70},
	{3, 50},
	{2, 30},
}

// Overweight surcharge per kilogram above the group weight limit
var (
	overweightLimitKg  = decimal.NewFromInt(20)
	surchargePerKg     = valueobject.NewDualMoney(decimal.NewFromInt(3000), decimal.NewFromInt(16))
	defaultItemWeightKg = decimal.NewFromFloat(0.5)
)

// CartItem is one line of a checkout cart, already priced for individual
// shipping. WeightKg is per unit; zero means unknown.
type CartItem struct {
	ListingID   uuid.UUID
	SellerID    uuid.UUID
	Quantity    int
	ShippingFee valueobject.DualMoney
	WeightKg    decimal.Decimal
}

// BundleGroup is the result for one seller's items
type BundleGroup struct {
	SellerID            uuid.UUID
	ItemCount           int
	DiscountPercent     int
	TotalWeightKg       decimal.Decimal
	OriginalShipping    valueobject.DualMoney
	Discount            valueobject.DualMoney
	OverweightSurcharge valueobject.DualMoney
	DiscountedShipping  valueobject.DualMoney
	Message             string
}

// BundleSummary aggregates all seller groups for the cart
type BundleSummary struct {
	Groups             []BundleGroup
	OriginalShipping   valueobject.DualMoney
	DiscountedShipping valueobject.DualMoney
	Discount           valueobject.DualMoney
}

// BundleCalculator computes per-seller shipping discounts for a cart.
// Calculation is pure and independent of item ordering in the input.
type BundleCalculator struct{}

// NewBundleCalculator creates a new bundle calculator
func NewBundleCalculator() *BundleCalculator {
	return &BundleCalculator{}
}

// discountPercent returns the highest tier the item count reaches
func (b *BundleCalculator) discountPercent(itemCount int) int {
	for _, tier := range bundleTiers {
		if itemCount >= tier.minItems {
			return tier.percent
		}
	}
	return 0
}

// Calculate groups the cart by seller and applies tiered discounts. The lang
// tag selects the locale for the per-group message.
func (b *BundleCalculator) Calculate(items []CartItem, lang language.Tag) (BundleSummary, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return BundleSummary{}, shared.NewDomainError("VALIDATION_ERROR", "Cart item quantity must be positive")
		}
		if item.SellerID == uuid.Nil {
			return BundleSummary{}, shared.NewDomainError("VALIDATION_ERROR", "Cart item seller cannot be empty")
		}
		if item.ShippingFee.IsNegative() {
			return BundleSummary{}, shared.NewDomainError("VALIDATION_ERROR", "Cart item shipping fee cannot be negative")
		}
	}

	grouped := make(map[uuid.UUID][]CartItem)
	for _, item := range items {
		grouped[item.SellerID] = append(grouped[item.SellerID], item)
	}

	// Deterministic group order regardless of input ordering
	sellerIDs := make([]uuid.UUID, 0, len(grouped))
	for sellerID := range grouped {
		sellerIDs = append(sellerIDs, sellerID)
	}
	sort.Slice(sellerIDs, func(i, j int) bool {
		return sellerIDs[i].String() < sellerIDs[j].String()
	})

	summary := BundleSummary{
		Groups:             make([]BundleGroup, 0, len(sellerIDs)),
		OriginalShipping:   valueobject.ZeroDual(),
		DiscountedShipping: valueobject.ZeroDual(),
		Discount:           valueobject.ZeroDual(),
	}

	for _, sellerID := range sellerIDs {
		group := b.calculateGroup(sellerID, grouped[sellerID], lang)
		summary.Groups = append(summary.Groups, group)
		summary.OriginalShipping = summary.OriginalShipping.Add(group.OriginalShipping)
		summary.DiscountedShipping = summary.DiscountedShipping.Add(group.DiscountedShipping)
		summary.Discount = summary.Discount.Add(group.Discount)
	}

	return summary, nil
}

// calculateGroup prices one seller group
func (b *BundleCalculator) calculateGroup(sellerID uuid.UUID, items []CartItem, lang language.Tag) BundleGroup {
	itemCount := 0
	totalWeight := decimal.Zero
	original := valueobject.ZeroDual()
	highest := valueobject.ZeroDual()

	for _, item := range items {
		itemCount += item.Quantity

		weight := item.WeightKg
		if weight.IsZero() {
			weight = defaultItemWeightKg
		}
		totalWeight = totalWeight.Add(weight.Mul(decimal.NewFromInt(int64(item.Quantity))))

		original = original.Add(item.ShippingFee)
		// Highest line fee selected by the KRW leg; KRW is the pricing
		// source of truth for shipping.
		if item.ShippingFee.AmountKRW().GreaterThan(highest.AmountKRW()) {
			highest = item.ShippingFee
		}
	}

	percent := b.discountPercent(itemCount)
	discount := highest.Percentage(decimal.NewFromInt(int64(percent)))

	surcharge := valueobject.ZeroDual()
	if totalWeight.GreaterThan(overweightLimitKg) {
		overKg := totalWeight.Sub(overweightLimitKg)
		surcharge = valueobject.NewDualMoney(
			surchargePerKg.AmountKRW().Mul(overKg).Round(0),
			surchargePerKg.AmountCNY().Mul(overKg).Round(2),
		)
	}

	discounted := original.Subtract(discount).Add(surcharge)

	return BundleGroup{
		SellerID:            sellerID,
		ItemCount:           itemCount,
		DiscountPercent:     percent,
		TotalWeightKg:       totalWeight,
		OriginalShipping:    original,
		Discount:            discount,
		OverweightSurcharge: surcharge,
		DiscountedShipping:  discounted,
		Message:             bundleMessage(lang, percent),
	}
}
