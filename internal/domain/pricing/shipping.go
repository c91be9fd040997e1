package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/listing"
	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// shippingMirrorRate is the fixed KRW/CNY cross-rate used only to mirror a
// computed KRW shipping fee into CNY. Listing prices use the live FX source;
// shipping fees deliberately do not.
var shippingMirrorRate = decimal.NewFromInt(185)

// minimumChargeableWeightKg is the floor applied to every shipment
var minimumChargeableWeightKg = decimal.NewFromFloat(0.5)

// volumetricDivisor converts cm³ to volumetric kilograms
var volumetricDivisor = decimal.NewFromInt(6000)

// CarrierRate is a carrier-specific rate override, in KRW
type CarrierRate struct {
	CarrierID    string
	MinimumKRW   decimal.Decimal
	PerKgRateKRW decimal.Decimal
}

// directionRate is the default rate table entry for a trade direction
type directionRate struct {
	minimumKRW   decimal.Decimal
	perKgRateKRW decimal.Decimal
}

// Dimensions are parcel dimensions in centimeters
type Dimensions struct {
	LengthCm decimal.Decimal
	WidthCm  decimal.Decimal
	HeightCm decimal.Decimal
}

// VolumetricWeightKg returns L*W*H/6000
func (d Dimensions) VolumetricWeightKg() decimal.Decimal {
	return d.LengthCm.Mul(d.WidthCm).Mul(d.HeightCm).Div(volumetricDivisor)
}

// ShipmentSpec describes one shipment to price
type ShipmentSpec struct {
	ActualWeightKg    decimal.Decimal
	Dimensions        *Dimensions
	Direction         listing.TradeDirection
	DestinationRegion string
	Carrier           *CarrierRate
}

// ShippingCalculator computes cross-border shipping fees. The KRW fee is the
// source of truth; the CNY fee mirrors it through the fixed cross-rate.
type ShippingCalculator struct {
	directionRates    map[listing.TradeDirection]directionRate
	regionMultipliers map[string]decimal.Decimal
}

// NewShippingCalculator creates a calculator with the default direction rate
// table and region multipliers
func NewShippingCalculator() *ShippingCalculator {
	return &ShippingCalculator{
		directionRates: map[listing.TradeDirection]directionRate{
			listing.DirectionKRToCN: {
				minimumKRW:   decimal.NewFromInt(5000),
				perKgRateKRW: decimal.NewFromInt(4000),
			},
			listing.DirectionCNToKR: {
				minimumKRW:   decimal.NewFromInt(6000),
				perKgRateKRW: decimal.NewFromInt(3500),
			},
		},
		regionMultipliers: map[string]decimal.Decimal{
			"JEJU":           decimal.NewFromFloat(1.2),
			"INNER_MONGOLIA": decimal.NewFromFloat(1.3),
			"XINJIANG":       decimal.NewFromFloat(1.4),
			"TIBET":          decimal.NewFromFloat(1.4),
			"QINGHAI":        decimal.NewFromFloat(1.3),
		},
	}
}

// ChargeableWeightKg returns the weight the fee is computed on:
// max(actual, volumetric) with a 0.5 kg floor.
func (c *ShippingCalculator) ChargeableWeightKg(spec ShipmentSpec) decimal.Decimal {
	weight := spec.ActualWeightKg
	if spec.Dimensions != nil {
		if vol := spec.Dimensions.VolumetricWeightKg(); vol.GreaterThan(weight) {
			weight = vol
		}
	}
	if weight.LessThan(minimumChargeableWeightKg) {
		weight = minimumChargeableWeightKg
	}
	return weight
}

// Fee prices one shipment. Base fee is minimum + weight*perKg from the
// carrier override or the direction default, scaled by the destination region
// multiplier. KRW rounds up to the nearest 100; CNY mirrors the KRW fee at
// the fixed cross-rate.
func (c *ShippingCalculator) Fee(spec ShipmentSpec) (valueobject.DualMoney, error) {
	if spec.ActualWeightKg.IsNegative() {
		return valueobject.DualMoney{}, shared.NewDomainError("VALIDATION_ERROR", "Weight cannot be negative")
	}

	var minimum, perKg decimal.Decimal
	if spec.Carrier != nil {
		minimum = spec.Carrier.MinimumKRW
		perKg = spec.Carrier.PerKgRateKRW
	} else {
		rate, ok := c.directionRates[spec.Direction]
		if !ok {
			return valueobject.DualMoney{}, shared.NewDomainError("VALIDATION_ERROR", "Unknown trade direction")
		}
		minimum = rate.minimumKRW
		perKg = rate.perKgRateKRW
	}

	weight := c.ChargeableWeightKg(spec)
	feeKRW := minimum.Add(weight.Mul(perKg))

	if mult, ok := c.regionMultipliers[spec.DestinationRegion]; ok {
		feeKRW = feeKRW.Mul(mult)
	}

	feeKRW = valueobject.NewMoneyKRW(feeKRW).RoundUpToHundred().Amount()
	feeCNY := feeKRW.Div(shippingMirrorRate).Round(0)

	return valueobject.NewDualMoney(feeKRW, feeCNY), nil
}
