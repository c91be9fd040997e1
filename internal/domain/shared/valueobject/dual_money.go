package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DualMoney carries the same economic amount denominated independently in
// KRW and CNY. The two legs are each a source of truth for their currency:
// neither is derived from the other, so per-currency rounding can differ.
type DualMoney struct {
	krw decimal.Decimal
	cny decimal.Decimal
}

// NewDualMoney creates a DualMoney from KRW and CNY amounts
func NewDualMoney(krw, cny decimal.Decimal) DualMoney {
	return DualMoney{krw: krw, cny: cny}
}

// NewDualMoneyFromStrings creates a DualMoney from string amounts
func NewDualMoneyFromStrings(krw, cny string) (DualMoney, error) {
	k, err := decimal.NewFromString(krw)
	if err != nil {
		return DualMoney{}, fmt.Errorf("invalid KRW amount: %w", err)
	}
	c, err := decimal.NewFromString(cny)
	if err != nil {
		return DualMoney{}, fmt.Errorf("invalid CNY amount: %w", err)
	}
	return DualMoney{krw: k, cny: c}, nil
}

// ZeroDual returns a zero-valued DualMoney
func ZeroDual() DualMoney {
	return DualMoney{krw: decimal.Zero, cny: decimal.Zero}
}

// KRW returns the KRW leg as Money
func (d DualMoney) KRW() Money {
	return NewMoneyKRW(d.krw)
}

// CNY returns the CNY leg as Money
func (d DualMoney) CNY() Money {
	return NewMoneyCNY(d.cny)
}

// AmountKRW returns the raw KRW amount
func (d DualMoney) AmountKRW() decimal.Decimal {
	return d.krw
}

// AmountCNY returns the raw CNY amount
func (d DualMoney) AmountCNY() decimal.Decimal {
	return d.cny
}

// IsZero returns true when both legs are zero
func (d DualMoney) IsZero() bool {
	return d.krw.IsZero() && d.cny.IsZero()
}

// IsNegative returns true when either leg is negative
func (d DualMoney) IsNegative() bool {
	return d.krw.IsNegative() || d.cny.IsNegative()
}

// Add returns the leg-wise sum
func (d DualMoney) Add(other DualMoney) DualMoney {
	return DualMoney{
		krw: d.krw.Add(other.krw),
		cny: d.cny.Add(other.cny),
	}
}

// Subtract returns the leg-wise difference
func (d DualMoney) Subtract(other DualMoney) DualMoney {
	return DualMoney{
		krw: d.krw.Sub(other.krw),
		cny: d.cny.Sub(other.cny),
	}
}

// MultiplyByInt scales both legs by an integer factor
func (d DualMoney) MultiplyByInt(factor int64) DualMoney {
	f := decimal.NewFromInt(factor)
	return DualMoney{
		krw: d.krw.Mul(f),
		cny: d.cny.Mul(f),
	}
}

// Percentage computes the given percentage of each leg, rounded to the
// currency's minor unit (whole won, fen). Rounding happens per currency.
func (d DualMoney) Percentage(percent decimal.Decimal) DualMoney {
	hundred := decimal.NewFromInt(100)
	return DualMoney{
		krw: d.krw.Mul(percent).Div(hundred).Round(0),
		cny: d.cny.Mul(percent).Div(hundred).Round(2),
	}
}

// SplitByRate divides the amount into a buyer share of rate percent and a
// seller share of the remainder. The seller share is computed by subtraction
// so the two shares always sum exactly to the original in both currencies.
func (d DualMoney) SplitByRate(rate int) (buyer, seller DualMoney) {
	buyer = d.Percentage(decimal.NewFromInt(int64(rate)))
	seller = d.Subtract(buyer)
	return buyer, seller
}

// Equals returns true when both legs match
func (d DualMoney) Equals(other DualMoney) bool {
	return d.krw.Equal(other.krw) && d.cny.Equal(other.cny)
}

// String returns a human-readable representation
func (d DualMoney) String() string {
	return fmt.Sprintf("%s KRW / %s CNY", d.krw.String(), d.cny.String())
}
