package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// RateSource supplies the live KRW per CNY exchange rate. Infrastructure
// provides an HTTP adapter wrapped in a TTL cache; shipping never uses it,
// shipping mirrors at the fixed rate instead.
type RateSource interface {
	KRWPerCNY(ctx context.Context) (decimal.Decimal, error)
}

// MirrorPrice derives the CNY leg of a price from its KRW leg using the
// given live rate. The CNY leg is rounded to 2 decimal places. Both legs
// are then fixed on the listing; later rate movements never touch them.
func MirrorPrice(krw valueobject.Money, krwPerCNY decimal.Decimal) (valueobject.DualMoney, error) {
	if krw.Currency() != valueobject.KRW {
		return valueobject.DualMoney{}, shared.NewDomainError("VALIDATION_ERROR", "Mirror source price must be in KRW")
	}
	if krw.IsNegative() {
		return valueobject.DualMoney{}, shared.NewDomainError("VALIDATION_ERROR", "Mirror source price cannot be negative")
	}
	if !krwPerCNY.IsPositive() {
		return valueobject.DualMoney{}, shared.NewDomainError("VALIDATION_ERROR", "Exchange rate must be positive")
	}

	cny := krw.Amount().Div(krwPerCNY).Round(2)
	return valueobject.NewDualMoney(krw.Amount(), cny), nil
}
