package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

func TestEngine_FeeRate(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, "0.03", e.FeeRate(true).String())
	assert.Equal(t, "0.05", e.FeeRate(false).String())
}

func TestEngine_PlatformFee(t *testing.T) {
	e := NewEngine()

	t.Run("standard seller pays 5 percent", func(t *testing.T) {
		item, err := valueobject.NewDualMoneyFromStrings("100000", "540.54")
		require.NoError(t, err)

		fee := e.PlatformFee(item, decimal.NewFromFloat(0.05))
		assert.Equal(t, "5000", fee.AmountKRW().String())
		assert.Equal(t, "27.03", fee.AmountCNY().String())
	})

	t.Run("each leg rounds in its own currency", func(t *testing.T) {
		item, err := valueobject.NewDualMoneyFromStrings("99990", "540.55")
		require.NoError(t, err)

		fee := e.PlatformFee(item, decimal.NewFromFloat(0.03))
		// 99990 * 0.03 = 2999.7 -> 3000 won; 540.55 * 0.03 = 16.2165 -> 16.22 yuan
		assert.Equal(t, "3000", fee.AmountKRW().String())
		assert.Equal(t, "16.22", fee.AmountCNY().String())
	})
}

func TestEngine_BuildQuote(t *testing.T) {
	e := NewEngine()
	unitPrice, err := valueobject.NewDualMoneyFromStrings("50000", "270.27")
	require.NoError(t, err)
	shipping, err := valueobject.NewDualMoneyFromStrings("13300", "72")
	require.NoError(t, err)

	t.Run("prices a standard seller order", func(t *testing.T) {
		quote, err := e.BuildQuote(unitPrice, 2, false, shipping)
		require.NoError(t, err)

		assert.Equal(t, "100000", quote.ItemPrice.AmountKRW().String())
		assert.Equal(t, "5000", quote.PlatformFee.AmountKRW().String())
		assert.Equal(t, "118300", quote.Total.AmountKRW().String())
		assert.Equal(t, "0.05", quote.FeeRate.String())

		expectedTotal := quote.ItemPrice.Add(quote.ShippingFee).Add(quote.PlatformFee)
		assert.True(t, quote.Total.Equals(expectedTotal))
	})

	t.Run("business verified seller pays the lower rate", func(t *testing.T) {
		quote, err := e.BuildQuote(unitPrice, 2, true, shipping)
		require.NoError(t, err)

		assert.Equal(t, "3000", quote.PlatformFee.AmountKRW().String())
		assert.Equal(t, "0.03", quote.FeeRate.String())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := e.BuildQuote(unitPrice, 0, false, shipping)
		assert.Error(t, err)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		negative := valueobject.NewDualMoney(decimal.NewFromInt(-1), decimal.Zero)
		_, err := e.BuildQuote(negative, 1, false, shipping)
		assert.Error(t, err)
	})
}
