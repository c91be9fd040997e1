package listing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

func createTestListing(t *testing.T, quantity int) *Listing {
	t.Helper()
	price := valueobject.NewDualMoney(decimal.NewFromInt(50000), decimal.NewFromFloat(270.27))
	l, err := NewListing(uuid.New(), "Ginseng extract 30 pouches", price, quantity,
		decimal.NewFromFloat(0.8), DirectionKRToCN)
	require.NoError(t, err)
	return l
}

func TestNewListing(t *testing.T) {
	t.Run("creates an active listing", func(t *testing.T) {
		l := createTestListing(t, 10)
		assert.Equal(t, StatusActive, l.Status)
		assert.True(t, l.IsOrderable())
	})

	t.Run("zero stock starts as SOLD_OUT", func(t *testing.T) {
		l := createTestListing(t, 0)
		assert.Equal(t, StatusSoldOut, l.Status)
		assert.False(t, l.IsOrderable())
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		_, err := NewListing(uuid.New(), "title", valueobject.ZeroDual(), 1,
			decimal.Zero, DirectionKRToCN)
		assert.Error(t, err)
	})

	t.Run("rejects an unknown direction", func(t *testing.T) {
		price := valueobject.NewDualMoney(decimal.NewFromInt(1000), decimal.NewFromInt(6))
		_, err := NewListing(uuid.New(), "title", price, 1, decimal.Zero, TradeDirection("KR_TO_JP"))
		assert.Error(t, err)
	})
}

func TestListing_Reserve(t *testing.T) {
	t.Run("decrements stock", func(t *testing.T) {
		l := createTestListing(t, 10)
		require.NoError(t, l.Reserve(3))
		assert.Equal(t, 7, l.Quantity)
		assert.Equal(t, StatusActive, l.Status)
	})

	t.Run("draining the last unit flips to SOLD_OUT", func(t *testing.T) {
		l := createTestListing(t, 3)
		require.NoError(t, l.Reserve(3))
		assert.Equal(t, 0, l.Quantity)
		assert.Equal(t, StatusSoldOut, l.Status)
	})

	t.Run("rejects reserving more than available", func(t *testing.T) {
		l := createTestListing(t, 2)
		err := l.Reserve(3)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 2, l.Quantity)
	})

	t.Run("rejects reserving from a suspended listing", func(t *testing.T) {
		l := createTestListing(t, 5)
		l.Suspend()
		assert.ErrorIs(t, l.Reserve(1), shared.ErrInsufficientStock)
	})
}

func TestListing_Restore(t *testing.T) {
	t.Run("returns stock and reactivates a sold-out listing", func(t *testing.T) {
		l := createTestListing(t, 1)
		require.NoError(t, l.Reserve(1))
		require.Equal(t, StatusSoldOut, l.Status)

		require.NoError(t, l.Restore(1))
		assert.Equal(t, 1, l.Quantity)
		assert.Equal(t, StatusActive, l.Status)
	})

	t.Run("does not reactivate a suspended listing", func(t *testing.T) {
		l := createTestListing(t, 5)
		l.Suspend()
		require.NoError(t, l.Restore(2))
		assert.Equal(t, StatusSuspended, l.Status)
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		l := createTestListing(t, 5)
		assert.Error(t, l.Restore(0))
	})
}

func TestListing_SuspendActivate(t *testing.T) {
	t.Run("suspended listing can come back with stock", func(t *testing.T) {
		l := createTestListing(t, 5)
		l.Suspend()
		assert.False(t, l.IsOrderable())

		require.NoError(t, l.Activate())
		assert.True(t, l.IsOrderable())
	})

	t.Run("cannot activate without stock", func(t *testing.T) {
		l := createTestListing(t, 1)
		require.NoError(t, l.Reserve(1))
		l.Suspend()
		assert.Error(t, l.Activate())
	})
}

func TestListing_PlatformFeeRate(t *testing.T) {
	l := createTestListing(t, 1)
	assert.Equal(t, "0.05", l.PlatformFeeRate().String())

	l.SellerBusinessVerified = true
	assert.Equal(t, "0.03", l.PlatformFeeRate().String())
}
