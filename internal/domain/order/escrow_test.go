package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

func heldEscrow(t *testing.T) *Escrow {
	t.Helper()
	e := &Escrow{State: EscrowStateNone}
	amount, err := valueobject.NewDualMoneyFromStrings("118300", "640.51")
	require.NoError(t, err)
	require.NoError(t, e.Open("pay_abc123", amount))
	return e
}

func TestEscrowState_IsValid(t *testing.T) {
	tests := []struct {
		state   EscrowState
		isValid bool
	}{
		{EscrowStateNone, true},
		{EscrowStateHeld, true},
		{EscrowStateReleased, true},
		{EscrowStateRefunded, true},
		{EscrowStateSplit, true},
		{EscrowState("INVALID"), false},
		{EscrowState(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.state.IsValid())
		})
	}
}

func TestEscrow_Open(t *testing.T) {
	t.Run("opens from NONE", func(t *testing.T) {
		e := heldEscrow(t)
		assert.Equal(t, EscrowStateHeld, e.State)
		assert.Equal(t, "pay_abc123", e.GatewayReference)
		assert.True(t, e.IsHeld())
		assert.False(t, e.IsSettled())
	})

	t.Run("rejects a second open", func(t *testing.T) {
		e := heldEscrow(t)
		err := e.Open("pay_other", e.Amount)
		assert.Error(t, err)
	})

	t.Run("rejects empty gateway reference", func(t *testing.T) {
		e := &Escrow{State: EscrowStateNone}
		err := e.Open("", valueobject.ZeroDual())
		assert.Error(t, err)
	})
}

func TestEscrow_Settle(t *testing.T) {
	t.Run("full release pays the seller everything", func(t *testing.T) {
		e := heldEscrow(t)
		require.NoError(t, e.Release())

		assert.Equal(t, EscrowStateReleased, e.State)
		assert.True(t, e.RefundedToBuyer.IsZero())
		assert.True(t, e.ReleasedToSeller.Equals(e.Amount))
		assert.NotNil(t, e.SettledAt)
	})

	t.Run("full refund returns the buyer everything", func(t *testing.T) {
		e := heldEscrow(t)
		require.NoError(t, e.Refund())

		assert.Equal(t, EscrowStateRefunded, e.State)
		assert.True(t, e.RefundedToBuyer.Equals(e.Amount))
		assert.True(t, e.ReleasedToSeller.IsZero())
	})

	t.Run("partial settlement splits without losing a won or a fen", func(t *testing.T) {
		e := heldEscrow(t)
		require.NoError(t, e.Settle(70))

		assert.Equal(t, EscrowStateSplit, e.State)
		sum := e.RefundedToBuyer.Add(e.ReleasedToSeller)
		assert.True(t, sum.Equals(e.Amount))
	})

	t.Run("settles exactly once", func(t *testing.T) {
		e := heldEscrow(t)
		require.NoError(t, e.Settle(50))

		firstBuyer := e.RefundedToBuyer
		err := e.Settle(100)
		assert.Error(t, err)
		assert.Equal(t, EscrowStateSplit, e.State)
		assert.True(t, e.RefundedToBuyer.Equals(firstBuyer))
	})

	t.Run("rejects settlement before funds are held", func(t *testing.T) {
		e := &Escrow{State: EscrowStateNone}
		err := e.Settle(50)
		assert.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})

	t.Run("rejects out-of-range rates", func(t *testing.T) {
		e := heldEscrow(t)
		assert.Error(t, e.Settle(-1))
		assert.Error(t, e.Settle(101))
		assert.True(t, e.IsHeld())
	})
}
