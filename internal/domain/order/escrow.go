package order

import (
	"time"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// EscrowState represents the lifecycle of funds held for an order
type EscrowState string

const (
	EscrowStateNone     EscrowState = "NONE"     // no capture yet
	EscrowStateHeld     EscrowState = "HELD"     // captured, awaiting settlement
	EscrowStateReleased EscrowState = "RELEASED" // fully paid out to seller
	EscrowStateRefunded EscrowState = "REFUNDED" // fully returned to buyer
	EscrowStateSplit    EscrowState = "SPLIT"    // partial refund settlement
)

// IsValid checks if the state is a known escrow state
func (s EscrowState) IsValid() bool {
	switch s {
	case EscrowStateNone, EscrowStateHeld, EscrowStateReleased, EscrowStateRefunded, EscrowStateSplit:
		return true
	}
	return false
}

// String returns the string representation of EscrowState
func (s EscrowState) String() string {
	return string(s)
}

// Escrow holds the captured funds for one order. Settlement happens exactly
// once; any second attempt is rejected.
type Escrow struct {
	GatewayReference string
	Amount           valueobject.DualMoney
	State            EscrowState
	RefundedToBuyer  valueobject.DualMoney
	ReleasedToSeller valueobject.DualMoney
	SettledAt        *time.Time
}

// Open records a successful payment capture and starts holding the amount
func (e *Escrow) Open(gatewayReference string, amount valueobject.DualMoney) error {
	if e.State != EscrowStateNone {
		return shared.NewDomainError("INVALID_TRANSITION", "Escrow is already open for this order")
	}
	if gatewayReference == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Gateway reference cannot be empty")
	}

	e.GatewayReference = gatewayReference
	e.Amount = amount
	e.State = EscrowStateHeld
	return nil
}

// IsHeld returns true while funds are captured but not yet settled
func (e *Escrow) IsHeld() bool {
	return e.State == EscrowStateHeld
}

// IsSettled returns true once the escrow has been paid out
func (e *Escrow) IsSettled() bool {
	return e.State == EscrowStateReleased || e.State == EscrowStateRefunded || e.State == EscrowStateSplit
}

// Release pays the full amount to the seller
func (e *Escrow) Release() error {
	return e.Settle(0)
}

// Refund returns the full amount to the buyer
func (e *Escrow) Refund() error {
	return e.Settle(100)
}

// Settle splits the held amount: buyerRefundRate percent back to the buyer,
// the exact remainder to the seller. The two shares always sum to the held
// amount in both currencies.
func (e *Escrow) Settle(buyerRefundRate int) error {
	if e.State != EscrowStateHeld {
		return shared.NewDomainError("INVALID_TRANSITION", "Escrow has no held funds to settle")
	}
	if buyerRefundRate < 0 || buyerRefundRate > 100 {
		return shared.NewDomainError("VALIDATION_ERROR", "Refund rate must be between 0 and 100")
	}

	buyer, seller := e.Amount.SplitByRate(buyerRefundRate)
	e.RefundedToBuyer = buyer
	e.ReleasedToSeller = seller

	switch buyerRefundRate {
	case 0:
		e.State = EscrowStateReleased
	case 100:
		e.State = EscrowStateRefunded
	default:
		e.State = EscrowStateSplit
	}

	now := time.Now()
	e.SettledAt = &now
	return nil
}
