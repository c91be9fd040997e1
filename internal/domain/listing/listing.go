package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// TradeDirection indicates which way a listing ships across the border
type TradeDirection string

const (
	DirectionKRToCN TradeDirection = "KR_TO_CN"
	DirectionCNToKR TradeDirection = "CN_TO_KR"
)

// IsValid checks if the direction is a known TradeDirection
func (d TradeDirection) IsValid() bool {
	return d == DirectionKRToCN || d == DirectionCNToKR
}

// String returns the string representation of TradeDirection
func (d TradeDirection) String() string {
	return string(d)
}

// Status represents the availability of a listing
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSoldOut   Status = "SOLD_OUT"
	StatusSuspended Status = "SUSPENDED"
)

// IsValid checks if the status is a known listing status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSoldOut, StatusSuspended:
		return true
	}
	return false
}

// Listing represents a product offered by a seller. Stock reservation against
// a listing must go through the repository's conditional update; the aggregate
// methods here express the rules and serve in-memory callers and tests.
type Listing struct {
	shared.BaseAggregateRoot
	SellerID               uuid.UUID
	Title                  string
	UnitPrice              valueobject.DualMoney
	Quantity               int
	UnitWeightKg           decimal.Decimal
	Direction              TradeDirection
	SellerBusinessVerified bool
	Status                 Status
}

// NewListing creates a new active listing
func NewListing(sellerID uuid.UUID, title string, unitPrice valueobject.DualMoney, quantity int, unitWeightKg decimal.Decimal, direction TradeDirection) (*Listing, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Seller ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Listing title cannot be empty")
	}
	if unitPrice.IsNegative() || unitPrice.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price must be positive in both currencies")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity cannot be negative")
	}
	if unitWeightKg.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit weight cannot be negative")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown trade direction")
	}

	status := StatusActive
	if quantity == 0 {
		status = StatusSoldOut
	}

	return &Listing{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		SellerID:               sellerID,
		Title:                  title,
		UnitPrice:              unitPrice,
		Quantity:               quantity,
		UnitWeightKg:           unitWeightKg,
		Direction:              direction,
		Status:                 status,
	}, nil
}

// IsOrderable returns true if an order can be placed against this listing
func (l *Listing) IsOrderable() bool {
	return l.Status == StatusActive && l.Quantity > 0
}

// Reserve decrements available stock. A listing at zero becomes SOLD_OUT.
func (l *Listing) Reserve(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Reserve quantity must be positive")
	}
	if !l.IsOrderable() {
		return shared.ErrInsufficientStock
	}
	if quantity > l.Quantity {
		return shared.ErrInsufficientStock
	}

	l.Quantity -= quantity
	if l.Quantity == 0 {
		l.Status = StatusSoldOut
	}
	l.UpdatedAt = time.Now()
	return nil
}

// Restore returns previously reserved stock, reactivating a sold-out listing
func (l *Listing) Restore(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Restore quantity must be positive")
	}

	l.Quantity += quantity
	if l.Status == StatusSoldOut {
		l.Status = StatusActive
	}
	l.UpdatedAt = time.Now()
	return nil
}

// Suspend takes the listing off the market
func (l *Listing) Suspend() {
	l.Status = StatusSuspended
	l.UpdatedAt = time.Now()
}

// Activate puts a suspended listing back on the market
func (l *Listing) Activate() error {
	if l.Quantity == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot activate a listing without stock")
	}
	l.Status = StatusActive
	l.UpdatedAt = time.Now()
	return nil
}

// PlatformFeeRate returns the commission rate for this listing's seller tier
func (l *Listing) PlatformFeeRate() decimal.Decimal {
	if l.SellerBusinessVerified {
		return decimal.NewFromFloat(0.03)
	}
	return decimal.NewFromFloat(0.05)
}
