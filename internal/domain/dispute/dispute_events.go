package dispute

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeDispute = "Dispute"

// Event type constants
const (
	EventTypeDisputeOpened        = "DisputeOpened"
	EventTypeDisputeVotingStarted = "DisputeVotingStarted"
	EventTypeDisputeVoteCast      = "DisputeVoteCast"
	EventTypeDisputeResolved      = "DisputeResolved"
	EventTypeDisputeAppealed      = "DisputeAppealed"
)

// DisputeOpenedEvent is raised when a dispute is opened against an order
type DisputeOpenedEvent struct {
	shared.BaseDomainEvent
	DisputeID   uuid.UUID `json:"dispute_id"`
	OrderID     uuid.UUID `json:"order_id"`
	InitiatorID uuid.UUID `json:"initiator_id"`
	Reason      string    `json:"reason"`
}

// NewDisputeOpenedEvent creates a new DisputeOpenedEvent
func NewDisputeOpenedEvent(d *Dispute) *DisputeOpenedEvent {
	return &DisputeOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeOpened, AggregateTypeDispute, d.ID),
		DisputeID:       d.ID,
		OrderID:         d.OrderID,
		InitiatorID:     d.InitiatorID,
		Reason:          d.Reason,
	}
}

// DisputeVotingStartedEvent is raised when the voting window opens
type DisputeVotingStartedEvent struct {
	shared.BaseDomainEvent
	DisputeID    uuid.UUID `json:"dispute_id"`
	OrderID      uuid.UUID `json:"order_id"`
	VotingEndsAt time.Time `json:"voting_ends_at"`
}

// NewDisputeVotingStartedEvent creates a new DisputeVotingStartedEvent
func NewDisputeVotingStartedEvent(d *Dispute) *DisputeVotingStartedEvent {
	return &DisputeVotingStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeVotingStarted, AggregateTypeDispute, d.ID),
		DisputeID:       d.ID,
		OrderID:         d.OrderID,
		VotingEndsAt:    *d.VotingEndsAt,
	}
}

// DisputeVoteCastEvent is raised when a vote is recorded
type DisputeVoteCastEvent struct {
	shared.BaseDomainEvent
	DisputeID      uuid.UUID `json:"dispute_id"`
	Side           string    `json:"side"`
	VotesForBuyer  int       `json:"votes_for_buyer"`
	VotesForSeller int       `json:"votes_for_seller"`
}

// NewDisputeVoteCastEvent creates a new DisputeVoteCastEvent
func NewDisputeVoteCastEvent(d *Dispute, side Side) *DisputeVoteCastEvent {
	return &DisputeVoteCastEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeVoteCast, AggregateTypeDispute, d.ID),
		DisputeID:       d.ID,
		Side:            side.String(),
		VotesForBuyer:   d.VotesForBuyer,
		VotesForSeller:  d.VotesForSeller,
	}
}

// DisputeResolvedEvent is raised when the dispute reaches its verdict
type DisputeResolvedEvent struct {
	shared.BaseDomainEvent
	DisputeID       uuid.UUID `json:"dispute_id"`
	OrderID         uuid.UUID `json:"order_id"`
	BuyerRefundRate int       `json:"buyer_refund_rate"`
	AdminOverridden bool      `json:"admin_overridden"`
}

// NewDisputeResolvedEvent creates a new DisputeResolvedEvent
func NewDisputeResolvedEvent(d *Dispute, rate int) *DisputeResolvedEvent {
	return &DisputeResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeResolved, AggregateTypeDispute, d.ID),
		DisputeID:       d.ID,
		OrderID:         d.OrderID,
		BuyerRefundRate: rate,
		AdminOverridden: d.AdminOverridden,
	}
}

// DisputeAppealedEvent is raised when a resolved dispute is escalated
type DisputeAppealedEvent struct {
	shared.BaseDomainEvent
	DisputeID   uuid.UUID `json:"dispute_id"`
	OrderID     uuid.UUID `json:"order_id"`
	AppellantID uuid.UUID `json:"appellant_id"`
}

// NewDisputeAppealedEvent creates a new DisputeAppealedEvent
func NewDisputeAppealedEvent(d *Dispute, appellantID uuid.UUID) *DisputeAppealedEvent {
	return &DisputeAppealedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeAppealed, AggregateTypeDispute, d.ID),
		DisputeID:       d.ID,
		OrderID:         d.OrderID,
		AppellantID:     appellantID,
	}
}
