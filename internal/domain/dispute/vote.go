package dispute

import (
	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// Side is which party a vote supports
type Side string

const (
	SideBuyer  Side = "BUYER"
	SideSeller Side = "SELLER"
)

// IsValid checks if the side is a known vote side
func (s Side) IsValid() bool {
	return s == SideBuyer || s == SideSeller
}

// String returns the string representation of Side
func (s Side) String() string {
	return string(s)
}

// Vote is one community member's verdict on a dispute. Votes are immutable
// once cast and unique per (dispute, voter).
type Vote struct {
	shared.BaseEntity
	DisputeID uuid.UUID
	VoterID   uuid.UUID
	Side      Side
	Comment   string
}

// NewVote creates a vote. Eligibility against the dispute and its order is
// checked by the aggregate, not here.
func NewVote(disputeID, voterID uuid.UUID, side Side, comment string) (*Vote, error) {
	if disputeID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Dispute ID cannot be empty")
	}
	if voterID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Voter ID cannot be empty")
	}
	if !side.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Vote must be for BUYER or SELLER")
	}
	if len(comment) > 1000 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Vote comment is too long")
	}

	return &Vote{
		BaseEntity: shared.NewBaseEntity(),
		DisputeID:  disputeID,
		VoterID:    voterID,
		Side:       side,
		Comment:    comment,
	}, nil
}
