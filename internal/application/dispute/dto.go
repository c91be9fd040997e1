package dispute

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/dispute"
)

// OpenDisputeRequest represents a request to open a dispute against an order
type OpenDisputeRequest struct {
	OrderID     uuid.UUID `json:"order_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required,min=1,max=100"`
	Description string    `json:"description" binding:"max=2000"`
	Evidence    []string  `json:"evidence" binding:"required,min=1"`
}

// CastVoteRequest represents a community member's vote
type CastVoteRequest struct {
	VoteFor string `json:"vote_for" binding:"required,oneof=BUYER SELLER"`
	Comment string `json:"comment" binding:"max=1000"`
}

// ResolveRequest carries the optional admin override for ties and
// below-quorum tallies
type ResolveRequest struct {
	AdminRefundRate *int `json:"admin_refund_rate" binding:"omitempty,min=0,max=100"`
}

// DisputeResponse represents a dispute in API responses
type DisputeResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	InitiatorID     uuid.UUID  `json:"initiator_id"`
	Reason          string     `json:"reason"`
	Description     string     `json:"description"`
	Evidence        []string   `json:"evidence"`
	Status          string     `json:"status"`
	VotesForBuyer   int        `json:"votes_for_buyer"`
	VotesForSeller  int        `json:"votes_for_seller"`
	BuyerRefundRate *int       `json:"buyer_refund_rate,omitempty"`
	AdminOverridden bool       `json:"admin_overridden"`
	VotingStartedAt *time.Time `json:"voting_started_at,omitempty"`
	VotingEndsAt    *time.Time `json:"voting_ends_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int        `json:"version"`
}

// VoteResponse represents a cast vote in API responses
type VoteResponse struct {
	ID        uuid.UUID `json:"id"`
	DisputeID uuid.UUID `json:"dispute_id"`
	VoterID   uuid.UUID `json:"voter_id"`
	Side      string    `json:"side"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDisputeResponse converts a domain dispute to the response representation
func ToDisputeResponse(d *dispute.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:              d.ID,
		OrderID:         d.OrderID,
		InitiatorID:     d.InitiatorID,
		Reason:          d.Reason,
		Description:     d.Description,
		Evidence:        d.Evidence,
		Status:          d.Status.String(),
		VotesForBuyer:   d.VotesForBuyer,
		VotesForSeller:  d.VotesForSeller,
		BuyerRefundRate: d.BuyerRefundRate,
		AdminOverridden: d.AdminOverridden,
		VotingStartedAt: d.VotingStartedAt,
		VotingEndsAt:    d.VotingEndsAt,
		ResolvedAt:      d.ResolvedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		Version:         d.Version,
	}
}

// ToVoteResponses converts votes to the response representation
func ToVoteResponses(votes []*dispute.Vote) []VoteResponse {
	responses := make([]VoteResponse, len(votes))
	for i, v := range votes {
		responses[i] = VoteResponse{
			ID:        v.ID,
			DisputeID: v.DisputeID,
			VoterID:   v.VoterID,
			Side:      v.Side.String(),
			Comment:   v.Comment,
			CreatedAt: v.CreatedAt,
		}
	}
	return responses
}
