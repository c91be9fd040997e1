package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kbridge/backend/internal/domain/dispute"
)

// DisputeModel is the persistence model for the Dispute aggregate root. A
// partial unique index on order_id while unresolved enforces at most one open
// dispute per order.
type DisputeModel struct {
	AggregateModel
	OrderID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	InitiatorID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Reason          string         `gorm:"type:varchar(100);not null"`
	Description     string         `gorm:"type:text"`
	Evidence        pq.StringArray `gorm:"type:text[];not null"`
	Status          string         `gorm:"type:varchar(10);not null;default:'OPEN';index"`
	VotesForBuyer   int            `gorm:"not null;default:0"`
	VotesForSeller  int            `gorm:"not null;default:0"`
	BuyerRefundRate *int
	AdminOverridden bool `gorm:"not null;default:false"`
	VotingStartedAt *time.Time
	VotingEndsAt    *time.Time
	ResolvedAt      *time.Time
}

// TableName returns the table name for GORM
func (DisputeModel) TableName() string {
	return "disputes"
}

// ToDomain converts the persistence model to a domain Dispute
func (m *DisputeModel) ToDomain() *dispute.Dispute {
	return &dispute.Dispute{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		InitiatorID:       m.InitiatorID,
		Reason:            m.Reason,
		Description:       m.Description,
		Evidence:          []string(m.Evidence),
		Status:            dispute.Status(m.Status),
		VotesForBuyer:     m.VotesForBuyer,
		VotesForSeller:    m.VotesForSeller,
		BuyerRefundRate:   m.BuyerRefundRate,
		AdminOverridden:   m.AdminOverridden,
		VotingStartedAt:   m.VotingStartedAt,
		VotingEndsAt:      m.VotingEndsAt,
		ResolvedAt:        m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain Dispute
func (m *DisputeModel) FromDomain(d *dispute.Dispute) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.OrderID = d.OrderID
	m.InitiatorID = d.InitiatorID
	m.Reason = d.Reason
	m.Description = d.Description
	m.Evidence = pq.StringArray(d.Evidence)
	m.Status = d.Status.String()
	m.VotesForBuyer = d.VotesForBuyer
	m.VotesForSeller = d.VotesForSeller
	m.BuyerRefundRate = d.BuyerRefundRate
	m.AdminOverridden = d.AdminOverridden
	m.VotingStartedAt = d.VotingStartedAt
	m.VotingEndsAt = d.VotingEndsAt
	m.ResolvedAt = d.ResolvedAt
}

// DisputeVoteModel is the persistence model for a cast vote. The unique
// index on (dispute_id, voter_id) is what makes votes one-per-voter.
type DisputeVoteModel struct {
	BaseModel
	DisputeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dispute_votes_dispute_voter,priority:1"`
	VoterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dispute_votes_dispute_voter,priority:2"`
	Side      string    `gorm:"type:varchar(10);not null"`
	Comment   string    `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (DisputeVoteModel) TableName() string {
	return "dispute_votes"
}

// ToDomain converts the persistence model to a domain Vote
func (m *DisputeVoteModel) ToDomain() *dispute.Vote {
	return &dispute.Vote{
		BaseEntity: m.BaseModel.ToDomain(),
		DisputeID:  m.DisputeID,
		VoterID:    m.VoterID,
		Side:       dispute.Side(m.Side),
		Comment:    m.Comment,
	}
}

// FromDomain populates the persistence model from a domain Vote
func (m *DisputeVoteModel) FromDomain(v *dispute.Vote) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.DisputeID = v.DisputeID
	m.VoterID = v.VoterID
	m.Side = v.Side.String()
	m.Comment = v.Comment
}
