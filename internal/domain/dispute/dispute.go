package dispute

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared"
)

// VotingWindow is how long a dispute accepts votes once voting starts
const VotingWindow = 7 * 24 * time.Hour

// Status represents the status of a dispute
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusVoting   Status = "VOTING"
	StatusResolved Status = "RESOLVED"
	StatusAppealed Status = "APPEALED"
)

// IsValid checks if the status is a known dispute status
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusVoting, StatusResolved, StatusAppealed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// An appeal reopens voting, so APPEALED leads back to VOTING.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusOpen:
		return target == StatusVoting
	case StatusVoting:
		return target == StatusResolved
	case StatusResolved:
		return target == StatusAppealed
	case StatusAppealed:
		return target == StatusVoting
	}
	return false
}

// Dispute is the aggregate root for adjudicating one order. It collects
// evidence and community votes and produces a buyer refund rate; the order
// payout itself belongs to the order aggregate.
type Dispute struct {
	shared.BaseAggregateRoot
	OrderID         uuid.UUID
	InitiatorID     uuid.UUID
	Reason          string
	Description     string
	Evidence        []string
	Status          Status
	VotesForBuyer   int
	VotesForSeller  int
	BuyerRefundRate *int
	AdminOverridden bool
	VotingStartedAt *time.Time
	VotingEndsAt    *time.Time
	ResolvedAt      *time.Time
}

// NewDispute opens a dispute against an order. At least one evidence
// reference is required; the reason is a short machine-friendly category and
// the description is the initiator's free text.
func NewDispute(orderID, initiatorID uuid.UUID, reason, description string, evidence []string) (*Dispute, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order ID cannot be empty")
	}
	if initiatorID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Initiator ID cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Dispute reason cannot be empty")
	}
	if len(evidence) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one evidence reference is required")
	}
	for _, ref := range evidence {
		if ref == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Evidence reference cannot be empty")
		}
	}

	d := &Dispute{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		InitiatorID:       initiatorID,
		Reason:            reason,
		Description:       description,
		Evidence:          evidence,
		Status:            StatusOpen,
	}

	d.AddDomainEvent(NewDisputeOpenedEvent(d))

	return d, nil
}

// StartVoting opens the voting window. Triggered externally once both
// parties have been notified; also the re-entry point after an appeal.
func (d *Dispute) StartVoting(now time.Time) error {
	if !d.Status.CanTransitionTo(StatusVoting) {
		return shared.NewDomainError("DISPUTE_CLOSED",
			fmt.Sprintf("Cannot start voting on a %s dispute", d.Status))
	}

	ends := now.Add(VotingWindow)
	d.Status = StatusVoting
	d.VotingStartedAt = &now
	d.VotingEndsAt = &ends
	d.UpdatedAt = now

	d.AddDomainEvent(NewDisputeVotingStartedEvent(d))

	return nil
}

// VotingExpired reports whether the voting window has elapsed
func (d *Dispute) VotingExpired(now time.Time) bool {
	return d.VotingEndsAt != nil && now.After(*d.VotingEndsAt)
}

// CanAcceptVote checks eligibility without mutating the dispute. Buyer and
// seller never adjudicate their own order.
func (d *Dispute) CanAcceptVote(voterID, buyerID, sellerID uuid.UUID, now time.Time) error {
	if d.Status != StatusVoting {
		return shared.ErrDisputeClosed
	}
	if d.VotingExpired(now) {
		return shared.ErrVotingExpired
	}
	if voterID == buyerID || voterID == sellerID {
		return shared.NewDomainError("FORBIDDEN", "Buyer and seller cannot vote on their own dispute")
	}
	return nil
}

// RecordVote increments the tally for one side. The caller must have
// persisted the vote row first; the unique constraint there is what makes
// double-voting impossible.
func (d *Dispute) RecordVote(side Side) error {
	switch side {
	case SideBuyer:
		d.VotesForBuyer++
	case SideSeller:
		d.VotesForSeller++
	default:
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown vote side")
	}

	d.UpdatedAt = time.Now()
	d.AddDomainEvent(NewDisputeVoteCastEvent(d, side))

	return nil
}

// TotalVotes returns the number of votes cast so far
func (d *Dispute) TotalVotes() int {
	return d.VotesForBuyer + d.VotesForSeller
}

// TallyRefundRate derives the buyer refund rate from the current tally.
// A strict majority for one side takes the whole escrow; a tie or a tally
// below quorum cannot auto-resolve and returns ok=false.
func (d *Dispute) TallyRefundRate(quorum int) (rate int, ok bool) {
	if d.TotalVotes() < quorum {
		return 0, false
	}
	switch {
	case d.VotesForBuyer > d.VotesForSeller:
		return 100, true
	case d.VotesForSeller > d.VotesForBuyer:
		return 0, true
	default:
		return 0, false
	}
}

// Resolve finalizes the dispute. When the tally cannot auto-resolve (tie or
// below quorum), adminOverride supplies the refund rate; without one the
// dispute stays as it was.
func (d *Dispute) Resolve(now time.Time, quorum int, adminOverride *int) (int, error) {
	if d.Status != StatusVoting {
		return 0, shared.ErrDisputeClosed
	}

	rate, ok := d.TallyRefundRate(quorum)
	if !ok {
		if adminOverride == nil {
			return 0, shared.NewDomainError("INTERNAL_ERROR",
				"Tally cannot auto-resolve and no admin override was supplied")
		}
		if *adminOverride < 0 || *adminOverride > 100 {
			return 0, shared.NewDomainError("VALIDATION_ERROR", "Admin override must be between 0 and 100")
		}
		rate = *adminOverride
		d.AdminOverridden = true
	}

	d.Status = StatusResolved
	d.BuyerRefundRate = &rate
	d.ResolvedAt = &now
	d.UpdatedAt = now

	d.AddDomainEvent(NewDisputeResolvedEvent(d, rate))

	return rate, nil
}

// Appeal escalates a resolved dispute. The previous outcome stays on record;
// a later StartVoting reopens the window.
func (d *Dispute) Appeal(appellantID uuid.UUID, buyerID, sellerID uuid.UUID) error {
	if d.Status != StatusResolved {
		return shared.NewDomainError("DISPUTE_CLOSED",
			fmt.Sprintf("Cannot appeal a %s dispute", d.Status))
	}
	if appellantID != buyerID && appellantID != sellerID {
		return shared.NewDomainError("FORBIDDEN", "Only the buyer or seller can appeal")
	}

	d.Status = StatusAppealed
	d.UpdatedAt = time.Now()

	d.AddDomainEvent(NewDisputeAppealedEvent(d, appellantID))

	return nil
}

// IsOpen returns true while the dispute has not been resolved
func (d *Dispute) IsOpen() bool {
	return d.Status == StatusOpen || d.Status == StatusVoting || d.Status == StatusAppealed
}
