package dispute

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/dispute"
	"github.com/kbridge/backend/internal/domain/order"
	"github.com/kbridge/backend/internal/domain/shared"
)

// DefaultQuorum is the minimum number of votes for majority auto-resolution
const DefaultQuorum = 5

// Service coordinates disputes against orders: opening them, collecting
// votes, and settling the order's escrow from the verdict. All dispute/order
// pair writes happen in one transaction; the payment gateway is called only
// after commit.
type Service struct {
	disputeRepo    dispute.Repository
	orderRepo      order.Repository
	gateway        order.PaymentGateway
	notifier       order.Notifier
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
	quorum         int
	now            func() time.Time
}

// NewService creates a new dispute Service
func NewService(
	disputeRepo dispute.Repository,
	orderRepo order.Repository,
	gateway order.PaymentGateway,
	notifier order.Notifier,
	txManager shared.TransactionManager,
	quorum int,
) *Service {
	if quorum <= 0 {
		quorum = DefaultQuorum
	}
	return &Service{
		disputeRepo: disputeRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		notifier:    notifier,
		txManager:   txManager,
		quorum:      quorum,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Open creates a dispute and moves the order to DISPUTED atomically. Only a
// party to the order may open one, and only one may be open per order.
func (s *Service) Open(ctx context.Context, initiatorID uuid.UUID, req OpenDisputeRequest) (*DisputeResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if initiatorID != o.BuyerID && initiatorID != o.SellerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the buyer or seller can open a dispute")
	}

	if _, err := s.disputeRepo.FindOpenByOrderID(ctx, req.OrderID); err == nil {
		return nil, shared.ErrDuplicateDispute
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	d, err := dispute.NewDispute(o.ID, initiatorID, req.Reason, req.Description, req.Evidence)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	if err := o.MarkDisputed(); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.SaveWithStatusGuard(txCtx, o, previous); err != nil {
			return err
		}
		return s.disputeRepo.Create(txCtx, d)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, d)
	counterpart := o.SellerID
	if initiatorID == o.SellerID {
		counterpart = o.BuyerID
	}
	s.notifier.Notify(ctx, counterpart, dispute.EventTypeDisputeOpened, map[string]any{
		"dispute_id":   d.ID,
		"order_number": o.OrderNumber,
	})

	response := ToDisputeResponse(d)
	return &response, nil
}

// StartVoting opens the 7-day voting window. Triggered by the scheduling
// collaborator once both parties have been notified.
func (s *Service) StartVoting(ctx context.Context, disputeID uuid.UUID) (*DisputeResponse, error) {
	d, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	previous := d.Status
	if err := d.StartVoting(s.now()); err != nil {
		return nil, err
	}

	if err := s.disputeRepo.SaveWithStatusGuard(ctx, d, previous); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, d)

	response := ToDisputeResponse(d)
	return &response, nil
}

// CastVote records one community member's verdict. The vote row insert and
// the tally increment are one transaction; the unique constraint on
// (dispute, voter) is what rejects double votes.
func (s *Service) CastVote(ctx context.Context, disputeID, voterID uuid.UUID, req CastVoteRequest) (*DisputeResponse, error) {
	d, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, d.OrderID)
	if err != nil {
		return nil, err
	}

	if err := d.CanAcceptVote(voterID, o.BuyerID, o.SellerID, s.now()); err != nil {
		return nil, err
	}

	side := dispute.Side(req.VoteFor)
	v, err := dispute.NewVote(d.ID, voterID, side, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := d.RecordVote(side); err != nil {
		return nil, err
	}

	if err := s.disputeRepo.AddVote(ctx, d, v); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, d)

	response := ToDisputeResponse(d)
	return &response, nil
}

// Resolve tallies the votes, settles the order's escrow per the verdict, and
// closes both aggregates in one transaction. The tally is read inside that
// transaction and the resolution write is guarded on the counts read, so a
// vote landing mid-resolution makes the guard miss instead of deciding from a
// stale tally. The buyer's refund is sent to the gateway only after commit.
func (s *Service) Resolve(ctx context.Context, disputeID uuid.UUID, req ResolveRequest) (*DisputeResponse, error) {
	var (
		d    *dispute.Dispute
		o    *order.Order
		rate int
	)
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		d, err = s.disputeRepo.FindByID(txCtx, disputeID)
		if err != nil {
			return err
		}
		o, err = s.orderRepo.FindByID(txCtx, d.OrderID)
		if err != nil {
			return err
		}

		tally := dispute.Tally{ForBuyer: d.VotesForBuyer, ForSeller: d.VotesForSeller}
		previousDispute := d.Status
		rate, err = d.Resolve(s.now(), s.quorum, req.AdminRefundRate)
		if err != nil {
			return err
		}

		previousOrder := o.Status
		if err := o.ApplyResolution(rate); err != nil {
			return err
		}

		if err := s.disputeRepo.SaveResolution(txCtx, d, previousDispute, tally); err != nil {
			return err
		}
		return s.orderRepo.SaveWithStatusGuard(txCtx, o, previousOrder)
	})
	if err != nil {
		return nil, err
	}

	if rate > 0 {
		refund := o.Escrow.RefundedToBuyer.KRW()
		if err := s.gateway.Refund(ctx, o.Escrow.GatewayReference, refund); err != nil {
			// The verdict is committed; the refund is retried by the
			// payout reconciliation collaborator.
			s.notifier.Notify(ctx, o.BuyerID, "RefundDeferred", map[string]any{
				"order_number": o.OrderNumber,
			})
		}
	}

	s.publishEvents(ctx, d)
	s.notifier.Notify(ctx, o.BuyerID, dispute.EventTypeDisputeResolved, map[string]any{
		"dispute_id":        d.ID,
		"buyer_refund_rate": rate,
	})
	s.notifier.Notify(ctx, o.SellerID, dispute.EventTypeDisputeResolved, map[string]any{
		"dispute_id":        d.ID,
		"buyer_refund_rate": rate,
	})

	response := ToDisputeResponse(d)
	return &response, nil
}

// Appeal escalates a resolved dispute, putting it back on the path to a new
// voting round
func (s *Service) Appeal(ctx context.Context, disputeID, appellantID uuid.UUID) (*DisputeResponse, error) {
	d, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, d.OrderID)
	if err != nil {
		return nil, err
	}

	previous := d.Status
	if err := d.Appeal(appellantID, o.BuyerID, o.SellerID); err != nil {
		return nil, err
	}

	if err := s.disputeRepo.SaveWithStatusGuard(ctx, d, previous); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, d)

	response := ToDisputeResponse(d)
	return &response, nil
}

// GetByID retrieves a dispute
func (s *Service) GetByID(ctx context.Context, disputeID uuid.UUID) (*DisputeResponse, error) {
	d, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	response := ToDisputeResponse(d)
	return &response, nil
}

// ListVotes retrieves the votes cast on a dispute
func (s *Service) ListVotes(ctx context.Context, disputeID uuid.UUID) ([]VoteResponse, error) {
	votes, err := s.disputeRepo.FindVotes(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	return ToVoteResponses(votes), nil
}

func (s *Service) publishEvents(ctx context.Context, d *dispute.Dispute) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range d.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	d.ClearDomainEvents()
}
