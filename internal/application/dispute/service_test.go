package dispute

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/backend/internal/domain/dispute"
	"github.com/kbridge/backend/internal/domain/order"
	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// MockDisputeRepository is a mock implementation of dispute.Repository
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispute.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) FindOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*dispute.Dispute, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*dispute.Dispute, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dispute.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*dispute.Dispute], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*dispute.Dispute]), args.Error(1)
}

func (m *MockDisputeRepository) Create(ctx context.Context, d *dispute.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDisputeRepository) SaveWithStatusGuard(ctx context.Context, d *dispute.Dispute, expected dispute.Status) error {
	args := m.Called(ctx, d, expected)
	return args.Error(0)
}

func (m *MockDisputeRepository) SaveResolution(ctx context.Context, d *dispute.Dispute, expected dispute.Status, tally dispute.Tally) error {
	args := m.Called(ctx, d, expected, tally)
	return args.Error(0)
}

func (m *MockDisputeRepository) AddVote(ctx context.Context, d *dispute.Dispute, v *dispute.Vote) error {
	args := m.Called(ctx, d, v)
	return args.Error(0)
}

func (m *MockDisputeRepository) FindVotes(ctx context.Context, disputeID uuid.UUID) ([]*dispute.Vote, error) {
	args := m.Called(ctx, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dispute.Vote), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, buyerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, sellerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithStatusGuard(ctx context.Context, o *order.Order, expectedStatus order.Status) error {
	args := m.Called(ctx, o, expectedStatus)
	return args.Error(0)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockPaymentGateway is a mock implementation of order.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Capture(ctx context.Context, orderID uuid.UUID, amount valueobject.Money) (string, error) {
	args := m.Called(ctx, orderID, amount)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, gatewayReference string, amount valueobject.Money) error {
	args := m.Called(ctx, gatewayReference, amount)
	return args.Error(0)
}

// MockNotifier is a mock implementation of order.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, eventType string, payload map[string]any) {
	m.Called(ctx, userID, eventType, payload)
}

type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Test fixtures

func disputedOrder(t *testing.T, buyerID, sellerID uuid.UUID) *order.Order {
	t.Helper()
	item, err := valueobject.NewDualMoneyFromStrings("100000", "540.54")
	require.NoError(t, err)
	shipping, err := valueobject.NewDualMoneyFromStrings("13300", "72")
	require.NoError(t, err)
	fee, err := valueobject.NewDualMoneyFromStrings("5000", "27.03")
	require.NoError(t, err)

	o, err := order.NewOrder("KB-2026-000042", uuid.New(), "Puer tea cake 357g",
		buyerID, sellerID, 2, item, shipping, fee,
		decimal.NewFromFloat(0.05), "Hangzhou, Xihu district 88", nil)
	require.NoError(t, err)
	require.NoError(t, o.MarkPaid("pay_abc123"))
	require.NoError(t, o.MarkDisputed())
	o.ClearDomainEvents()
	return o
}

func paidOrder(t *testing.T, buyerID, sellerID uuid.UUID) *order.Order {
	t.Helper()
	item, err := valueobject.NewDualMoneyFromStrings("100000", "540.54")
	require.NoError(t, err)
	shipping, err := valueobject.NewDualMoneyFromStrings("13300", "72")
	require.NoError(t, err)
	fee, err := valueobject.NewDualMoneyFromStrings("5000", "27.03")
	require.NoError(t, err)

	o, err := order.NewOrder("KB-2026-000042", uuid.New(), "Puer tea cake 357g",
		buyerID, sellerID, 2, item, shipping, fee,
		decimal.NewFromFloat(0.05), "Hangzhou, Xihu district 88", nil)
	require.NoError(t, err)
	require.NoError(t, o.MarkPaid("pay_abc123"))
	o.ClearDomainEvents()
	return o
}

func votingDisputeFor(t *testing.T, o *order.Order, votesForBuyer, votesForSeller int) *dispute.Dispute {
	t.Helper()
	d, err := dispute.NewDispute(o.ID, o.BuyerID, "NOT_AS_DESCRIBED",
		"Half the cake arrived crumbled", []string{"photos/damage-1.jpg"})
	require.NoError(t, err)
	require.NoError(t, d.StartVoting(time.Now().Add(-time.Hour)))
	d.VotesForBuyer = votesForBuyer
	d.VotesForSeller = votesForSeller
	d.ClearDomainEvents()
	return d
}

func newTestService(disputeRepo *MockDisputeRepository, orderRepo *MockOrderRepository, gateway *MockPaymentGateway, notifier *MockNotifier) *Service {
	return NewService(disputeRepo, orderRepo, gateway, notifier, passthroughTxManager{}, DefaultQuorum)
}

func TestService_Open(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()

	t.Run("opens a dispute and freezes the order", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		notifier := new(MockNotifier)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), notifier)

		o := paidOrder(t, buyerID, sellerID)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("FindOpenByOrderID", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("SaveWithStatusGuard", mock.Anything, o, order.StatusPaid).Return(nil)
		disputeRepo.On("Create", mock.Anything, mock.AnythingOfType("*dispute.Dispute")).Return(nil)
		notifier.On("Notify", mock.Anything, sellerID, dispute.EventTypeDisputeOpened, mock.Anything).Return()

		resp, err := service.Open(context.Background(), buyerID, OpenDisputeRequest{
			OrderID:     o.ID,
			Reason:      "NOT_AS_DESCRIBED",
			Description: "Half the cake arrived crumbled",
			Evidence:    []string{"photos/damage-1.jpg"},
		})
		require.NoError(t, err)

		assert.Equal(t, "OPEN", resp.Status)
		assert.Equal(t, order.StatusDisputed, o.Status)
		disputeRepo.AssertExpectations(t)
		orderRepo.AssertExpectations(t)
	})

	t.Run("notifies the buyer when the seller opens", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		notifier := new(MockNotifier)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), notifier)

		o := paidOrder(t, buyerID, sellerID)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("FindOpenByOrderID", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("SaveWithStatusGuard", mock.Anything, o, order.StatusPaid).Return(nil)
		disputeRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		notifier.On("Notify", mock.Anything, buyerID, dispute.EventTypeDisputeOpened, mock.Anything).Return()

		_, err := service.Open(context.Background(), sellerID, OpenDisputeRequest{
			OrderID:  o.ID,
			Reason:   "BUYER_UNRESPONSIVE",
			Evidence: []string{"chats/export.txt"},
		})
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("rejects outsiders", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := paidOrder(t, buyerID, sellerID)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := service.Open(context.Background(), uuid.New(), OpenDisputeRequest{
			OrderID:  o.ID,
			Reason:   "NOT_AS_DESCRIBED",
			Evidence: []string{"photos/damage-1.jpg"},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		disputeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a second dispute on an already disputed order", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		existing, err := dispute.NewDispute(o.ID, buyerID, "NOT_AS_DESCRIBED",
			"Half the cake arrived crumbled", []string{"photos/damage-1.jpg"})
		require.NoError(t, err)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("FindOpenByOrderID", mock.Anything, o.ID).Return(existing, nil)

		_, err = service.Open(context.Background(), sellerID, OpenDisputeRequest{
			OrderID:  o.ID,
			Reason:   "BUYER_UNRESPONSIVE",
			Evidence: []string{"chats/export.txt"},
		})
		assert.ErrorIs(t, err, shared.ErrDuplicateDispute)
		disputeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		orderRepo.AssertNotCalled(t, "SaveWithStatusGuard", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("surfaces the duplicate from a concurrent insert", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := paidOrder(t, buyerID, sellerID)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("FindOpenByOrderID", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("SaveWithStatusGuard", mock.Anything, o, order.StatusPaid).Return(nil)
		disputeRepo.On("Create", mock.Anything, mock.Anything).Return(shared.ErrDuplicateDispute)

		_, err := service.Open(context.Background(), buyerID, OpenDisputeRequest{
			OrderID:  o.ID,
			Reason:   "NOT_AS_DESCRIBED",
			Evidence: []string{"photos/damage-1.jpg"},
		})
		assert.ErrorIs(t, err, shared.ErrDuplicateDispute)
	})
}

func TestService_CastVote(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()

	t.Run("records an eligible vote", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 0, 0)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("AddVote", mock.Anything, d, mock.AnythingOfType("*dispute.Vote")).Return(nil)

		resp, err := service.CastVote(context.Background(), d.ID, uuid.New(), CastVoteRequest{
			VoteFor: "BUYER",
			Comment: "Photos clearly show transit damage",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.VotesForBuyer)
		assert.Equal(t, 0, resp.VotesForSeller)
	})

	t.Run("parties to the order cannot vote", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 0, 0)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := service.CastVote(context.Background(), d.ID, buyerID, CastVoteRequest{VoteFor: "BUYER"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		disputeRepo.AssertNotCalled(t, "AddVote", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("surfaces a double vote", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 2, 1)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("AddVote", mock.Anything, d, mock.Anything).Return(shared.ErrAlreadyVoted)

		_, err := service.CastVote(context.Background(), d.ID, uuid.New(), CastVoteRequest{VoteFor: "SELLER"})
		assert.ErrorIs(t, err, shared.ErrAlreadyVoted)
	})

	t.Run("rejects votes after the window", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 0, 0)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		service.now = func() time.Time { return time.Now().Add(dispute.VotingWindow + time.Hour) }

		_, err := service.CastVote(context.Background(), d.ID, uuid.New(), CastVoteRequest{VoteFor: "BUYER"})
		assert.ErrorIs(t, err, shared.ErrVotingExpired)
	})
}

func TestService_Resolve(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()

	t.Run("buyer majority refunds the escrow", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		gateway := new(MockPaymentGateway)
		notifier := new(MockNotifier)
		service := newTestService(disputeRepo, orderRepo, gateway, notifier)

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 4, 2)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("SaveResolution", mock.Anything, d, dispute.StatusVoting, dispute.Tally{ForBuyer: 4, ForSeller: 2}).Return(nil)
		orderRepo.On("SaveWithStatusGuard", mock.Anything, o, order.StatusDisputed).Return(nil)
		gateway.On("Refund", mock.Anything, "pay_abc123", o.Total.KRW()).Return(nil)
		notifier.On("Notify", mock.Anything, buyerID, dispute.EventTypeDisputeResolved, mock.Anything).Return()
		notifier.On("Notify", mock.Anything, sellerID, dispute.EventTypeDisputeResolved, mock.Anything).Return()

		service.now = func() time.Time { return time.Now().Add(dispute.VotingWindow + time.Hour) }

		resp, err := service.Resolve(context.Background(), d.ID, ResolveRequest{})
		require.NoError(t, err)

		assert.Equal(t, "RESOLVED", resp.Status)
		require.NotNil(t, resp.BuyerRefundRate)
		assert.Equal(t, 100, *resp.BuyerRefundRate)
		assert.Equal(t, order.StatusRefunded, o.Status)
		gateway.AssertExpectations(t)
	})

	t.Run("seller majority releases without a refund call", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		gateway := new(MockPaymentGateway)
		notifier := new(MockNotifier)
		service := newTestService(disputeRepo, orderRepo, gateway, notifier)

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 2, 4)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("SaveResolution", mock.Anything, d, dispute.StatusVoting, dispute.Tally{ForBuyer: 2, ForSeller: 4}).Return(nil)
		orderRepo.On("SaveWithStatusGuard", mock.Anything, o, order.StatusDisputed).Return(nil)
		notifier.On("Notify", mock.Anything, mock.Anything, dispute.EventTypeDisputeResolved, mock.Anything).Return()

		service.now = func() time.Time { return time.Now().Add(dispute.VotingWindow + time.Hour) }

		resp, err := service.Resolve(context.Background(), d.ID, ResolveRequest{})
		require.NoError(t, err)

		require.NotNil(t, resp.BuyerRefundRate)
		assert.Equal(t, 0, *resp.BuyerRefundRate)
		assert.Equal(t, order.StatusConfirmed, o.Status)
		gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin override splits the escrow", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		gateway := new(MockPaymentGateway)
		notifier := new(MockNotifier)
		service := newTestService(disputeRepo, orderRepo, gateway, notifier)

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 3, 3)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("SaveResolution", mock.Anything, d, dispute.StatusVoting, dispute.Tally{ForBuyer: 3, ForSeller: 3}).Return(nil)
		orderRepo.On("SaveWithStatusGuard", mock.Anything, o, order.StatusDisputed).Return(nil)
		gateway.On("Refund", mock.Anything, "pay_abc123", mock.Anything).Return(nil)
		notifier.On("Notify", mock.Anything, mock.Anything, dispute.EventTypeDisputeResolved, mock.Anything).Return()

		service.now = func() time.Time { return time.Now().Add(dispute.VotingWindow + time.Hour) }

		rate := 70
		resp, err := service.Resolve(context.Background(), d.ID, ResolveRequest{AdminRefundRate: &rate})
		require.NoError(t, err)

		assert.True(t, resp.AdminOverridden)
		assert.Equal(t, order.StatusPartiallyRefunded, o.Status)
		refunded := o.Escrow.RefundedToBuyer.KRW()
		gateway.AssertCalled(t, "Refund", mock.Anything, "pay_abc123", refunded)
	})

	t.Run("a failed refund defers, not fails", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		gateway := new(MockPaymentGateway)
		notifier := new(MockNotifier)
		service := newTestService(disputeRepo, orderRepo, gateway, notifier)

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 5, 1)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("SaveResolution", mock.Anything, d, dispute.StatusVoting, dispute.Tally{ForBuyer: 5, ForSeller: 1}).Return(nil)
		orderRepo.On("SaveWithStatusGuard", mock.Anything, o, order.StatusDisputed).Return(nil)
		gateway.On("Refund", mock.Anything, "pay_abc123", mock.Anything).Return(errors.New("gateway timeout"))
		notifier.On("Notify", mock.Anything, buyerID, "RefundDeferred", mock.Anything).Return()
		notifier.On("Notify", mock.Anything, mock.Anything, dispute.EventTypeDisputeResolved, mock.Anything).Return()

		service.now = func() time.Time { return time.Now().Add(dispute.VotingWindow + time.Hour) }

		resp, err := service.Resolve(context.Background(), d.ID, ResolveRequest{})
		require.NoError(t, err)
		assert.Equal(t, "RESOLVED", resp.Status)
		notifier.AssertCalled(t, "Notify", mock.Anything, buyerID, "RefundDeferred", mock.Anything)
	})

	t.Run("a tie without override stays open", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 3, 3)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		service.now = func() time.Time { return time.Now().Add(dispute.VotingWindow + time.Hour) }

		_, err := service.Resolve(context.Background(), d.ID, ResolveRequest{})
		assert.Error(t, err)
		assert.Equal(t, dispute.StatusVoting, d.Status)
		disputeRepo.AssertNotCalled(t, "SaveResolution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a vote landing mid-resolution aborts the verdict", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		gateway := new(MockPaymentGateway)
		service := newTestService(disputeRepo, orderRepo, gateway, new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 3, 2)
		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("SaveResolution", mock.Anything, d, dispute.StatusVoting, dispute.Tally{ForBuyer: 3, ForSeller: 2}).
			Return(shared.ErrConcurrencyConflict)

		service.now = func() time.Time { return time.Now().Add(dispute.VotingWindow + time.Hour) }

		_, err := service.Resolve(context.Background(), d.ID, ResolveRequest{})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		orderRepo.AssertNotCalled(t, "SaveWithStatusGuard", mock.Anything, mock.Anything, mock.Anything)
		gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Appeal(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()

	t.Run("a party reopens the path to voting", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 4, 2)
		_, err := d.Resolve(time.Now().Add(dispute.VotingWindow+time.Hour), DefaultQuorum, nil)
		require.NoError(t, err)
		d.ClearDomainEvents()

		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		disputeRepo.On("SaveWithStatusGuard", mock.Anything, d, dispute.StatusResolved).Return(nil)

		resp, err := service.Appeal(context.Background(), d.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, "APPEALED", resp.Status)
	})

	t.Run("outsiders cannot appeal", func(t *testing.T) {
		disputeRepo := new(MockDisputeRepository)
		orderRepo := new(MockOrderRepository)
		service := newTestService(disputeRepo, orderRepo, new(MockPaymentGateway), new(MockNotifier))

		o := disputedOrder(t, buyerID, sellerID)
		d := votingDisputeFor(t, o, 4, 2)
		_, err := d.Resolve(time.Now().Add(dispute.VotingWindow+time.Hour), DefaultQuorum, nil)
		require.NoError(t, err)

		disputeRepo.On("FindByID", mock.Anything, d.ID).Return(d, nil)
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err = service.Appeal(context.Background(), d.ID, uuid.New())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})
}
