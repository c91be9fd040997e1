package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbridge/backend/internal/domain/dispute"
	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/infrastructure/persistence/models"
)

// GormDisputeRepository implements dispute.Repository using GORM
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GormDisputeRepository
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

func (r *GormDisputeRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// openStatuses are the statuses in which a dispute still owns its order
var openStatuses = []string{
	dispute.StatusOpen.String(),
	dispute.StatusVoting.String(),
	dispute.StatusAppealed.String(),
}

// FindByID finds a dispute by its ID
func (r *GormDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispute.Dispute, error) {
	var model models.DisputeModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByOrderID finds the unresolved dispute for an order
func (r *GormDisputeRepository) FindOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*dispute.Dispute, error) {
	var model models.DisputeModel
	err := r.conn(ctx).
		Where("order_id = ? AND status IN ?", orderID, openStatuses).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderID finds all disputes ever opened for an order
func (r *GormDisputeRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*dispute.Dispute, error) {
	var modelRows []models.DisputeModel
	if err := r.conn(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&modelRows).Error; err != nil {
		return nil, err
	}

	disputes := make([]*dispute.Dispute, len(modelRows))
	for i := range modelRows {
		disputes[i] = modelRows[i].ToDomain()
	}
	return disputes, nil
}

// List finds disputes matching the filter
func (r *GormDisputeRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*dispute.Dispute], error) {
	countQuery := r.conn(ctx).Model(&models.DisputeModel{})
	if status, ok := filter.Filters["status"]; ok {
		countQuery = countQuery.Where("status = ?", status)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	var modelRows []models.DisputeModel
	query := applyFilter(r.conn(ctx).Model(&models.DisputeModel{}), filter)
	if err := query.Find(&modelRows).Error; err != nil {
		return nil, err
	}

	disputes := make([]*dispute.Dispute, len(modelRows))
	for i := range modelRows {
		disputes[i] = modelRows[i].ToDomain()
	}

	page := shared.NewPaginated(disputes, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Create inserts a new dispute. The partial unique index on open disputes
// per order turns a concurrent second insert into DUPLICATE_DISPUTE.
func (r *GormDisputeRepository) Create(ctx context.Context, d *dispute.Dispute) error {
	var existing int64
	err := r.conn(ctx).Model(&models.DisputeModel{}).
		Where("order_id = ? AND status IN ?", d.OrderID, openStatuses).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return shared.ErrDuplicateDispute
	}

	var model models.DisputeModel
	model.FromDomain(d)
	if err := r.conn(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateDispute
		}
		return err
	}
	return nil
}

// SaveWithStatusGuard persists dispute changes only if the stored status
// still equals expected
func (r *GormDisputeRepository) SaveWithStatusGuard(ctx context.Context, d *dispute.Dispute, expected dispute.Status) error {
	var model models.DisputeModel
	model.FromDomain(d)

	result := r.conn(ctx).Model(&models.DisputeModel{}).
		Where("id = ? AND status = ?", d.ID, expected.String()).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"votes_for_buyer":   model.VotesForBuyer,
			"votes_for_seller":  model.VotesForSeller,
			"buyer_refund_rate": model.BuyerRefundRate,
			"admin_overridden":  model.AdminOverridden,
			"voting_started_at": model.VotingStartedAt,
			"voting_ends_at":    model.VotingEndsAt,
			"resolved_at":       model.ResolvedAt,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidTransition
	}

	d.IncrementVersion()
	return nil
}

// SaveResolution persists the resolution verdict only if the stored status
// and the vote counts still equal what the verdict was computed from. A vote
// that landed between the tally read and this write makes the guard miss.
func (r *GormDisputeRepository) SaveResolution(ctx context.Context, d *dispute.Dispute, expected dispute.Status, tally dispute.Tally) error {
	var model models.DisputeModel
	model.FromDomain(d)

	result := r.conn(ctx).Model(&models.DisputeModel{}).
		Where("id = ? AND status = ? AND votes_for_buyer = ? AND votes_for_seller = ?",
			d.ID, expected.String(), tally.ForBuyer, tally.ForSeller).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"buyer_refund_rate": model.BuyerRefundRate,
			"admin_overridden":  model.AdminOverridden,
			"resolved_at":       model.ResolvedAt,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	d.IncrementVersion()
	return nil
}

// AddVote inserts the vote row and bumps the dispute tally in one
// transaction. The insert carries ON CONFLICT DO NOTHING against the
// (dispute_id, voter_id) unique index; zero rows affected means the voter
// already voted and nothing else is written.
func (r *GormDisputeRepository) AddVote(ctx context.Context, d *dispute.Dispute, v *dispute.Vote) error {
	var voteModel models.DisputeVoteModel
	voteModel.FromDomain(v)

	return dbFromContext(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dispute_id"}, {Name: "voter_id"}},
			DoNothing: true,
		}).Create(&voteModel)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrAlreadyVoted
		}

		column := "votes_for_buyer"
		if v.Side == dispute.SideSeller {
			column = "votes_for_seller"
		}
		update := tx.Model(&models.DisputeModel{}).
			Where("id = ? AND status = ?", d.ID, dispute.StatusVoting.String()).
			Updates(map[string]interface{}{
				column:       gorm.Expr(column+" + 1"),
				"updated_at": gorm.Expr("NOW()"),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return shared.ErrDisputeClosed
		}
		return nil
	})
}

// FindVotes finds all votes cast on a dispute
func (r *GormDisputeRepository) FindVotes(ctx context.Context, disputeID uuid.UUID) ([]*dispute.Vote, error) {
	var modelRows []models.DisputeVoteModel
	if err := r.conn(ctx).Where("dispute_id = ?", disputeID).Order("created_at ASC").Find(&modelRows).Error; err != nil {
		return nil, err
	}

	votes := make([]*dispute.Vote, len(modelRows))
	for i := range modelRows {
		votes[i] = modelRows[i].ToDomain()
	}
	return votes, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
