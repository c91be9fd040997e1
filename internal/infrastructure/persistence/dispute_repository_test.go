package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kbridge/backend/internal/domain/dispute"
	"github.com/kbridge/backend/internal/domain/shared"
)

// newMockDisputeRepository creates a GormDisputeRepository with a mocked SQL connection
func newMockDisputeRepository(t *testing.T) (*GormDisputeRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormDisputeRepository(gormDB), mock, mockDB
}

func disputeRowColumns() []string {
	return []string{
		"id", "order_id", "initiator_id", "reason", "description", "evidence",
		"status", "votes_for_buyer", "votes_for_seller", "admin_overridden", "version",
	}
}

func newStoredDispute(t *testing.T) *dispute.Dispute {
	t.Helper()
	d, err := dispute.NewDispute(uuid.New(), uuid.New(), "NOT_AS_DESCRIBED",
		"Seal was broken on arrival", []string{"photos/seal.jpg"})
	require.NoError(t, err)
	return d
}

func TestGormDisputeRepository_FindByID(t *testing.T) {
	t.Run("finds existing dispute", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		disputeID := uuid.New()
		orderID := uuid.New()

		rows := sqlmock.NewRows(disputeRowColumns()).
			AddRow(disputeID, orderID, uuid.New(), "NOT_AS_DESCRIBED", "Seal was broken on arrival",
				pq.StringArray{"photos/seal.jpg"}, "VOTING", 3, 1, false, 2)

		mock.ExpectQuery(`SELECT \* FROM "disputes" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(disputeID, 1).
			WillReturnRows(rows)

		d, err := repo.FindByID(context.Background(), disputeID)

		assert.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, disputeID, d.ID)
		assert.Equal(t, orderID, d.OrderID)
		assert.Equal(t, dispute.StatusVoting, d.Status)
		assert.Equal(t, []string{"photos/seal.jpg"}, d.Evidence)
		assert.Equal(t, 3, d.VotesForBuyer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing dispute", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		disputeID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "disputes" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(disputeID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		d, err := repo.FindByID(context.Background(), disputeID)

		assert.Nil(t, d)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDisputeRepository_FindOpenByOrderID(t *testing.T) {
	t.Run("returns ErrNotFound when no dispute is open", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "disputes" WHERE order_id = \$1 AND status IN .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		d, err := repo.FindOpenByOrderID(context.Background(), orderID)

		assert.Nil(t, d)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDisputeRepository_Create(t *testing.T) {
	t.Run("inserts when no dispute is open for the order", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "disputes" WHERE order_id = \$1 AND status IN .*`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO "disputes"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(context.Background(), d)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a second open dispute up front", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "disputes" WHERE order_id = \$1 AND status IN .*`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.Create(context.Background(), d)

		assert.ErrorIs(t, err, shared.ErrDuplicateDispute)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps the partial unique index violation on a racing insert", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "disputes" WHERE order_id = \$1 AND status IN .*`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO "disputes"`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), d)

		assert.ErrorIs(t, err, shared.ErrDuplicateDispute)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDisputeRepository_SaveWithStatusGuard(t *testing.T) {
	t.Run("winning guard bumps the version", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)
		versionBefore := d.Version

		mock.ExpectExec(`UPDATE "disputes" SET .* WHERE id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithStatusGuard(context.Background(), d, dispute.StatusOpen)

		assert.NoError(t, err)
		assert.Equal(t, versionBefore+1, d.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("losing guard returns ErrInvalidTransition", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)

		mock.ExpectExec(`UPDATE "disputes" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithStatusGuard(context.Background(), d, dispute.StatusOpen)

		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDisputeRepository_SaveResolution(t *testing.T) {
	t.Run("winning guard carries the tally in the WHERE clause", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)
		versionBefore := d.Version

		mock.ExpectExec(`UPDATE "disputes" SET .* WHERE id = \$\d+ AND status = \$\d+ AND votes_for_buyer = \$\d+ AND votes_for_seller = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveResolution(context.Background(), d, dispute.StatusVoting, dispute.Tally{ForBuyer: 4, ForSeller: 2})

		assert.NoError(t, err)
		assert.Equal(t, versionBefore+1, d.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale tally returns ErrConcurrencyConflict", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)

		mock.ExpectExec(`UPDATE "disputes" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveResolution(context.Background(), d, dispute.StatusVoting, dispute.Tally{ForBuyer: 3, ForSeller: 2})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDisputeRepository_AddVote(t *testing.T) {
	t.Run("inserts the vote and bumps the tally", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)
		v, err := dispute.NewVote(d.ID, uuid.New(), dispute.SideBuyer, "Clear transit damage")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "dispute_votes" .* ON CONFLICT \("dispute_id","voter_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "disputes" SET .* WHERE id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.AddVote(context.Background(), d, v)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a second vote from the same voter rolls back", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)
		v, err := dispute.NewVote(d.ID, uuid.New(), dispute.SideSeller, "")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "dispute_votes"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.AddVote(context.Background(), d, v)

		assert.ErrorIs(t, err, shared.ErrAlreadyVoted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a vote landing after resolution rolls back", func(t *testing.T) {
		repo, mock, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		d := newStoredDispute(t)
		v, err := dispute.NewVote(d.ID, uuid.New(), dispute.SideBuyer, "")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "dispute_votes"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "disputes" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.AddVote(context.Background(), d, v)

		assert.ErrorIs(t, err, shared.ErrDisputeClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDisputeRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements dispute.Repository", func(t *testing.T) {
		repo, _, mockDB := newMockDisputeRepository(t)
		defer mockDB.Close()

		var _ dispute.Repository = repo
	})
}
