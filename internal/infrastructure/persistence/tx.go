package persistence

import (
	"context"

	"gorm.io/gorm"
)

// txKey carries the active transaction through a context
type txKey struct{}

// GormTransactionManager implements shared.TransactionManager on a gorm
// connection. The transaction handle rides in the context so repositories
// called inside fn join it transparently.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Do runs fn inside one transaction, committing when it returns nil and
// rolling back otherwise
func (m *GormTransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the context's transaction when one is active, the
// fallback connection otherwise
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
