package transaction

import (
	"context"

	"gorm.io/gorm"
)

type contextKey struct{}

// WithTx stores a transaction handle in the context so repositories invoked
// inside a transaction share it.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, contextKey{}, tx)
}

// Database resolves the effective *gorm.DB for a context: the ambient
// transaction when one is present, the base connection otherwise.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) GetTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db
}

// Run executes fn inside a database transaction, with the transaction handle
// threaded through the context.
func (d *Database) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
