package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"conferencecentral/internal/domain"
)

// dbtx is the subset of *sql.DB / *sql.Tx the repositories use.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKeyType struct{}

var txKey txKeyType

// queryer returns the transaction carried by ctx, or db when none is.
func queryer(ctx context.Context, db *sql.DB) dbtx {
	if tx, ok := ctx.Value(txKey).(*sql.Tx); ok {
		return tx
	}
	return db
}

type transactor struct {
	DB *sql.DB
}

// NewTransactor returns a domain.Transactor backed by database/sql
// transactions. Repositories created from the same *sql.DB join the
// transaction through the context passed to fn.
func NewTransactor(db *sql.DB) domain.Transactor {
	return &transactor{DB: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
