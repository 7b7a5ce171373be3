package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con la tx como Querier y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Migrate aplica en una sola transacción los esquemas de los adaptadores habilitados.
func (r *TxRunner) Migrate(ctx context.Context, records, snapshots bool) error {
	return r.Run(ctx, func(q Querier) error {
		if records {
			if err := NewRecordStore(q).EnsureSchema(ctx); err != nil {
				return err
			}
		}
		if snapshots {
			if err := NewSnapshotSource(q).EnsureSchema(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
