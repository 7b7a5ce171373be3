package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// alertRecordsSchema tabla de documentos del motor de alertas, una fila por (empresa, registro).
const alertRecordsSchema = `
	CREATE TABLE IF NOT EXISTS alert_records (
		scope      TEXT        NOT NULL,
		name       TEXT        NOT NULL,
		document   JSONB       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (scope, name)
	)`

// RecordStore implementación de repository.RecordStore sobre PostgreSQL (JSONB).
type RecordStore struct {
	q Querier
}

// NewRecordStore construye el adaptador. Acepta pool o tx (Querier).
func NewRecordStore(q Querier) *RecordStore {
	return &RecordStore{q: q}
}

// EnsureSchema crea la tabla alert_records si no existe.
func (r *RecordStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, alertRecordsSchema); err != nil {
		return fmt.Errorf("create alert_records: %w", err)
	}
	return nil
}

// Load devuelve el documento o domain.ErrNotFound.
func (r *RecordStore) Load(ctx context.Context, scope, name string) ([]byte, error) {
	query := `SELECT document FROM alert_records WHERE scope = $1 AND name = $2`
	var doc []byte
	err := r.q.QueryRow(ctx, query, scope, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, scope, name)
		}
		return nil, fmt.Errorf("load alert record: %w", err)
	}
	return doc, nil
}

// Save inserta o reemplaza el documento.
func (r *RecordStore) Save(ctx context.Context, scope, name string, data []byte) error {
	query := `
		INSERT INTO alert_records (scope, name, document, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (scope, name)
		DO UPDATE SET document = EXCLUDED.document, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, scope, name, string(data)); err != nil {
		return fmt.Errorf("save alert record: %w", err)
	}
	return nil
}
