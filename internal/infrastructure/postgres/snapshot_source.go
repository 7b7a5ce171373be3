package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.SnapshotSource = (*SnapshotSource)(nil)
	_ repository.ScopeLister    = (*SnapshotSource)(nil)
)

// SnapshotSource arma el snapshot de inventario desde products y stock.
// El stock es la suma de todas las bodegas; minStock es el punto de reorden.
// max_stock es opcional: si es NULL el evaluador lo sintetiza.
type SnapshotSource struct {
	q Querier
}

// NewSnapshotSource construye la fuente. Acepta pool o tx (Querier).
func NewSnapshotSource(q Querier) *SnapshotSource {
	return &SnapshotSource{q: q}
}

// EnsureSchema agrega la columna opcional products.max_stock.
func (s *SnapshotSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, `ALTER TABLE IF EXISTS products ADD COLUMN IF NOT EXISTS max_stock NUMERIC(18,4)`); err != nil {
		return fmt.Errorf("add products.max_stock: %w", err)
	}
	return nil
}

// GetInventorySnapshot devuelve todos los productos de la empresa con su stock agregado.
func (s *SnapshotSource) GetInventorySnapshot(ctx context.Context, companyID string) ([]entity.InventoryItemSnapshot, error) {
	query := `
		SELECT
			p.id::text,
			p.name,
			p.sku,
			COALESCE(SUM(s.quantity), 0)::numeric AS current_stock,
			COALESCE(p.reorder_point, 0)::numeric AS min_stock,
			p.max_stock::numeric
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.company_id = $1
		GROUP BY p.id, p.name, p.sku, p.reorder_point, p.max_stock
		ORDER BY p.name`

	rows, err := s.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("get inventory snapshot: %w", err)
	}
	defer rows.Close()

	var items []entity.InventoryItemSnapshot
	for rows.Next() {
		var (
			item     entity.InventoryItemSnapshot
			current  decimal.Decimal
			maxStock decimal.NullDecimal
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Code, &current, &item.MinStock, &maxStock); err != nil {
			return nil, fmt.Errorf("scan inventory snapshot: %w", err)
		}
		item.Stock = entity.StockOf(current)
		if maxStock.Valid {
			m := maxStock.Decimal
			item.MaxStock = &m
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListScopes devuelve las empresas activas.
func (s *SnapshotSource) ListScopes(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT id::text FROM companies WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
