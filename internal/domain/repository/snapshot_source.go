package repository

import (
	"context"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// SnapshotSource provee el estado actual del inventario de una empresa (subsistema de productos).
type SnapshotSource interface {
	GetInventorySnapshot(ctx context.Context, companyID string) ([]entity.InventoryItemSnapshot, error)
}

// ScopeLister lo implementan las fuentes que pueden enumerar las empresas a evaluar periódicamente.
type ScopeLister interface {
	ListScopes(ctx context.Context) ([]string, error)
}
