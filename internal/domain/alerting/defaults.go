package alerting

import (
	"time"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Identificadores de los umbrales integrados.
const (
	DefaultOutOfStockID    = "default-out-of-stock"
	DefaultCriticalStockID = "default-critical-stock"
	DefaultLowStockID      = "default-low-stock"

	DefaultAutoAcknowledgeHours = 24
)

// DefaultThresholds umbrales integrados: un CRITICAL de stock agotado y dos de stock bajo por porcentaje
// (CRITICAL al 10%, HIGH al 20%).
func DefaultThresholds() []entity.Threshold {
	return []entity.Threshold{
		{
			ID:          DefaultOutOfStockID,
			Type:        entity.ThresholdOutOfStock,
			Name:        "Stok Habis",
			Description: "Produk tidak memiliki stok tersisa",
			Enabled:     true,
			Severity:    entity.SeverityCritical,
		},
		{
			ID:             DefaultCriticalStockID,
			Type:           entity.ThresholdLowStock,
			Name:           "Stok Kritis",
			Description:    "Stok berada di bawah 10% dari kapasitas",
			Enabled:        true,
			ThresholdValue: decimal.NewFromInt(10),
			Severity:       entity.SeverityCritical,
			Conditions:     entity.ThresholdConditions{CheckPercentage: true},
		},
		{
			ID:             DefaultLowStockID,
			Type:           entity.ThresholdLowStock,
			Name:           "Stok Rendah",
			Description:    "Stok berada di bawah 20% dari kapasitas",
			Enabled:        true,
			ThresholdValue: decimal.NewFromInt(20),
			Severity:       entity.SeverityHigh,
			Conditions:     entity.ThresholdConditions{CheckPercentage: true},
		},
	}
}

// DefaultSettings configuración usada cuando no hay nada guardado (o lo guardado es ilegible).
func DefaultSettings(id, ownerID, role string, now time.Time) *entity.AlertSettings {
	return &entity.AlertSettings{
		ID:            id,
		OwnerID:       ownerID,
		Role:          role,
		Thresholds:    DefaultThresholds(),
		Notifications: entity.NotificationPolicy{InApp: true, Sound: true},
		AutoAcknowledge: entity.AutoAcknowledgePolicy{
			Enabled:    true,
			AfterHours: DefaultAutoAcknowledgeHours,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
