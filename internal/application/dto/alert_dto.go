package dto

import (
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// GenerateAlertsRequest disparo de evaluación. Sin items se usa la fuente de inventario configurada.
type GenerateAlertsRequest struct {
	Items []entity.InventoryItemSnapshot `json:"items"`
	Force bool                           `json:"force"`
}

// UpdateAlertSettingsRequest actualización parcial; los campos ausentes no se modifican.
type UpdateAlertSettingsRequest struct {
	Thresholds      *[]entity.Threshold           `json:"thresholds,omitempty"`
	Notifications   *entity.NotificationPolicy    `json:"notifications,omitempty"`
	AutoAcknowledge *entity.AutoAcknowledgePolicy `json:"autoAcknowledge,omitempty"`
}

// AlertListResponse listado de alertas.
type AlertListResponse struct {
	Items []entity.AutoAlert `json:"items"`
	Total int                `json:"total"`
	Page  PageResponse       `json:"page"`
}

// ThresholdListResponse umbrales habilitados en el orden guardado.
type ThresholdListResponse struct {
	Items []entity.Threshold `json:"items"`
}
