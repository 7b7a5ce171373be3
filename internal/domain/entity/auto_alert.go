package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutoAlert alerta de stock generada por el evaluador.
// Solo Acknowledge modifica Acknowledged, AcknowledgedBy y AcknowledgedAt; el resto es inmutable.
type AutoAlert struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	ProductCode    string          `json:"productCode"`
	Type           ThresholdType   `json:"type"`
	Severity       Severity        `json:"severity"`
	Message        string          `json:"message"`
	CurrentStock   decimal.Decimal `json:"currentStock"`
	TotalStock     decimal.Decimal `json:"totalStock"`
	Percentage     decimal.Decimal `json:"percentage"` // redondeado a un decimal
	Threshold      decimal.Decimal `json:"threshold"`
	ThresholdID    string          `json:"thresholdId"`
	Acknowledged   bool            `json:"acknowledged"`
	AcknowledgedBy string          `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time      `json:"acknowledgedAt,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	AutoGenerated  bool            `json:"autoGenerated"`
}

// IsOpen informa si la alerta sigue sin reconocer.
func (a AutoAlert) IsOpen() bool { return !a.Acknowledged }

// AlertStats conteos calculados sobre el contenido actual del almacén.
// Los conteos por severidad consideran solo alertas abiertas.
type AlertStats struct {
	Total          int `json:"total"`
	Unacknowledged int `json:"unacknowledged"`
	Critical       int `json:"critical"`
	High           int `json:"high"`
	Medium         int `json:"medium"`
	Low            int `json:"low"`
}
