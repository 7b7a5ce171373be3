package entity

import "github.com/shopspring/decimal"

// ThresholdType tipo de condición de stock que evalúa un umbral.
type ThresholdType string

const (
	ThresholdOutOfStock  ThresholdType = "out_of_stock"
	ThresholdLowStock    ThresholdType = "low_stock"
	ThresholdOverstocked ThresholdType = "overstocked"
)

// Valid informa si el tipo es uno de los soportados.
func (t ThresholdType) Valid() bool {
	switch t {
	case ThresholdOutOfStock, ThresholdLowStock, ThresholdOverstocked:
		return true
	}
	return false
}

// Severity nivel de urgencia de un umbral o alerta.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank devuelve el orden total de severidad: CRITICAL(4) > HIGH(3) > MEDIUM(2) > LOW(1).
// Una severidad desconocida vale 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Valid informa si la severidad es una de las cuatro conocidas.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// ThresholdConditions qué comparaciones aplica un umbral.
// AbsoluteValue es obligatorio cuando CheckAbsolute es true.
type ThresholdConditions struct {
	CheckPercentage bool             `json:"checkPercentage"`
	CheckAbsolute   bool             `json:"checkAbsolute"`
	AbsoluteValue   *decimal.Decimal `json:"absoluteValue,omitempty"`
}

// Threshold regla configurable que puede disparar una alerta sobre un ítem de inventario.
// Inmutable una vez entregada a una evaluación; las actualizaciones reemplazan el conjunto completo.
type Threshold struct {
	ID             string              `json:"id"`
	Type           ThresholdType       `json:"type"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Enabled        bool                `json:"enabled"`
	ThresholdValue decimal.Decimal     `json:"thresholdValue"` // porcentaje sobre el stock máximo
	Severity       Severity            `json:"severity"`
	Conditions     ThresholdConditions `json:"conditions"`
}
