// Package alerting contiene las reglas puras del motor de alertas de stock:
// disparo de umbrales, resolución de prioridad, mensajes y validación de configuración.
package alerting

import (
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/domain/inventory"
)

// Fires informa si el umbral se dispara para el nivel de stock dado.
//   - out_of_stock: Current == 0.
//   - low_stock: (checkPercentage y Percentage <= ThresholdValue) o (checkAbsolute y Current <= AbsoluteValue).
//   - overstocked: checkPercentage y Percentage >= ThresholdValue.
func Fires(t entity.Threshold, level inventory.StockLevel) bool {
	switch t.Type {
	case entity.ThresholdOutOfStock:
		return level.Current.IsZero()
	case entity.ThresholdLowStock:
		if t.Conditions.CheckPercentage && level.Percentage.LessThanOrEqual(t.ThresholdValue) {
			return true
		}
		return t.Conditions.CheckAbsolute && t.Conditions.AbsoluteValue != nil &&
			level.Current.LessThanOrEqual(*t.Conditions.AbsoluteValue)
	case entity.ThresholdOverstocked:
		return t.Conditions.CheckPercentage && level.Percentage.GreaterThanOrEqual(t.ThresholdValue)
	}
	return false
}

// FiredThresholds devuelve, en el orden recibido, los umbrales habilitados que se disparan.
func FiredThresholds(thresholds []entity.Threshold, level inventory.StockLevel) []entity.Threshold {
	var fired []entity.Threshold
	for _, t := range thresholds {
		if t.Enabled && Fires(t, level) {
			fired = append(fired, t)
		}
	}
	return fired
}
