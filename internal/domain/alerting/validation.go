package alerting

import (
	"fmt"

	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ValidateThresholds rechaza un conjunto vacío o con umbrales internamente inconsistentes.
// Todos los errores envuelven domain.ErrValidation.
func ValidateThresholds(thresholds []entity.Threshold) error {
	if len(thresholds) == 0 {
		return fmt.Errorf("%w: se requiere al menos un umbral", domain.ErrValidation)
	}
	seen := make(map[string]struct{}, len(thresholds))
	for i, t := range thresholds {
		if t.ID == "" {
			return fmt.Errorf("%w: umbral #%d sin id", domain.ErrValidation, i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: id de umbral duplicado %q", domain.ErrValidation, t.ID)
		}
		seen[t.ID] = struct{}{}
		if err := validateThreshold(t); err != nil {
			return fmt.Errorf("%w: umbral %q: %s", domain.ErrValidation, t.ID, err.Error())
		}
	}
	return nil
}

func validateThreshold(t entity.Threshold) error {
	if !t.Type.Valid() {
		return fmt.Errorf("tipo desconocido %q", t.Type)
	}
	if !t.Severity.Valid() {
		return fmt.Errorf("severidad desconocida %q", t.Severity)
	}
	if t.ThresholdValue.IsNegative() {
		return fmt.Errorf("thresholdValue no puede ser negativo")
	}
	c := t.Conditions
	if c.CheckAbsolute && c.AbsoluteValue == nil {
		return fmt.Errorf("checkAbsolute requiere absoluteValue")
	}
	if c.AbsoluteValue != nil && c.AbsoluteValue.LessThan(decimal.Zero) {
		return fmt.Errorf("absoluteValue no puede ser negativo")
	}
	switch t.Type {
	case entity.ThresholdLowStock:
		if !c.CheckPercentage && !c.CheckAbsolute {
			return fmt.Errorf("low_stock requiere checkPercentage o checkAbsolute")
		}
	case entity.ThresholdOverstocked:
		if !c.CheckPercentage {
			return fmt.Errorf("overstocked requiere checkPercentage")
		}
	}
	return nil
}

// ValidateAutoAcknowledge exige una ventana positiva cuando la limpieza está habilitada.
func ValidateAutoAcknowledge(p entity.AutoAcknowledgePolicy) error {
	if p.Enabled && p.AfterHours <= 0 {
		return fmt.Errorf("%w: autoAcknowledge.afterHours debe ser mayor que 0", domain.ErrValidation)
	}
	if p.AfterHours < 0 {
		return fmt.Errorf("%w: autoAcknowledge.afterHours no puede ser negativo", domain.ErrValidation)
	}
	return nil
}
