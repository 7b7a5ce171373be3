package alerting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-alertas/internal/domain/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

func th(id string, sev entity.Severity) entity.Threshold {
	return entity.Threshold{ID: id, Type: entity.ThresholdLowStock, Severity: sev, Enabled: true}
}

func TestResolvePriority_GanaMayorSeveridad(t *testing.T) {
	w, ok := alerting.ResolvePriority([]entity.Threshold{
		th("a", entity.SeverityHigh),
		th("b", entity.SeverityCritical),
		th("c", entity.SeverityLow),
	})
	require.True(t, ok)
	assert.Equal(t, "b", w.ID)
}

// Con igual severidad gana el primero en orden de evaluación, sin clave secundaria.
func TestResolvePriority_EmpateGanaElPrimero(t *testing.T) {
	w, ok := alerting.ResolvePriority([]entity.Threshold{
		th("low", entity.SeverityLow),
		th("first-high", entity.SeverityHigh),
		th("second-high", entity.SeverityHigh),
	})
	require.True(t, ok)
	assert.Equal(t, "first-high", w.ID)
}

func TestResolvePriority_Vacio(t *testing.T) {
	_, ok := alerting.ResolvePriority(nil)
	assert.False(t, ok)
}

// Propiedad de prioridad: stock 5 de 50 (10%) con umbrales por defecto → CRITICAL, no HIGH.
func TestResolvePriority_DefaultsAlDiezPorCiento(t *testing.T) {
	fired := alerting.FiredThresholds(alerting.DefaultThresholds(), level(t, 5, 50))
	require.Len(t, fired, 2)
	w, ok := alerting.ResolvePriority(fired)
	require.True(t, ok)
	assert.Equal(t, entity.SeverityCritical, w.Severity)
	assert.Equal(t, alerting.DefaultCriticalStockID, w.ID)
}
