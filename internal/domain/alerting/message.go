package alerting

import (
	"fmt"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/domain/inventory"
)

// BuildMessage arma el texto de la alerta mostrado al usuario.
func BuildMessage(t entity.ThresholdType, productName string, level inventory.StockLevel) string {
	pct := level.Percentage.Round(1).StringFixed(1)
	switch t {
	case entity.ThresholdOutOfStock:
		return fmt.Sprintf("%s sudah habis!", productName)
	case entity.ThresholdOverstocked:
		return fmt.Sprintf("%s stock berlebih! Tersedia %s (%s%%)", productName, level.Current.String(), pct)
	default:
		return fmt.Sprintf("%s stock rendah! Tersisa %s (%s%%)", productName, level.Current.String(), pct)
	}
}
