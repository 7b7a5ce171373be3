package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// StockLevel stock normalizado de un ítem, listo para comparar contra umbrales.
// Percentage = Current / Max * 100 (0 si Max <= 0), sin redondear.
type StockLevel struct {
	Current    decimal.Decimal
	Max        decimal.Decimal
	Percentage decimal.Decimal
}

// NormalizeStock resuelve la forma del stock del snapshot (servicio de dominio).
// Max se toma de MaxStock; si falta, de Stock.Maximum; si falta, se sintetiza como max(MinStock, 2*Current).
// Devuelve domain.ErrEvaluation si el ítem no tiene id o su stock no es numérico.
func NormalizeStock(item entity.InventoryItemSnapshot) (StockLevel, error) {
	if item.ID == "" {
		return StockLevel{}, fmt.Errorf("%w: ítem sin id", domain.ErrEvaluation)
	}
	if !item.Stock.Valid() {
		return StockLevel{}, fmt.Errorf("%w: stock no numérico %q en producto %s", domain.ErrEvaluation, item.Stock.Raw(), item.ID)
	}

	current := item.Stock.Current
	var maxStock decimal.Decimal
	switch {
	case item.MaxStock != nil:
		maxStock = *item.MaxStock
	case item.Stock.Maximum != nil:
		maxStock = *item.Stock.Maximum
	default:
		maxStock = decimal.Max(item.MinStock, current.Mul(decimal.NewFromInt(2)))
	}

	pct := decimal.Zero
	if maxStock.GreaterThan(decimal.Zero) {
		pct = current.Div(maxStock).Mul(hundred)
	}
	return StockLevel{Current: current, Max: maxStock, Percentage: pct}, nil
}
