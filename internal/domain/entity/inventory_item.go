package entity

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// StockValue stock de un ítem tal como llega en el snapshot: un número o un objeto {current, maximum}.
// La forma se resuelve una sola vez al decodificar. Un valor no numérico queda marcado como inválido
// en lugar de hacer fallar la decodificación del snapshot completo.
// El valor cero es un stock válido de 0 unidades.
type StockValue struct {
	Current decimal.Decimal
	Maximum *decimal.Decimal
	invalid bool
	raw     string
}

// StockOf construye un stock numérico simple.
func StockOf(current decimal.Decimal) StockValue {
	return StockValue{Current: current}
}

// StockWithMaximum construye un stock con forma de objeto (current + maximum).
func StockWithMaximum(current, maximum decimal.Decimal) StockValue {
	return StockValue{Current: current, Maximum: &maximum}
}

// Valid informa si el stock es numérico.
func (v StockValue) Valid() bool { return !v.invalid }

// Raw devuelve el JSON original cuando el valor no pudo interpretarse.
func (v StockValue) Raw() string { return v.raw }

type stockObject struct {
	Current json.RawMessage `json:"current"`
	Maximum json.RawMessage `json:"maximum"`
}

// UnmarshalJSON acepta 12, "12", {"current": 12, "maximum": 40}. Cualquier otra forma deja el valor inválido.
func (v *StockValue) UnmarshalJSON(data []byte) error {
	*v = StockValue{}
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj stockObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			v.markInvalid(trimmed)
			return nil
		}
		cur, ok := parseNumber(obj.Current)
		if !ok {
			v.markInvalid(trimmed)
			return nil
		}
		v.Current = cur
		if len(obj.Maximum) > 0 && string(bytes.TrimSpace(obj.Maximum)) != "null" {
			if maximum, ok := parseNumber(obj.Maximum); ok {
				v.Maximum = &maximum
			}
		}
		return nil
	}

	cur, ok := parseNumber(trimmed)
	if !ok {
		v.markInvalid(trimmed)
		return nil
	}
	v.Current = cur
	return nil
}

// MarshalJSON escribe la misma forma que se recibió (número u objeto); un valor inválido se escribe como null.
func (v StockValue) MarshalJSON() ([]byte, error) {
	if v.invalid {
		return []byte("null"), nil
	}
	if v.Maximum != nil {
		return json.Marshal(map[string]json.Number{
			"current": json.Number(v.Current.String()),
			"maximum": json.Number(v.Maximum.String()),
		})
	}
	return []byte(v.Current.String()), nil
}

func (v *StockValue) markInvalid(raw []byte) {
	v.invalid = true
	v.raw = string(raw)
}

func parseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	if s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return decimal.Zero, false
		}
		s = unq
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// InventoryItemSnapshot estado de un producto en una evaluación (consumido, no es propiedad del motor).
type InventoryItemSnapshot struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Code     string           `json:"code"`
	Stock    StockValue       `json:"stock"`
	MinStock decimal.Decimal  `json:"minStock"`
	MaxStock *decimal.Decimal `json:"maxStock,omitempty"`
}

// UnmarshalJSON trata un stock ausente igual que uno no numérico.
func (i *InventoryItemSnapshot) UnmarshalJSON(data []byte) error {
	type alias InventoryItemSnapshot
	aux := struct {
		*alias
		Stock *StockValue `json:"stock"`
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Stock == nil {
		i.Stock = StockValue{invalid: true}
		return nil
	}
	i.Stock = *aux.Stock
	return nil
}
