package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

func TestStockValue_FormasAceptadas(t *testing.T) {
	cases := map[string]struct {
		raw     string
		current int64
		maximum *int64
	}{
		"número":          {raw: `12`, current: 12},
		"string numérico": {raw: `"12"`, current: 12},
		"objeto":          {raw: `{"current": 3, "maximum": 30}`, current: 3, maximum: ptr(30)},
		"objeto sin max":  {raw: `{"current": 3}`, current: 3},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var v entity.StockValue
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &v))
			assert.True(t, v.Valid())
			assert.True(t, v.Current.Equal(decimal.NewFromInt(tc.current)))
			if tc.maximum == nil {
				assert.Nil(t, v.Maximum)
			} else {
				require.NotNil(t, v.Maximum)
				assert.True(t, v.Maximum.Equal(decimal.NewFromInt(*tc.maximum)))
			}
		})
	}
}

func TestStockValue_InvalidoNoRompeElSnapshot(t *testing.T) {
	var items []entity.InventoryItemSnapshot
	err := json.Unmarshal([]byte(`[
		{"id":"a","name":"A","stock":"muchos"},
		{"id":"b","name":"B","stock":4},
		{"id":"c","name":"C"}
	]`), &items)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.False(t, items[0].Stock.Valid())
	assert.Equal(t, `"muchos"`, items[0].Stock.Raw())
	assert.True(t, items[1].Stock.Valid())
	assert.False(t, items[2].Stock.Valid(), "stock ausente se trata como inválido")
}

func TestStockValue_MarshalConservaLaForma(t *testing.T) {
	out, err := json.Marshal(entity.StockOf(decimal.NewFromInt(7)))
	require.NoError(t, err)
	assert.JSONEq(t, `7`, string(out))

	out, err = json.Marshal(entity.StockWithMaximum(decimal.NewFromInt(7), decimal.NewFromInt(70)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"current":7,"maximum":70}`, string(out))
}

func TestAlertSettings_CloneEsProfundo(t *testing.T) {
	abs := decimal.NewFromInt(5)
	s := &entity.AlertSettings{Thresholds: []entity.Threshold{{
		ID: "x", Conditions: entity.ThresholdConditions{CheckAbsolute: true, AbsoluteValue: &abs},
	}}}
	c := s.Clone()
	c.Thresholds[0].ID = "y"
	*c.Thresholds[0].Conditions.AbsoluteValue = decimal.NewFromInt(9)

	assert.Equal(t, "x", s.Thresholds[0].ID)
	assert.True(t, s.Thresholds[0].Conditions.AbsoluteValue.Equal(decimal.NewFromInt(5)))
}

func TestSeverity_Rank(t *testing.T) {
	assert.Greater(t, entity.SeverityCritical.Rank(), entity.SeverityHigh.Rank())
	assert.Greater(t, entity.SeverityHigh.Rank(), entity.SeverityMedium.Rank())
	assert.Greater(t, entity.SeverityMedium.Rank(), entity.SeverityLow.Rank())
	assert.False(t, entity.Severity("URGENT").Valid())
}

func ptr(v int64) *int64 { return &v }
