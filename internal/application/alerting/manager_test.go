package alerting_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource snapshot fijo por empresa; también enumera las empresas.
type fakeSource struct {
	byCompany map[string][]entity.InventoryItemSnapshot
	fail      map[string]bool
}

func (s *fakeSource) GetInventorySnapshot(_ context.Context, companyID string) ([]entity.InventoryItemSnapshot, error) {
	if s.fail[companyID] {
		return nil, errors.New("timeout")
	}
	return s.byCompany[companyID], nil
}

func (s *fakeSource) ListScopes(context.Context) ([]string, error) {
	out := make([]string, 0, len(s.byCompany))
	for id := range s.byCompany {
		out = append(out, id)
	}
	return out, nil
}

func TestManager_UnMotorPorEmpresa(t *testing.T) {
	m := alerting.NewManager(alerting.Deps{Records: newFlakyStore(), Clock: newFakeClock(t0)}, nil, alerting.Schedule{})

	a, err := m.Engine(ctx, "c1")
	require.NoError(t, err)
	again, err := m.Engine(ctx, "c1")
	require.NoError(t, err)
	b, err := m.Engine(ctx, "c2")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.Len(t, m.Engines(), 2)

	_, err = m.Engine(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestManager_FalloDeCargaNoPisaAlertasPersistidas(t *testing.T) {
	records := newFlakyStore()
	clock := newFakeClock(t0)
	first := newEngine(clock, records, nil)
	prev, err := first.GenerateAlerts(ctx, []entity.InventoryItemSnapshot{item("p1", 0, nil)}, alerting.GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, prev.Created, 1)

	// Las dos lecturas del primer uso fallan; después el almacén responde.
	records.loadFailures.Store(2)
	clock.Advance(time.Minute)
	m := alerting.NewManager(alerting.Deps{Records: records, Clock: clock}, nil, alerting.Schedule{})
	e, err := m.Engine(ctx, "c1")
	require.NoError(t, err, "el motor se entrega aunque la carga falle")
	assert.False(t, e.Loaded())

	report, err := e.GenerateAlerts(ctx, []entity.InventoryItemSnapshot{item("p1", 0, nil), item("p2", 0, nil)}, alerting.GenerateOptions{})
	require.NoError(t, err)
	assert.True(t, e.Loaded(), "la carga se reintenta antes de evaluar")
	require.Len(t, report.Created, 1, "p1 ya tenía alerta abierta")
	assert.Equal(t, "p2", report.Created[0].ProductID)
	assert.Equal(t, 1, report.Suppressed)

	data, err := records.RecordStore.Load(ctx, "c1", repository.RecordAutoAlerts)
	require.NoError(t, err)
	var stored []entity.AutoAlert
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, prev.Created[0].ID, stored[0].ID)
	assert.Equal(t, "p2", stored[1].ProductID)
}

func TestManager_AlcancesIndependientes(t *testing.T) {
	records := newFlakyStore()
	m := alerting.NewManager(alerting.Deps{Records: records, Clock: newFakeClock(t0)}, nil, alerting.Schedule{})
	c1, _ := m.Engine(ctx, "c1")
	c2, _ := m.Engine(ctx, "c2")

	_, err := c1.GenerateAlerts(ctx, []entity.InventoryItemSnapshot{item("p1", 0, nil)}, alerting.GenerateOptions{})
	require.NoError(t, err)
	assert.True(t, c1.HasOpenAlert("p1"))
	assert.False(t, c2.HasOpenAlert("p1"))

	report, err := c2.GenerateAlerts(ctx, []entity.InventoryItemSnapshot{item("p1", 0, nil)}, alerting.GenerateOptions{})
	require.NoError(t, err)
	assert.Len(t, report.Created, 1, "el debounce es por empresa")
}

func TestManager_EvaluateAllCargaEmpresasDeLaFuente(t *testing.T) {
	src := &fakeSource{
		byCompany: map[string][]entity.InventoryItemSnapshot{
			"c1": {item("p1", 0, nil)},
			"c2": {item("p9", 5, i64(50)), item("p8", 50, i64(50))},
			"c3": {item("p7", 0, nil)},
		},
		fail: map[string]bool{"c3": true},
	}
	m := alerting.NewManager(alerting.Deps{Records: newFlakyStore(), Clock: newFakeClock(t0)}, src, alerting.Schedule{})

	m.EvaluateAll(ctx)

	engines := m.Engines()
	require.Len(t, engines, 3)
	assert.Equal(t, 1, engines[0].GetStats().Total)
	assert.Equal(t, 1, engines[1].GetStats().Critical)
	assert.Zero(t, engines[2].GetStats().Total, "un fallo de la fuente no afecta a las demás empresas")
}

func TestManager_CleanupAll(t *testing.T) {
	clock := newFakeClock(t0)
	m := alerting.NewManager(alerting.Deps{Records: newFlakyStore(), Clock: clock}, nil, alerting.Schedule{})
	e, _ := m.Engine(ctx, "c1")
	report, err := e.GenerateAlerts(ctx, []entity.InventoryItemSnapshot{item("p1", 0, nil)}, alerting.GenerateOptions{})
	require.NoError(t, err)
	_, err = e.AcknowledgeAlert(ctx, report.Created[0].ID, seller)
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	m.CleanupAll(ctx)
	assert.Zero(t, e.GetStats().Total)
}

func TestManager_RunTerminaAlCancelar(t *testing.T) {
	src := &fakeSource{byCompany: map[string][]entity.InventoryItemSnapshot{"c1": {item("p1", 0, nil)}}}
	m := alerting.NewManager(alerting.Deps{Records: newFlakyStore()}, src, alerting.Schedule{
		CleanupInterval:    time.Millisecond,
		EvaluationInterval: time.Millisecond,
	})
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(runCtx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		engines := m.Engines()
		return len(engines) == 1 && engines[0].HasOpenAlert("p1")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}
