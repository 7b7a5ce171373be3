package alerting_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

var (
	admin  = entity.Actor{ID: "u-admin", CompanyID: "c1", Role: entity.RoleAdmin}
	user   = entity.Actor{ID: "u-user", CompanyID: "c1", Role: entity.RoleUser}
	seller = entity.Actor{ID: "u-vend", CompanyID: "c1", Role: entity.RoleVendedor}
)

// fakeClock reloj manual seguro para uso concurrente.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock { return &fakeClock{now: at} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// seqIDs genera ids deterministas a-1, a-2, ...
func seqIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("a-%d", n.Add(1)) }
}

// flakyStore envuelve el almacén en memoria. Falla los Save mientras failing sea true y los
// próximos loadFailures Load.
type flakyStore struct {
	*memory.RecordStore
	failing      atomic.Bool
	saves        atomic.Int64
	loadFailures atomic.Int64
}

func (s *flakyStore) Load(ctx context.Context, scope, name string) ([]byte, error) {
	if s.loadFailures.Add(-1) >= 0 {
		return nil, errors.New("i/o timeout")
	}
	s.loadFailures.Store(0)
	return s.RecordStore.Load(ctx, scope, name)
}

func newFlakyStore() *flakyStore { return &flakyStore{RecordStore: memory.NewRecordStore()} }

func (s *flakyStore) Save(ctx context.Context, scope, name string, data []byte) error {
	if s.failing.Load() {
		return errors.New("connection refused")
	}
	s.saves.Add(1)
	return s.RecordStore.Save(ctx, scope, name, data)
}

// recordingNotifier guarda las alertas notificadas; si fail es true devuelve error.
type recordingNotifier struct {
	mu   sync.Mutex
	got  []entity.AutoAlert
	fail bool
}

func (n *recordingNotifier) NotifyCritical(_ context.Context, _ string, a entity.AutoAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, a)
	if n.fail {
		return errors.New("broker no disponible")
	}
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.got)
}

func item(id string, stock int64, maxStock *int64) entity.InventoryItemSnapshot {
	it := entity.InventoryItemSnapshot{
		ID:    id,
		Name:  "Producto " + id,
		Code:  "SKU-" + id,
		Stock: entity.StockOf(decimal.NewFromInt(stock)),
	}
	if maxStock != nil {
		m := decimal.NewFromInt(*maxStock)
		it.MaxStock = &m
	}
	return it
}

func i64(v int64) *int64 { return &v }

func newEngine(clock *fakeClock, records *flakyStore, notifier alerting.Notifier) *alerting.Engine {
	e := alerting.NewEngine("c1", alerting.Deps{
		Records:     records,
		Notifier:    notifier,
		Clock:       clock,
		NewID:       seqIDs(),
		MinInterval: 30 * time.Second,
	})
	_ = e.Load(context.Background())
	return e
}

func openAlert(id, product string, ts time.Time, sev entity.Severity) entity.AutoAlert {
	return entity.AutoAlert{
		ID:            id,
		ProductID:     product,
		Type:          entity.ThresholdLowStock,
		Severity:      sev,
		Timestamp:     ts,
		AutoGenerated: true,
	}
}
