package alerting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
	"github.com/jhoicas/inventario-alertas/pkg/logger"
)

// Schedule periodicidad de los disparos automáticos del Manager.
type Schedule struct {
	CleanupInterval    time.Duration // limpieza por antigüedad; <= 0 la deshabilita
	EvaluationInterval time.Duration // evaluación desde la fuente; <= 0 la deshabilita
}

// Manager mantiene un Engine por empresa, creado en el primer uso.
type Manager struct {
	deps     Deps
	source   repository.SnapshotSource
	schedule Schedule
	log      *logger.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewManager construye el administrador de motores. source puede ser nil (sin evaluación periódica).
func NewManager(deps Deps, source repository.SnapshotSource, schedule Schedule) *Manager {
	deps = deps.withDefaults()
	return &Manager{
		deps:     deps,
		source:   source,
		schedule: schedule,
		log:      deps.Logger.Component("alert_manager"),
		engines:  make(map[string]*Engine),
	}
}

// Engine devuelve el motor de la empresa y completa la carga de su estado persistido si sigue pendiente.
// Un fallo de lectura no impide operar: el motor queda sin cargar, reintenta antes de modificar estado
// y no sobrescribe el registro que no pudo leer.
func (m *Manager) Engine(ctx context.Context, companyID string) (*Engine, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: company_id vacío", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	e, ok := m.engines[companyID]
	if !ok {
		e = NewEngine(companyID, m.deps)
		m.engines[companyID] = e
		m.log.Debug().Str("company_id", companyID).Msg("motor de alertas inicializado")
	}
	m.mu.Unlock()

	if !e.Loaded() {
		if err := e.Load(ctx); err != nil {
			m.log.Warn().Err(err).Str("company_id", companyID).Msg("estado de alertas sin cargar, se reintentará")
		}
	}
	return e, nil
}

// Source fuente de snapshots configurada (nil si no hay).
func (m *Manager) Source() repository.SnapshotSource { return m.source }

// Engines motores cargados, ordenados por empresa.
func (m *Manager) Engines() []*Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Engine, 0, len(m.engines))
	for _, e := range m.engines {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].scope < out[j].scope })
	return out
}

// Run ejecuta la limpieza y la evaluación periódicas hasta que ctx se cancela.
func (m *Manager) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runEvery(ctx, m.schedule.CleanupInterval, m.CleanupAll)
	}()
	if m.source != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runEvery(ctx, m.schedule.EvaluationInterval, m.EvaluateAll)
		}()
	}
	wg.Wait()
}

// CleanupAll ejecuta la limpieza por antigüedad en cada motor cargado.
func (m *Manager) CleanupAll(ctx context.Context) {
	for _, e := range m.Engines() {
		e.Cleanup(ctx)
	}
}

// EvaluateAll dispara una evaluación (sujeta a debounce) para cada empresa conocida.
// Si la fuente enumera empresas se cargan también las que aún no tienen motor.
func (m *Manager) EvaluateAll(ctx context.Context) {
	if m.source == nil {
		return
	}
	if lister, ok := m.source.(repository.ScopeLister); ok {
		scopes, err := lister.ListScopes(ctx)
		if err != nil {
			m.log.Warn().Err(err).Msg("no se pudieron listar las empresas a evaluar")
		}
		for _, id := range scopes {
			if _, err := m.Engine(ctx, id); err != nil {
				m.log.Warn().Err(err).Str("company_id", id).Msg("empresa omitida")
			}
		}
	}
	for _, e := range m.Engines() {
		if ctx.Err() != nil {
			return
		}
		if _, err := e.GenerateFromSource(ctx, m.source, GenerateOptions{}); err != nil {
			m.log.Warn().Err(err).Str("company_id", e.scope).Msg("evaluación periódica fallida")
		}
	}
}
