package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
	"github.com/jhoicas/inventario-alertas/internal/metrics"
	"github.com/jhoicas/inventario-alertas/pkg/logger"
)

// Deps colaboradores compartidos por los motores de cada alcance.
type Deps struct {
	Records     repository.RecordStore // obligatorio
	Notifier    Notifier               // opcional
	Guard       *SettingsGuard         // nil usa NewSettingsGuard()
	Clock       Clock                  // nil usa SystemClock
	Logger      *logger.Logger         // nil usa logger.Nop()
	NewID       func() string          // nil usa uuid.NewString
	Capacity    int
	MinInterval time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Guard == nil {
		d.Guard = NewSettingsGuard()
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

// GenerateOptions parámetros de un disparo de evaluación.
type GenerateOptions struct {
	Force bool         // salta el debounce; requiere rol privilegiado
	Actor entity.Actor // quien dispara; obligatorio solo con Force
}

// AlertFilter filtro de ListAlerts. Vacío devuelve todas las alertas.
type AlertFilter struct {
	UnacknowledgedOnly bool
	Severities         []entity.Severity
}

// Engine fachada del motor de alertas de una empresa: registro de umbrales, almacén,
// planificador y evaluador, con persistencia de los dos registros del alcance.
type Engine struct {
	scope     string
	deps      Deps
	log       *logger.Logger
	registry  *ThresholdRegistry
	store     *AlertStore
	scheduler *Scheduler
	evaluator *AlertEvaluator
	events    *broker

	// Un registro no cargado por fallo del almacén no se sobrescribe hasta leerlo.
	loadMu         sync.Mutex
	settingsLoaded atomic.Bool
	alertsLoaded   atomic.Bool

	persistMu     sync.Mutex
	dirtySettings bool
	dirtyAlerts   bool
}

// NewEngine construye el motor de un alcance con la configuración por defecto.
// Llamar Load para recuperar el estado persistido.
func NewEngine(scope string, deps Deps) *Engine {
	deps = deps.withDefaults()
	log := deps.Logger.Component("alert_engine").Scope(scope)
	store := NewAlertStore(deps.Capacity)
	now := deps.Clock.Now()
	return &Engine{
		scope:     scope,
		deps:      deps,
		log:       log,
		registry:  NewThresholdRegistry(deps.Guard, alerting.DefaultSettings(deps.NewID(), scope, "", now)),
		store:     store,
		scheduler: NewScheduler(deps.Clock, deps.MinInterval),
		evaluator: NewAlertEvaluator(scope, store, deps.Notifier, log, deps.NewID),
		events:    newBroker(log),
	}
}

// Scope empresa a la que pertenece el motor.
func (e *Engine) Scope() string { return e.scope }

// Load recupera alert_settings y auto_alerts pendientes de carga. Un registro ausente, ilegible o
// inválido cuenta como cargado y se usan los valores por defecto. Un fallo del almacén deja el registro
// pendiente y se devuelve: el motor sigue en memoria, reintenta antes de cada operación que modifica
// estado y no guarda ese registro mientras no logre leerlo.
func (e *Engine) Load(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	var errs []error
	if !e.settingsLoaded.Load() {
		s, err := e.loadSettings(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			// Un cambio hecho en memoria mientras el registro no se podía leer prevalece.
			if s != nil && !e.settingsDirty() {
				e.registry.restore(s)
			}
			e.settingsLoaded.Store(true)
		}
	}
	if !e.alertsLoaded.Load() {
		alerts, err := e.loadAlerts(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			inMemory := e.store.Len()
			if dropped := e.store.Merge(alerts); dropped > 0 {
				e.log.Warn().Int("dropped", dropped).Msg("alertas persistidas descartadas al restaurar")
			}
			if inMemory > 0 {
				e.markDirty(false, true)
			}
			e.alertsLoaded.Store(true)
		}
	}
	return errors.Join(errs...)
}

// Loaded informa si ambos registros se leyeron del almacén.
func (e *Engine) Loaded() bool {
	return e.settingsLoaded.Load() && e.alertsLoaded.Load()
}

// ensureLoaded reintenta la carga pendiente antes de modificar estado.
func (e *Engine) ensureLoaded(ctx context.Context) {
	if e.Loaded() {
		return
	}
	_ = e.Load(ctx)
}

// loadSettings devuelve nil sin error si el registro no existe o no es utilizable.
func (e *Engine) loadSettings(ctx context.Context) (*entity.AlertSettings, error) {
	data, err := e.deps.Records.Load(ctx, e.scope, repository.RecordAlertSettings)
	if err != nil {
		return nil, e.loadError(repository.RecordAlertSettings, err)
	}
	var s entity.AlertSettings
	if err := json.Unmarshal(data, &s); err != nil {
		e.log.Warn().Err(err).Str("record", repository.RecordAlertSettings).Msg("registro ilegible, se usan valores por defecto")
		return nil, nil
	}
	if err := alerting.ValidateThresholds(s.Thresholds); err != nil {
		e.log.Warn().Err(err).Str("record", repository.RecordAlertSettings).Msg("registro inválido, se usan valores por defecto")
		return nil, nil
	}
	if err := alerting.ValidateAutoAcknowledge(s.AutoAcknowledge); err != nil {
		e.log.Warn().Err(err).Str("record", repository.RecordAlertSettings).Msg("registro inválido, se usan valores por defecto")
		return nil, nil
	}
	return &s, nil
}

func (e *Engine) loadAlerts(ctx context.Context) ([]entity.AutoAlert, error) {
	data, err := e.deps.Records.Load(ctx, e.scope, repository.RecordAutoAlerts)
	if err != nil {
		return nil, e.loadError(repository.RecordAutoAlerts, err)
	}
	var alerts []entity.AutoAlert
	if err := json.Unmarshal(data, &alerts); err != nil {
		e.log.Warn().Err(err).Str("record", repository.RecordAutoAlerts).Msg("registro ilegible, se inicia sin alertas")
		return nil, nil
	}
	return alerts, nil
}

// loadError devuelve nil para un registro inexistente y un error de persistencia en otro caso.
func (e *Engine) loadError(record string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	metrics.PersistenceFailuresTotal.WithLabelValues(record, "load").Inc()
	e.log.Warn().Err(err).Str("record", record).Msg("no se pudo leer el registro, operando en memoria")
	return fmt.Errorf("%w: leer %s: %v", domain.ErrPersistence, record, err)
}

// GenerateAlerts evalúa el snapshot si el planificador admite la pasada.
// Una pasada rechazada por debounce no es un error: el reporte trae Admitted=false.
func (e *Engine) GenerateAlerts(ctx context.Context, items []entity.InventoryItemSnapshot, opts GenerateOptions) (RunReport, error) {
	if opts.Force {
		if err := e.deps.Guard.Require(opts.Actor, ActionForceEvaluation); err != nil {
			e.log.Warn().Str("actor_id", opts.Actor.ID).Str("role", opts.Actor.Role).Msg("evaluación forzada rechazada")
			return RunReport{}, err
		}
	}
	e.ensureLoaded(ctx)
	now, ok := e.scheduler.Admit(opts.Force)
	if !ok {
		metrics.EvaluationRunsTotal.WithLabelValues("rejected").Inc()
		e.log.Debug().Msg("evaluación rechazada por debounce")
		return RunReport{Admitted: false}, nil
	}
	outcome := "admitted"
	if opts.Force {
		outcome = "forced"
	}
	metrics.EvaluationRunsTotal.WithLabelValues(outcome).Inc()

	var (
		report  RunReport
		evicted []entity.AutoAlert
	)
	e.scheduler.RunExclusive(func() {
		start := time.Now()
		report, evicted = e.evaluator.Evaluate(items, e.registry.snapshot(), now)
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	})

	if len(report.Created) > 0 || len(evicted) > 0 {
		e.markDirty(false, true)
	}
	e.flush(ctx)

	e.events.publish(StoreEvent{Scope: e.scope, Kind: EventAppended, Alerts: report.Created})
	e.events.publish(StoreEvent{Scope: e.scope, Kind: EventEvicted, Alerts: evicted})

	e.log.Info().
		Int("items", len(items)).
		Int("created", len(report.Created)).
		Int("suppressed", report.Suppressed).
		Int("failed", report.Failed).
		Msg("evaluación de alertas completada")
	return report, nil
}

// GenerateFromSource obtiene el snapshot de la fuente y lo evalúa.
func (e *Engine) GenerateFromSource(ctx context.Context, source repository.SnapshotSource, opts GenerateOptions) (RunReport, error) {
	items, err := source.GetInventorySnapshot(ctx, e.scope)
	if err != nil {
		return RunReport{}, fmt.Errorf("snapshot de inventario: %w", err)
	}
	return e.GenerateAlerts(ctx, items, opts)
}

// AcknowledgeAlert reconoce la alerta a nombre del actor. Reconocer dos veces devuelve el mismo
// registro sin cambios ni error.
func (e *Engine) AcknowledgeAlert(ctx context.Context, alertID string, actor entity.Actor) (entity.AutoAlert, error) {
	if err := e.deps.Guard.Require(actor, ActionAcknowledge); err != nil {
		return entity.AutoAlert{}, err
	}
	e.ensureLoaded(ctx)
	alert, changed, err := e.store.Acknowledge(alertID, actor.ID, e.deps.Clock.Now())
	if err != nil {
		return entity.AutoAlert{}, err
	}
	if changed {
		metrics.AlertsAcknowledgedTotal.Inc()
		e.markDirty(false, true)
	}
	e.flush(ctx)
	if changed {
		e.log.Info().Str("alert_id", alert.ID).Str("product_id", alert.ProductID).Str("actor_id", actor.ID).Msg("alerta reconocida")
		e.events.publish(StoreEvent{Scope: e.scope, Kind: EventAcknowledged, Alerts: []entity.AutoAlert{alert}})
	}
	return alert, nil
}

// UpdateSettings aplica una actualización parcial. PermissionDenied o ValidationError dejan la
// configuración previa intacta.
func (e *Engine) UpdateSettings(ctx context.Context, patch SettingsPatch, actor entity.Actor) (*entity.AlertSettings, error) {
	e.ensureLoaded(ctx)
	s, err := e.registry.Apply(patch, actor, e.deps.Clock.Now())
	if err != nil {
		e.settingsRejected(err, actor)
		return nil, err
	}
	metrics.SettingsUpdatesTotal.WithLabelValues("applied").Inc()
	e.log.Info().Str("actor_id", actor.ID).Str("role", actor.Role).Msg("configuración de alertas actualizada")
	e.markDirty(true, false)
	e.flush(ctx)
	return s, nil
}

// ResetSettings restaura umbrales y políticas por defecto.
func (e *Engine) ResetSettings(ctx context.Context, actor entity.Actor) (*entity.AlertSettings, error) {
	e.ensureLoaded(ctx)
	s, err := e.registry.Reset(actor, e.deps.Clock.Now())
	if err != nil {
		e.settingsRejected(err, actor)
		return nil, err
	}
	metrics.SettingsUpdatesTotal.WithLabelValues("applied").Inc()
	e.log.Info().Str("actor_id", actor.ID).Str("role", actor.Role).Msg("configuración de alertas restablecida")
	e.markDirty(true, false)
	e.flush(ctx)
	return s, nil
}

// AuthorizeSettingsChange verifica el rol antes de interpretar una actualización de configuración.
func (e *Engine) AuthorizeSettingsChange(actor entity.Actor) error {
	if err := e.deps.Guard.RequireSettingsChange(actor); err != nil {
		e.settingsRejected(err, actor)
		return err
	}
	return nil
}

func (e *Engine) settingsRejected(err error, actor entity.Actor) {
	outcome := "invalid"
	if errors.Is(err, domain.ErrPermissionDenied) {
		outcome = "denied"
	}
	metrics.SettingsUpdatesTotal.WithLabelValues(outcome).Inc()
	e.log.Warn().Err(err).Str("actor_id", actor.ID).Str("role", actor.Role).Msg("actualización de configuración rechazada")
}

// GetStats conteos actuales del almacén.
func (e *Engine) GetStats() entity.AlertStats { return e.store.Stats() }

// Settings copia de la configuración activa.
func (e *Engine) Settings() *entity.AlertSettings { return e.registry.Settings() }

// Thresholds umbrales habilitados en el orden guardado.
func (e *Engine) Thresholds() []entity.Threshold { return e.registry.ActiveThresholds() }

// ListAlerts lista alertas según el filtro, en orden de inserción.
func (e *Engine) ListAlerts(f AlertFilter) []entity.AutoAlert {
	if f.UnacknowledgedOnly {
		return e.store.ListUnacknowledged(f.Severities...)
	}
	all := e.store.List()
	if len(f.Severities) == 0 {
		return all
	}
	want := make(map[entity.Severity]bool, len(f.Severities))
	for _, s := range f.Severities {
		want[s] = true
	}
	out := all[:0]
	for _, a := range all {
		if want[a.Severity] {
			out = append(out, a)
		}
	}
	return out
}

// Report arma el contenido exportable con el filtro indicado.
func (e *Engine) Report(f AlertFilter) AlertReport {
	return AlertReport{
		CompanyID:   e.scope,
		GeneratedAt: e.deps.Clock.Now(),
		Stats:       e.store.Stats(),
		Alerts:      e.ListAlerts(f),
	}
}

// HasOpenAlert informa si el producto tiene una alerta abierta.
func (e *Engine) HasOpenAlert(productID string) bool { return e.store.HasOpenAlert(productID) }

// Subscribe registra un callback para cada cambio del almacén. Devuelve la función para desuscribirse.
func (e *Engine) Subscribe(fn func(StoreEvent)) (cancel func()) { return e.events.subscribe(fn) }

// Cleanup elimina las alertas reconocidas hace más de autoAcknowledge.afterHours.
// No se ejecuta si la política está deshabilitada y no pasa por el debounce de evaluación.
func (e *Engine) Cleanup(ctx context.Context) []entity.AutoAlert {
	e.ensureLoaded(ctx)
	policy := e.registry.snapshot().AutoAcknowledge
	if !policy.Enabled {
		return nil
	}
	cutoff := e.deps.Clock.Now().Add(-time.Duration(policy.AfterHours) * time.Hour)
	evicted := e.store.EvictAcknowledgedOlderThan(cutoff)
	if len(evicted) > 0 {
		metrics.AlertsEvictedTotal.WithLabelValues("age").Add(float64(len(evicted)))
		e.markDirty(false, true)
		e.log.Info().Int("evicted", len(evicted)).Msg("limpieza de alertas reconocidas")
	}
	e.flush(ctx)
	e.events.publish(StoreEvent{Scope: e.scope, Kind: EventEvicted, Alerts: evicted})
	return evicted
}

// PendingPersistence informa si quedan registros sin guardar tras un fallo del almacén.
func (e *Engine) PendingPersistence() bool {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	return e.dirtySettings || e.dirtyAlerts
}

// WaitNotifications espera las notificaciones críticas en curso.
func (e *Engine) WaitNotifications() { e.evaluator.WaitNotifications() }

func (e *Engine) settingsDirty() bool {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	return e.dirtySettings
}

func (e *Engine) markDirty(settings, alerts bool) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	e.dirtySettings = e.dirtySettings || settings
	e.dirtyAlerts = e.dirtyAlerts || alerts
}

// flush guarda los registros marcados con el estado vigente. Un fallo deja la marca puesta
// para reintentar en la próxima operación que modifique estado; un registro aún no cargado
// queda marcado sin guardarse.
func (e *Engine) flush(ctx context.Context) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	if e.dirtySettings && e.settingsLoaded.Load() {
		if e.save(ctx, repository.RecordAlertSettings, e.registry.snapshot()) {
			e.dirtySettings = false
		}
	}
	if e.dirtyAlerts && e.alertsLoaded.Load() {
		if e.save(ctx, repository.RecordAutoAlerts, e.store.List()) {
			e.dirtyAlerts = false
		}
	}
}

func (e *Engine) save(ctx context.Context, record string, v any) bool {
	data, err := json.Marshal(v)
	if err == nil {
		err = e.deps.Records.Save(ctx, e.scope, record, data)
	}
	if err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues(record, "save").Inc()
		e.log.Warn().Err(fmt.Errorf("%w: %v", domain.ErrPersistence, err)).Str("record", record).Msg("no se pudo guardar, se reintentará")
		return false
	}
	return true
}
