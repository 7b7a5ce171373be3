package alerting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/domain/inventory"
	"github.com/jhoicas/inventario-alertas/internal/metrics"
	"github.com/jhoicas/inventario-alertas/pkg/logger"
)

// DefaultNotifyTimeout tiempo máximo de un envío de notificación crítica.
const DefaultNotifyTimeout = 5 * time.Second

// RunReport resultado observable de un disparo de GenerateAlerts.
type RunReport struct {
	Admitted   bool               `json:"admitted"`
	Created    []entity.AutoAlert `json:"created"`
	Skipped    int                `json:"skipped"`    // ítems sin umbrales disparados
	Suppressed int                `json:"suppressed"` // ítems con una alerta abierta previa
	Failed     int                `json:"failed"`     // ítems malformados
	Evicted    int                `json:"evicted"`    // alertas expulsadas por capacidad
}

// AlertEvaluator recorre un snapshot y agrega como máximo una alerta por ítem.
type AlertEvaluator struct {
	scope         string
	store         *AlertStore
	notifier      Notifier
	log           *logger.Logger
	newID         func() string
	notifyTimeout time.Duration

	pending sync.WaitGroup
}

// NewAlertEvaluator construye el evaluador de un alcance. notifier puede ser nil.
func NewAlertEvaluator(scope string, store *AlertStore, notifier Notifier, log *logger.Logger, newID func() string) *AlertEvaluator {
	if log == nil {
		log = logger.Nop()
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &AlertEvaluator{
		scope:         scope,
		store:         store,
		notifier:      notifier,
		log:           log,
		newID:         newID,
		notifyTimeout: DefaultNotifyTimeout,
	}
}

// Evaluate aplica los umbrales activos de settings a cada ítem. Un ítem malformado se registra
// y se omite; la pasada nunca se aborta. Devuelve las alertas expulsadas por capacidad.
func (e *AlertEvaluator) Evaluate(items []entity.InventoryItemSnapshot, settings *entity.AlertSettings, now time.Time) (RunReport, []entity.AutoAlert) {
	report := RunReport{Admitted: true}
	var evicted []entity.AutoAlert
	active := activeOf(settings)

	for _, item := range items {
		level, err := inventory.NormalizeStock(item)
		if err != nil {
			report.Failed++
			metrics.EvaluationItemsTotal.WithLabelValues("failed").Inc()
			e.log.Warn().Err(err).Str("product_id", item.ID).Msg("ítem omitido en evaluación de alertas")
			continue
		}

		fired := alerting.FiredThresholds(active, level)
		if len(fired) == 0 {
			report.Skipped++
			metrics.EvaluationItemsTotal.WithLabelValues("quiet").Inc()
			continue
		}
		if e.store.HasOpenAlert(item.ID) {
			report.Suppressed++
			metrics.EvaluationItemsTotal.WithLabelValues("suppressed").Inc()
			continue
		}

		winner, _ := alerting.ResolvePriority(fired)
		alert := e.buildAlert(item, winner, level, now)

		out, err := e.store.Append(alert)
		if errors.Is(err, domain.ErrConflict) {
			// otra vía dejó una alerta abierta entre la consulta y el alta
			report.Suppressed++
			metrics.EvaluationItemsTotal.WithLabelValues("suppressed").Inc()
			continue
		}
		if err != nil {
			report.Failed++
			metrics.EvaluationItemsTotal.WithLabelValues("failed").Inc()
			e.log.Warn().Err(err).Str("product_id", item.ID).Msg("no se pudo registrar la alerta")
			continue
		}

		report.Created = append(report.Created, alert)
		evicted = append(evicted, out...)
		metrics.EvaluationItemsTotal.WithLabelValues("alerted").Inc()
		metrics.AlertsCreatedTotal.WithLabelValues(string(alert.Severity)).Inc()

		if alert.Severity == entity.SeverityCritical && settings.Notifications.InApp {
			e.notify(alert)
		}
	}

	report.Evicted = len(evicted)
	if len(evicted) > 0 {
		metrics.AlertsEvictedTotal.WithLabelValues("capacity").Add(float64(len(evicted)))
	}
	return report, evicted
}

func (e *AlertEvaluator) buildAlert(item entity.InventoryItemSnapshot, winner entity.Threshold, level inventory.StockLevel, now time.Time) entity.AutoAlert {
	return entity.AutoAlert{
		ID:            e.newID(),
		ProductID:     item.ID,
		ProductName:   item.Name,
		ProductCode:   item.Code,
		Type:          winner.Type,
		Severity:      winner.Severity,
		Message:       alerting.BuildMessage(winner.Type, item.Name, level),
		CurrentStock:  level.Current,
		TotalStock:    level.Max,
		Percentage:    level.Percentage.Round(1),
		Threshold:     winner.ThresholdValue,
		ThresholdID:   winner.ID,
		Timestamp:     now,
		AutoGenerated: true,
	}
}

// notify envía la notificación en segundo plano; un fallo solo se registra.
func (e *AlertEvaluator) notify(alert entity.AutoAlert) {
	if e.notifier == nil {
		return
	}
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.notifyTimeout)
		defer cancel()
		if err := e.notifier.NotifyCritical(ctx, e.scope, alert); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			e.log.Warn().Err(err).Str("alert_id", alert.ID).Str("product_id", alert.ProductID).Msg("fallo al notificar alerta crítica")
			return
		}
		metrics.NotificationsTotal.WithLabelValues("success").Inc()
	}()
}

// WaitNotifications espera a que terminen los envíos en curso.
func (e *AlertEvaluator) WaitNotifications() { e.pending.Wait() }
