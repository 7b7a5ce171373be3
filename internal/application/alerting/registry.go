package alerting

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// SettingsPatch actualización parcial de la configuración. Un campo nil no se modifica.
// Thresholds apuntando a un slice vacío es un reemplazo inválido, no una omisión.
type SettingsPatch struct {
	Thresholds      *[]entity.Threshold
	Notifications   *entity.NotificationPolicy
	AutoAcknowledge *entity.AutoAcknowledgePolicy
}

func (p SettingsPatch) actions() []Action {
	var out []Action
	if p.Thresholds != nil {
		out = append(out, ActionReplaceThresholds)
	}
	if p.Notifications != nil {
		out = append(out, ActionUpdateNotifications)
	}
	if p.AutoAcknowledge != nil {
		out = append(out, ActionUpdateAutoAcknowledge)
	}
	return out
}

// ThresholdRegistry conjunto ordenado de umbrales activo (por defecto + personalizaciones).
// Los lectores siempre ven una configuración completa: cada cambio publica un objeto nuevo
// mediante un puntero atómico; los escritores se serializan con mu.
type ThresholdRegistry struct {
	guard   *SettingsGuard
	mu      sync.Mutex
	current atomic.Pointer[entity.AlertSettings]
}

// NewThresholdRegistry construye el registro con la configuración inicial (debe ser válida).
func NewThresholdRegistry(guard *SettingsGuard, initial *entity.AlertSettings) *ThresholdRegistry {
	r := &ThresholdRegistry{guard: guard}
	r.current.Store(initial.Clone())
	return r
}

// Settings devuelve una copia de la configuración activa.
func (r *ThresholdRegistry) Settings() *entity.AlertSettings {
	return r.current.Load().Clone()
}

// ActiveThresholds devuelve solo los umbrales habilitados, en el orden guardado.
// El orden no implica prioridad; la prioridad la define la severidad.
func (r *ThresholdRegistry) ActiveThresholds() []entity.Threshold {
	return activeOf(r.current.Load())
}

func activeOf(s *entity.AlertSettings) []entity.Threshold {
	out := make([]entity.Threshold, 0, len(s.Thresholds))
	for _, t := range s.Thresholds {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// Replace reemplaza el conjunto completo de umbrales.
func (r *ThresholdRegistry) Replace(thresholds []entity.Threshold, actor entity.Actor, now time.Time) (*entity.AlertSettings, error) {
	return r.Apply(SettingsPatch{Thresholds: &thresholds}, actor, now)
}

// Apply autoriza y valida el parche completo antes de publicar la nueva configuración.
// Ante PermissionDenied o ValidationError la configuración activa queda intacta.
func (r *ThresholdRegistry) Apply(patch SettingsPatch, actor entity.Actor, now time.Time) (*entity.AlertSettings, error) {
	actions := patch.actions()
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: la actualización no contiene cambios", domain.ErrInvalidInput)
	}
	for _, a := range actions {
		if err := r.guard.Require(actor, a); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.current.Load().Clone()
	if patch.Thresholds != nil {
		if err := alerting.ValidateThresholds(*patch.Thresholds); err != nil {
			return nil, err
		}
		next.Thresholds = (&entity.AlertSettings{Thresholds: *patch.Thresholds}).Clone().Thresholds
	}
	if patch.Notifications != nil {
		next.Notifications = *patch.Notifications
	}
	if patch.AutoAcknowledge != nil {
		if err := alerting.ValidateAutoAcknowledge(*patch.AutoAcknowledge); err != nil {
			return nil, err
		}
		next.AutoAcknowledge = *patch.AutoAcknowledge
	}
	next.UpdatedAt = now

	r.current.Store(next)
	return next.Clone(), nil
}

// Reset restaura los umbrales y políticas integrados conservando id, dueño y fecha de creación.
func (r *ThresholdRegistry) Reset(actor entity.Actor, now time.Time) (*entity.AlertSettings, error) {
	if err := r.guard.Require(actor, ActionResetSettings); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	next := alerting.DefaultSettings(cur.ID, cur.OwnerID, cur.Role, cur.CreatedAt)
	next.UpdatedAt = now
	r.current.Store(next)
	return next.Clone(), nil
}

// restore publica una configuración cargada de persistencia sin pasar por la guardia.
func (r *ThresholdRegistry) restore(s *entity.AlertSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Store(s.Clone())
}

// snapshot devuelve la configuración publicada sin copiar; no debe modificarse.
func (r *ThresholdRegistry) snapshot() *entity.AlertSettings {
	return r.current.Load()
}
