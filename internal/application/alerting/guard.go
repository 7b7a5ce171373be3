package alerting

import (
	"fmt"

	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// Action operación sujeta a autorización.
type Action string

const (
	ActionReplaceThresholds     Action = "replace_thresholds"
	ActionUpdateNotifications   Action = "update_notifications"
	ActionUpdateAutoAcknowledge Action = "update_auto_acknowledge"
	ActionResetSettings         Action = "reset_settings"
	ActionForceEvaluation       Action = "force_evaluation"
	ActionAcknowledge           Action = "acknowledge"
	ActionViewAlerts            Action = "view_alerts"
)

// privileged acciones reservadas a los roles privilegiados.
var privileged = map[Action]bool{
	ActionReplaceThresholds:     true,
	ActionUpdateNotifications:   true,
	ActionUpdateAutoAcknowledge: true,
	ActionResetSettings:         true,
	ActionForceEvaluation:       true,
}

// SettingsGuard única política de autorización del motor de alertas.
// Las acciones de configuración requieren un rol privilegiado; el resto, cualquier rol autenticado.
type SettingsGuard struct {
	roles map[string]struct{}
}

// NewSettingsGuard construye la guardia. Sin roles se usan superadmin y admin.
func NewSettingsGuard(privilegedRoles ...string) *SettingsGuard {
	if len(privilegedRoles) == 0 {
		privilegedRoles = []string{entity.RoleSuperAdmin, entity.RoleAdmin}
	}
	g := &SettingsGuard{roles: make(map[string]struct{}, len(privilegedRoles))}
	for _, r := range privilegedRoles {
		g.roles[r] = struct{}{}
	}
	return g
}

// Authorize informa si el rol puede ejecutar la acción.
func (g *SettingsGuard) Authorize(role string, action Action) bool {
	if role == "" {
		return false
	}
	if !privileged[action] {
		return true
	}
	_, ok := g.roles[role]
	return ok
}

// Require devuelve domain.ErrPermissionDenied si el actor no puede ejecutar la acción.
// Un actor sin rol además es domain.ErrUnauthorized.
func (g *SettingsGuard) Require(actor entity.Actor, action Action) error {
	if actor.Role == "" {
		return fmt.Errorf("%w: %w: actor sin rol", domain.ErrUnauthorized, domain.ErrPermissionDenied)
	}
	if !g.Authorize(actor.Role, action) {
		return fmt.Errorf("%w: rol %q no puede ejecutar %s", domain.ErrPermissionDenied, actor.Role, action)
	}
	return nil
}

// settingsChanges acciones que puede contener una actualización parcial de la configuración.
var settingsChanges = []Action{ActionReplaceThresholds, ActionUpdateNotifications, ActionUpdateAutoAcknowledge}

// RequireSettingsChange falla si el actor no puede ejecutar ninguna de las acciones de una
// actualización de configuración. Cada acción concreta se vuelve a verificar al aplicar el cambio.
func (g *SettingsGuard) RequireSettingsChange(actor entity.Actor) error {
	var err error
	for _, a := range settingsChanges {
		if err = g.Require(actor, a); err == nil {
			return nil
		}
	}
	return err
}
