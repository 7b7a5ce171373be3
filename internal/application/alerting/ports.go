// Package alerting implementa el motor de alertas de stock: registro de umbrales, guardia de
// configuración, almacén de alertas con índice de deduplicación, planificador con debounce,
// evaluador y la fachada Engine que expone las operaciones a los colaboradores.
package alerting

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// Clock fuente de tiempo inyectable (los tests usan un reloj falso).
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real.
type SystemClock struct{}

// Now devuelve la hora actual.
func (SystemClock) Now() time.Time { return time.Now() }

// Notifier despacha la notificación inmediata de una alerta CRITICAL (fire-and-forget).
type Notifier interface {
	NotifyCritical(ctx context.Context, companyID string, alert entity.AutoAlert) error
}

// AlertReport contenido exportable de las alertas de una empresa.
type AlertReport struct {
	CompanyID   string
	GeneratedAt time.Time
	Stats       entity.AlertStats
	Alerts      []entity.AutoAlert
}

// ReportRenderer serializa un AlertReport a un formato de archivo (PDF, XLSX).
type ReportRenderer interface {
	Render(ctx context.Context, report AlertReport) ([]byte, error)
	ContentType() string
	Extension() string
}
