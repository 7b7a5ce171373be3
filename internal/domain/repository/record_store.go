package repository

import "context"

// Nombres lógicos de los registros persistidos por alcance.
const (
	RecordAlertSettings = "alert_settings"
	RecordAutoAlerts    = "auto_alerts"
)

// RecordStore define el puerto de persistencia clave-valor del motor de alertas (DIP).
// Cada registro es un documento JSON que se carga y guarda completo.
// Load devuelve domain.ErrNotFound si el registro no existe.
type RecordStore interface {
	Load(ctx context.Context, scope, name string) ([]byte, error)
	Save(ctx context.Context, scope, name string, data []byte) error
}
