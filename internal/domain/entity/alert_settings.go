package entity

import "time"

// NotificationPolicy canales de notificación habilitados para las alertas.
type NotificationPolicy struct {
	Email bool `json:"email"`
	InApp bool `json:"inApp"`
	Sound bool `json:"sound"`
}

// AutoAcknowledgePolicy limpieza por antigüedad de alertas ya reconocidas.
type AutoAcknowledgePolicy struct {
	Enabled    bool `json:"enabled"`
	AfterHours int  `json:"afterHours"`
}

// AlertSettings configuración activa de alertas para un alcance (empresa/rol).
// Thresholds nunca está vacío: sin configuración guardada se usan los umbrales por defecto.
type AlertSettings struct {
	ID              string                `json:"id"`
	OwnerID         string                `json:"ownerId"`
	Role            string                `json:"role"`
	Thresholds      []Threshold           `json:"thresholds"`
	Notifications   NotificationPolicy    `json:"notifications"`
	AutoAcknowledge AutoAcknowledgePolicy `json:"autoAcknowledge"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// Clone copia profunda; los lectores nunca comparten el slice de umbrales con el registro.
func (s *AlertSettings) Clone() *AlertSettings {
	if s == nil {
		return nil
	}
	out := *s
	out.Thresholds = make([]Threshold, len(s.Thresholds))
	copy(out.Thresholds, s.Thresholds)
	for i := range out.Thresholds {
		if v := out.Thresholds[i].Conditions.AbsoluteValue; v != nil {
			cp := *v
			out.Thresholds[i].Conditions.AbsoluteValue = &cp
		}
	}
	return &out
}
