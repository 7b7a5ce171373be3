package alerting

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// DefaultCapacity máximo de alertas guardadas por alcance.
const DefaultCapacity = 100

var _ Deduplicator = (*AlertStore)(nil)

// AlertStore colección acotada de alertas con su índice de alertas abiertas.
// Todas las operaciones son atómicas respecto del lock; alta y reconocimiento son linealizables
// entre sí, de modo que nunca conviven dos alertas abiertas del mismo producto.
type AlertStore struct {
	mu       sync.RWMutex
	capacity int
	alerts   []*entity.AutoAlert // orden de inserción
	byID     map[string]*entity.AutoAlert
	open     openIndex
}

// NewAlertStore construye un almacén vacío. capacity <= 0 usa DefaultCapacity.
func NewAlertStore(capacity int) *AlertStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &AlertStore{
		capacity: capacity,
		byID:     make(map[string]*entity.AutoAlert),
		open:     make(openIndex),
	}
}

// Restore reemplaza el contenido con alertas cargadas de persistencia.
// Se ordenan por timestamp; una segunda alerta abierta del mismo producto se descarta
// y luego se aplica la capacidad. Devuelve cuántas alertas se descartaron.
func (s *AlertStore) Restore(alerts []entity.AutoAlert) int {
	all := make([]entity.AutoAlert, len(alerts))
	copy(all, alerts)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(all)
}

// Merge combina alertas persistidas con el contenido actual, con las mismas reglas que Restore.
// Ante dos alertas abiertas del mismo producto se conserva la más antigua.
func (s *AlertStore) Merge(persisted []entity.AutoAlert) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]entity.AutoAlert, 0, len(persisted)+len(s.alerts))
	all = append(all, persisted...)
	for _, a := range s.alerts {
		all = append(all, *a)
	}
	return s.rebuildLocked(all)
}

func (s *AlertStore) rebuildLocked(all []entity.AutoAlert) int {
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })

	s.alerts = s.alerts[:0]
	s.byID = make(map[string]*entity.AutoAlert, len(all))
	s.open = make(openIndex)

	dropped := 0
	for i := range all {
		a := all[i]
		if a.ID == "" || s.byID[a.ID] != nil || (a.IsOpen() && s.open.has(a.ProductID)) {
			dropped++
			continue
		}
		s.insertLocked(&a)
	}
	dropped += len(s.evictOverflowLocked())
	return dropped
}

// HasOpenAlert informa si el producto tiene una alerta sin reconocer.
func (s *AlertStore) HasOpenAlert(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open.has(productID)
}

// Append agrega una alerta abierta. Si el producto ya tiene una alerta abierta devuelve
// domain.ErrConflict sin modificar nada. Si se supera la capacidad expulsa primero las más
// antiguas por timestamp (reconocidas o no) y las devuelve.
func (s *AlertStore) Append(alert entity.AutoAlert) ([]entity.AutoAlert, error) {
	if alert.ID == "" || alert.ProductID == "" {
		return nil, fmt.Errorf("%w: alerta sin id o producto", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byID[alert.ID]; dup {
		return nil, fmt.Errorf("%w: id de alerta repetido %s", domain.ErrConflict, alert.ID)
	}
	if alert.IsOpen() && s.open.has(alert.ProductID) {
		return nil, fmt.Errorf("%w: el producto %s ya tiene una alerta abierta", domain.ErrConflict, alert.ProductID)
	}
	a := alert
	s.insertLocked(&a)
	return s.evictOverflowLocked(), nil
}

// Acknowledge marca la alerta como reconocida. changed es false si ya lo estaba
// (idempotente: devuelve el registro sin modificar). domain.ErrAlertNotFound si no existe.
func (s *AlertStore) Acknowledge(alertID, actorID string, now time.Time) (alert entity.AutoAlert, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[alertID]
	if !ok {
		return entity.AutoAlert{}, false, fmt.Errorf("%w: %s", domain.ErrAlertNotFound, alertID)
	}
	if a.Acknowledged {
		return *a, false, nil
	}
	at := now
	a.Acknowledged = true
	a.AcknowledgedBy = actorID
	a.AcknowledgedAt = &at
	s.open.remove(a.ProductID, a.ID)
	return *a, true, nil
}

// Get devuelve una alerta por id.
func (s *AlertStore) Get(alertID string) (entity.AutoAlert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[alertID]
	if !ok {
		return entity.AutoAlert{}, false
	}
	return *a, true
}

// List devuelve todas las alertas en orden de inserción.
func (s *AlertStore) List() []entity.AutoAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.AutoAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	return out
}

// ListUnacknowledged devuelve las alertas abiertas, opcionalmente filtradas por severidad.
func (s *AlertStore) ListUnacknowledged(severities ...entity.Severity) []entity.AutoAlert {
	want := make(map[entity.Severity]bool, len(severities))
	for _, sev := range severities {
		want[sev] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.AutoAlert
	for _, a := range s.alerts {
		if !a.IsOpen() {
			continue
		}
		if len(want) > 0 && !want[a.Severity] {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// Stats se calcula en cada llamada sobre el contenido actual; no se mantiene incrementalmente.
func (s *AlertStore) Stats() entity.AlertStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := entity.AlertStats{Total: len(s.alerts)}
	for _, a := range s.alerts {
		if !a.IsOpen() {
			continue
		}
		st.Unacknowledged++
		switch a.Severity {
		case entity.SeverityCritical:
			st.Critical++
		case entity.SeverityHigh:
			st.High++
		case entity.SeverityMedium:
			st.Medium++
		case entity.SeverityLow:
			st.Low++
		}
	}
	return st
}

// EvictAcknowledgedOlderThan elimina las alertas reconocidas con AcknowledgedAt < cutoff.
// Las alertas abiertas nunca se expulsan por antigüedad.
func (s *AlertStore) EvictAcknowledgedOlderThan(cutoff time.Time) []entity.AutoAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []entity.AutoAlert
	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if a.Acknowledged && a.AcknowledgedAt != nil && a.AcknowledgedAt.Before(cutoff) {
			evicted = append(evicted, *a)
			delete(s.byID, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	s.clearTail(kept)
	s.alerts = kept
	return evicted
}

// Len cantidad de alertas guardadas.
func (s *AlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Capacity límite configurado.
func (s *AlertStore) Capacity() int { return s.capacity }

func (s *AlertStore) insertLocked(a *entity.AutoAlert) {
	s.alerts = append(s.alerts, a)
	s.byID[a.ID] = a
	if a.IsOpen() {
		s.open.add(a.ProductID, a.ID)
	}
}

// evictOverflowLocked expulsa la alerta de menor timestamp (la primera en caso de empate)
// hasta volver a la capacidad.
func (s *AlertStore) evictOverflowLocked() []entity.AutoAlert {
	var evicted []entity.AutoAlert
	for len(s.alerts) > s.capacity {
		oldest := 0
		for i, a := range s.alerts {
			if a.Timestamp.Before(s.alerts[oldest].Timestamp) {
				oldest = i
			}
		}
		a := s.alerts[oldest]
		evicted = append(evicted, *a)
		delete(s.byID, a.ID)
		if a.IsOpen() {
			s.open.remove(a.ProductID, a.ID)
		}
		s.alerts = append(s.alerts[:oldest], s.alerts[oldest+1:]...)
	}
	return evicted
}

// clearTail suelta las referencias que quedaron detrás del slice compactado.
func (s *AlertStore) clearTail(kept []*entity.AutoAlert) {
	for i := len(kept); i < len(s.alerts); i++ {
		s.alerts[i] = nil
	}
}
