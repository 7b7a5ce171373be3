package alerting

import (
	"context"
	"sync"
	"time"
)

// DefaultMinInterval ventana de debounce entre evaluaciones.
const DefaultMinInterval = 30 * time.Second

// Scheduler decide si un disparo de evaluación se admite y serializa las pasadas admitidas.
type Scheduler struct {
	clock       Clock
	minInterval time.Duration

	mu           sync.Mutex
	lastAdmitted time.Time
	admitted     bool

	runMu sync.Mutex
}

// NewScheduler construye el planificador. minInterval < 0 usa DefaultMinInterval.
func NewScheduler(clock Clock, minInterval time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if minInterval < 0 {
		minInterval = DefaultMinInterval
	}
	return &Scheduler{clock: clock, minInterval: minInterval}
}

// Admit admite la pasada si es la primera, si pasó la ventana desde la última admitida
// o si se fuerza. La marca de tiempo se actualiza antes de devolver true, así un disparo
// concurrente durante una evaluación larga queda rechazado.
func (s *Scheduler) Admit(force bool) (time.Time, bool) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !force && s.admitted && now.Sub(s.lastAdmitted) < s.minInterval {
		return now, false
	}
	s.lastAdmitted = now
	s.admitted = true
	return now, true
}

// LastAdmitted última admisión; ok=false si nunca se admitió una pasada.
func (s *Scheduler) LastAdmitted() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAdmitted, s.admitted
}

// RunExclusive ejecuta fn con el lock de ejecución: como máximo una pasada a la vez.
// Un segundo llamador espera a que termine la pasada en curso.
func (s *Scheduler) RunExclusive(fn func()) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	fn()
}

// runEvery invoca fn en cada tick hasta que ctx se cancela.
func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
