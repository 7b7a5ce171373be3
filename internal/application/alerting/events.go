package alerting

import (
	"sync"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/pkg/logger"
)

// EventKind tipo de cambio en el almacén de alertas.
type EventKind string

const (
	EventAppended     EventKind = "appended"
	EventAcknowledged EventKind = "acknowledged"
	EventEvicted      EventKind = "evicted"
)

// StoreEvent cambio publicado a los suscriptores.
type StoreEvent struct {
	Scope  string             `json:"scope"`
	Kind   EventKind          `json:"kind"`
	Alerts []entity.AutoAlert `json:"alerts"`
}

// broker lista de suscriptores. Los callbacks se invocan fuera del lock, en la goroutine que
// produjo el cambio; un panic en un suscriptor se registra y no afecta a los demás.
type broker struct {
	mu   sync.Mutex
	next int
	subs map[int]func(StoreEvent)
	log  *logger.Logger
}

func newBroker(log *logger.Logger) *broker {
	return &broker{subs: make(map[int]func(StoreEvent)), log: log}
}

func (b *broker) subscribe(fn func(StoreEvent)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *broker) publish(ev StoreEvent) {
	if len(ev.Alerts) == 0 {
		return
	}
	b.mu.Lock()
	fns := make([]func(StoreEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		b.deliver(fn, ev)
	}
}

func (b *broker) deliver(fn func(StoreEvent), ev StoreEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("company_id", ev.Scope).Str("kind", string(ev.Kind)).Msg("suscriptor de alertas falló")
		}
	}()
	fn(ev)
}
