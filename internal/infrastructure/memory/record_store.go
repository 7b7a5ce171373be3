package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// RecordStore implementación en memoria de repository.RecordStore (desarrollo y tests).
// Los documentos se copian al guardar y al leer.
type RecordStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewRecordStore crea un almacén vacío.
func NewRecordStore() *RecordStore {
	return &RecordStore{docs: make(map[string][]byte)}
}

func key(scope, name string) string { return scope + "/" + name }

// Load devuelve el documento o domain.ErrNotFound.
func (s *RecordStore) Load(ctx context.Context, scope, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key(scope, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, scope, name)
	}
	return append([]byte(nil), doc...), nil
}

// Save reemplaza el documento completo.
func (s *RecordStore) Save(ctx context.Context, scope, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key(scope, name)] = append([]byte(nil), data...)
	return nil
}
