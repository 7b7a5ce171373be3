package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
	"github.com/jhoicas/inventario-alertas/pkg/config"
)

// KeyPrefix prefijo de las claves de registros de alertas.
const KeyPrefix = "alerts:"

var _ repository.RecordStore = (*RecordStore)(nil)

// NewClient crea el cliente Redis a partir de la configuración.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifica la conexión.
func Ping(ctx context.Context, c *goredis.Client) error {
	return c.Ping(ctx).Err()
}

// RecordStore guarda cada registro como un string JSON en alerts:<scope>:<name>, sin TTL.
type RecordStore struct {
	c *goredis.Client
}

// NewRecordStore construye el almacén sobre un cliente existente.
func NewRecordStore(c *goredis.Client) *RecordStore { return &RecordStore{c: c} }

// Key clave Redis de un registro.
func Key(scope, name string) string { return KeyPrefix + scope + ":" + name }

// Load devuelve el documento o domain.ErrNotFound si la clave no existe.
func (s *RecordStore) Load(ctx context.Context, scope, name string) ([]byte, error) {
	data, err := s.c.Get(ctx, Key(scope, name)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, Key(scope, name))
		}
		return nil, fmt.Errorf("redis get %s: %w", Key(scope, name), err)
	}
	return data, nil
}

// Save reemplaza el documento.
func (s *RecordStore) Save(ctx context.Context, scope, name string, data []byte) error {
	if err := s.c.Set(ctx, Key(scope, name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(scope, name), err)
	}
	return nil
}
