package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
	alertredis "github.com/jhoicas/inventario-alertas/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-alertas/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *alertredis.RecordStore) {
	mr := miniredis.RunT(t)
	client := alertredis.NewClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, alertredis.Ping(context.Background(), client))
	return mr, alertredis.NewRecordStore(client)
}

func TestRecordStore_LoadAusente(t *testing.T) {
	_, s := setupTestRedis(t)
	_, err := s.Load(context.Background(), "c1", repository.RecordAlertSettings)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_SaveYLoad(t *testing.T) {
	mr, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "c1", repository.RecordAutoAlerts, []byte(`[]`)))
	got, err := s.Load(ctx, "c1", repository.RecordAutoAlerts)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	raw, err := mr.Get("alerts:c1:auto_alerts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.Zero(t, mr.TTL("alerts:c1:auto_alerts"), "los registros no expiran")
}

func TestRecordStore_ErrorDeConexion(t *testing.T) {
	mr, s := setupTestRedis(t)
	mr.Close()
	_, err := s.Load(context.Background(), "c1", repository.RecordAutoAlerts)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "un fallo de conexión no es un registro ausente")
}

func TestRecordStore_MotorSobreRedis(t *testing.T) {
	_, s := setupTestRedis(t)
	ctx := context.Background()
	e := alerting.NewEngine("c1", alerting.Deps{Records: s})
	require.NoError(t, e.Load(ctx))

	report, err := e.GenerateAlerts(ctx, []entity.InventoryItemSnapshot{{
		ID: "p1", Name: "Tornillo", Code: "T-1", Stock: entity.StockOf(decimal.Zero),
	}}, alerting.GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, report.Created, 1)

	reloaded := alerting.NewEngine("c1", alerting.Deps{Records: s})
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.HasOpenAlert("p1"))
	assert.False(t, reloaded.PendingPersistence())
}
