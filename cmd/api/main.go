package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/repository"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/excel"
	infrakafka "github.com/jhoicas/inventario-alertas/internal/infrastructure/kafka"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-alertas/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/inventario-alertas/internal/interfaces/http"
	"github.com/jhoicas/inventario-alertas/pkg/config"
	"github.com/jhoicas/inventario-alertas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Alerts.StoreBackend).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// PostgreSQL solo si algún componente lo usa
	var pool *pgxpool.Pool
	if cfg.Alerts.StoreBackend == config.StorePostgres || cfg.Alerts.SnapshotSource == config.StorePostgres ||
		cfg.Alerts.RequiredModule != "" {
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		migrator := postgres.NewTxRunner(pool)
		if err := migrator.Migrate(ctx,
			cfg.Alerts.StoreBackend == config.StorePostgres,
			cfg.Alerts.SnapshotSource == config.StorePostgres,
		); err != nil {
			log.Fatal().Err(err).Msg("migración de esquema")
		}
	}

	// Persistencia de alert_settings / auto_alerts
	var records repository.RecordStore
	switch cfg.Alerts.StoreBackend {
	case config.StoreRedis:
		client := infraredis.NewClient(cfg.Redis)
		if err := infraredis.Ping(ctx, client); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		records = infraredis.NewRecordStore(client)
	case config.StorePostgres:
		records = postgres.NewRecordStore(pool)
	default:
		log.Warn().Msg("persistencia de alertas en memoria: el estado se pierde al reiniciar")
		records = memory.NewRecordStore()
	}

	// Fuente de inventario para la evaluación periódica
	var source repository.SnapshotSource
	if cfg.Alerts.SnapshotSource == config.StorePostgres {
		source = postgres.NewSnapshotSource(pool)
	}

	// Notificaciones críticas in-app vía Kafka (opcional)
	var notifier alerting.Notifier
	if len(cfg.Kafka.Brokers) > 0 {
		kn, err := infrakafka.NewNotifier(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic, infrakafka.DefaultOptions(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("notificador Kafka")
		}
		defer kn.Close()
		notifier = kn
	}

	manager := alerting.NewManager(alerting.Deps{
		Records:     records,
		Notifier:    notifier,
		Guard:       alerting.NewSettingsGuard(),
		Logger:      log,
		Capacity:    cfg.Alerts.Capacity,
		MinInterval: cfg.Alerts.MinInterval,
	}, source, alerting.Schedule{
		CleanupInterval:    cfg.Alerts.CleanupInterval,
		EvaluationInterval: cfg.Alerts.EvaluationInterval,
	})
	go manager.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Alertas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "engines": len(manager.Engines())})
	})

	routerDeps := httpRouter.RouterDeps{
		Alerts:    manager,
		Reports:   []alerting.ReportRenderer{pdf.NewAlertReportRenderer(), excel.NewAlertExporter()},
		JWTSecret: cfg.JWT.Secret,
	}
	if cfg.Alerts.RequiredModule != "" {
		routerDeps.Modules = postgres.NewModuleRepository(pool)
		routerDeps.Module = cfg.Alerts.RequiredModule
	}
	httpRouter.Router(app, routerDeps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	for _, e := range manager.Engines() {
		e.WaitNotifications()
	}

	log.Info().Msg("aplicación detenida")
}
