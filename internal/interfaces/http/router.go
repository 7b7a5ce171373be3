package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Alerts    *alerting.Manager
	Reports   []alerting.ReportRenderer
	JWTSecret string

	// Modules opcional: si está, /alerts exige que la empresa tenga Module activo.
	Modules ModuleChecker
	Module  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Métricas Prometheus (público, para el scraper)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Alertas de stock (protegido). Las operaciones de configuración se autorizan en el motor.
	alerts := protected.Group("/alerts")
	if deps.Modules != nil {
		alerts.Use(RequireModule(deps.Module, deps.Modules))
	}
	alertHandler := NewAlertHandler(deps.Alerts, deps.Reports...)
	alerts.Get("/", alertHandler.List)
	alerts.Get("/stats", alertHandler.Stats)
	alerts.Get("/thresholds", alertHandler.Thresholds)
	alerts.Get("/export/:format", alertHandler.Export)
	alerts.Post("/generate", alertHandler.Generate)
	alerts.Get("/settings", alertHandler.GetSettings)
	alerts.Put("/settings", alertHandler.UpdateSettings)
	alerts.Post("/settings/reset", alertHandler.ResetSettings)
	alerts.Post("/:id/acknowledge", alertHandler.Acknowledge)
}
