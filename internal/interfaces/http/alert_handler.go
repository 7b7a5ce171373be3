package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/application/dto"
	"github.com/jhoicas/inventario-alertas/internal/domain"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// AlertHandler maneja las peticiones HTTP del motor de alertas de stock (protegido).
type AlertHandler struct {
	manager   *alerting.Manager
	renderers map[string]alerting.ReportRenderer // por extensión: pdf, xlsx
}

// NewAlertHandler construye el handler. Los renderers habilitan la exportación por formato.
func NewAlertHandler(manager *alerting.Manager, renderers ...alerting.ReportRenderer) *AlertHandler {
	h := &AlertHandler{manager: manager, renderers: make(map[string]alerting.ReportRenderer, len(renderers))}
	for _, r := range renderers {
		h.renderers[r.Extension()] = r
	}
	return h
}

func (h *AlertHandler) engine(c *fiber.Ctx) (*alerting.Engine, error) {
	return h.manager.Engine(c.UserContext(), GetCompanyID(c))
}

// alertError traduce errores de dominio a la respuesta HTTP.
func alertError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrAlertNotFound), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// List godoc
// @Summary      Listar alertas de stock
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "all | unacknowledged"
// @Param        severity  query  string  false  "Severidades separadas por coma (CRITICAL,HIGH,...)"
// @Param        limit     query  int     false  "Tamaño de página (1-100, por defecto 20)"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	filter, err := parseAlertFilter(c)
	if err != nil {
		return alertError(c, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	all := e.ListAlerts(filter)
	from, to := page.Window(len(all))
	items := append([]entity.AutoAlert{}, all[from:to]...)
	return c.JSON(dto.AlertListResponse{
		Items: items,
		Total: len(all),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(all)},
	})
}

// parseAlertFilter lee status y severity de la query.
func parseAlertFilter(c *fiber.Ctx) (alerting.AlertFilter, error) {
	filter := alerting.AlertFilter{UnacknowledgedOnly: c.Query("status") == "unacknowledged"}
	if raw := c.Query("severity"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			sev := entity.Severity(strings.ToUpper(strings.TrimSpace(part)))
			if !sev.Valid() {
				return alerting.AlertFilter{}, fmt.Errorf("%w: severidad desconocida %q", domain.ErrInvalidInput, part)
			}
			filter.Severities = append(filter.Severities, sev)
		}
	}
	return filter, nil
}

// Export godoc
// @Summary      Exportar alertas (PDF o XLSX)
// @Tags         alerts
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format    path   string  true   "pdf | xlsx"
// @Param        status    query  string  false  "all | unacknowledged"
// @Param        severity  query  string  false  "Severidades separadas por coma"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alerts/export/{format} [get]
func (h *AlertHandler) Export(c *fiber.Ctx) error {
	renderer, ok := h.renderers[strings.ToLower(c.Params("format"))]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "formato de exportación no soportado"})
	}
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	filter, err := parseAlertFilter(c)
	if err != nil {
		return alertError(c, err)
	}
	report := e.Report(filter)
	out, err := renderer.Render(c.UserContext(), report)
	if err != nil {
		return alertError(c, err)
	}
	c.Set(fiber.HeaderContentType, renderer.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="alertas-%s.%s"`,
		report.GeneratedAt.Format("20060102-1504"), renderer.Extension()))
	return c.Send(out)
}

// Stats godoc
// @Summary      Conteos de alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.AlertStats
// @Router       /api/alerts/stats [get]
func (h *AlertHandler) Stats(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(e.GetStats())
}

// Generate godoc
// @Summary      Disparar evaluación de alertas
// @Description  Sin items usa la fuente de inventario configurada. force salta el debounce (solo admin).
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateAlertsRequest  false  "Snapshot de inventario"
// @Success      200   {object}  alerting.RunReport
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/alerts/generate [post]
func (h *AlertHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateAlertsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	opts := alerting.GenerateOptions{Force: in.Force, Actor: CurrentActor(c)}

	var report alerting.RunReport
	if len(in.Items) == 0 && h.manager.Source() != nil {
		report, err = e.GenerateFromSource(c.UserContext(), h.manager.Source(), opts)
	} else {
		report, err = e.GenerateAlerts(c.UserContext(), in.Items, opts)
	}
	if err != nil {
		return alertError(c, err)
	}
	if report.Created == nil {
		report.Created = []entity.AutoAlert{}
	}
	return c.JSON(report)
}

// Acknowledge godoc
// @Summary      Reconocer alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la alerta"
// @Success      200  {object}  entity.AutoAlert
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/acknowledge [post]
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	out, err := e.AcknowledgeAlert(c.UserContext(), id, CurrentActor(c))
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(out)
}

// GetSettings godoc
// @Summary      Configuración de alertas activa
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.AlertSettings
// @Router       /api/alerts/settings [get]
func (h *AlertHandler) GetSettings(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(e.Settings())
}

// Thresholds godoc
// @Summary      Umbrales habilitados
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ThresholdListResponse
// @Router       /api/alerts/thresholds [get]
func (h *AlertHandler) Thresholds(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(dto.ThresholdListResponse{Items: e.Thresholds()})
}

// UpdateSettings godoc
// @Summary      Actualizar configuración de alertas (solo admin)
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateAlertSettingsRequest  true  "Cambios parciales"
// @Success      200   {object}  entity.AlertSettings
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/alerts/settings [put]
func (h *AlertHandler) UpdateSettings(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	// Un rol sin privilegio recibe 403 aunque el cuerpo sea inválido.
	if err := e.AuthorizeSettingsChange(CurrentActor(c)); err != nil {
		return alertError(c, err)
	}
	var in dto.UpdateAlertSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := e.UpdateSettings(c.UserContext(), alerting.SettingsPatch{
		Thresholds:      in.Thresholds,
		Notifications:   in.Notifications,
		AutoAcknowledge: in.AutoAcknowledge,
	}, CurrentActor(c))
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(out)
}

// ResetSettings godoc
// @Summary      Restablecer configuración por defecto (solo admin)
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.AlertSettings
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/alerts/settings/reset [post]
func (h *AlertHandler) ResetSettings(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return alertError(c, err)
	}
	out, err := e.ResetSettings(c.UserContext(), CurrentActor(c))
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(out)
}
