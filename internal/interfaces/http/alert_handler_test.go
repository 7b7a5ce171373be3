package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/application/dto"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/excel"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-alertas/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func buildAlertApp(t *testing.T) *fiber.App {
	t.Helper()
	manager := alerting.NewManager(alerting.Deps{
		Records:     memory.NewRecordStore(),
		MinInterval: time.Hour,
	}, nil, alerting.Schedule{})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Alerts:    manager,
		Reports:   []alerting.ReportRenderer{pdf.NewAlertReportRenderer(), excel.NewAlertExporter()},
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

var outOfStock = map[string]any{
	"items": []map[string]any{
		{"id": "p1", "name": "Tornillo", "code": "T-1", "stock": 0, "minStock": 5},
		{"id": "p2", "name": "Tuerca", "code": "T-2", "stock": map[string]any{"current": 5, "maximum": 50}, "minStock": 5},
		{"id": "p3", "name": "Arandela", "stock": "n/a"},
	},
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestAlertHandler_SinTokenRetorna401(t *testing.T) {
	app := buildAlertApp(t)
	resp, _ := call(t, app, http.MethodGet, "/api/alerts/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAlertHandler_GenerarListarYReconocer(t *testing.T) {
	app := buildAlertApp(t)

	resp, body := call(t, app, http.MethodPost, "/api/alerts/generate", "vendedor", outOfStock)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var report alerting.RunReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.True(t, report.Admitted)
	assert.Len(t, report.Created, 2)
	assert.Equal(t, 1, report.Failed, "el ítem con stock no numérico se omite")

	resp, body = call(t, app, http.MethodPost, "/api/alerts/generate", "vendedor", outOfStock)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &report))
	assert.False(t, report.Admitted, "dentro de la ventana de debounce")

	resp, body = call(t, app, http.MethodGet, "/api/alerts?status=unacknowledged&severity=critical", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.AlertListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Equal(t, 2, list.Total)

	id := list.Items[0].ID
	resp, body = call(t, app, http.MethodPost, "/api/alerts/"+id+"/acknowledge", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acked entity.AutoAlert
	require.NoError(t, json.Unmarshal(body, &acked))
	assert.True(t, acked.Acknowledged)
	assert.Equal(t, testUserID, acked.AcknowledgedBy)

	resp, body = call(t, app, http.MethodGet, "/api/alerts/stats", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats entity.AlertStats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, entity.AlertStats{Total: 2, Unacknowledged: 1, Critical: 1}, stats)
}

func TestAlertHandler_ListarPaginado(t *testing.T) {
	app := buildAlertApp(t)
	call(t, app, http.MethodPost, "/api/alerts/generate", "vendedor", outOfStock)

	resp, body := call(t, app, http.MethodGet, "/api/alerts?limit=1&offset=1", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.AlertListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, dto.PageResponse{Limit: 1, Offset: 1, Total: 2}, list.Page)

	resp, body = call(t, app, http.MethodGet, "/api/alerts?offset=10", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Items)
	assert.Equal(t, 2, list.Total)
}

func TestAlertHandler_ReconocerIdDesconocido(t *testing.T) {
	app := buildAlertApp(t)
	resp, body := call(t, app, http.MethodPost, "/api/alerts/nope/acknowledge", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestAlertHandler_ForzarSoloAdmin(t *testing.T) {
	app := buildAlertApp(t)
	resp, body := call(t, app, http.MethodPost, "/api/alerts/generate", "vendedor", map[string]any{"force": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "FORBIDDEN")

	resp, _ = call(t, app, http.MethodPost, "/api/alerts/generate", "admin", map[string]any{"force": true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAlertHandler_ActualizarConfiguracion(t *testing.T) {
	app := buildAlertApp(t)
	update := map[string]any{
		"thresholds": []map[string]any{
			{"id": "agotado", "type": "out_of_stock", "name": "Agotado", "enabled": true, "thresholdValue": 0, "severity": "CRITICAL",
				"conditions": map[string]any{"checkPercentage": false, "checkAbsolute": false}},
		},
		"notifications": map[string]any{"email": true, "inApp": false, "sound": false},
	}

	resp, body := call(t, app, http.MethodPut, "/api/alerts/settings", "user", update)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "FORBIDDEN")

	resp, body = call(t, app, http.MethodGet, "/api/alerts/thresholds", "user", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ths dto.ThresholdListResponse
	require.NoError(t, json.Unmarshal(body, &ths))
	assert.Len(t, ths.Items, 3, "la configuración previa queda intacta")

	resp, body = call(t, app, http.MethodPut, "/api/alerts/settings", "admin", update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var settings entity.AlertSettings
	require.NoError(t, json.Unmarshal(body, &settings))
	require.Len(t, settings.Thresholds, 1)
	assert.True(t, settings.Notifications.Email)

	resp, body = call(t, app, http.MethodPost, "/api/alerts/settings/reset", "superadmin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &settings))
	assert.Len(t, settings.Thresholds, 3)
}

func TestAlertHandler_ConfiguracionSinPrivilegioAntesDeLeerElCuerpo(t *testing.T) {
	app := buildAlertApp(t)
	send := func(role string) (*http.Response, string) {
		req := httptest.NewRequest(http.MethodPut, "/api/alerts/settings", bytes.NewReader([]byte(`{"thresholds": [`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", tokenForRole(t, role))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	resp, body := send(entity.RoleVendedor)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "FORBIDDEN")

	resp, body = send(entity.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "INVALID_BODY")
}

func TestAlertHandler_ConfiguracionInvalida(t *testing.T) {
	app := buildAlertApp(t)
	resp, body := call(t, app, http.MethodPut, "/api/alerts/settings", "admin", map[string]any{"thresholds": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")

	resp, body = call(t, app, http.MethodGet, "/api/alerts?severity=URGENTE", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestAlertHandler_Exportar(t *testing.T) {
	app := buildAlertApp(t)
	call(t, app, http.MethodPost, "/api/alerts/generate", "vendedor", outOfStock)

	resp, body := call(t, app, http.MethodGet, "/api/alerts/export/pdf", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = call(t, app, http.MethodGet, "/api/alerts/export/XLSX?status=unacknowledged", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(body, []byte("PK")), "xlsx es un zip")

	resp, body = call(t, app, http.MethodGet, "/api/alerts/export/csv", "bodeguero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestAlertHandler_Metrics(t *testing.T) {
	app := buildAlertApp(t)
	call(t, app, http.MethodPost, "/api/alerts/generate", "admin", outOfStock)

	resp, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "stock_alerts_evaluation_runs_total")
}
