package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	apphttp "github.com/jhoicas/inventario-alertas/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-alertas/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "inventario-alertas-test"
	testExpMin    = 60
)

// tokenForRole genera el header Authorization con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, pkgjwt.Subject{UserID: testUserID, CompanyID: testCompanyID, Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

// buildActorApp expone el actor resuelto del token en GET /whoami.
func buildActorApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami",
		apphttp.AuthMiddleware(testJWTSecret),
		func(c *fiber.Ctx) error {
			return c.JSON(apphttp.CurrentActor(c))
		},
	)
	return app
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"token válido", tokenForRole(t, entity.RoleVendedor), http.StatusOK, ""},
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"sin esquema Bearer", "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"otro secreto", "Bearer " + mustToken(t, "otro-secreto"), http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := buildActorApp().Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.wantCode, resp.StatusCode)
			if tc.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tc.wantBody)
			}
		})
	}
}

func TestCurrentActor_DesdeClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleBodeguero))
	resp, err := buildActorApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actor entity.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actor))
	assert.Equal(t, entity.Actor{ID: testUserID, CompanyID: testCompanyID, Role: entity.RoleBodeguero}, actor)
}

// Un token sin rol pasa la autenticación; la autorización la decide SettingsGuard.
func TestCurrentActor_TokenSinRol(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, pkgjwt.Subject{UserID: testUserID, CompanyID: testCompanyID})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := buildActorApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actor entity.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actor))
	assert.Empty(t, actor.Role)
}

func mustToken(t *testing.T, secret string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, testIssuer, testExpMin, pkgjwt.Subject{UserID: testUserID, CompanyID: testCompanyID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	return tok
}
