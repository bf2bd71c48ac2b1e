package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercalia/catalogo-api/internal/application/usecase"
	"github.com/mercalia/catalogo-api/internal/domain/repository"
	apphttp "github.com/mercalia/catalogo-api/internal/interfaces/http"
)

// motorRegistrador registra el índice consultado y devuelve documentos fijos.
type motorRegistrador struct {
	indices []string
	docs    []map[string]any
}

func (m *motorRegistrador) Buscar(_ context.Context, indice string, _ map[string]any) ([]map[string]any, error) {
	m.indices = append(m.indices, indice)
	return m.docs, nil
}
func (m *motorRegistrador) Indexar(context.Context, string, string, map[string]any) error {
	return nil
}

func (m *motorRegistrador) EliminarDoc(context.Context, string, string) error { return nil }

func appDeBusqueda(motor *motorRegistrador) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductoHandler: apphttp.NewProductoHandler(usecase.NewProductoUseCase(repository.NewProductoRepoMemoria())),
		SearchHandler:   apphttp.NewSearchHandler(usecase.NewSearchUseCase(motor)),
		UploadHandler:   apphttp.NewUploadHandler(&almacenFalso{}),
		JWTSecret:       testJWTSecret,
	})
	return app
}

func buscarHTTP(t *testing.T, app *fiber.App, ruta, tenantToken, headerTenant string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, ruta, nil)
	req.Header.Set("Authorization", "Bearer "+tenantToken)
	if headerTenant != "" {
		req.Header.Set("X-Tenant-Id", headerTenant)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var sobre map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sobre))
	return resp.StatusCode, sobre
}

func TestSearch_UsaElIndiceDelTenantDelToken(t *testing.T) {
	motor := &motorRegistrador{docs: []map[string]any{
		{"codigo": "abc-123", "nombre": "Teclado"},
	}}
	app := appDeBusqueda(motor)
	token := tokenDeTenant(t, "tenant-a")

	status, sobre := buscarHTTP(t, app, "/productos/search?q=teclado", token, "")

	assert.Equal(t, http.StatusOK, status)
	require.Equal(t, []string{"products-tenant-a"}, motor.indices)

	datos := datosDe(t, sobre)
	assert.Equal(t, float64(1), datos["count"])
}

// El header X-Tenant-Id no puede pisar el tenant de la identidad.
func TestSearch_HeaderNoPisaLaIdentidad(t *testing.T) {
	motor := &motorRegistrador{}
	app := appDeBusqueda(motor)
	token := tokenDeTenant(t, "tenant-a")

	status, _ := buscarHTTP(t, app, "/productos/search?q=teclado", token, "tenant-b")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"products-tenant-a"}, motor.indices)
}

// Respaldo del frontend: si el token no trae tenant, se usa el header.
func TestSearch_FallbackAlHeader(t *testing.T) {
	motor := &motorRegistrador{}
	app := appDeBusqueda(motor)
	token := tokenDeTenant(t, "")

	status, _ := buscarHTTP(t, app, "/productos/search?q=teclado", token, "tenant-c")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"products-tenant-c"}, motor.indices)
}

func TestSearch_SinTenant_Retorna400(t *testing.T) {
	motor := &motorRegistrador{}
	app := appDeBusqueda(motor)
	token := tokenDeTenant(t, "")

	status, sobre := buscarHTTP(t, app, "/productos/search?q=teclado", token, "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "tenant no resuelto", sobre["error"])
	assert.Empty(t, motor.indices, "sin tenant no se consulta el motor")
}

func TestAutocomplete_QueryCorta_SinLlamadaAlMotor(t *testing.T) {
	motor := &motorRegistrador{}
	app := appDeBusqueda(motor)
	token := tokenDeTenant(t, "tenant-a")

	status, sobre := buscarHTTP(t, app, "/productos/autocomplete?q=a", token, "")

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, motor.indices)

	datos := datosDe(t, sobre)
	sugerencias, ok := datos["sugerencias"].([]any)
	require.True(t, ok)
	assert.Empty(t, sugerencias)
}

func TestAutocomplete_DevuelveNombres(t *testing.T) {
	motor := &motorRegistrador{docs: []map[string]any{
		{"nombre": "Teclado mecánico"},
		{"nombre": "Teclado inalámbrico"},
	}}
	app := appDeBusqueda(motor)
	token := tokenDeTenant(t, "tenant-a")

	status, sobre := buscarHTTP(t, app, "/productos/autocomplete?q=tec", token, "")

	assert.Equal(t, http.StatusOK, status)
	require.Equal(t, []string{"products-tenant-a"}, motor.indices)

	datos := datosDe(t, sobre)
	sugerencias, _ := datos["sugerencias"].([]any)
	assert.Equal(t, []any{"Teclado mecánico", "Teclado inalámbrico"}, sugerencias)
}
