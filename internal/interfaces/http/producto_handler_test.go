package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercalia/catalogo-api/internal/application/usecase"
	"github.com/mercalia/catalogo-api/internal/domain/repository"
	apphttp "github.com/mercalia/catalogo-api/internal/interfaces/http"
	pkgjwt "github.com/mercalia/catalogo-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes y fixture de la app completa
// ──────────────────────────────────────────────────────────────────────────────

type motorNulo struct{}

func (motorNulo) Buscar(context.Context, string, map[string]any) ([]map[string]any, error) {
	return nil, nil
}
func (motorNulo) Indexar(context.Context, string, string, map[string]any) error { return nil }

func (motorNulo) EliminarDoc(context.Context, string, string) error { return nil }

// almacenFalso registra la subida y devuelve una URL determinista.
type almacenFalso struct {
	tenantID string
	nombre   string
	tamano   int
}

func (a *almacenFalso) Subir(_ context.Context, tenantID, nombreArchivo, _ string, datos []byte) (string, error) {
	a.tenantID = tenantID
	a.nombre = nombreArchivo
	a.tamano = len(datos)
	return "https://cdn.ejemplo.com/" + tenantID + "/" + nombreArchivo, nil
}

// nuevaApp arma la app Fiber completa sobre el repositorio en memoria,
// igual que el main pero sin infra real.
func nuevaApp() (*fiber.App, *repository.ProductoRepoMemoria, *almacenFalso) {
	repo := repository.NewProductoRepoMemoria()
	almacen := &almacenFalso{}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductoHandler: apphttp.NewProductoHandler(usecase.NewProductoUseCase(repo)),
		SearchHandler:   apphttp.NewSearchHandler(usecase.NewSearchUseCase(motorNulo{})),
		UploadHandler:   apphttp.NewUploadHandler(almacen),
		JWTSecret:       testJWTSecret,
	})
	return app, repo, almacen
}

func tokenDeTenant(t *testing.T, tenantID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identidad{
		UserID:   testUserID,
		Email:    testEmail,
		TenantID: tenantID,
	}, testIssuer, 60)
	require.NoError(t, err)
	return tok
}

// hacerJSON envía una petición JSON autenticada y decodifica el sobre.
func hacerJSON(t *testing.T, app *fiber.App, metodo, ruta, token string, cuerpo any) (int, map[string]any) {
	t.Helper()
	var lector *bytes.Reader
	if cuerpo != nil {
		raw, err := json.Marshal(cuerpo)
		require.NoError(t, err)
		lector = bytes.NewReader(raw)
	} else {
		lector = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(metodo, ruta, lector)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var sobre map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sobre))
	return resp.StatusCode, sobre
}

func datosDe(t *testing.T, sobre map[string]any) map[string]any {
	t.Helper()
	datos, ok := sobre["data"].(map[string]any)
	require.True(t, ok, "data debe ser un objeto: %v", sobre)
	return datos
}

func cuerpoCrear() map[string]any {
	return map[string]any{
		"nombre":      "Teclado mecánico",
		"descripcion": "Switches rojos, layout español",
		"precio":      59.90,
		"categoria":   "periféricos",
		"stock":       25,
		"tags":        []string{"teclado", "gamer"},
	}
}

// crearProducto crea un producto vía HTTP y devuelve su codigo.
func crearProducto(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/crear", token, cuerpoCrear())
	require.Equal(t, http.StatusCreated, status)
	codigo, _ := datosDe(t, sobre)["codigo"].(string)
	require.NotEmpty(t, codigo)
	return codigo
}

// ──────────────────────────────────────────────────────────────────────────────
// Crear
// ──────────────────────────────────────────────────────────────────────────────

func TestCrear_Retorna201ConSobre(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/crear", token, cuerpoCrear())

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, sobre["success"])

	datos := datosDe(t, sobre)
	assert.NotEmpty(t, datos["codigo"], "el servidor debe generar el codigo")
	assert.Equal(t, true, datos["activo"])
	assert.Equal(t, "Teclado mecánico", datos["nombre"])
	assert.Equal(t, testUserID, datos["created_by"])
}

func TestCrear_PrecioCero_Retorna400(t *testing.T) {
	app, repo, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	cuerpo := cuerpoCrear()
	cuerpo["precio"] = 0

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/crear", token, cuerpo)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, sobre["success"])
	assert.Equal(t, "precio debe ser mayor a 0", sobre["error"])
	assert.Zero(t, repo.Escrituras, "una validación fallida no debe escribir en el store")
}

func TestCrear_JSONMalformado_Retorna400(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	req := httptest.NewRequest(http.MethodPost, "/productos/crear", bytes.NewReader([]byte("{no es json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCrear_SinToken_Retorna401(t *testing.T) {
	app, _, _ := nuevaApp()

	req := httptest.NewRequest(http.MethodPost, "/productos/crear", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Obtener / buscar por cuerpo
// ──────────────────────────────────────────────────────────────────────────────

func TestObtener_PorRuta(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	codigo := crearProducto(t, app, token)

	status, sobre := hacerJSON(t, app, http.MethodGet, "/productos/"+codigo, token, nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, codigo, datosDe(t, sobre)["codigo"])
}

func TestObtener_NoExiste_Retorna404(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	status, sobre := hacerJSON(t, app, http.MethodGet, "/productos/no-existe", token, nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "producto no encontrado", sobre["error"])
}

func TestBuscarPorCuerpo(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	codigo := crearProducto(t, app, token)

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/buscar", token,
		map[string]any{"codigo": codigo})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, codigo, datosDe(t, sobre)["codigo"])
}

// Las rutas estáticas van antes que /:codigo; search no debe resolverse
// como un producto con codigo "search".
func TestRutasEstaticas_NoCapturadasPorParametro(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	req := httptest.NewRequest(http.MethodGet, "/productos/search?q=teclado", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualizar
// ──────────────────────────────────────────────────────────────────────────────

func TestActualizar_PrecioNegativo_Retorna400(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	codigo := crearProducto(t, app, token)

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/actualizar", token,
		map[string]any{"codigo": codigo, "precio": -1})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "precio debe ser mayor a 0", sobre["error"])
}

func TestActualizar_CambiaPrecio(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	codigo := crearProducto(t, app, token)

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/actualizar", token,
		map[string]any{"codigo": codigo, "precio": 79.90})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 79.90, datosDe(t, sobre)["precio"])
}

func TestActualizar_SinCampos_Retorna400(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	codigo := crearProducto(t, app, token)

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/actualizar", token,
		map[string]any{"codigo": codigo})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "no hay campos para actualizar", sobre["error"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Eliminar
// ──────────────────────────────────────────────────────────────────────────────

func TestEliminar_DosVeces(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	codigo := crearProducto(t, app, token)

	status, sobre := hacerJSON(t, app, http.MethodDelete, "/productos/"+codigo, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, datosDe(t, sobre)["activo"])

	// la segunda eliminación es un error explícito, no un no-op
	status, sobre = hacerJSON(t, app, http.MethodDelete, "/productos/"+codigo, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "el producto ya está inactivo", sobre["error"])
}

// El borrado es lógico: el producto sigue siendo legible, marcado inactivo,
// pero desaparece del listado.
func TestEliminar_ProductoSigueLegible(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	codigo := crearProducto(t, app, token)

	status, _ := hacerJSON(t, app, http.MethodDelete, "/productos/"+codigo, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, sobre := hacerJSON(t, app, http.MethodGet, "/productos/"+codigo, token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, datosDe(t, sobre)["activo"])

	status, sobre = hacerJSON(t, app, http.MethodPost, "/productos/listar", token, map[string]any{})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), datosDe(t, sobre)["count"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Listar
// ──────────────────────────────────────────────────────────────────────────────

func TestListar_LimitFueraDeRango_Retorna400(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/listar", token,
		map[string]any{"limit": 101})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "el limit máximo es 100", sobre["error"])
}

func TestListar_Paginado(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)
	for i := 0; i < 3; i++ {
		crearProducto(t, app, token)
	}

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/listar", token,
		map[string]any{"limit": 2})
	require.Equal(t, http.StatusOK, status)

	datos := datosDe(t, sobre)
	assert.Equal(t, float64(2), datos["count"])
	cursor, _ := datos["next_cursor"].(string)
	require.NotEmpty(t, cursor, "debe haber cursor de continuación")

	status, sobre = hacerJSON(t, app, http.MethodPost, "/productos/listar", token,
		map[string]any{"limit": 2, "cursor": cursor})
	require.Equal(t, http.StatusOK, status)
	datos = datosDe(t, sobre)
	assert.Equal(t, float64(1), datos["count"])
	assert.Empty(t, datos["next_cursor"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento entre tenants
// ──────────────────────────────────────────────────────────────────────────────

func TestAislamientoDeTenants_HTTP(t *testing.T) {
	app, _, _ := nuevaApp()
	tokenA := tokenDeTenant(t, "tenant-a")
	tokenB := tokenDeTenant(t, "tenant-b")

	codigo := crearProducto(t, app, tokenA)

	// el tenant B no ve ni puede mutar el producto de A
	status, _ := hacerJSON(t, app, http.MethodGet, "/productos/"+codigo, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = hacerJSON(t, app, http.MethodDelete, "/productos/"+codigo, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, sobre := hacerJSON(t, app, http.MethodPost, "/productos/listar", tokenB, map[string]any{})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), datosDe(t, sobre)["count"])

	// y A lo sigue viendo intacto
	status, _ = hacerJSON(t, app, http.MethodGet, "/productos/"+codigo, tokenA, nil)
	assert.Equal(t, http.StatusOK, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Upload
// ──────────────────────────────────────────────────────────────────────────────

func peticionMultipart(t *testing.T, campo, nombre string, datos []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	parte, err := w.CreateFormFile(campo, nombre)
	require.NoError(t, err)
	_, err = parte.Write(datos)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/productos/upload-image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload_Retorna201ConURL(t *testing.T) {
	app, _, almacen := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	// bytes arbitrarios con un \x00 para verificar que el binario llega intacto
	datos := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02}
	req := peticionMultipart(t, "image", "foto.png", datos)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var sobre map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sobre))
	url, _ := datosDe(t, sobre)["url"].(string)
	assert.Contains(t, url, testTenantID)

	assert.Equal(t, testTenantID, almacen.tenantID, "el tenant sale de la identidad")
	assert.Equal(t, "foto.png", almacen.nombre)
	assert.Equal(t, len(datos), almacen.tamano)
}

func TestUpload_SinArchivo_Retorna400(t *testing.T) {
	app, _, _ := nuevaApp()
	token := tokenDeTenant(t, testTenantID)

	req := peticionMultipart(t, "otro_campo", "foto.png", []byte("x"))
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var sobre map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sobre))
	assert.Equal(t, fmt.Sprintf("se requiere el archivo '%s'", "image"), sobre["error"])
}
