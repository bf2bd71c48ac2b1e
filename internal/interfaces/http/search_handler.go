package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mercalia/catalogo-api/internal/application/dto"
	"github.com/mercalia/catalogo-api/internal/application/usecase"
)

// SearchHandler búsqueda full-text y autocomplete (protegido).
type SearchHandler struct {
	uc *usecase.SearchUseCase
}

// NewSearchHandler construye el handler.
func NewSearchHandler(uc *usecase.SearchUseCase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

// tenantBusqueda resuelve el tenant para los endpoints de búsqueda: el de la
// identidad; X-Tenant-Id solo como respaldo del frontend cuando el token no
// trae tenant.
func tenantBusqueda(c *fiber.Ctx) string {
	if t := ObtenerIdentidad(c).TenantID; t != "" {
		return t
	}
	return c.Get("X-Tenant-Id")
}

// Search GET /productos/search?q=...&categoria=...&fuzzy=...&precio_min=...&precio_max=...
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var in dto.SearchRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("parámetros de búsqueda inválidos"))
	}
	tenantID := tenantBusqueda(c)
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("tenant no resuelto"))
	}
	out, err := h.uc.Buscar(c.UserContext(), tenantID, in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Autocomplete GET /productos/autocomplete?q=...
func (h *SearchHandler) Autocomplete(c *fiber.Ctx) error {
	tenantID := tenantBusqueda(c)
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("tenant no resuelto"))
	}
	out, err := h.uc.Autocomplete(c.UserContext(), tenantID, c.Query("q"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.OK(out))
}
