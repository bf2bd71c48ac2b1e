package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mercalia/catalogo-api/internal/application/dto"
	"github.com/mercalia/catalogo-api/internal/application/usecase"
	"github.com/mercalia/catalogo-api/internal/domain"
)

// responderError mapea errores de dominio al estado HTTP y al sobre uniforme.
// Los fallos de upstream se reportan 500 con el mensaje del error; no hay
// reintentos en ningún punto.
func responderError(c *fiber.Ctx, err error) error {
	var ve *domain.ErrorValidacion
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(ve.Mensaje))
	case errors.Is(err, domain.ErrNoEncontrado):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
	case errors.Is(err, domain.ErrInactivo), errors.Is(err, domain.ErrYaInactivo):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	case errors.Is(err, domain.ErrDuplicado):
		return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
	case errors.Is(err, domain.ErrNoAutorizado):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail(err.Error()))
	}
}

// ProductoHandler maneja las peticiones HTTP de productos (protegido).
type ProductoHandler struct {
	uc *usecase.ProductoUseCase
}

// NewProductoHandler construye el handler.
func NewProductoHandler(uc *usecase.ProductoUseCase) *ProductoHandler {
	return &ProductoHandler{uc: uc}
}

// Crear POST /productos/crear
func (h *ProductoHandler) Crear(c *fiber.Ctx) error {
	var in dto.CrearProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("JSON inválido"))
	}
	out, err := h.uc.Crear(c.UserContext(), ObtenerIdentidad(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Obtener GET /productos/:codigo
func (h *ProductoHandler) Obtener(c *fiber.Ctx) error {
	out, err := h.uc.Obtener(c.UserContext(), ObtenerIdentidad(c), c.Params("codigo"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// BuscarPorCuerpo POST /productos/buscar — lectura por codigo en el cuerpo,
// mantenida por compatibilidad con el frontend. El tenant sale de la
// identidad, nunca del cuerpo.
func (h *ProductoHandler) BuscarPorCuerpo(c *fiber.Ctx) error {
	var in dto.BuscarProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("JSON inválido"))
	}
	out, err := h.uc.Obtener(c.UserContext(), ObtenerIdentidad(c), in.Codigo)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Actualizar POST /productos/actualizar
func (h *ProductoHandler) Actualizar(c *fiber.Ctx) error {
	var in dto.ActualizarProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("JSON inválido"))
	}
	out, err := h.uc.Actualizar(c.UserContext(), ObtenerIdentidad(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Eliminar DELETE /productos/:codigo — borrado lógico.
func (h *ProductoHandler) Eliminar(c *fiber.Ctx) error {
	if err := h.uc.Eliminar(c.UserContext(), ObtenerIdentidad(c), c.Params("codigo")); err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.OK(fiber.Map{"codigo": c.Params("codigo"), "activo": false}))
}

// Listar POST /productos/listar — paginado con cursor opaco y filtros.
func (h *ProductoHandler) Listar(c *fiber.Ctx) error {
	var in dto.ListarProductosRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("JSON inválido"))
	}
	out, err := h.uc.Listar(c.UserContext(), ObtenerIdentidad(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.OK(out))
}
