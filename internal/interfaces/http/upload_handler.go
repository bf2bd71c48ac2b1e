package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/mercalia/catalogo-api/internal/application/dto"
	"github.com/mercalia/catalogo-api/internal/application/ports"
)

// límite de tamaño de imagen aceptado (5 MiB).
const maxTamanoImagen = 5 << 20

// UploadHandler subida de imágenes de producto a blob storage (protegido).
// El multipart lo parsea Fiber (mime/multipart estándar, binario-seguro).
type UploadHandler struct {
	almacen ports.Almacen
}

// NewUploadHandler construye el handler.
func NewUploadHandler(almacen ports.Almacen) *UploadHandler {
	return &UploadHandler{almacen: almacen}
}

// Subir POST /productos/upload-image — multipart/form-data con el campo "image".
func (h *UploadHandler) Subir(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("se requiere el archivo 'image'"))
	}
	if fh.Size > maxTamanoImagen {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("la imagen supera el tamaño máximo de 5MB"))
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("no se pudo leer el archivo"))
	}
	defer f.Close()
	datos, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("no se pudo leer el archivo"))
	}

	ident := ObtenerIdentidad(c)
	url, err := h.almacen.Subir(c.UserContext(), ident.TenantID, fh.Filename, fh.Header.Get("Content-Type"), datos)
	if err != nil {
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.UploadResponse{URL: url}))
}
