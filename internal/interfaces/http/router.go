package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductoHandler *ProductoHandler
	SearchHandler   *SearchHandler
	UploadHandler   *UploadHandler
	JWTSecret       string
}

// Router registra las rutas de la API. Todos los endpoints de productos
// requieren Bearer Token; las rutas estáticas se registran antes que las
// parametrizadas para que /productos/search no capture :codigo.
func Router(app *fiber.App, deps RouterDeps) {
	productos := app.Group("/productos", AuthMiddleware(deps.JWTSecret))

	productos.Post("/crear", deps.ProductoHandler.Crear)
	productos.Post("/buscar", deps.ProductoHandler.BuscarPorCuerpo)
	productos.Post("/listar", deps.ProductoHandler.Listar)
	productos.Post("/actualizar", deps.ProductoHandler.Actualizar)
	productos.Post("/upload-image", deps.UploadHandler.Subir)

	productos.Get("/search", deps.SearchHandler.Search)
	productos.Get("/autocomplete", deps.SearchHandler.Autocomplete)

	productos.Get("/:codigo", deps.ProductoHandler.Obtener)
	productos.Delete("/:codigo", deps.ProductoHandler.Eliminar)
}
