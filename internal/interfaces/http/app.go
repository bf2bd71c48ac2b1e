package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mercalia/catalogo-api/internal/application/dto"
)

// NewApp construye la app Fiber completa: middleware global, endpoint de
// salud y rutas de la API.
func NewApp(nombre string, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      nombre,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		// Cualquier error no capturado por un handler se reporta como 500
		// con el mensaje del error, dentro del sobre uniforme.
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(dto.Fail(err.Error()))
		},
	})

	app.Use(recover.New())
	// El contrato con el frontend es un preflight 200 con cuerpo vacío; el
	// middleware de CORS responde 204, así que se reescribe el estado.
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() == fiber.MethodOptions && c.Response().StatusCode() == fiber.StatusNoContent {
			c.Response().ResetBody()
			c.Status(fiber.StatusOK)
		}
		return err
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Tenant-Id",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": nombre})
	})

	Router(app, deps)
	return app
}
