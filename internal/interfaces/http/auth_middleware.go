package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mercalia/catalogo-api/internal/application/dto"
	"github.com/mercalia/catalogo-api/internal/domain/entity"
	"github.com/mercalia/catalogo-api/pkg/jwt"
)

// LocalIdentidad clave de c.Locals bajo la que viaja la identidad autenticada.
const LocalIdentidad = "identidad"

// AuthMiddleware valida el Bearer Token y carga la identidad decodificada
// {user_id, email, tenant_id} en c.Locals. Distingue token expirado de token
// inválido en el mensaje del 401. Los preflight OPTIONS pasan de largo (los
// resuelve el middleware de CORS con 200 sin cuerpo).
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		authHeader := c.Get("Authorization") // lookup case-insensitive
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token requerido"))
		}

		// El prefijo "Bearer " es opcional; también se acepta el token a secas.
		tokenString := authHeader
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenString = parts[1]
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token requerido"))
		}

		ident, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpirado) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token expirado"))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
		}

		c.Locals(LocalIdentidad, entity.Identidad{
			UserID:   ident.UserID,
			Email:    ident.Email,
			TenantID: ident.TenantID,
		})
		return c.Next()
	}
}

// ObtenerIdentidad devuelve la identidad del contexto (después del middleware).
func ObtenerIdentidad(c *fiber.Ctx) entity.Identidad {
	v := c.Locals(LocalIdentidad)
	if v == nil {
		return entity.Identidad{}
	}
	ident, _ := v.(entity.Identidad)
	return ident
}
