package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más la identidad que el validador
// externo de autenticación embebe en cada token: usuario, email y tenant.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
}

// Identidad es el contexto de usuario autenticado que viaja con cada petición.
type Identidad struct {
	UserID   string
	Email    string
	TenantID string
}

// Errores de validación de token. Expirado e inválido se distinguen para que
// el middleware pueda reportar mensajes 401 diferentes.
var (
	ErrTokenExpirado = errors.New("token expirado")
	ErrTokenInvalido = errors.New("token inválido")
)

// Generate genera un token JWT firmado con la identidad dada.
// La emisión de tokens pertenece al servicio de autenticación externo;
// esta función existe para herramientas locales y tests.
func Generate(secret string, ident Identidad, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   ident.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   ident.UserID,
		Email:    ident.Email,
		TenantID: ident.TenantID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad embebida.
// Retorna ErrTokenExpirado si el token venció y ErrTokenInvalido para
// cualquier otro problema (firma incorrecta, formato, método de firma).
func Parse(secret, tokenString string) (*Identidad, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpirado
		}
		return nil, ErrTokenInvalido
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalido
	}
	return &Identidad{
		UserID:   claims.UserID,
		Email:    claims.Email,
		TenantID: claims.TenantID,
	}, nil
}
