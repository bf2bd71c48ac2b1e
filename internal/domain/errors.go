package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNoEncontrado = errors.New("producto no encontrado")
	ErrDuplicado    = errors.New("el producto ya existe")
	ErrInactivo     = errors.New("no se puede actualizar un producto inactivo")
	ErrYaInactivo   = errors.New("el producto ya está inactivo")
	ErrNoAutorizado = errors.New("no autorizado")
)

// ErrorValidacion representa un error de entrada del cliente con un mensaje
// específico que el handler devuelve como 400.
type ErrorValidacion struct {
	Mensaje string
}

func (e *ErrorValidacion) Error() string { return e.Mensaje }

// NuevaValidacion construye un error de validación con el mensaje dado.
func NuevaValidacion(mensaje string) error {
	return &ErrorValidacion{Mensaje: mensaje}
}

// EsValidacion indica si err es un error de validación de entrada.
func EsValidacion(err error) bool {
	var ve *ErrorValidacion
	return errors.As(err, &ve)
}
