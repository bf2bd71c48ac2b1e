package dto

// Envelope es el sobre uniforme de todas las respuestas de la API:
// {success, data?, error?}. Los shapes ad hoc heredados ({producto}, {status})
// no se reproducen.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK construye un sobre de éxito con los datos dados.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail construye un sobre de error con el mensaje dado.
func Fail(mensaje string) Envelope {
	return Envelope{Success: false, Error: mensaje}
}
