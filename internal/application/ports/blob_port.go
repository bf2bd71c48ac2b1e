package ports

import "context"

// Almacen define el puerto de salida para la subida de archivos binarios.
// El adaptador concreto usa S3; para tests se puede inyectar un falso.
type Almacen interface {
	// Subir guarda los bytes bajo una clave aleatoria con prefijo del tenant
	// y devuelve la URL pública resultante.
	Subir(ctx context.Context, tenantID, nombreArchivo, contentType string, datos []byte) (string, error)
}
