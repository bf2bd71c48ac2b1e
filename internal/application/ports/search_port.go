package ports

import "context"

// IndiceTenant devuelve el nombre del índice de productos de un tenant.
func IndiceTenant(tenantID string) string {
	return "products-" + tenantID
}

// Motor define el puerto de salida hacia el motor de búsqueda. La capa de
// aplicación solo conoce este contrato; el adaptador concreto habla HTTP con
// Elasticsearch y para tests se puede inyectar un falso.
type Motor interface {
	// Buscar ejecuta una consulta contra el índice y devuelve los documentos
	// (_source de cada hit) tal cual los entrega el motor.
	Buscar(ctx context.Context, indice string, cuerpo map[string]any) ([]map[string]any, error)

	// Indexar crea o reemplaza el documento con el id dado (upsert).
	Indexar(ctx context.Context, indice, id string, doc map[string]any) error

	// EliminarDoc borra el documento por id. Un 404 del motor no es error:
	// el borrado es idempotente.
	EliminarDoc(ctx context.Context, indice, id string) error
}
