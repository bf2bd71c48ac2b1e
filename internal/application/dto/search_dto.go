package dto

// SearchRequest parámetros de query-string del endpoint de búsqueda full-text.
type SearchRequest struct {
	Q         string   `query:"q"`
	Categoria string   `query:"categoria"`
	Fuzzy     bool     `query:"fuzzy"`
	PrecioMin *float64 `query:"precio_min"`
	PrecioMax *float64 `query:"precio_max"`
	Limit     int      `query:"limit"`
}

// SearchResponse resultados de búsqueda. Los documentos se entregan tal cual
// los devuelve el motor.
type SearchResponse struct {
	Productos []map[string]any `json:"productos"`
	Count     int              `json:"count"`
}

// AutocompleteResponse sugerencias de nombres de producto.
type AutocompleteResponse struct {
	Sugerencias []string `json:"sugerencias"`
}

// UploadResponse resultado de la subida de imagen.
type UploadResponse struct {
	URL string `json:"url"`
}
