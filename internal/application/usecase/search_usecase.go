package usecase

import (
	"context"
	"strings"

	"github.com/mercalia/catalogo-api/internal/application/dto"
	"github.com/mercalia/catalogo-api/internal/application/ports"
)

// Campos ponderados de la búsqueda full-text: nombre pesa más que
// descripcion, descripcion más que tags.
var camposBusqueda = []string{"nombre^3", "descripcion^2", "tags"}

const (
	limiteBusquedaDefecto = 20
	limiteAutocomplete    = 10
	longitudMinimaQuery   = 2
)

// SearchUseCase búsqueda full-text y autocomplete contra el índice del tenant.
// Una llamada saliente por operación; los resultados se entregan tal cual.
type SearchUseCase struct {
	motor ports.Motor
}

// NewSearchUseCase construye el caso de uso.
func NewSearchUseCase(motor ports.Motor) *SearchUseCase {
	return &SearchUseCase{motor: motor}
}

// construirConsulta arma el cuerpo bool query: multi_match ponderado sobre la
// query libre, filtro activo=true y filtros opcionales de categoría y precio.
func construirConsulta(in dto.SearchRequest, size int) map[string]any {
	must := []any{}
	if q := strings.TrimSpace(in.Q); q != "" {
		mm := map[string]any{
			"query":  q,
			"fields": camposBusqueda,
		}
		if in.Fuzzy {
			mm["fuzziness"] = "AUTO"
		}
		must = append(must, map[string]any{"multi_match": mm})
	}

	filter := []any{
		map[string]any{"term": map[string]any{"activo": true}},
	}
	if in.Categoria != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"categoria": in.Categoria}})
	}
	if in.PrecioMin != nil || in.PrecioMax != nil {
		rango := map[string]any{}
		if in.PrecioMin != nil {
			rango["gte"] = *in.PrecioMin
		}
		if in.PrecioMax != nil {
			rango["lte"] = *in.PrecioMax
		}
		filter = append(filter, map[string]any{"range": map[string]any{"precio": rango}})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   must,
				"filter": filter,
			},
		},
		"size": size,
	}
}

// Buscar ejecuta la búsqueda full-text en el índice del tenant.
func (uc *SearchUseCase) Buscar(ctx context.Context, tenantID string, in dto.SearchRequest) (*dto.SearchResponse, error) {
	size := in.Limit
	if size <= 0 || size > 100 {
		size = limiteBusquedaDefecto
	}
	docs, err := uc.motor.Buscar(ctx, ports.IndiceTenant(tenantID), construirConsulta(in, size))
	if err != nil {
		return nil, err
	}
	return &dto.SearchResponse{Productos: docs, Count: len(docs)}, nil
}

// Autocomplete sugiere nombres de producto. Con menos de 2 caracteres de
// query devuelve la lista vacía sin contactar al motor. De-duplica por nombre
// conservando el orden de aparición.
func (uc *SearchUseCase) Autocomplete(ctx context.Context, tenantID, q string) (*dto.AutocompleteResponse, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < longitudMinimaQuery {
		return &dto.AutocompleteResponse{Sugerencias: []string{}}, nil
	}

	docs, err := uc.motor.Buscar(ctx, ports.IndiceTenant(tenantID), construirConsulta(dto.SearchRequest{Q: q}, limiteAutocomplete))
	if err != nil {
		return nil, err
	}

	vistos := map[string]bool{}
	sugerencias := make([]string, 0, len(docs))
	for _, doc := range docs {
		nombre, _ := doc["nombre"].(string)
		if nombre == "" || vistos[nombre] {
			continue
		}
		vistos[nombre] = true
		sugerencias = append(sugerencias, nombre)
	}
	return &dto.AutocompleteResponse{Sugerencias: sugerencias}, nil
}
