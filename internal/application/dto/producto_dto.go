package dto

import (
	"time"

	"github.com/mercalia/catalogo-api/internal/domain/entity"
)

// CrearProductoRequest entrada para crear un producto. El codigo lo genera el
// servidor; tenant y autor salen de la identidad autenticada, nunca del cuerpo.
type CrearProductoRequest struct {
	Nombre      string   `json:"nombre" validate:"required"`
	Descripcion string   `json:"descripcion" validate:"required"`
	Precio      float64  `json:"precio" validate:"required,gt=0"`
	Categoria   string   `json:"categoria" validate:"required"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	Tags        []string `json:"tags"`
	ImagenURL   string   `json:"imagen_url"`
}

// ActualizarProductoRequest entrada para actualizar: codigo más un subconjunto
// no vacío de los campos mutables.
type ActualizarProductoRequest struct {
	Codigo      string    `json:"codigo" validate:"required"`
	Nombre      *string   `json:"nombre"`
	Descripcion *string   `json:"descripcion"`
	Precio      *float64  `json:"precio" validate:"omitempty,gt=0"`
	Categoria   *string   `json:"categoria"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	Tags        *[]string `json:"tags"`
	ImagenURL   *string   `json:"imagen_url"`
}

// BuscarProductoRequest entrada del endpoint de lectura por cuerpo
// (POST /productos/buscar, mantenido por compatibilidad con el frontend).
type BuscarProductoRequest struct {
	Codigo string `json:"codigo" validate:"required"`
}

// ListarProductosRequest entrada del listado paginado.
type ListarProductosRequest struct {
	Limit     int    `json:"limit"`
	Cursor    string `json:"cursor"`
	Categoria string `json:"categoria"`
	Buscar    string `json:"buscar"` // filtro de subcadena server-side, no full-text
}

// ProductoResponse salida pública de un producto. Nunca expone la
// representación interna de claves del store.
type ProductoResponse struct {
	Codigo      string     `json:"codigo"`
	Nombre      string     `json:"nombre"`
	Descripcion string     `json:"descripcion"`
	Categoria   string     `json:"categoria"`
	Precio      float64    `json:"precio"`
	Stock       int        `json:"stock"`
	ImagenURL   string     `json:"imagen_url,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Activo      bool       `json:"activo"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CreatedBy   string     `json:"created_by"`
	UpdatedBy   string     `json:"updated_by"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty"`
}

// ListaProductosResponse página de productos con el cursor de continuación.
type ListaProductosResponse struct {
	Productos  []ProductoResponse `json:"productos"`
	NextCursor string             `json:"next_cursor,omitempty"`
	Count      int                `json:"count"`
}

// AProductoResponse proyecta la entidad a su shape público.
func AProductoResponse(p *entity.Producto) *ProductoResponse {
	if p == nil {
		return nil
	}
	return &ProductoResponse{
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Precio:      p.Precio,
		Stock:       p.Stock,
		ImagenURL:   p.ImagenURL,
		Tags:        p.Tags,
		Activo:      p.Activo,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CreatedBy:   p.CreatedBy,
		UpdatedBy:   p.UpdatedBy,
		DeletedAt:   p.DeletedAt,
		DeletedBy:   p.DeletedBy,
	}
}
