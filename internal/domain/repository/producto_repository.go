package repository

import (
	"context"

	"github.com/mercalia/catalogo-api/internal/domain/entity"
)

// FiltroListado parámetros de paginación y filtrado para Listar.
type FiltroListado struct {
	Limite    int    // ya validado por el caso de uso: [1,100]
	Cursor    string // cursor opaco devuelto por una página anterior; vacío = primera página
	Categoria string // filtro de igualdad, opcional
	Texto     string // filtro de subcadena sobre nombre/descripcion, opcional
}

// Pagina resultado de una página de listado.
type Pagina struct {
	Productos []*entity.Producto
	Cursor    string // vacío cuando no hay más páginas
}

// ProductoRepository puerto de persistencia de productos.
// Toda operación está acotada por (tenantID, codigo); no existen lecturas
// ni escrituras cross-tenant.
type ProductoRepository interface {
	// Crear persiste un producto nuevo. Retorna domain.ErrDuplicado si ya
	// existe uno con el mismo (tenant, codigo).
	Crear(ctx context.Context, p *entity.Producto) error

	// Obtener devuelve el producto o nil si no existe.
	Obtener(ctx context.Context, tenantID, codigo string) (*entity.Producto, error)

	// Actualizar aplica los cambios dados en una sola escritura condicional
	// (el producto debe existir y estar activo) y devuelve el estado final.
	// Las claves de cambios son los nombres de atributo públicos (nombre,
	// precio, stock, ...). Estampa updated_at/updated_by.
	Actualizar(ctx context.Context, tenantID, codigo string, cambios map[string]any, actor string) (*entity.Producto, error)

	// Eliminar marca el producto como inactivo (borrado lógico) y estampa
	// deleted_at/deleted_by. Condicional: debe existir y estar activo.
	Eliminar(ctx context.Context, tenantID, codigo, actor string) error

	// Listar pagina los productos activos del tenant con filtros opcionales.
	Listar(ctx context.Context, tenantID string, filtro FiltroListado) (*Pagina, error)
}
