package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mercalia/catalogo-api/internal/domain"
	"github.com/mercalia/catalogo-api/internal/domain/entity"
)

var _ ProductoRepository = (*ProductoRepoMemoria)(nil)

// ProductoRepoMemoria implementación en memoria del puerto, para tests y
// desarrollo local. Replica la semántica condicional del store real.
type ProductoRepoMemoria struct {
	mu         sync.RWMutex
	productos  map[string]entity.Producto // clave: tenant + "|" + codigo
	Escrituras int                        // escrituras emitidas; los tests verifican que una validación fallida no escribe
}

// NewProductoRepoMemoria crea el repositorio en memoria.
func NewProductoRepoMemoria() *ProductoRepoMemoria {
	return &ProductoRepoMemoria{productos: make(map[string]entity.Producto)}
}

func claveMem(tenantID, codigo string) string { return tenantID + "|" + codigo }

// Crear falla con ErrDuplicado si el (tenant, codigo) ya existe.
func (r *ProductoRepoMemoria) Crear(_ context.Context, p *entity.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := claveMem(p.TenantID, p.Codigo)
	if _, ok := r.productos[k]; ok {
		return domain.ErrDuplicado
	}
	r.productos[k] = *p
	r.Escrituras++
	return nil
}

// Obtener devuelve una copia o nil si no existe.
func (r *ProductoRepoMemoria) Obtener(_ context.Context, tenantID, codigo string) (*entity.Producto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.productos[claveMem(tenantID, codigo)]
	if !ok {
		return nil, nil
	}
	copia := p
	return &copia, nil
}

// Actualizar replica la escritura condicional: existe y activo.
func (r *ProductoRepoMemoria) Actualizar(_ context.Context, tenantID, codigo string, cambios map[string]any, actor string) (*entity.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := claveMem(tenantID, codigo)
	p, ok := r.productos[k]
	if !ok {
		return nil, domain.ErrNoEncontrado
	}
	if !p.Activo {
		return nil, domain.ErrInactivo
	}
	for nombre, valor := range cambios {
		switch nombre {
		case "nombre":
			p.Nombre = valor.(string)
		case "descripcion":
			p.Descripcion = valor.(string)
		case "precio":
			p.Precio = valor.(float64)
		case "categoria":
			p.Categoria = valor.(string)
		case "stock":
			p.Stock = valor.(int)
		case "tags":
			p.Tags = valor.([]string)
		case "imagen_url":
			p.ImagenURL = valor.(string)
		}
	}
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = actor
	r.productos[k] = p
	r.Escrituras++
	copia := p
	return &copia, nil
}

// Eliminar replica el borrado lógico condicional.
func (r *ProductoRepoMemoria) Eliminar(_ context.Context, tenantID, codigo, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := claveMem(tenantID, codigo)
	p, ok := r.productos[k]
	if !ok {
		return domain.ErrNoEncontrado
	}
	if !p.Activo {
		return domain.ErrYaInactivo
	}
	ahora := time.Now().UTC()
	p.Activo = false
	p.DeletedAt = &ahora
	p.DeletedBy = actor
	p.UpdatedAt = ahora
	p.UpdatedBy = actor
	r.productos[k] = p
	r.Escrituras++
	return nil
}

// Listar pagina los activos del tenant en orden estable por codigo. El cursor
// es el codigo del último producto devuelto.
func (r *ProductoRepoMemoria) Listar(_ context.Context, tenantID string, filtro FiltroListado) (*Pagina, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var todos []entity.Producto
	for _, p := range r.productos {
		if p.TenantID != tenantID || !p.Activo {
			continue
		}
		if filtro.Categoria != "" && p.Categoria != filtro.Categoria {
			continue
		}
		if filtro.Texto != "" &&
			!strings.Contains(p.Nombre, filtro.Texto) &&
			!strings.Contains(p.Descripcion, filtro.Texto) {
			continue
		}
		todos = append(todos, p)
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].Codigo < todos[j].Codigo })

	inicio := 0
	if filtro.Cursor != "" {
		for i, p := range todos {
			if p.Codigo == filtro.Cursor {
				inicio = i + 1
				break
			}
		}
	}

	pagina := &Pagina{}
	for i := inicio; i < len(todos) && len(pagina.Productos) < filtro.Limite; i++ {
		copia := todos[i]
		pagina.Productos = append(pagina.Productos, &copia)
	}
	if n := len(pagina.Productos); n > 0 && inicio+n < len(todos) {
		pagina.Cursor = pagina.Productos[n-1].Codigo
	}
	return pagina, nil
}
