package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mercalia/catalogo-api/internal/application/dto"
	"github.com/mercalia/catalogo-api/internal/domain"
	"github.com/mercalia/catalogo-api/internal/domain/entity"
	"github.com/mercalia/catalogo-api/internal/domain/repository"
)

// ProductoUseCase casos de uso CRUD para productos. El tenant de toda
// operación sale de la identidad autenticada.
type ProductoUseCase struct {
	repo     repository.ProductoRepository
	validate *validator.Validate
}

// NewProductoUseCase construye el caso de uso.
func NewProductoUseCase(repo repository.ProductoRepository) *ProductoUseCase {
	return &ProductoUseCase{
		repo:     repo,
		validate: validator.New(),
	}
}

// mensajeCampo traduce un error de campo del validador al mensaje 400 esperado.
func mensajeCampo(fe validator.FieldError) string {
	switch fe.Field() {
	case "Nombre":
		return "nombre es requerido"
	case "Descripcion":
		return "descripcion es requerida"
	case "Precio":
		return "precio debe ser mayor a 0"
	case "Categoria":
		return "categoria es requerida"
	case "Stock":
		if fe.Tag() == "required" {
			return "stock es requerido"
		}
		return "stock no puede ser negativo"
	case "Codigo":
		return "codigo es requerido"
	}
	return "entrada inválida"
}

func validarStruct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var fes validator.ValidationErrors
		if errors.As(err, &fes) && len(fes) > 0 {
			return domain.NuevaValidacion(mensajeCampo(fes[0]))
		}
		return domain.NuevaValidacion("entrada inválida")
	}
	return nil
}

// Crear crea un producto nuevo: genera el codigo, estampa activo=true y
// created_at == updated_at con el autor de la identidad.
func (uc *ProductoUseCase) Crear(ctx context.Context, ident entity.Identidad, in dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if err := validarStruct(uc.validate, in); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	p := &entity.Producto{
		TenantID:    ident.TenantID,
		Codigo:      uuid.New().String(),
		Nombre:      in.Nombre,
		Descripcion: in.Descripcion,
		Categoria:   in.Categoria,
		Precio:      in.Precio,
		Stock:       *in.Stock,
		Tags:        in.Tags,
		ImagenURL:   in.ImagenURL,
		Activo:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   ident.UserID,
		UpdatedBy:   ident.UserID,
	}
	if err := uc.repo.Crear(ctx, p); err != nil {
		return nil, err
	}
	return dto.AProductoResponse(p), nil
}

// Obtener devuelve un producto por codigo dentro del tenant de la identidad.
func (uc *ProductoUseCase) Obtener(ctx context.Context, ident entity.Identidad, codigo string) (*dto.ProductoResponse, error) {
	if codigo == "" {
		return nil, domain.NuevaValidacion("codigo es requerido")
	}
	p, err := uc.repo.Obtener(ctx, ident.TenantID, codigo)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNoEncontrado
	}
	return dto.AProductoResponse(p), nil
}

// Actualizar aplica un subconjunto no vacío de campos mutables. Rechaza
// productos inactivos y valores inválidos sin emitir ninguna escritura.
func (uc *ProductoUseCase) Actualizar(ctx context.Context, ident entity.Identidad, in dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if err := validarStruct(uc.validate, in); err != nil {
		return nil, err
	}

	cambios := map[string]any{}
	if in.Nombre != nil {
		if *in.Nombre == "" {
			return nil, domain.NuevaValidacion("nombre no puede estar vacío")
		}
		cambios["nombre"] = *in.Nombre
	}
	if in.Descripcion != nil {
		cambios["descripcion"] = *in.Descripcion
	}
	if in.Precio != nil {
		cambios["precio"] = *in.Precio
	}
	if in.Categoria != nil {
		cambios["categoria"] = *in.Categoria
	}
	if in.Stock != nil {
		cambios["stock"] = *in.Stock
	}
	if in.Tags != nil {
		cambios["tags"] = *in.Tags
	}
	if in.ImagenURL != nil {
		cambios["imagen_url"] = *in.ImagenURL
	}
	if len(cambios) == 0 {
		return nil, domain.NuevaValidacion("no hay campos para actualizar")
	}

	actual, err := uc.repo.Obtener(ctx, ident.TenantID, in.Codigo)
	if err != nil {
		return nil, err
	}
	if actual == nil {
		return nil, domain.ErrNoEncontrado
	}
	if !actual.Activo {
		return nil, domain.ErrInactivo
	}

	return aplicarActualizacion(ctx, uc.repo, ident, in.Codigo, cambios)
}

func aplicarActualizacion(ctx context.Context, repo repository.ProductoRepository, ident entity.Identidad, codigo string, cambios map[string]any) (*dto.ProductoResponse, error) {
	p, err := repo.Actualizar(ctx, ident.TenantID, codigo, cambios, ident.UserID)
	if err != nil {
		return nil, err
	}
	return dto.AProductoResponse(p), nil
}

// Eliminar marca el producto como inactivo. No es reversible por la API y un
// segundo borrado falla con 400.
func (uc *ProductoUseCase) Eliminar(ctx context.Context, ident entity.Identidad, codigo string) error {
	if codigo == "" {
		return domain.NuevaValidacion("codigo es requerido")
	}
	actual, err := uc.repo.Obtener(ctx, ident.TenantID, codigo)
	if err != nil {
		return err
	}
	if actual == nil {
		return domain.ErrNoEncontrado
	}
	if !actual.Activo {
		return domain.ErrYaInactivo
	}
	return uc.repo.Eliminar(ctx, ident.TenantID, codigo, ident.UserID)
}

// Listar pagina los productos activos del tenant. limit por defecto 10; por
// encima de 100 se rechaza con 400, no se recorta.
func (uc *ProductoUseCase) Listar(ctx context.Context, ident entity.Identidad, in dto.ListarProductosRequest) (*dto.ListaProductosResponse, error) {
	limite := in.Limit
	if limite == 0 {
		limite = 10
	}
	if limite < 1 {
		return nil, domain.NuevaValidacion("limit debe ser mayor a 0")
	}
	if limite > 100 {
		return nil, domain.NuevaValidacion("el limit máximo es 100")
	}

	pagina, err := uc.repo.Listar(ctx, ident.TenantID, repository.FiltroListado{
		Limite:    limite,
		Cursor:    in.Cursor,
		Categoria: in.Categoria,
		Texto:     in.Buscar,
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductoResponse, 0, len(pagina.Productos))
	for _, p := range pagina.Productos {
		items = append(items, *dto.AProductoResponse(p))
	}
	return &dto.ListaProductosResponse{
		Productos:  items,
		NextCursor: pagina.Cursor,
		Count:      len(items),
	}, nil
}
