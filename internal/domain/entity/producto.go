package entity

import "time"

// Producto representa un producto del catálogo de un tenant.
// Se direcciona de forma única por (TenantID, Codigo); el borrado es lógico:
// Activo pasa a false y se estampan DeletedAt/DeletedBy, nunca se elimina la fila.
type Producto struct {
	TenantID    string
	Codigo      string // único por tenant (UUID generado al crear)
	Nombre      string
	Descripcion string
	Categoria   string
	Precio      float64 // > 0
	Stock       int     // >= 0
	ImagenURL   string
	Tags        []string
	Activo      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
	UpdatedBy   string
	DeletedAt   *time.Time
	DeletedBy   string
}

// Identidad es el usuario autenticado que origina la petición.
// La recibe el gate de autenticación desde los claims del token; el tenant
// de toda lectura y escritura se resuelve desde aquí, nunca del cuerpo.
type Identidad struct {
	UserID   string
	Email    string
	TenantID string
}
