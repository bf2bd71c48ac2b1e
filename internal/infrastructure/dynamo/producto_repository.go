package dynamo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mercalia/catalogo-api/internal/domain"
	"github.com/mercalia/catalogo-api/internal/domain/entity"
	"github.com/mercalia/catalogo-api/internal/domain/repository"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

// Prefijos de clave de la tabla única: PK = TENANT#<tenant_id>,
// SK = PRODUCTO#<codigo>. El job de sincronización distingue las entidades
// de producto por el prefijo del sort key.
const (
	PrefijoTenant   = "TENANT#"
	PrefijoProducto = "PRODUCTO#"
)

// ProductoRepo implementación del puerto ProductoRepository sobre DynamoDB.
type ProductoRepo struct {
	client API
	tabla  string
}

// NewProductoRepository construye el adaptador de persistencia para productos.
func NewProductoRepository(client API, tabla string) *ProductoRepo {
	return &ProductoRepo{client: client, tabla: tabla}
}

// productoItem es la representación del producto en la tabla. PK/SK son
// internas al repositorio y nunca se exponen en las respuestas.
type productoItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	TenantID    string   `dynamodbav:"tenant_id"`
	Codigo      string   `dynamodbav:"codigo"`
	Nombre      string   `dynamodbav:"nombre"`
	Descripcion string   `dynamodbav:"descripcion"`
	Categoria   string   `dynamodbav:"categoria"`
	Precio      float64  `dynamodbav:"precio"`
	Stock       int      `dynamodbav:"stock"`
	ImagenURL   string   `dynamodbav:"imagen_url,omitempty"`
	Tags        []string `dynamodbav:"tags,omitempty"`
	Activo      bool     `dynamodbav:"activo"`
	CreatedAt   string   `dynamodbav:"created_at"`
	UpdatedAt   string   `dynamodbav:"updated_at"`
	CreatedBy   string   `dynamodbav:"created_by"`
	UpdatedBy   string   `dynamodbav:"updated_by"`
	DeletedAt   string   `dynamodbav:"deleted_at,omitempty"`
	DeletedBy   string   `dynamodbav:"deleted_by,omitempty"`
}

// ClavePK devuelve la partition key del tenant.
func ClavePK(tenantID string) string { return PrefijoTenant + tenantID }

// ClaveSK devuelve el sort key del producto.
func ClaveSK(codigo string) string { return PrefijoProducto + codigo }

func aItem(p *entity.Producto) *productoItem {
	it := &productoItem{
		PK:          ClavePK(p.TenantID),
		SK:          ClaveSK(p.Codigo),
		TenantID:    p.TenantID,
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Precio:      p.Precio,
		Stock:       p.Stock,
		ImagenURL:   p.ImagenURL,
		Tags:        p.Tags,
		Activo:      p.Activo,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
		CreatedBy:   p.CreatedBy,
		UpdatedBy:   p.UpdatedBy,
		DeletedBy:   p.DeletedBy,
	}
	if p.DeletedAt != nil {
		it.DeletedAt = p.DeletedAt.UTC().Format(time.RFC3339)
	}
	return it
}

func aEntidad(it *productoItem) *entity.Producto {
	p := &entity.Producto{
		TenantID:    it.TenantID,
		Codigo:      it.Codigo,
		Nombre:      it.Nombre,
		Descripcion: it.Descripcion,
		Categoria:   it.Categoria,
		Precio:      it.Precio,
		Stock:       it.Stock,
		ImagenURL:   it.ImagenURL,
		Tags:        it.Tags,
		Activo:      it.Activo,
		CreatedBy:   it.CreatedBy,
		UpdatedBy:   it.UpdatedBy,
		DeletedBy:   it.DeletedBy,
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, it.CreatedAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, it.UpdatedAt)
	if it.DeletedAt != "" {
		if t, err := time.Parse(time.RFC3339, it.DeletedAt); err == nil {
			p.DeletedAt = &t
		}
	}
	return p
}

func claveProducto(tenantID, codigo string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: ClavePK(tenantID)},
		"SK": &types.AttributeValueMemberS{Value: ClaveSK(codigo)},
	}
}

func esCondicionFallida(err error) bool {
	var ccfe *types.ConditionalCheckFailedException
	return errors.As(err, &ccfe)
}

// Crear persiste un producto nuevo con una escritura condicional: falla con
// domain.ErrDuplicado si ya existe el (tenant, codigo).
func (r *ProductoRepo) Crear(ctx context.Context, p *entity.Producto) error {
	item, err := attributevalue.MarshalMap(aItem(p))
	if err != nil {
		return fmt.Errorf("marshal producto: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tabla),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if esCondicionFallida(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("put producto: %w", err)
	}
	return nil
}

// Obtener devuelve el producto o nil si no existe.
func (r *ProductoRepo) Obtener(ctx context.Context, tenantID, codigo string) (*entity.Producto, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tabla),
		Key:       claveProducto(tenantID, codigo),
	})
	if err != nil {
		return nil, fmt.Errorf("get producto: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var it productoItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal producto: %w", err)
	}
	return aEntidad(&it), nil
}

// Actualizar aplica los cambios en una sola UpdateItem condicional (existe y
// activo) y devuelve el estado resultante (ALL_NEW).
func (r *ProductoRepo) Actualizar(ctx context.Context, tenantID, codigo string, cambios map[string]any, actor string) (*entity.Producto, error) {
	ahora := time.Now().UTC().Format(time.RFC3339)
	upd := expression.Set(expression.Name("updated_at"), expression.Value(ahora)).
		Set(expression.Name("updated_by"), expression.Value(actor))
	for nombre, valor := range cambios {
		upd = upd.Set(expression.Name(nombre), expression.Value(valor))
	}
	cond := expression.AttributeExists(expression.Name("PK")).
		And(expression.Name("activo").Equal(expression.Value(true)))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("construir expresión de actualización: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tabla),
		Key:                       claveProducto(tenantID, codigo),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if esCondicionFallida(err) {
			// La condición también falla si el item desapareció entre la
			// lectura del caso de uso y esta escritura; se relee para no
			// reportar como inactivo un producto que ya no existe.
			return nil, r.causaDeCondicionFallida(ctx, tenantID, codigo, domain.ErrInactivo)
		}
		return nil, fmt.Errorf("update producto: %w", err)
	}
	var it productoItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal producto actualizado: %w", err)
	}
	return aEntidad(&it), nil
}

// causaDeCondicionFallida distingue por qué falló una escritura condicional:
// el item no existe (ErrNoEncontrado) o existe pero está inactivo (errInactivo).
func (r *ProductoRepo) causaDeCondicionFallida(ctx context.Context, tenantID, codigo string, errInactivo error) error {
	p, err := r.Obtener(ctx, tenantID, codigo)
	if err != nil {
		return errInactivo
	}
	if p == nil {
		return domain.ErrNoEncontrado
	}
	return errInactivo
}

// Eliminar marca el producto como inactivo (borrado lógico). Condicional:
// solo si existe y sigue activo; un segundo borrado falla con ErrYaInactivo.
func (r *ProductoRepo) Eliminar(ctx context.Context, tenantID, codigo, actor string) error {
	ahora := time.Now().UTC().Format(time.RFC3339)
	upd := expression.Set(expression.Name("activo"), expression.Value(false)).
		Set(expression.Name("deleted_at"), expression.Value(ahora)).
		Set(expression.Name("deleted_by"), expression.Value(actor)).
		Set(expression.Name("updated_at"), expression.Value(ahora)).
		Set(expression.Name("updated_by"), expression.Value(actor))
	cond := expression.AttributeExists(expression.Name("PK")).
		And(expression.Name("activo").Equal(expression.Value(true)))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("construir expresión de borrado: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tabla),
		Key:                       claveProducto(tenantID, codigo),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if esCondicionFallida(err) {
			return r.causaDeCondicionFallida(ctx, tenantID, codigo, domain.ErrYaInactivo)
		}
		return fmt.Errorf("eliminar producto: %w", err)
	}
	return nil
}

// Listar pagina los productos activos del tenant. El filtrado por categoría y
// texto se hace con la filter expression del store (no es búsqueda full-text).
func (r *ProductoRepo) Listar(ctx context.Context, tenantID string, filtro repository.FiltroListado) (*repository.Pagina, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(ClavePK(tenantID))).
		And(expression.KeyBeginsWith(expression.Key("SK"), PrefijoProducto))

	filt := expression.Name("activo").Equal(expression.Value(true))
	if filtro.Categoria != "" {
		filt = filt.And(expression.Name("categoria").Equal(expression.Value(filtro.Categoria)))
	}
	if filtro.Texto != "" {
		filt = filt.And(
			expression.Name("nombre").Contains(filtro.Texto).
				Or(expression.Name("descripcion").Contains(filtro.Texto)),
		)
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, fmt.Errorf("construir expresión de listado: %w", err)
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tabla),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(int32(filtro.Limite)),
	}
	if filtro.Cursor != "" {
		clave, err := DecodificarCursor(filtro.Cursor)
		if err != nil {
			return nil, err
		}
		in.ExclusiveStartKey = clave
	}

	out, err := r.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}

	pagina := &repository.Pagina{Productos: make([]*entity.Producto, 0, len(out.Items))}
	for _, raw := range out.Items {
		var it productoItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, fmt.Errorf("unmarshal producto listado: %w", err)
		}
		pagina.Productos = append(pagina.Productos, aEntidad(&it))
	}
	if len(out.LastEvaluatedKey) > 0 {
		cursor, err := CodificarCursor(out.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		pagina.Cursor = cursor
	}
	return pagina, nil
}

// claveCursor es la forma serializable del LastEvaluatedKey de la tabla.
type claveCursor struct {
	PK string `json:"pk"`
	SK string `json:"sk"`
}

// CodificarCursor convierte el token de paginación del store en un cursor
// opaco (base64 de JSON) apto para viajar en la respuesta.
func CodificarCursor(clave map[string]types.AttributeValue) (string, error) {
	pk, okPK := clave["PK"].(*types.AttributeValueMemberS)
	sk, okSK := clave["SK"].(*types.AttributeValueMemberS)
	if !okPK || !okSK {
		return "", fmt.Errorf("clave de paginación inesperada")
	}
	raw, err := json.Marshal(claveCursor{PK: pk.Value, SK: sk.Value})
	if err != nil {
		return "", fmt.Errorf("codificar cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodificarCursor revierte CodificarCursor. Un cursor corrupto es un error
// de entrada del cliente (400), no un fallo del store.
func DecodificarCursor(cursor string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, domain.NuevaValidacion("cursor inválido")
	}
	var clave claveCursor
	if err := json.Unmarshal(raw, &clave); err != nil || clave.PK == "" || clave.SK == "" {
		return nil, domain.NuevaValidacion("cursor inválido")
	}
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: clave.PK},
		"SK": &types.AttributeValueMemberS{Value: clave.SK},
	}, nil
}
