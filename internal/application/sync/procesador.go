package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodbstreams/attributevalue"
	streamstypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
	"github.com/rs/zerolog"

	"github.com/mercalia/catalogo-api/internal/application/ports"
	"github.com/mercalia/catalogo-api/internal/infrastructure/dynamo"
)

// Resumen resultado del procesamiento de un lote de registros de cambio.
type Resumen struct {
	Procesados int // upserts y borrados aplicados al índice
	Fallidos   int // registros cuyo upstream falló; se loguean y no bloquean al resto
	Omitidos   int // registros que no son de producto
}

// Procesador replica los cambios del store en el índice de búsqueda del
// tenant. Cada registro se procesa de forma aislada: el fallo de uno no
// impide procesar los siguientes del lote.
type Procesador struct {
	motor ports.Motor
	log   zerolog.Logger
}

// NewProcesador construye el procesador de cambios.
func NewProcesador(motor ports.Motor, log zerolog.Logger) *Procesador {
	return &Procesador{
		motor: motor,
		log:   log.With().Str("component", "sync-procesador").Logger(),
	}
}

// imagenProducto es la proyección del NewImage que se indexa. Subconjunto
// fijo de campos; el resto del item (claves, auditoría) no viaja al índice.
type imagenProducto struct {
	Codigo      string   `dynamodbav:"codigo"`
	Nombre      string   `dynamodbav:"nombre"`
	Descripcion string   `dynamodbav:"descripcion"`
	Categoria   string   `dynamodbav:"categoria"`
	Precio      float64  `dynamodbav:"precio"`
	Stock       int      `dynamodbav:"stock"`
	ImagenURL   string   `dynamodbav:"imagen_url"`
	Tags        []string `dynamodbav:"tags"`
	Activo      bool     `dynamodbav:"activo"`
}

// ProcesarLote aplica cada registro del lote al índice del tenant
// correspondiente y devuelve el resumen. Nunca corta el lote por un registro.
func (p *Procesador) ProcesarLote(ctx context.Context, registros []streamstypes.Record) Resumen {
	var res Resumen
	for _, registro := range registros {
		switch err := p.procesar(ctx, registro); {
		case err == errNoEsProducto:
			res.Omitidos++
		case err != nil:
			res.Fallidos++
			p.log.Error().Err(err).
				Str("event", string(registro.EventName)).
				Msg("registro de cambio no sincronizado")
		default:
			res.Procesados++
		}
	}
	p.log.Info().
		Int("procesados", res.Procesados).
		Int("fallidos", res.Fallidos).
		Int("omitidos", res.Omitidos).
		Msg("lote de cambios procesado")
	return res
}

var errNoEsProducto = fmt.Errorf("el registro no corresponde a un producto")

// procesar aplica un único registro: REMOVE borra el documento del índice;
// INSERT/MODIFY proyectan el NewImage y hacen upsert con id = codigo.
func (p *Procesador) procesar(ctx context.Context, registro streamstypes.Record) error {
	if registro.Dynamodb == nil {
		return fmt.Errorf("registro sin datos de stream")
	}
	tenantID, codigo, ok := clavesDeRegistro(registro.Dynamodb.Keys)
	if !ok {
		return errNoEsProducto
	}
	indice := ports.IndiceTenant(tenantID)

	if registro.EventName == streamstypes.OperationTypeRemove {
		if err := p.motor.EliminarDoc(ctx, indice, codigo); err != nil {
			return fmt.Errorf("borrar %s del índice %s: %w", codigo, indice, err)
		}
		return nil
	}

	var img imagenProducto
	if err := attributevalue.UnmarshalMap(registro.Dynamodb.NewImage, &img); err != nil {
		return fmt.Errorf("proyectar imagen del registro %s: %w", codigo, err)
	}
	doc := map[string]any{
		"codigo":      img.Codigo,
		"nombre":      img.Nombre,
		"descripcion": img.Descripcion,
		"categoria":   img.Categoria,
		"precio":      img.Precio,
		"stock":       img.Stock,
		"imagen_url":  img.ImagenURL,
		"tags":        img.Tags,
		"activo":      img.Activo,
	}
	if err := p.motor.Indexar(ctx, indice, codigo, doc); err != nil {
		return fmt.Errorf("indexar %s en %s: %w", codigo, indice, err)
	}
	return nil
}

// clavesDeRegistro extrae (tenant, codigo) de las claves del registro.
// Solo los sort keys con prefijo PRODUCTO# corresponden a productos.
func clavesDeRegistro(claves map[string]streamstypes.AttributeValue) (tenantID, codigo string, ok bool) {
	pk, okPK := claves["PK"].(*streamstypes.AttributeValueMemberS)
	sk, okSK := claves["SK"].(*streamstypes.AttributeValueMemberS)
	if !okPK || !okSK {
		return "", "", false
	}
	if !strings.HasPrefix(sk.Value, dynamo.PrefijoProducto) {
		return "", "", false
	}
	tenantID = strings.TrimPrefix(pk.Value, dynamo.PrefijoTenant)
	codigo = strings.TrimPrefix(sk.Value, dynamo.PrefijoProducto)
	return tenantID, codigo, true
}
