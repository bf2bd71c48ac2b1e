package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mercalia/catalogo-api/internal/application/ports"
	"github.com/mercalia/catalogo-api/pkg/config"
)

var _ ports.Almacen = (*S3Store)(nil)

// api es el subconjunto del cliente S3 que usa el almacén.
type api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implementa Almacen sobre un bucket S3 con lectura pública.
type S3Store struct {
	client        api
	bucket        string
	region        string
	publicBaseURL string
	log           zerolog.Logger
}

// NewS3Store construye el almacén de imágenes.
func NewS3Store(ctx context.Context, cfg config.BlobConfig, log zerolog.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("cargar configuración AWS: %w", err)
	}
	return &S3Store{
		client:        s3.NewFromConfig(awsCfg),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		log:           log.With().Str("component", "s3-blob-store").Logger(),
	}, nil
}

// newS3StoreConCliente permite inyectar un cliente falso en los tests.
func newS3StoreConCliente(client api, bucket, region, publicBaseURL string, log zerolog.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region, publicBaseURL: publicBaseURL, log: log}
}

// Subir guarda el archivo bajo <tenant>/<uuid><ext> con ACL de lectura pública.
func (s *S3Store) Subir(ctx context.Context, tenantID, nombreArchivo, contentType string, datos []byte) (string, error) {
	clave := fmt.Sprintf("%s/%s%s", tenantID, uuid.New().String(), strings.ToLower(path.Ext(nombreArchivo)))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(clave),
		Body:        bytes.NewReader(datos),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		s.log.Error().Err(err).Str("bucket", s.bucket).Str("key", clave).Msg("fallo al subir a S3")
		return "", fmt.Errorf("subir a S3 (bucket=%s, key=%s): %w", s.bucket, clave, err)
	}

	s.log.Info().Str("bucket", s.bucket).Str("key", clave).Int("bytes", len(datos)).Msg("imagen subida")

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + clave, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, clave), nil
}
