package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamstypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
	"github.com/rs/zerolog"
)

// StreamsAPI es el subconjunto del cliente DynamoDB Streams que usa el
// poller. Permite inyectar un cliente falso en los tests.
type StreamsAPI interface {
	DescribeStream(ctx context.Context, params *dynamodbstreams.DescribeStreamInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, params *dynamodbstreams.GetShardIteratorInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, params *dynamodbstreams.GetRecordsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error)
}

// PollerConfig opciones del poller.
type PollerConfig struct {
	StreamARN    string
	PollInterval time.Duration
	BatchSize    int
	IteratorType string // TRIM_HORIZON o LATEST
}

// Poller lee el change log de la tabla (DynamoDB Streams) y entrega cada
// lote al procesador. Los shards se recorren de forma secuencial; un shard
// cerrado se reemplaza re-describiendo el stream.
type Poller struct {
	client     StreamsAPI
	procesador *Procesador
	cfg        PollerConfig
	log        zerolog.Logger
}

// NewPoller construye el poller.
func NewPoller(client StreamsAPI, procesador *Procesador, cfg PollerConfig, log zerolog.Logger) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.IteratorType == "" {
		cfg.IteratorType = string(streamstypes.ShardIteratorTypeLatest)
	}
	return &Poller{
		client:     client,
		procesador: procesador,
		cfg:        cfg,
		log:        log.With().Str("component", "sync-poller").Logger(),
	}
}

// Ejecutar corre el ciclo de lectura hasta que el contexto se cancele.
func (p *Poller) Ejecutar(ctx context.Context) error {
	iteradores, err := p.iteradoresIniciales(ctx)
	if err != nil {
		return err
	}
	p.log.Info().Int("shards", len(iteradores)).Msg("poller iniciado")

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller detenido")
			return ctx.Err()
		case <-ticker.C:
		}

		vivos := make(map[string]string, len(iteradores))
		for shardID, iterador := range iteradores {
			out, err := p.client.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
				ShardIterator: aws.String(iterador),
				Limit:         aws.Int32(int32(p.cfg.BatchSize)),
			})
			if err != nil {
				// El shard se reintenta en la próxima vuelta con el mismo iterador.
				p.log.Error().Err(err).Str("shard", shardID).Msg("lectura de registros fallida")
				vivos[shardID] = iterador
				continue
			}
			if len(out.Records) > 0 {
				p.procesador.ProcesarLote(ctx, out.Records)
			}
			if out.NextShardIterator != nil {
				vivos[shardID] = *out.NextShardIterator
			}
		}
		iteradores = vivos

		// Todos los shards cerraron: volver a descubrirlos.
		if len(iteradores) == 0 {
			iteradores, err = p.iteradoresIniciales(ctx)
			if err != nil {
				return err
			}
		}
	}
}

// iteradoresIniciales descubre los shards del stream y abre un iterador por
// cada uno según el tipo configurado.
func (p *Poller) iteradoresIniciales(ctx context.Context) (map[string]string, error) {
	desc, err := p.client.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
		StreamArn: aws.String(p.cfg.StreamARN),
	})
	if err != nil {
		return nil, fmt.Errorf("describir stream: %w", err)
	}
	if desc.StreamDescription == nil {
		return nil, fmt.Errorf("stream sin descripción: %s", p.cfg.StreamARN)
	}

	iteradores := make(map[string]string, len(desc.StreamDescription.Shards))
	for _, shard := range desc.StreamDescription.Shards {
		out, err := p.client.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
			StreamArn:         aws.String(p.cfg.StreamARN),
			ShardId:           shard.ShardId,
			ShardIteratorType: streamstypes.ShardIteratorType(p.cfg.IteratorType),
		})
		if err != nil {
			return nil, fmt.Errorf("abrir iterador del shard %s: %w", aws.ToString(shard.ShardId), err)
		}
		if out.ShardIterator != nil {
			iteradores[aws.ToString(shard.ShardId)] = *out.ShardIterator
		}
	}
	return iteradores, nil
}
