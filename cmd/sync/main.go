package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"

	appsync "github.com/mercalia/catalogo-api/internal/application/sync"
	"github.com/mercalia/catalogo-api/internal/infrastructure/search"
	"github.com/mercalia/catalogo-api/pkg/config"
	"github.com/mercalia/catalogo-api/pkg/logger"
)

// Job de sincronización: consume el change log de la tabla de productos
// (DynamoDB Streams) y replica cada cambio en el índice de búsqueda del
// tenant correspondiente.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("stream", cfg.Sync.StreamARN).
		Str("search_url", cfg.Search.BaseURL).
		Msg("iniciando job de sincronización")

	if cfg.Sync.StreamARN == "" {
		log.Fatal().Msg("SYNC_STREAM_ARN es requerido")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Dynamo.Region))
	if err != nil {
		log.Fatal().Err(err).Msg("cargar configuración AWS")
	}
	streamsClient := dynamodbstreams.NewFromConfig(awsCfg)

	motor := search.NewClient(cfg.Search.BaseURL, log.Zerolog())
	procesador := appsync.NewProcesador(motor, log.Zerolog())

	poller := appsync.NewPoller(streamsClient, procesador, appsync.PollerConfig{
		StreamARN:    cfg.Sync.StreamARN,
		PollInterval: time.Duration(cfg.Sync.PollSeconds) * time.Second,
		BatchSize:    cfg.Sync.BatchSize,
		IteratorType: cfg.Sync.IteratorType,
	}, log.Zerolog())

	if err := poller.Ejecutar(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("poller finalizado con error")
	}

	log.Info().Msg("job de sincronización detenido")
}
