package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mercalia/catalogo-api/internal/application/usecase"
	"github.com/mercalia/catalogo-api/internal/infrastructure/blob"
	"github.com/mercalia/catalogo-api/internal/infrastructure/dynamo"
	"github.com/mercalia/catalogo-api/internal/infrastructure/search"
	httpRouter "github.com/mercalia/catalogo-api/internal/interfaces/http"
	"github.com/mercalia/catalogo-api/pkg/config"
	"github.com/mercalia/catalogo-api/pkg/logger"
)

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
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	dynamoClient, err := dynamo.NewClient(ctx, cfg.Dynamo)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente DynamoDB")
	}
	productoRepo := dynamo.NewProductoRepository(dynamoClient, cfg.Dynamo.Table)

	motor := search.NewClient(cfg.Search.BaseURL, log.Zerolog())

	almacen, err := blob.NewS3Store(ctx, cfg.Blob, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de imágenes S3")
	}

	productoUC := usecase.NewProductoUseCase(productoRepo)
	searchUC := usecase.NewSearchUseCase(motor)

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		ProductoHandler: httpRouter.NewProductoHandler(productoUC),
		SearchHandler:   httpRouter.NewSearchHandler(searchUC),
		UploadHandler:   httpRouter.NewUploadHandler(almacen),
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
