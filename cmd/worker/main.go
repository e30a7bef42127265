package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/config"
	infradatabase "github.com/yokitheyo/styletransfer/internal/infrastructure/database"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/kafka"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/storage"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/stylizer"
	"github.com/yokitheyo/styletransfer/internal/repository/postgres"
	"github.com/yokitheyo/styletransfer/internal/retry"
	"github.com/yokitheyo/styletransfer/internal/usecase"
	"github.com/yokitheyo/styletransfer/internal/worker"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting Style Transfer Worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	if lvl, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	database, err := infradatabase.Connect(&cfg.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database after all retries")
	}
	defer infradatabase.Close(database)

	// The API owns the schema; a failure here usually means it is already applied.
	if err := infradatabase.RunMigrations(database, cfg.Migrations.Path); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Migrations warning (might be already applied)")
	}

	storageService, err := storage.New(&cfg.Storage)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	styleRenderer := stylizer.New(&cfg.Stylization)

	repo := postgres.NewTransferRepository(database, retry.DefaultStrategy)
	processorUsecase := usecase.NewProcessorUsecase(repo, storageService, styleRenderer)
	transferWorker := worker.NewTransferWorker(processorUsecase)

	kafkaConsumer := kafka.NewConsumer(&cfg.Kafka, transferWorker.HandleTransferTask)
	defer kafkaConsumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := kafkaConsumer.Start(ctx); err != nil {
			zlog.Logger.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")

	<-done
	zlog.Logger.Info().Msg("Worker shutdown complete")
}
