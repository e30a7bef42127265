package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/config"
	httpHandler "github.com/yokitheyo/styletransfer/internal/handler/http"
	"github.com/yokitheyo/styletransfer/internal/handler/middleware"
	infradatabase "github.com/yokitheyo/styletransfer/internal/infrastructure/database"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/kafka"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/storage"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/stylizer"
	"github.com/yokitheyo/styletransfer/internal/repository/postgres"
	"github.com/yokitheyo/styletransfer/internal/retry"
	"github.com/yokitheyo/styletransfer/internal/usecase"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting Style Transfer API Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load("")
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}
	setLogLevel(cfg.Logging.Level)

	database, err := infradatabase.Connect(&cfg.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database after all retries")
	}
	defer infradatabase.Close(database)

	// Run migrations
	zlog.Logger.Info().Msg("Running database migrations...")
	if err := infradatabase.RunMigrations(database, cfg.Migrations.Path); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Migrations failed")
	}

	storageService, err := storage.New(&cfg.Storage)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	styleRenderer := stylizer.New(&cfg.Stylization)

	kafkaProducer := kafka.NewProducer(&cfg.Kafka)
	defer kafkaProducer.Close()

	// Repository + Usecase
	repo := postgres.NewTransferRepository(database, retry.DefaultStrategy)
	transferUsecase := usecase.NewTransferUsecase(repo, storageService, styleRenderer, kafkaProducer)

	engine := ginext.New("api")
	engine.Use(
		middleware.ErrorHandlerMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(),
	)

	engine.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, ginext.H{"status": "ok"})
	})

	transferHandler := httpHandler.NewTransferHandler(
		transferUsecase,
		cfg.Server.MaxUploadSizeMB,
		cfg.Stylization.SupportedFormats,
	)
	transferHandler.RegisterRoutes(engine,
		middleware.RateLimitMiddleware(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst),
	)

	engine.GET("/", func(c *ginext.Context) {
		c.File(filepath.Join(cfg.Server.StaticDir, "index.html"))
	})
	engine.Static("/static", cfg.Server.StaticDir)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Logger.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	} else {
		zlog.Logger.Info().Msg("HTTP server stopped gracefully")
	}

	zlog.Logger.Info().Msg("API shutdown complete")
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		zlog.Logger.Warn().Str("level", level).Msg("unknown log level, keeping default")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}
