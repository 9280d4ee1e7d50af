package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timmy/clueso/internal/api"
	"github.com/timmy/clueso/internal/config"
	"github.com/timmy/clueso/internal/generator"
	"github.com/timmy/clueso/internal/logger"
	"github.com/timmy/clueso/internal/repository"
	"github.com/timmy/clueso/internal/service"
	"github.com/timmy/clueso/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = appLogger.WithContext(ctx)

	objectStorage, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	if s3, ok := objectStorage.(*storage.S3Storage); ok {
		if err := s3.EnsureBucket(ctx); err != nil {
			logger.Fatal("Failed to ensure storage bucket: %v", err)
		}
	}

	gen, err := generator.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize generator: %v", err)
	}

	// The archive only records finished jobs; live state stays in memory.
	var (
		archiver service.Archiver
		counter  service.ArchiveCounter
	)
	if cfg.Archive.Enabled {
		db, err := repository.InitDB(cfg.Archive)
		if err != nil {
			logger.Fatal("Failed to initialize job archive: %v", err)
		}
		archive := repository.NewJobArchive(db)
		defer archive.Close()
		archiver, counter = archive, archive
	}

	store := repository.NewMemoryJobStore()
	orchestrator := service.NewOrchestrator(store, gen, archiver, service.OrchestratorConfig{
		Workers:     cfg.Generator.Workers,
		Timeout:     cfg.Generator.Timeout,
		MaxAttempts: cfg.Generator.MaxAttempts,
	})
	ingestService := service.NewIngestService(objectStorage, service.IngestConfig{
		MaxBytes:     cfg.Upload.MaxBytes,
		AllowedTypes: cfg.Upload.AllowedTypes,
	})
	statusService := service.NewStatusService(store, objectStorage, counter, cfg.Server.PublicURL, gen.Mode())

	router := api.SetupRouter(cfg, api.Deps{
		Ingest:       ingestService,
		Orchestrator: orchestrator,
		Status:       statusService,
		Generator:    gen,
		Storage:      objectStorage,
		Logger:       appLogger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orchestrator.Run(gctx)
	})
	g.Go(func() error {
		logger.With(logger.Fields{"port": cfg.Server.Port, "mode": cfg.Server.Mode}).
			Info(gctx, "Starting API server (%s generator, %s storage)", gen.Mode(), storageName(cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.CtxInfo(ctx, "Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.CtxError(ctx, "Server exited with error: %v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.CtxInfo(ctx, "Server exited")
}

func storageName(cfg config.StorageConfig) string {
	if cfg.Type == "" {
		return "local"
	}
	return cfg.Type
}
