package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/config"
	"github.com/DrgGomes/cft-estoque-fast/internal/infra"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"
	"github.com/DrgGomes/cft-estoque-fast/internal/router"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"
	"github.com/DrgGomes/cft-estoque-fast/internal/watch"
	"github.com/DrgGomes/cft-estoque-fast/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Audit stream is optional; without brokers movements are only stored.
	var audit infra.AuditProducer
	if cfg.KafkaBrokers != "" {
		audit = infra.NewAuditProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer audit.Close()
	}

	// Worker pool for async alert e-mails. Handlers are wired here
	// (composition root) so the pool sees all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	workerHandlers := &worker.WorkerHandlers{
		AlertEmail: worker.NewAlertEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	// Stock watcher: one subscriber per process turning change notifications
	// into sold-out alerts.
	productRepo := repository.NewProductRepository(db)
	alertSvc := service.NewAlertService(
		repository.NewAlertRepository(db),
		worker.NewDispatcher(rdb),
		nil, nil,
		cfg.AlertEmailTo,
	)
	watcher := watch.New(rdb, productRepo, alertSvc)
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("stock watcher stopped")
		}
	}()

	r := router.New(cfg, db, rdb, audit)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("stock tracker listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
