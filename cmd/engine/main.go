// Package main provides the entry point for the edge engine daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/acca"
	"github.com/yourusername/edge-engine/internal/cache"
	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/database"
	"github.com/yourusername/edge-engine/internal/datasource"
	"github.com/yourusername/edge-engine/internal/engine"
	"github.com/yourusername/edge-engine/internal/health"
	"github.com/yourusername/edge-engine/internal/logger"
	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/repository"
	"github.com/yourusername/edge-engine/internal/scheduler"
	"github.com/yourusername/edge-engine/internal/service"
)

var version = "dev"

func main() {
	configPath := os.Getenv("EDGE_ENGINE_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     version,
	}).Info("Edge engine starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	predictionRepo := repository.NewPostgresPredictionRepository(db, appLog)

	store := cache.NewTTLCache(time.Duration(cfg.Provider.CacheTTLSeconds) * time.Second)
	provider := datasource.NewProviderClient(cfg.Provider, store, appLog)
	defer provider.Close()

	eng := engine.NewEngine(cfg.Engine, cfg.ParseMarkets(), appLog)
	accaBuilder := acca.NewBuilder(cfg.Acca, appLog)

	slateSvc := service.NewSlateService(eng, provider, provider, predictionRepo, accaBuilder, cfg.Slate, appLog)

	// Settlement stream freezes published predictions as results arrive.
	var stream *datasource.ResultsStream
	if cfg.Provider.ResultsStreamURL != "" {
		stream = datasource.NewResultsStream(cfg.Provider.ResultsStreamURL, cfg.Provider.APIKey, appLog)
		settlementSvc := service.NewSettlementService(predictionRepo, appLog)
		stream.AddHandler(settlementSvc.Handler(ctx))
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Results stream terminated")
			}
		}()
	} else {
		appLog.Info("No results stream configured; predictions will not freeze automatically")
	}

	sched := scheduler.NewScheduler(slateSvc, time.Duration(cfg.Scheduler.TimeoutMinutes)*time.Minute, appLog)
	if err := sched.ScheduleSlateRun(cfg.Scheduler.SlateCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule slate run")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Logger:      appLog,
		DB:          db,
	}
	if stream != nil {
		healthCfg.Stream = stream
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"slate_cron": cfg.Scheduler.SlateCron,
		"next_run":   sched.NextRun().Format(time.RFC3339),
	}).Info("Edge engine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig.String()).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error stopping metrics server")
		}
		shutdownCancel()
	}

	appLog.Info("Edge engine shut down")
}
