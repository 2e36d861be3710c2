// Command server runs the Workstation Hub API with its background jobs.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workstation/internal/config"
	"workstation/internal/jobs"
	"workstation/internal/middleware"
	"workstation/internal/observability"
	"workstation/internal/repository"
	"workstation/internal/server"
)

// @title Workstation Hub API
// @version 1.0
// @description Project collaboration hub: projects, join requests, messaging, notifications and AI workers.

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Getenv("LOG_LEVEL"))
	observability.SetLogger(middleware.Logger)

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		ServiceName:  observability.ServiceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	var (
		queue  *jobs.Queue
		worker *jobs.Worker
	)
	if redisOpt, err := jobs.RedisOpt(cfg.RedisURL); err != nil {
		middleware.Logger.Warn("notification retry queue disabled", slog.String("error", err.Error()))
	} else {
		queue = jobs.NewQueue(redisOpt)
		srv.SetRetryEnqueuer(queue)
		worker = jobs.NewWorker(redisOpt, srv.Notifications())
		if err := worker.Start(); err != nil {
			middleware.Logger.Error("notification retry worker failed to start", slog.String("error", err.Error()))
			worker = nil
		}
	}

	retention := jobs.NewRetention(repository.NewNotificationRepository(srv.DB()), cfg.NotificationRetentionDays)
	if err := retention.Start(cfg.RetentionCron); err != nil {
		log.Fatalf("Failed to schedule notification retention: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		retention.Stop()
		if worker != nil {
			worker.Stop()
		}
		if queue != nil {
			if err := queue.Close(); err != nil {
				middleware.Logger.Error("queue close failed", slog.String("error", err.Error()))
			}
		}
		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
