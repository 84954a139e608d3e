package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"

	"selfservice/internal/clients"
	"selfservice/internal/common/events"
	"selfservice/internal/common/middleware"
	"selfservice/internal/common/nats"
	"selfservice/internal/onboarding"
	"selfservice/internal/onboarding/api"
	"selfservice/internal/serviceview"
)

// Config holds service configuration
type Config struct {
	Port        int    `envconfig:"SELFSERVICE_PORT" default:"8086"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`

	Upstream clients.Config
	NATS     nats.Config
}

func main() {
	// Load configuration
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to process config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Diagnostic events go to NATS when enabled, otherwise they are only logged
	var (
		publisher  events.EventPublisher = events.NopPublisher{}
		natsClient *nats.Client
	)
	if cfg.NATS.Enabled {
		var err error
		natsClient, err = nats.New(ctx, cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		if err := natsClient.EnsureStream(ctx, nats.DiagnosticsStream(cfg.NATS.Stream)); err != nil {
			logger.Error("failed to ensure stream", "error", err)
			os.Exit(1)
		}
		publisher = nats.NewPublisher(natsClient, logger)
	}

	// Upstream clients
	connector := clients.NewConnector(clients.NewClient("connector", cfg.Upstream.ConnectorURL, cfg.Upstream, nil, logger))
	adminusers := clients.NewAdminUsers(clients.NewClient("adminusers", cfg.Upstream.AdminUsersURL, cfg.Upstream, nil, logger))

	// Create services
	resolver := serviceview.NewResolver(serviceview.Reporters{
		serviceview.NewLogReporter(logger),
		serviceview.NewEventReporter(publisher, logger),
	})
	onboardingService := onboarding.NewService(connector, connector, adminusers, resolver, publisher, logger)

	// Create handlers
	onboardingHandler := api.NewHandler(onboardingService, logger)

	// Setup router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if natsClient != nil {
			if err := natsClient.HealthCheck(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unhealthy"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	r.Mount("/api/v1", onboardingHandler.Routes())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting selfservice",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"connector_url", cfg.Upstream.ConnectorURL,
			"adminusers_url", cfg.Upstream.AdminUsersURL,
			"nats_enabled", cfg.NATS.Enabled,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", "selfservice")
}
