package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-voice-agent/internal/api/router"
	"github.com/wolfman30/salon-voice-agent/internal/appointments"
	"github.com/wolfman30/salon-voice-agent/internal/audit"
	"github.com/wolfman30/salon-voice-agent/internal/availability"
	"github.com/wolfman30/salon-voice-agent/internal/booking"
	appconfig "github.com/wolfman30/salon-voice-agent/internal/config"
	"github.com/wolfman30/salon-voice-agent/internal/customers"
	"github.com/wolfman30/salon-voice-agent/internal/dispatch"
	httpmiddleware "github.com/wolfman30/salon-voice-agent/internal/http/middleware"
	"github.com/wolfman30/salon-voice-agent/internal/observability/metrics"
	"github.com/wolfman30/salon-voice-agent/internal/stylists"
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-voice-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	customerStore := customers.NewStore(pool)
	appointmentStore := appointments.NewStore(pool)

	directory := stylists.NewDirectory(appointmentStore, logger)
	engine := availability.NewEngine(appointmentStore, appointmentStore, logger)
	bookingSvc := booking.NewService(customerStore, appointmentStore, logger)

	// The audit side channel uses a plain database/sql handle so it can
	// point at a separate logging database.
	var recorder *audit.Recorder
	if cfg.AuditDatabaseURL != "" {
		auditDB, err := sql.Open("postgres", cfg.AuditDatabaseURL)
		if err != nil {
			logger.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = auditDB.Close() }()
		recorder = audit.NewRecorder(auditDB, logger)
	} else {
		logger.Warn("no audit database configured, function logs disabled")
	}

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitEnabled && cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = rdb.Close() }()
		limiter = httpmiddleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, logger)
	}

	dispatchMetrics := metrics.NewDispatchMetrics(prometheus.DefaultRegisterer)
	dispatcher := dispatch.NewDispatcher(engine, bookingSvc, customerStore, appointmentStore, directory, logger)
	inCallHandler := dispatch.NewHandler(dispatcher, recorder, dispatchMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		InCallHandler:  inCallHandler,
		RateLimiter:    limiter,
		MetricsHandler: promhttp.Handler(),
		DB:             pool,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
