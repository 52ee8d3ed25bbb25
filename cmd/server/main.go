package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"karabook/internal/api"
	"karabook/internal/config"
	"karabook/internal/database"
	"karabook/internal/domain"
	"karabook/internal/events"
	"karabook/internal/export"
	"karabook/internal/logging"
	"karabook/internal/metrics"
	"karabook/internal/repository"
	"karabook/internal/service"
	"karabook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	cache := initScheduleCache(cfg, redisClient, &logger)
	eventBus := events.NewEventBus()
	registerAuditLog(eventBus, &logger)

	bookingService := service.NewBookingService(db, cache, eventBus, &logger)
	roomService := service.NewRoomService(db, eventBus, &logger)
	customerService := service.NewCustomerService(db, eventBus, &logger)
	exporter := export.NewExporter(&logger)

	httpServer := api.NewHTTPServer(cfg, roomService, customerService, bookingService, exporter, db.PingContext, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)
	startBackups(ctx, cfg, &logger)

	if cfg.Exports.Path != "" {
		exportWorker := worker.NewExportWorker(bookingService, roomService, customerService, exporter,
			cfg.Exports.Path, 24*time.Hour, worker.RetryPolicy{}, &logger)
		go exportWorker.Start(ctx)
	}

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if len(cfg.Rooms) > 0 {
		if err := db.SeedRooms(context.Background(), cfg.Rooms); err != nil {
			logger.Error().Err(err).Msg("seed rooms")
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initScheduleCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.ScheduleCache {
	ttl := time.Duration(cfg.Redis.CacheTTL) * time.Second
	memory := repository.NewMemoryScheduleCache(ttl)
	if redisClient == nil {
		return memory
	}

	primary := repository.NewRedisScheduleCache(redisClient, ttl)
	return repository.NewFailoverScheduleCache(primary, memory, logger)
}

// registerAuditLog writes every booking lifecycle event into the log so
// operators can trace schedule changes.
func registerAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	auditTypes := []string{
		events.EventBookingCreated,
		events.EventBookingUpdated,
		events.EventBookingDeleted,
		events.EventBookingRejected,
	}
	for _, eventType := range auditTypes {
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().Str("event", event.Type).RawJSON("payload", event.Payload).Msg("audit")
			return nil
		})
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startBackups(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}

	backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backupService.Start(ctx)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
