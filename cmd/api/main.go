package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantry-chef/backend/config"
	"github.com/pageza/pantry-chef/backend/internal/api"
	"github.com/pageza/pantry-chef/backend/internal/database"
	"github.com/pageza/pantry-chef/backend/internal/logger"
	"github.com/pageza/pantry-chef/backend/internal/metrics"
	"github.com/pageza/pantry-chef/backend/internal/middleware"
	"github.com/pageza/pantry-chef/backend/internal/server"
	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/store"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment == config.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("Server error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	zlog.Info("Starting Pantry Chef API",
		zap.String("environment", string(cfg.Environment)),
		zap.String("storage_driver", cfg.StorageDriver))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	checks := map[string]api.HealthChecker{}

	// Redis backs the redis storage driver and the shared rate limiter
	var redisClient *redis.Client
	if cfg.StorageDriver == config.DriverRedis || cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg, zlog)
		if err != nil {
			if cfg.StorageDriver == config.DriverRedis {
				return fmt.Errorf("failed to connect to Redis: %w", err)
			}
			zlog.Warn("Redis unavailable, falling back to in-process rate limiting", zap.Error(err))
		} else {
			redisClient = client
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	medium, closeMedium, err := openMedium(cfg, redisClient, zlog, checks)
	if err != nil {
		return err
	}
	defer closeMedium()

	registry := store.NewRegistry(medium, cfg.StorageKey, zlog.Named("store"),
		store.WithObserver(collector),
		store.WithEmbedder(service.GenerateEmbedding))
	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	go registry.RunEviction(evictCtx, cfg.SessionIdleTTL, cfg.SessionIdleTTL/2)

	chefOpts := []service.ChefOption{service.WithObserver(collector)}
	if images := newImageGenerator(cfg, zlog); images != nil {
		chefOpts = append(chefOpts, service.WithImageGenerator(images))
	}
	chef := service.NewChefService(newTextGenerator(cfg, zlog), zlog.Named("chef"), chefOpts...)

	deps := api.Dependencies{
		Chef:     chef,
		Sessions: service.NewSessionService(cfg.JWTSecret, cfg.SessionTTL),
		Saved:    registry,
		Logger:   zlog,
		Checks:   checks,
	}
	if cfg.RateLimitEnabled {
		limitCfg := middleware.GenerationRateLimitConfig(cfg.RateLimitPerHour)
		if redisClient != nil {
			deps.Limiter = middleware.NewRedisLimiter(redisClient, limitCfg)
		} else {
			deps.Limiter = middleware.NewMemoryLimiter(limitCfg)
		}
	}

	srv := server.New(cfg, deps, collector)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		zlog.Info("Received signal", zap.String("signal", sig.String()))
	}

	// Gracefully shutdown the server
	zlog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	zlog.Info("Server stopped")
	return nil
}

// openMedium opens the durable medium selected by the storage driver
func openMedium(cfg *config.Config, redisClient *redis.Client, zlog *zap.Logger, checks map[string]api.HealthChecker) (store.Medium, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		zlog.Warn("Using in-memory storage; saved recipes are lost on restart")
		return database.NewMemoryMedium(), func() {}, nil
	case config.DriverRedis:
		return database.NewRedisMedium(redisClient), func() {}, nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := database.Open(cfg, zlog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(db, "migrations", zlog); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		checks["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, db) }
		return database.NewSQLMedium(db), func() { closeDB(db, zlog) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func closeDB(db *gorm.DB, zlog *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		zlog.Warn("Failed to close database", zap.Error(err))
	}
}

func newTextGenerator(cfg *config.Config, zlog *zap.Logger) service.TextGenerator {
	llm, err := service.NewLLMService(service.LLMConfig{
		APIURL:      cfg.LLMAPIURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.GenerationTimeout,
	}, zlog)
	if err != nil {
		// Saved recipes and tips keep working; generation reports the cause
		zlog.Warn("Text generation disabled", zap.Error(err))
		return unavailableGenerator{err: err}
	}
	return llm
}

func newImageGenerator(cfg *config.Config, zlog *zap.Logger) service.ImageGenerator {
	if !cfg.ImageEnabled {
		return nil
	}

	var uploader service.ImageUploader
	if cfg.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s3Cfg, err := config.NewS3Config(ctx, cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			zlog.Warn("S3 unavailable, images will be returned inline", zap.Error(err))
		} else {
			uploader = s3Cfg
		}
	}

	images, err := service.NewImageService(service.ImageConfig{
		APIURL:     cfg.ImageAPIURL,
		APIKey:     cfg.ImageAPIKey,
		Model:      cfg.ImageModel,
		Size:       cfg.ImageSize,
		MaxRetries: cfg.ImageMaxRetries,
		Timeout:    cfg.GenerationTimeout,
	}, uploader, zlog)
	if err != nil {
		zlog.Warn("Image generation disabled", zap.Error(err))
		return nil
	}
	return images
}

type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) GenerateJSON(context.Context, service.Prompt, any) error {
	return fmt.Errorf("text generation is not configured: %w", g.err)
}
