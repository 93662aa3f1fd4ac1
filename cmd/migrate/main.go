package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/pantry-chef/backend/config"
	"github.com/pageza/pantry-chef/backend/internal/database"
	"github.com/pageza/pantry-chef/backend/internal/logger"
)

func main() {
	// Parse command line flags
	migrationsDir := flag.String("dir", "migrations", "Directory holding *.sql migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Development: true})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.StorageDriver != config.DriverSQLite && cfg.StorageDriver != config.DriverPostgres {
		zlog.Info("Storage driver has no schema to migrate", zap.String("storage_driver", cfg.StorageDriver))
		return
	}

	db, err := database.Open(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	if err := database.RunMigrations(db, *migrationsDir, zlog); err != nil {
		zlog.Fatal("Migration failed", zap.Error(err))
	}
	zlog.Info("All migrations applied successfully")
}
