package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pageza/pantry-chef/backend/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates the storage schema and then applies any *.sql files
// found in migrationsDir that have not been applied yet. A missing or empty
// migrationsDir only runs the schema migration.
func RunMigrations(db *gorm.DB, migrationsDir string, log *zap.Logger) error {
	if err := db.AutoMigrate(&model.StorageEntry{}); err != nil {
		return fmt.Errorf("failed to migrate storage schema: %w", err)
	}
	log.Info("Storage schema is up to date", zap.String("dialect", db.Dialector.Name()))

	if migrationsDir == "" {
		return nil
	}
	entries, err := os.ReadDir(migrationsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil
	}
	sort.Strings(files)

	if err := db.AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, name := range files {
		var count int64
		if err := db.Model(&appliedMigration{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug("Skipping migration (already applied)", zap.String("migration", name))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Create(&appliedMigration{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info("Applied migration", zap.String("migration", name))
	}

	return nil
}

type appliedMigration struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null;uniqueIndex"`
	AppliedAt int64  `gorm:"autoCreateTime"`
}

func (appliedMigration) TableName() string {
	return "migrations"
}
