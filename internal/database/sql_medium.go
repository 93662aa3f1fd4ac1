package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/pantry-chef/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLMedium stores values as rows of the storage_entries table
type SQLMedium struct {
	db *gorm.DB
}

// NewSQLMedium creates a medium backed by db. RunMigrations must have
// created the schema.
func NewSQLMedium(db *gorm.DB) *SQLMedium {
	return &SQLMedium{db: db}
}

// Load returns the value stored under key
func (m *SQLMedium) Load(ctx context.Context, key string) ([]byte, error) {
	var entry model.StorageEntry
	err := m.db.WithContext(ctx).Where(keyIs(key)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Save upserts the value stored under key
func (m *SQLMedium) Save(ctx context.Context, key string, value []byte) error {
	entry := model.StorageEntry{Key: key, Value: string(value)}
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (m *SQLMedium) Delete(ctx context.Context, key string) error {
	if err := m.db.WithContext(ctx).Where(keyIs(key)).Delete(&model.StorageEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func keyIs(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}
