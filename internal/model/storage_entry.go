package model

import "time"

// StorageEntry is one durable key/value pair. The value holds the
// serialized form of whatever the owner stores under the key.
type StorageEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (StorageEntry) TableName() string {
	return "storage_entries"
}
