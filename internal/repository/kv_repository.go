package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// KVEntry is one persisted key-value pair. The reminder list lives as a single
// JSON array under one key, mirroring extension local storage.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// KVRepository provides durable get/set over single keys.
type KVRepository struct {
	db *gorm.DB
}

func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the stored value for key. The second result is false when the
// key has never been written.
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry KVEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	switch {
	case err == nil:
		return entry.Value, true, nil
	case err == gorm.ErrRecordNotFound:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
}

// Set writes value under key, replacing any previous value.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	db := r.db.WithContext(ctx)

	var entry KVEntry
	err := db.Where("key = ?", key).First(&entry).Error
	switch {
	case err == nil:
		if err := db.Model(&entry).Update("value", value).Error; err != nil {
			return fmt.Errorf("update %q: %w", key, err)
		}
		return nil
	case err == gorm.ErrRecordNotFound:
		entry = KVEntry{Key: key, Value: value}
		if err := db.Create(&entry).Error; err != nil {
			return fmt.Errorf("create %q: %w", key, err)
		}
		return nil
	default:
		return fmt.Errorf("find %q: %w", key, err)
	}
}
