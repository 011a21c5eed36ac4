package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clickhelper/internal/models"
)

// KVRepository is the namespaced key-value store. Values are opaque JSON documents.
// Calls are not transactional with each other unless run through a Transactor; callers doing
// read-modify-write must serialize themselves.
type KVRepository interface {
	Get(ctx context.Context, partition models.Partition, keys ...string) (map[string]json.RawMessage, error)
	Set(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error
	Remove(ctx context.Context, partition models.Partition, keys ...string) error
	All(ctx context.Context, partition models.Partition) (map[string]json.RawMessage, error)
	Replace(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error
}

type kvRepository struct {
	db *gorm.DB
}

func NewKVRepository(db *gorm.DB) KVRepository {
	return &kvRepository{db: db}
}

func (r *kvRepository) Get(ctx context.Context, partition models.Partition, keys ...string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var rows []models.KVEntry
	if err := conn(ctx, r.db).
		Where("bucket = ? AND item_key IN ?", partition, keys).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("getting %s keys: %w", partition, err)
	}
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	return out, nil
}

func (r *kvRepository) Set(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error {
	if len(values) == 0 {
		return nil
	}
	rows := toEntries(partition, values)
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}, {Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("setting %s keys: %w", partition, err)
	}
	return nil
}

func (r *kvRepository) Remove(ctx context.Context, partition models.Partition, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).
		Where("bucket = ? AND item_key IN ?", partition, keys).
		Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("removing %s keys: %w", partition, err)
	}
	return nil
}

func (r *kvRepository) All(ctx context.Context, partition models.Partition) (map[string]json.RawMessage, error) {
	var rows []models.KVEntry
	if err := conn(ctx, r.db).
		Where("bucket = ?", partition).
		Order("item_key").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing %s keys: %w", partition, err)
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	return out, nil
}

// Replace swaps the whole partition content in one transaction.
func (r *kvRepository) Replace(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bucket = ?", partition).Delete(&models.KVEntry{}).Error; err != nil {
			return fmt.Errorf("clearing %s partition: %w", partition, err)
		}
		if len(values) == 0 {
			return nil
		}
		rows := toEntries(partition, values)
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("restoring %s partition: %w", partition, err)
		}
		return nil
	})
}

func toEntries(partition models.Partition, values map[string]json.RawMessage) []models.KVEntry {
	now := time.Now()
	rows := make([]models.KVEntry, 0, len(values))
	for key, value := range values {
		rows = append(rows, models.KVEntry{
			Partition: partition,
			Key:       key,
			Value:     datatypes.JSON(value),
			UpdatedAt: now,
		})
	}
	return rows
}
