package models

import (
	"time"

	"gorm.io/datatypes"
)

// Partition selects the key-value namespace. Local is device-specific, Sync is the small replicated one.
type Partition string

const (
	PartitionLocal Partition = "local"
	PartitionSync  Partition = "sync"
)

// KVEntry is one stored key. Value holds any JSON document.
type KVEntry struct {
	Partition Partition      `gorm:"column:bucket;size:16;primaryKey"`
	Key       string         `gorm:"column:item_key;size:255;primaryKey"`
	Value     datatypes.JSON `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
