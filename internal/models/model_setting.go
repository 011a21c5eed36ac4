package models

import "time"

// ModelSetting persists the enable toggle of one catalog model.
// Enabled carries no gorm default so that creating a disabled row stores false.
type ModelSetting struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Provider  string    `gorm:"size:50;not null;index:idx_model_provider" json:"provider"`
	ModelKey  string    `gorm:"size:255;not null;uniqueIndex" json:"modelKey"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
