package repositories

import (
	"context"

	"clickhelper/internal/models"
)

const settingsKey = "settings"

type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	kv KVRepository
}

// NewSettingsRepository keeps settings as one document in the sync partition.
func NewSettingsRepository(kv KVRepository) SettingsRepository {
	return &settingsRepository{kv: kv}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	found, err := GetJSON(ctx, r.kv, models.PartitionSync, settingsKey, &settings)
	if err != nil {
		return nil, err
	}
	if !found {
		return DefaultSettings(), nil
	}
	return &settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	if settings.Version == 0 {
		settings.Version = 1
	}
	return SetJSON(ctx, r.kv, models.PartitionSync, settingsKey, settings)
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() *models.Settings {
	return &models.Settings{
		Version: 1,
		Generation: models.GenerationSettings{
			ModelKey:        "gemini|gemini-2.0-flash",
			Language:        "en",
			Temperature:     0.3,
			MaxOutputTokens: 256,
		},
		Presence: models.PresenceSettings{
			Enabled: true,
			Default: models.StatusOverride{
				Availability: "dnd",
				Emoji:        "calendar",
				Text:         "In a meeting",
			},
		},
	}
}
