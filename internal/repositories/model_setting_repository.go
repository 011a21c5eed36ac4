package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clickhelper/internal/models"
)

// ModelSettingRepository stores the per-model enable toggles.
type ModelSettingRepository interface {
	List(ctx context.Context) ([]models.ModelSetting, error)
	GetByKey(ctx context.Context, modelKey string) (*models.ModelSetting, error)
	Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error)
	SetProviderEnabled(ctx context.Context, provider string, enabled bool) error
	ReplaceAll(ctx context.Context, settings []models.ModelSetting) error
}

type modelSettingRepository struct {
	db *gorm.DB
}

func NewModelSettingRepository(db *gorm.DB) ModelSettingRepository {
	return &modelSettingRepository{db: db}
}

func (r *modelSettingRepository) List(ctx context.Context) ([]models.ModelSetting, error) {
	var settings []models.ModelSetting
	if err := conn(ctx, r.db).Order("provider, model_key").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("listing model settings: %w", err)
	}
	return settings, nil
}

// GetByKey returns nil without error when the model has no stored toggle.
func (r *modelSettingRepository) GetByKey(ctx context.Context, modelKey string) (*models.ModelSetting, error) {
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}
	var setting models.ModelSetting
	if err := conn(ctx, r.db).Where("model_key = ?", modelKey).Take(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting model setting %s: %w", modelKey, err)
	}
	return &setting, nil
}

func (r *modelSettingRepository) Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	record := models.ModelSetting{
		ModelKey: modelKey,
		Provider: provider,
		Enabled:  enabled,
	}
	if err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"enabled":    enabled,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("saving model setting %s: %w", modelKey, err)
	}
	return &record, nil
}

func (r *modelSettingRepository) SetProviderEnabled(ctx context.Context, provider string, enabled bool) error {
	if provider == "" {
		return fmt.Errorf("provider is required")
	}
	if err := conn(ctx, r.db).Model(&models.ModelSetting{}).
		Where("provider = ?", provider).
		Update("enabled", enabled).Error; err != nil {
		return fmt.Errorf("toggling provider %s: %w", provider, err)
	}
	return nil
}

// ReplaceAll swaps every stored toggle, used when importing a backup.
func (r *modelSettingRepository) ReplaceAll(ctx context.Context, settings []models.ModelSetting) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ModelSetting{}).Error; err != nil {
			return fmt.Errorf("clearing model settings: %w", err)
		}
		for _, s := range settings {
			s.ID = 0
			if err := tx.Create(&s).Error; err != nil {
				return fmt.Errorf("restoring model setting %s: %w", s.ModelKey, err)
			}
		}
		return nil
	})
}
