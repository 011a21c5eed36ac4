package mocks

import (
	"context"
	"sync"

	"clickhelper/internal/models"
)

// ModelSettingRepositoryMock keeps toggles in memory keyed by model key.
type ModelSettingRepositoryMock struct {
	mu   sync.Mutex
	Rows map[string]models.ModelSetting

	ReplaceAllFunc func(ctx context.Context, settings []models.ModelSetting) error
}

func NewModelSettingRepositoryMock() *ModelSettingRepositoryMock {
	return &ModelSettingRepositoryMock{Rows: map[string]models.ModelSetting{}}
}

func (m *ModelSettingRepositoryMock) List(ctx context.Context) ([]models.ModelSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ModelSetting, 0, len(m.Rows))
	for _, row := range m.Rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *ModelSettingRepositoryMock) GetByKey(ctx context.Context, modelKey string) (*models.ModelSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.Rows[modelKey]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *ModelSettingRepositoryMock) Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := models.ModelSetting{ModelKey: modelKey, Provider: provider, Enabled: enabled}
	m.Rows[modelKey] = row
	return &row, nil
}

func (m *ModelSettingRepositoryMock) SetProviderEnabled(ctx context.Context, provider string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, row := range m.Rows {
		if row.Provider == provider {
			row.Enabled = enabled
			m.Rows[key] = row
		}
	}
	return nil
}

func (m *ModelSettingRepositoryMock) ReplaceAll(ctx context.Context, settings []models.ModelSetting) error {
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(ctx, settings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rows = map[string]models.ModelSetting{}
	for _, row := range settings {
		m.Rows[row.ModelKey] = row
	}
	return nil
}
