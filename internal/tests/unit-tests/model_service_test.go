package unit_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickhelper/internal/models"
	"clickhelper/internal/services"
	"clickhelper/internal/tests/mocks"
)

func startCatalog(t *testing.T, repo *mocks.ModelSettingRepositoryMock) services.ModelConfigService {
	t.Helper()
	svc := services.NewModelConfigService(repo)
	require.NoError(t, svc.Startup(context.Background()))
	return svc
}

func TestModelConfigService_StartupSeedsEnabledToggles(t *testing.T) {
	repo := mocks.NewModelSettingRepositoryMock()
	svc := startCatalog(t, repo)

	groups, err := svc.ListModelGroups()
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "gemini", groups[0].ProviderID)

	seeded := 0
	for _, g := range groups {
		for _, m := range g.Models {
			assert.True(t, m.Enabled, m.Key)
			seeded++
		}
	}
	assert.Len(t, repo.Rows, seeded)
}

func TestModelConfigService_StartupKeepsStoredToggle(t *testing.T) {
	repo := mocks.NewModelSettingRepositoryMock()
	repo.Rows["gemini|gemini-2.5-pro"] = models.ModelSetting{ModelKey: "gemini|gemini-2.5-pro", Provider: "gemini", Enabled: false}
	svc := startCatalog(t, repo)

	m, err := svc.GetModel("gemini|gemini-2.5-pro")
	require.NoError(t, err)
	assert.False(t, m.Enabled)
	assert.Equal(t, 5, m.RequestsPerMinute)
	assert.Equal(t, 100, m.RequestsPerDay)
}

func TestModelConfigService_ResolveEnabled(t *testing.T) {
	svc := startCatalog(t, mocks.NewModelSettingRepositoryMock())

	m, err := svc.ResolveEnabled("gemini|gemini-2.0-flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", m.APIName)

	_, err = svc.SetModelEnabled(context.Background(), "gemini|gemini-2.0-flash", false)
	require.NoError(t, err)
	_, err = svc.ResolveEnabled("gemini|gemini-2.0-flash")
	assert.ErrorIs(t, err, services.ErrModelDisabled)

	_, err = svc.ResolveEnabled("gemini|nope")
	assert.Error(t, err)
}

func TestModelConfigService_SetProviderEnabled(t *testing.T) {
	repo := mocks.NewModelSettingRepositoryMock()
	svc := startCatalog(t, repo)

	updated, err := svc.SetProviderEnabled(context.Background(), "openai", false)
	require.NoError(t, err)
	require.NotEmpty(t, updated)
	for _, m := range updated {
		assert.Equal(t, "openai", m.ProviderID)
		assert.False(t, m.Enabled)
		assert.False(t, repo.Rows[m.Key].Enabled)
	}

	_, err = svc.SetProviderEnabled(context.Background(), "mistral", false)
	assert.Error(t, err)
}
