package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

func TestModelSettingRepository_UpsertStoresFalse(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewModelSettingRepository(openTestDB(t))

	_, err := repo.Upsert(ctx, "gemini|gemini-2.5-pro", "gemini", false)
	require.NoError(t, err)

	got, err := repo.GetByKey(ctx, "gemini|gemini-2.5-pro")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Enabled)

	_, err = repo.Upsert(ctx, "gemini|gemini-2.5-pro", "gemini", true)
	require.NoError(t, err)
	got, err = repo.GetByKey(ctx, "gemini|gemini-2.5-pro")
	require.NoError(t, err)
	assert.True(t, got.Enabled)
}

func TestModelSettingRepository_GetByKeyMissing(t *testing.T) {
	repo := repositories.NewModelSettingRepository(openTestDB(t))

	got, err := repo.GetByKey(context.Background(), "openai|gpt-4o")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestModelSettingRepository_SetProviderEnabled(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewModelSettingRepository(openTestDB(t))
	for _, key := range []string{"openai|gpt-4o", "openai|gpt-4o-mini"} {
		_, err := repo.Upsert(ctx, key, "openai", true)
		require.NoError(t, err)
	}
	_, err := repo.Upsert(ctx, "gemini|gemini-2.0-flash", "gemini", true)
	require.NoError(t, err)

	require.NoError(t, repo.SetProviderEnabled(ctx, "openai", false))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	enabled := map[string]bool{}
	for _, s := range list {
		enabled[s.ModelKey] = s.Enabled
	}
	assert.Equal(t, map[string]bool{
		"gemini|gemini-2.0-flash": true,
		"openai|gpt-4o":           false,
		"openai|gpt-4o-mini":      false,
	}, enabled)
}

func TestModelSettingRepository_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewModelSettingRepository(openTestDB(t))
	_, err := repo.Upsert(ctx, "openai|gpt-4o", "openai", true)
	require.NoError(t, err)

	err = repo.ReplaceAll(ctx, []models.ModelSetting{
		{ID: 42, ModelKey: "gemini|gemini-2.5-pro", Provider: "gemini", Enabled: false},
		{ModelKey: "anthropic|claude-3-5-haiku-latest", Provider: "anthropic", Enabled: true},
	})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "anthropic|claude-3-5-haiku-latest", list[0].ModelKey)
	assert.True(t, list[0].Enabled)
	assert.Equal(t, "gemini|gemini-2.5-pro", list[1].ModelKey)
	assert.False(t, list[1].Enabled)
}
