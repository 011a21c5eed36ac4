package repositories_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clickhelper/internal/database"
	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestKVRepository_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewKVRepository(openTestDB(t))

	err := kv.Set(ctx, models.PartitionLocal, map[string]json.RawMessage{
		"a": json.RawMessage(`{"n":1}`),
		"b": json.RawMessage(`[1,2]`),
	})
	require.NoError(t, err)

	got, err := kv.Get(ctx, models.PartitionLocal, "a", "b", "missing")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.JSONEq(t, `{"n":1}`, string(got["a"]))
	assert.JSONEq(t, `[1,2]`, string(got["b"]))

	require.NoError(t, kv.Remove(ctx, models.PartitionLocal, "a"))
	got, err = kv.Get(ctx, models.PartitionLocal, "a", "b")
	require.NoError(t, err)
	assert.NotContains(t, got, "a")
	assert.Contains(t, got, "b")
}

func TestKVRepository_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewKVRepository(openTestDB(t))

	require.NoError(t, repositories.SetJSON(ctx, kv, models.PartitionSync, "k", map[string]int{"v": 1}))
	require.NoError(t, repositories.SetJSON(ctx, kv, models.PartitionSync, "k", map[string]int{"v": 2}))

	var out map[string]int
	found, err := repositories.GetJSON(ctx, kv, models.PartitionSync, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, out["v"])
}

func TestKVRepository_PartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewKVRepository(openTestDB(t))

	require.NoError(t, repositories.SetJSON(ctx, kv, models.PartitionLocal, "k", "local"))
	require.NoError(t, repositories.SetJSON(ctx, kv, models.PartitionSync, "k", "sync"))

	var local, sync string
	_, err := repositories.GetJSON(ctx, kv, models.PartitionLocal, "k", &local)
	require.NoError(t, err)
	_, err = repositories.GetJSON(ctx, kv, models.PartitionSync, "k", &sync)
	require.NoError(t, err)
	assert.Equal(t, "local", local)
	assert.Equal(t, "sync", sync)
}

func TestKVRepository_Replace(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewKVRepository(openTestDB(t))

	require.NoError(t, repositories.SetJSON(ctx, kv, models.PartitionLocal, "old", 1))
	require.NoError(t, kv.Replace(ctx, models.PartitionLocal, map[string]json.RawMessage{
		"new": json.RawMessage(`2`),
	}))

	all, err := kv.All(ctx, models.PartitionLocal)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.JSONEq(t, `2`, string(all["new"]))
}

func TestGetJSON_MissingKey(t *testing.T) {
	kv := repositories.NewKVRepository(openTestDB(t))

	var out []string
	found, err := repositories.GetJSON(context.Background(), kv, models.PartitionLocal, "nope", &out)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)
}

func TestSettingsRepository_DefaultsWhenEmpty(t *testing.T) {
	repo := repositories.NewSettingsRepository(repositories.NewKVRepository(openTestDB(t)))

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dnd", settings.Presence.Default.Availability)
	assert.Equal(t, "In a meeting", settings.Presence.Default.Text)
}

func TestTemplateRepository_GetByName(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewTemplateRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Template{Name: "review", Content: "{{.TaskID}}"}))

	tmpl, err := repo.GetByName(ctx, "review")
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	assert.Equal(t, "{{.TaskID}}", tmpl.Content)

	missing, err := repo.GetByName(ctx, "other")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
