package integration_tests

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickhelper/internal/database"
	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
	"clickhelper/internal/services"
	"clickhelper/internal/tests/mocks"
)

func TestBackupImport_FailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	db, err := database.Init(database.Config{Path: filepath.Join(t.TempDir(), "clickhelper.db")})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	kv := repositories.NewKVRepository(db)
	toggles := repositories.NewModelSettingRepository(db)
	require.NoError(t, kv.Set(ctx, models.PartitionLocal, map[string]json.RawMessage{"before": json.RawMessage(`"local"`)}))
	require.NoError(t, kv.Set(ctx, models.PartitionSync, map[string]json.RawMessage{"before": json.RawMessage(`"sync"`)}))
	_, err = toggles.Upsert(ctx, "openai|gpt-4o", "openai", true)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "backup.json", []byte(`{
		"version": 1,
		"local": {"after": 1},
		"sync": {"after": 2},
		"modelSettings": [{"provider": "gemini", "modelKey": "gemini|gemini-2.5-pro", "enabled": false}],
		"templates": [{"name": "mr", "content": "{{.TaskID}}"}]
	}`), 0o600))

	templates := &mocks.TemplateRepositoryMock{
		CreateFunc: func(context.Context, *models.Template) error { return errors.New("disk full") },
	}
	svc := services.NewBackupService(fs, kv, toggles, templates, repositories.NewTransactor(db), nil)

	_, err = svc.Import(ctx, "backup.json")
	require.ErrorContains(t, err, "disk full")

	local, err := kv.All(ctx, models.PartitionLocal)
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.JSONEq(t, `"local"`, string(local["before"]))
	sync, err := kv.All(ctx, models.PartitionSync)
	require.NoError(t, err)
	require.Len(t, sync, 1)
	assert.JSONEq(t, `"sync"`, string(sync["before"]))
	list, err := toggles.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "openai|gpt-4o", list[0].ModelKey)
}
