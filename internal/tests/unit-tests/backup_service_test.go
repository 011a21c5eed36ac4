package unit_tests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
	"clickhelper/internal/services"
	"clickhelper/internal/tests/mocks"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTemplates backs a TemplateRepositoryMock with a slice.
func memTemplates() (*mocks.TemplateRepositoryMock, *[]*models.Template) {
	var rows []*models.Template
	repo := &mocks.TemplateRepositoryMock{
		GetAllFunc: func(ctx context.Context) ([]*models.Template, error) {
			return rows, nil
		},
		GetByNameFunc: func(ctx context.Context, name string) (*models.Template, error) {
			for _, r := range rows {
				if r.Name == name {
					return r, nil
				}
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, tmpl *models.Template) error {
			tmpl.ID = uint(len(rows) + 1)
			rows = append(rows, tmpl)
			return nil
		},
	}
	return repo, &rows
}

func TestBackupService_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	clock := newTestClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))

	srcKV := mocks.NewMemoryKV()
	history := services.NewHistoryService(srcKV, clock.Now)
	_, err := history.Append(ctx, models.HistoryEntry{TaskID: "WDEV-1", TaskTitle: "First", BranchName: "feature/wdev-1"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = history.Append(ctx, models.HistoryEntry{TaskID: "WDEV-2", TaskTitle: "Second", TaskPriority: models.PriorityUrgent})
	require.NoError(t, err)

	settings := services.NewSettingsService(repositories.NewSettingsRepository(srcKV), clock.Now)
	custom := repositories.DefaultSettings()
	custom.Generation.BranchRules = "feature/<id>-<slug>"
	custom.Presence.FilteredRooms = []string{"lunch"}
	_, err = settings.Update(ctx, custom)
	require.NoError(t, err)

	srcModels := mocks.NewModelSettingRepositoryMock()
	_, err = srcModels.Upsert(ctx, "gemini|gemini-2.5-pro", "gemini", false)
	require.NoError(t, err)
	srcTemplates, _ := memTemplates()
	require.NoError(t, srcTemplates.Create(ctx, &models.Template{Name: "mr", Content: "{{.TaskID}}"}))

	exporter := services.NewBackupService(fs, srcKV, srcModels, srcTemplates, nil, clock.Now)
	_, err = exporter.Export(ctx, "/backups/clickhelper.json")
	require.NoError(t, err)

	dstKV := mocks.NewMemoryKV()
	dstModels := mocks.NewModelSettingRepositoryMock()
	dstTemplates, dstRows := memTemplates()
	importer := services.NewBackupService(fs, dstKV, dstModels, dstTemplates, nil, clock.Now)
	_, err = importer.Import(ctx, "/backups/clickhelper.json")
	require.NoError(t, err)

	want, err := history.List(ctx)
	require.NoError(t, err)
	got, err := services.NewHistoryService(dstKV, clock.Now).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantSettings, err := settings.Get(ctx)
	require.NoError(t, err)
	gotSettings, err := services.NewSettingsService(repositories.NewSettingsRepository(dstKV), clock.Now).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantSettings, gotSettings)

	toggle, err := dstModels.GetByKey(ctx, "gemini|gemini-2.5-pro")
	require.NoError(t, err)
	require.NotNil(t, toggle)
	assert.False(t, toggle.Enabled)

	require.Len(t, *dstRows, 1)
	assert.Equal(t, "mr", (*dstRows)[0].Name)
}

func TestBackupService_ImportRejectsInvalidHistory(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.json", []byte(`{"version":1,"local":{"history":[{"taskId":"","taskTitle":"x"}]},"sync":{}}`), 0o600))

	kv := mocks.NewMemoryKV()
	replaced := false
	kv.ReplaceFunc = func(context.Context, models.Partition, map[string]json.RawMessage) error {
		replaced = true
		return nil
	}
	templates, _ := memTemplates()
	svc := services.NewBackupService(fs, kv, mocks.NewModelSettingRepositoryMock(), templates, nil, nil)

	_, err := svc.Import(ctx, "bad.json")
	assert.Error(t, err)
	assert.False(t, replaced)
}

func TestBackupService_ImportMissingFile(t *testing.T) {
	templates, _ := memTemplates()
	svc := services.NewBackupService(afero.NewMemMapFs(), mocks.NewMemoryKV(), mocks.NewModelSettingRepositoryMock(), templates, nil, nil)

	_, err := svc.Import(context.Background(), "nope.json")
	assert.Error(t, err)
}

func TestBackupService_ImportRejectsUnknownVersion(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "future.json", []byte(`{"version":99}`), 0o600))
	templates, _ := memTemplates()
	svc := services.NewBackupService(fs, mocks.NewMemoryKV(), mocks.NewModelSettingRepositoryMock(), templates, nil, nil)

	_, err := svc.Import(context.Background(), "future.json")
	assert.ErrorContains(t, err, "unsupported version")
}
