package integration_tests

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickhelper/internal/database"
	"clickhelper/internal/extractor"
	"clickhelper/internal/llm/client"
	"clickhelper/internal/models"
	"clickhelper/internal/services"
)

type fixedAnswer string

func (a fixedAnswer) Generate(context.Context, string) (string, error) {
	return string(a), nil
}

func openServices(t *testing.T, answer string) *services.DbServices {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Init(database.Config{Path: filepath.Join(dir, "clickhelper.db")})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	svc := services.NewDbServices(db, services.Options{
		Keyring: keyring.NewArrayKeyring(nil),
		Fs:      afero.NewOsFs(),
		Factory: func(context.Context, client.Config) (client.TextGenerator, error) {
			return fixedAnswer(answer), nil
		},
	})
	require.NoError(t, svc.StartDbServices(context.Background()))
	return svc
}

func TestDbServices_GenerateThenRevisit(t *testing.T) {
	ctx := context.Background()
	svc := openServices(t, "BRANCH: feature/wdev-12-fix-login\nCOMMIT: WDEV-12 Fix login redirect loop")
	require.NoError(t, svc.Keys.StoreApiKey("gemini", []byte("test-key")))

	res, err := svc.Generation.Generate(ctx, services.GenerateRequest{
		Task:          models.TaskData{ID: "WDEV-12", Title: "Fix login", URL: "https://app.clickup.com/t/86c1"},
		SaveToHistory: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "feature/wdev-12-fix-login", res.BranchName)

	found := svc.AutoSearch.Search(ctx, extractor.Page{URL: "https://app.clickup.com/t/86c1?comment=9"})
	require.Len(t, found.Matches, 1)
	assert.Equal(t, models.MatchExactURL, found.Matches[0].MatchType)
	assert.Equal(t, "WDEV-12", found.Matches[0].TaskID)

	model, err := svc.Models.GetModel("gemini|gemini-2.0-flash")
	require.NoError(t, err)
	usage, err := svc.RateLimits.Usage(ctx, model)
	require.NoError(t, err)
	assert.Equal(t, 1, usage.MinuteCount)
}

func TestDbServices_BackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openServices(t, "")
	_, err := src.History.Append(ctx, models.HistoryEntry{TaskID: "T-1", TaskTitle: "First", BranchName: "feature/t-1"})
	require.NoError(t, err)
	_, err = src.Models.SetModelEnabled(ctx, "gemini|gemini-2.5-pro", false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup.json")
	_, err = src.Backup.Export(ctx, path)
	require.NoError(t, err)

	dst := openServices(t, "")
	_, err = dst.Backup.Import(ctx, path)
	require.NoError(t, err)

	entries, err := dst.History.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "feature/t-1", entries[0].BranchName)

	_, err = dst.Models.ResolveEnabled("gemini|gemini-2.5-pro")
	assert.ErrorIs(t, err, services.ErrModelDisabled)

	list, err := dst.Templates.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	out, err := dst.Templates.Render(ctx, list[0].ID, entries[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Please review T-1"))
}
