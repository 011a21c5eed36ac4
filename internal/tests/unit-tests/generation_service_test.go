package unit_tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clickhelper/internal/llm/client"
	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
	"clickhelper/internal/services"
	"clickhelper/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultModelKey = "gemini|gemini-2.0-flash"

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type generationFixture struct {
	svc      services.GenerationService
	history  services.HistoryService
	limits   services.RateLimitService
	catalog  services.ModelConfigService
	keys     *mocks.TokenStoreMock
	clock    *testClock
	prompts  []string
	configs  []client.Config
	response string
	err      error
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	ctx := context.Background()
	kv := mocks.NewMemoryKV()
	f := &generationFixture{
		clock:    newTestClock(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)),
		keys:     &mocks.TokenStoreMock{APIKeys: map[string]string{"gemini": "g-key"}},
		response: "BRANCH: feature/wdev-12-fix-login\nCOMMIT: WDEV-12 Fix login redirect",
	}

	f.catalog = services.NewModelConfigService(mocks.NewModelSettingRepositoryMock())
	require.NoError(t, f.catalog.Startup(ctx))
	f.history = services.NewHistoryService(kv, f.clock.Now)
	f.limits = services.NewRateLimitService(kv, f.clock.Now)
	settings := services.NewSettingsService(repositories.NewSettingsRepository(kv), f.clock.Now)

	f.svc = services.NewGenerationService(services.GenerationDeps{
		Settings: settings,
		Catalog:  f.catalog,
		Keys:     f.keys,
		Limits:   f.limits,
		History:  f.history,
		Factory: func(_ context.Context, cfg client.Config) (client.TextGenerator, error) {
			f.configs = append(f.configs, cfg)
			return generatorFunc(func(_ context.Context, prompt string) (string, error) {
				f.prompts = append(f.prompts, prompt)
				return f.response, f.err
			}), nil
		},
	})
	return f
}

func (f *generationFixture) usage(t *testing.T) *services.RateLimitUsage {
	t.Helper()
	model, err := f.catalog.GetModel(defaultModelKey)
	require.NoError(t, err)
	usage, err := f.limits.Usage(context.Background(), model)
	require.NoError(t, err)
	return usage
}

func sampleRequest() services.GenerateRequest {
	return services.GenerateRequest{
		Task: models.TaskData{
			ID:       "WDEV-12",
			Title:    "Fix login redirect",
			Priority: "urgent",
			URL:      "https://app.clickup.com/t/86abc",
		},
		SaveToHistory: true,
	}
}

func TestGenerationService_SuccessRecordsHitAndSavesHistory(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	res, err := f.svc.Generate(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "feature/wdev-12-fix-login", res.BranchName)
	assert.Equal(t, "WDEV-12 Fix login redirect", res.CommitMessage)

	require.Len(t, f.configs, 1)
	assert.Equal(t, client.ProviderGemini, f.configs[0].Provider)
	assert.Equal(t, "gemini-2.0-flash", f.configs[0].Model)
	assert.Equal(t, "g-key", f.configs[0].APIKey)
	require.Len(t, f.prompts, 1)
	assert.Contains(t, f.prompts[0], "WDEV-12")
	assert.Contains(t, f.prompts[0], "Fix login redirect")

	usage := f.usage(t)
	assert.Equal(t, 1, usage.MinuteCount)
	assert.Equal(t, 1, usage.DayCount)

	entries, err := f.history.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WDEV-12", entries[0].TaskID)
	assert.Equal(t, models.PriorityUrgent, entries[0].TaskPriority)
	assert.Equal(t, "https://app.clickup.com/t/86abc", entries[0].SourceURL)
	assert.Equal(t, "feature/wdev-12-fix-login", entries[0].BranchName)
}

func TestGenerationService_RequestRulesOverrideSettings(t *testing.T) {
	f := newGenerationFixture(t)
	req := sampleRequest()
	req.Rules.BranchRules = "always prefix with hotfix/"

	_, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, f.prompts[0], "always prefix with hotfix/")
}

func TestGenerationService_MissingCredential(t *testing.T) {
	f := newGenerationFixture(t)
	f.keys.APIKeys = nil

	_, err := f.svc.Generate(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, services.ErrMissingCredential)
	assert.Empty(t, f.prompts)
}

func TestGenerationService_DisabledModel(t *testing.T) {
	f := newGenerationFixture(t)
	_, err := f.catalog.SetModelEnabled(context.Background(), defaultModelKey, false)
	require.NoError(t, err)

	_, err = f.svc.Generate(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, services.ErrModelDisabled)
}

func TestGenerationService_RateLimitedBeforeCallingProvider(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()
	req := sampleRequest()
	req.SaveToHistory = false

	// gemini-2.0-flash allows 15 requests per minute
	for i := 0; i < 15; i++ {
		_, err := f.svc.Generate(ctx, req)
		require.NoError(t, err)
	}
	_, err := f.svc.Generate(ctx, req)

	var rlErr *services.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, services.WindowMinute, rlErr.Window)
	assert.Len(t, f.prompts, 15)

	f.clock.Advance(61 * time.Second)
	_, err = f.svc.Generate(ctx, req)
	assert.NoError(t, err)
}

func TestGenerationService_UpstreamErrorCarriesHint(t *testing.T) {
	f := newGenerationFixture(t)
	f.err = &client.StatusError{StatusCode: 429, Message: "Resource has been exhausted"}

	_, err := f.svc.Generate(context.Background(), sampleRequest())

	var upstream *services.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 429, upstream.Status)
	assert.Equal(t, "gemini", upstream.Provider)
	assert.True(t, strings.Contains(upstream.Hint(), "quota"))

	usage := f.usage(t)
	assert.Zero(t, usage.MinuteCount)
}

func TestGenerationService_CancellationPassesThrough(t *testing.T) {
	f := newGenerationFixture(t)
	f.err = context.Canceled

	_, err := f.svc.Generate(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, context.Canceled)
	var upstream *services.UpstreamError
	assert.False(t, errors.As(err, &upstream))
}

func TestGenerationService_UnparseableAnswer(t *testing.T) {
	f := newGenerationFixture(t)
	f.response = "Sure! Here is a branch name for you: fix-login"

	_, err := f.svc.Generate(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, services.ErrParse)

	usage := f.usage(t)
	assert.Zero(t, usage.DayCount)
	entries, lErr := f.history.List(context.Background())
	require.NoError(t, lErr)
	assert.Empty(t, entries)
}

func TestGenerationService_EmptyAnswerIsParseError(t *testing.T) {
	f := newGenerationFixture(t)
	f.response = ""
	f.err = client.ErrEmptyResponse

	_, err := f.svc.Generate(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, services.ErrParse)
	var upstream *services.UpstreamError
	assert.False(t, errors.As(err, &upstream))
	assert.Zero(t, f.usage(t).DayCount)
}

func TestGenerationService_RequiresTaskIdentity(t *testing.T) {
	f := newGenerationFixture(t)

	_, err := f.svc.Generate(context.Background(), services.GenerateRequest{})
	assert.Error(t, err)
	assert.Empty(t, f.configs)
}

func TestGenerationService_EstimateTimeAttachesToEntry(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()
	_, err := f.history.Append(ctx, models.HistoryEntry{TaskID: "WDEV-7", TaskTitle: "Add export"})
	require.NoError(t, err)
	f.response = "Here you go:\n```json\n{\"junior\":\"3d\",\"mid\":\"2d\",\"senior\":\"1d\",\"reasoning\":\"small feature\"}\n```"

	entry, err := f.svc.EstimateTime(ctx, 0, "")
	require.NoError(t, err)
	require.NotNil(t, entry.TimeEstimation)
	assert.Equal(t, "2d", entry.TimeEstimation.Mid)
	assert.Equal(t, "small feature", entry.TimeEstimation.Reasoning)
	assert.NotZero(t, entry.TimeEstimation.Timestamp)
	assert.Contains(t, f.prompts[0], "Add export")

	_, err = f.svc.EstimateTime(ctx, 5, "")
	assert.ErrorIs(t, err, services.ErrEntryNotFound)
}
