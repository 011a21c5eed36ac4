package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	"clickhelper/internal/events"
	"clickhelper/internal/extractor"
	"clickhelper/internal/models"
	"clickhelper/internal/services"
	"clickhelper/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeneration struct {
	result *models.GenerationResult
	err    error
}

func (s stubGeneration) Generate(context.Context, services.GenerateRequest) (*models.GenerationResult, error) {
	return s.result, s.err
}

func (s stubGeneration) EstimateTime(context.Context, int, string) (*models.HistoryEntry, error) {
	return nil, s.err
}

type stubPresence struct {
	err error
}

func (s stubPresence) SetMeetingStatus(context.Context, string, string) (*models.StatusRecord, error) {
	return nil, s.err
}

func (s stubPresence) ClearMeetingStatus(context.Context, string) (*models.StatusRecord, error) {
	return nil, s.err
}

func (s stubPresence) History(context.Context) ([]models.StatusRecord, error) { return nil, s.err }
func (s stubPresence) ClearHistory(context.Context) error                     { return s.err }

type stubAutoSearch struct {
	result services.AutoSearchResult
}

func (s stubAutoSearch) Search(context.Context, extractor.Page) services.AutoSearchResult {
	return s.result
}

func captureNotifications(t *testing.T) *[]events.Notification {
	t.Helper()
	var got []events.Notification
	events.SetCustomEmitter(func(_ context.Context, _ string, n events.Notification) {
		got = append(got, n)
	})
	t.Cleanup(events.ResetEmitter)
	return &got
}

func TestRouter_GenerateSuccessNotifies(t *testing.T) {
	notes := captureNotifications(t)
	r := &Router{Generation: stubGeneration{result: &models.GenerationResult{BranchName: "feature/x", CommitMessage: "X"}}}

	reply, err := r.Dispatch(context.Background(), Generate{})
	require.NoError(t, err)
	assert.Equal(t, "feature/x", reply.(*models.GenerationResult).BranchName)
	require.Len(t, *notes, 1)
	assert.Equal(t, events.LevelSuccess, (*notes)[0].Level)
}

func TestRouter_GenerateFailureSurfacesWithHint(t *testing.T) {
	notes := captureNotifications(t)
	upstream := &services.UpstreamError{Provider: "gemini", Status: 429, Message: "quota"}
	r := &Router{Generation: stubGeneration{err: upstream}}

	_, err := r.Dispatch(context.Background(), Generate{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, upstream))
	require.Len(t, *notes, 1)
	assert.Equal(t, events.LevelError, (*notes)[0].Level)
	assert.Equal(t, upstream.Hint(), (*notes)[0].Metadata["hint"])
}

func TestRouter_PresenceFailureIsSilent(t *testing.T) {
	notes := captureNotifications(t)
	r := &Router{Presence: stubPresence{err: services.ErrAuthMissing}}

	reply, err := r.Dispatch(context.Background(), SetMeetingStatus{RoomID: "r", Title: "t"})
	assert.NoError(t, err)
	assert.Nil(t, reply)

	reply, err = r.Dispatch(context.Background(), ClearMeetingStatus{RoomID: "r"})
	assert.NoError(t, err)
	assert.Nil(t, reply)
	assert.Empty(t, *notes)
}

func TestRouter_AutoSearchReturnsResult(t *testing.T) {
	want := services.AutoSearchResult{Matches: []models.MatchResult{{MatchType: models.MatchExactURL}}}
	r := &Router{AutoSearch: stubAutoSearch{result: want}}

	reply, err := r.Dispatch(context.Background(), AutoSearch{Page: extractor.Page{URL: "https://app.clickup.com/t/abc"}})
	require.NoError(t, err)
	assert.Equal(t, want, reply)
}

func TestRouter_SaveEditDeleteGoThroughHistory(t *testing.T) {
	captureNotifications(t)
	history := services.NewHistoryService(mocks.NewMemoryKV(), func() time.Time { return time.UnixMilli(1_700_000_000_000) })
	r := &Router{History: history}
	ctx := context.Background()

	reply, err := r.Dispatch(ctx, SaveTask{Task: models.TaskData{ID: "WDEV-3", Priority: "high"}})
	require.NoError(t, err)
	saved := reply.(*models.HistoryEntry)
	assert.Equal(t, "WDEV-3", saved.TaskTitle)
	assert.Equal(t, models.PriorityHigh, saved.TaskPriority)

	title := "Renamed"
	reply, err = r.Dispatch(ctx, EditEntry{Index: 0, Patch: models.HistoryPatch{TaskTitle: &title}})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reply.(*models.HistoryEntry).TaskTitle)

	_, err = r.Dispatch(ctx, DeleteEntry{Index: 0})
	require.NoError(t, err)
	entries, err := history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = r.Dispatch(ctx, DeleteEntry{Index: 4})
	assert.ErrorIs(t, err, services.ErrEntryNotFound)
}

func TestRouter_SaveTaskWithoutIDFails(t *testing.T) {
	notes := captureNotifications(t)
	r := &Router{History: services.NewHistoryService(mocks.NewMemoryKV(), nil)}

	_, err := r.Dispatch(context.Background(), SaveTask{})
	require.Error(t, err)
	require.Len(t, *notes, 1)
	assert.Equal(t, events.LevelError, (*notes)[0].Level)
}
