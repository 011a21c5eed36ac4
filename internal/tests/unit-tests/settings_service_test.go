package unit_tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
	"clickhelper/internal/services"
	"clickhelper/internal/tests/mocks"
)

func newSettingsService(now time.Time) services.SettingsService {
	return services.NewSettingsService(repositories.NewSettingsRepository(mocks.NewMemoryKV()), func() time.Time { return now })
}

func TestSettingsService_GetReturnsDefaults(t *testing.T) {
	svc := newSettingsService(time.Now())

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repositories.DefaultSettings(), got)
}

func TestSettingsService_UpdateNormalizesAndStamps(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	svc := newSettingsService(now)
	ctx := context.Background()

	s := repositories.DefaultSettings()
	s.Chat.ServerURL = " https://chat.example.com/ "
	s.Chat.UserID = " u-1 "
	s.Presence.FilteredRooms = []string{"Standup", " ", "standup", "retro"}

	saved, err := svc.Update(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", saved.Chat.ServerURL)
	assert.Equal(t, "u-1", saved.Chat.UserID)
	assert.Equal(t, []string{"Standup", "retro"}, saved.Presence.FilteredRooms)
	assert.Equal(t, "2025-05-02T09:30:00Z", saved.UpdatedAt)

	reloaded, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, reloaded)
}

func TestSettingsService_UpdateRejectsInvalid(t *testing.T) {
	svc := newSettingsService(time.Now())

	s := repositories.DefaultSettings()
	s.Generation.Temperature = 3
	_, err := svc.Update(context.Background(), s)
	assert.ErrorContains(t, err, "Temperature")

	s = repositories.DefaultSettings()
	s.Presence.RoomOverrides = map[string]models.StatusOverride{"r1": {Availability: "busy"}}
	_, err = svc.Update(context.Background(), s)
	assert.ErrorContains(t, err, "Availability")
}

func TestSettingsService_Reset(t *testing.T) {
	svc := newSettingsService(time.Now())
	ctx := context.Background()

	s := repositories.DefaultSettings()
	s.Generation.Language = "fr"
	_, err := svc.Update(ctx, s)
	require.NoError(t, err)

	reset, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en", reset.Generation.Language)
}
