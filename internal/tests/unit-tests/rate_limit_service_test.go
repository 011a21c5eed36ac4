package unit_tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"clickhelper/internal/models"
	"clickhelper/internal/services"
	"clickhelper/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitService_MinuteWindowIsRolling(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := services.NewRateLimitService(mocks.NewMemoryKV(), clock.Now)
	model := &models.LLMModel{Key: "gemini|flash", RequestsPerMinute: 2}

	require.NoError(t, svc.Check(ctx, model))
	require.NoError(t, svc.Record(ctx, model.Key))
	clock.Advance(30 * time.Second)
	require.NoError(t, svc.Record(ctx, model.Key))

	err := svc.Check(ctx, model)
	var rlErr *services.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, services.WindowMinute, rlErr.Window)
	assert.ErrorIs(t, err, services.ErrRateLimited)

	// first hit leaves the window 60s after it was made
	clock.Advance(31 * time.Second)
	assert.NoError(t, svc.Check(ctx, model))
}

func TestRateLimitService_DayResetsOnCalendarDate(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock(time.Date(2025, 3, 10, 23, 58, 0, 0, time.UTC))
	svc := services.NewRateLimitService(mocks.NewMemoryKV(), clock.Now)
	model := &models.LLMModel{Key: "gemini|flash", RequestsPerDay: 1}

	require.NoError(t, svc.Record(ctx, model.Key))
	err := svc.Check(ctx, model)
	var rlErr *services.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, services.WindowDay, rlErr.Window)

	// three minutes later is a new date, well short of 24h
	clock.Advance(3 * time.Minute)
	assert.NoError(t, svc.Check(ctx, model))
}

func TestRateLimitService_DayCountDoesNotRollWithin24h(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock(time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC))
	svc := services.NewRateLimitService(mocks.NewMemoryKV(), clock.Now)
	model := &models.LLMModel{Key: "m", RequestsPerDay: 2}

	require.NoError(t, svc.Record(ctx, model.Key))
	clock.Advance(20 * time.Hour)
	require.NoError(t, svc.Record(ctx, model.Key))

	usage, err := svc.Usage(ctx, model)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.DayCount)
	assert.Equal(t, 1, usage.MinuteCount)
	assert.Error(t, svc.Check(ctx, model))
}

func TestRateLimitService_ZeroMeansUnlimited(t *testing.T) {
	ctx := context.Background()
	svc := services.NewRateLimitService(mocks.NewMemoryKV(), nil)
	model := &models.LLMModel{Key: "m"}

	for i := 0; i < 50; i++ {
		require.NoError(t, svc.Record(ctx, model.Key))
	}
	assert.NoError(t, svc.Check(ctx, model))
}

func TestRateLimitService_PerModelAndPersisted(t *testing.T) {
	ctx := context.Background()
	kv := mocks.NewMemoryKV()
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	first := services.NewRateLimitService(kv, clock.Now)
	a := &models.LLMModel{Key: "a", RequestsPerMinute: 1}
	b := &models.LLMModel{Key: "b", RequestsPerMinute: 1}

	require.NoError(t, first.Record(ctx, a.Key))

	second := services.NewRateLimitService(kv, clock.Now)
	assert.ErrorIs(t, second.Check(ctx, a), services.ErrRateLimited)
	assert.NoError(t, second.Check(ctx, b))

	require.NoError(t, second.Reset(ctx, a.Key))
	assert.NoError(t, second.Check(ctx, a))
}
