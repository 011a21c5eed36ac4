package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

const (
	rateLimitsKey = "rateLimits"
	minuteWindow  = time.Minute
	dayLayout     = "2006-01-02"
)

// RateLimitUsage is the current consumption of one model, for display.
type RateLimitUsage struct {
	ModelKey    string `json:"modelKey"`
	MinuteCount int    `json:"minuteCount"`
	MinuteLimit int    `json:"minuteLimit"`
	DayCount    int    `json:"dayCount"`
	DayLimit    int    `json:"dayLimit"`
	Day         string `json:"day"`
}

// RateLimitService enforces per-model request budgets.
//
// The minute budget is a rolling 60 second window. The day budget resets when the
// local calendar date changes, not 24 hours after the first request. A limit of
// zero disables that budget.
type RateLimitService interface {
	Check(ctx context.Context, model *models.LLMModel) error
	Record(ctx context.Context, modelKey string) error
	Usage(ctx context.Context, model *models.LLMModel) (*RateLimitUsage, error)
	Reset(ctx context.Context, modelKey string) error
}

type rateLimitService struct {
	kv  repositories.KVRepository
	now func() time.Time
	mu  sync.Mutex
}

func NewRateLimitService(kv repositories.KVRepository, now func() time.Time) RateLimitService {
	if now == nil {
		now = time.Now
	}
	return &rateLimitService{kv: kv, now: now}
}

func (s *rateLimitService) Check(ctx context.Context, model *models.LLMModel) error {
	if model == nil {
		return fmt.Errorf("model is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	states, err := s.load(ctx)
	if err != nil {
		return err
	}
	state := roll(states[model.Key], s.now())

	if model.RequestsPerMinute > 0 && len(state.MinuteHits) >= model.RequestsPerMinute {
		return &RateLimitError{ModelKey: model.Key, Window: WindowMinute, Limit: model.RequestsPerMinute}
	}
	if model.RequestsPerDay > 0 && state.DayCount >= model.RequestsPerDay {
		return &RateLimitError{ModelKey: model.Key, Window: WindowDay, Limit: model.RequestsPerDay}
	}
	return nil
}

func (s *rateLimitService) Record(ctx context.Context, modelKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	states, err := s.load(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	state := roll(states[modelKey], now)
	state.MinuteHits = append(state.MinuteHits, now.UnixMilli())
	state.DayCount++
	states[modelKey] = state
	return s.save(ctx, states)
}

func (s *rateLimitService) Usage(ctx context.Context, model *models.LLMModel) (*RateLimitUsage, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	states, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	state := roll(states[model.Key], s.now())
	return &RateLimitUsage{
		ModelKey:    model.Key,
		MinuteCount: len(state.MinuteHits),
		MinuteLimit: model.RequestsPerMinute,
		DayCount:    state.DayCount,
		DayLimit:    model.RequestsPerDay,
		Day:         state.Day,
	}, nil
}

func (s *rateLimitService) Reset(ctx context.Context, modelKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	states, err := s.load(ctx)
	if err != nil {
		return err
	}
	delete(states, modelKey)
	return s.save(ctx, states)
}

// roll drops minute hits that left the window and restarts the day counter on a new date.
func roll(state models.RateLimitState, now time.Time) models.RateLimitState {
	cutoff := now.Add(-minuteWindow).UnixMilli()
	kept := state.MinuteHits[:0:0]
	for _, hit := range state.MinuteHits {
		if hit > cutoff {
			kept = append(kept, hit)
		}
	}
	state.MinuteHits = kept

	today := now.Format(dayLayout)
	if state.Day != today {
		state.Day = today
		state.DayCount = 0
	}
	return state
}

func (s *rateLimitService) load(ctx context.Context) (map[string]models.RateLimitState, error) {
	states := map[string]models.RateLimitState{}
	if _, err := repositories.GetJSON(ctx, s.kv, models.PartitionLocal, rateLimitsKey, &states); err != nil {
		return nil, fmt.Errorf("loading rate limits: %w", err)
	}
	if states == nil {
		states = map[string]models.RateLimitState{}
	}
	return states, nil
}

func (s *rateLimitService) save(ctx context.Context, states map[string]models.RateLimitState) error {
	if err := repositories.SetJSON(ctx, s.kv, models.PartitionLocal, rateLimitsKey, states); err != nil {
		return fmt.Errorf("saving rate limits: %w", err)
	}
	return nil
}
