package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) (*models.Settings, error)
	Reset(ctx context.Context) (*models.Settings, error)
}

type settingsService struct {
	settings repositories.SettingsRepository
	now      func() time.Time
}

func NewSettingsService(settings repositories.SettingsRepository, now func() time.Time) SettingsService {
	if now == nil {
		now = time.Now
	}
	return &settingsService{settings: settings, now: now}
}

func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *settingsService) Update(ctx context.Context, settings *models.Settings) (*models.Settings, error) {
	if settings == nil {
		return nil, errors.New("settings are required")
	}
	normalizeSettings(settings)
	if err := validateStruct(settings); err != nil {
		return nil, err
	}
	settings.UpdatedAt = s.now().Format(time.RFC3339)
	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) Reset(ctx context.Context) (*models.Settings, error) {
	return s.Update(ctx, repositories.DefaultSettings())
}

// ValidateSettings normalizes settings in place and checks them without storing anything.
func ValidateSettings(settings *models.Settings) error {
	normalizeSettings(settings)
	return validateStruct(settings)
}

func normalizeSettings(settings *models.Settings) {
	settings.Chat.ServerURL = strings.TrimRight(strings.TrimSpace(settings.Chat.ServerURL), "/")
	settings.Chat.UserID = strings.TrimSpace(settings.Chat.UserID)

	rooms := settings.Presence.FilteredRooms[:0:0]
	seen := make(map[string]struct{}, len(settings.Presence.FilteredRooms))
	for _, room := range settings.Presence.FilteredRooms {
		room = strings.TrimSpace(room)
		key := strings.ToLower(room)
		if room == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rooms = append(rooms, room)
	}
	settings.Presence.FilteredRooms = rooms
}
