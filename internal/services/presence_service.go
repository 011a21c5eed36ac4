package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clickhelper/internal/chat"
	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

const (
	statusHistoryKey   = "statusHistory"
	StatusHistoryLimit = 100
	titlePlaceholder   = "{{title}}"
)

// Fallbacks used when neither a room override nor the global settings name a value.
const (
	DefaultAvailability = chat.StatusDND
	DefaultEmoji        = "calendar"
	DefaultStatusText   = "In a meeting"
)

// ChatTokenStore is the part of the keyring the presence service needs.
type ChatTokenStore interface {
	GetChatToken() (string, error)
}

type PresenceService interface {
	// SetMeetingStatus returns the opened record, or nil when the call was a no-op.
	SetMeetingStatus(ctx context.Context, roomID, title string) (*models.StatusRecord, error)
	// ClearMeetingStatus returns the record it closed, or nil when nothing was open.
	ClearMeetingStatus(ctx context.Context, roomID string) (*models.StatusRecord, error)
	History(ctx context.Context) ([]models.StatusRecord, error)
	ClearHistory(ctx context.Context) error
}

type presenceService struct {
	settings SettingsService
	tokens   ChatTokenStore
	chat     chat.Presence
	kv       repositories.KVRepository
	now      func() time.Time
	mu       sync.Mutex
}

func NewPresenceService(settings SettingsService, tokens ChatTokenStore, presence chat.Presence, kv repositories.KVRepository, now func() time.Time) PresenceService {
	if now == nil {
		now = time.Now
	}
	return &presenceService{settings: settings, tokens: tokens, chat: presence, kv: kv, now: now}
}

func (s *presenceService) SetMeetingStatus(ctx context.Context, roomID, title string) (*models.StatusRecord, error) {
	roomID = strings.TrimSpace(roomID)
	title = strings.TrimSpace(title)

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.Presence.Enabled || isFilteredRoom(settings.Presence.FilteredRooms, roomID) {
		slog.Debug("presence: skipping room", "room", roomID, "enabled", settings.Presence.Enabled)
		return nil, nil
	}

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if roomID != "" && hasOpenRecordForRoom(records, roomID) {
		slog.Debug("presence: status already set for room", "room", roomID)
		return nil, nil
	}

	creds, err := s.credentials(settings)
	if err != nil {
		return nil, err
	}

	effective := resolveStatus(settings.Presence, roomID)
	text := applyTitle(effective.Text, title)
	if err := s.chat.SetStatus(ctx, creds, effective.Availability); err != nil {
		return nil, fmt.Errorf("setting availability: %w", err)
	}
	if err := s.chat.SetCustomStatus(ctx, creds, effective.Emoji, text); err != nil {
		return nil, fmt.Errorf("setting custom status: %w", err)
	}

	now := s.now().UnixMilli()
	closeLastOpen(records, "", now)
	record := models.StatusRecord{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Title:     title,
		Status:    effective.Availability,
		Emoji:     effective.Emoji,
		Text:      text,
		StartTime: now,
	}
	records = append(records, record)
	if len(records) > StatusHistoryLimit {
		records = records[len(records)-StatusHistoryLimit:]
	}
	if err := s.save(ctx, records); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *presenceService) ClearMeetingStatus(ctx context.Context, roomID string) (*models.StatusRecord, error) {
	roomID = strings.TrimSpace(roomID)

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if isFilteredRoom(settings.Presence.FilteredRooms, roomID) {
		slog.Debug("presence: skipping filtered room", "room", roomID)
		return nil, nil
	}

	creds, err := s.credentials(settings)
	if err != nil {
		return nil, err
	}
	if err := s.chat.SetStatus(ctx, creds, chat.StatusOnline); err != nil {
		return nil, fmt.Errorf("resetting availability: %w", err)
	}
	if err := s.chat.ClearCustomStatus(ctx, creds); err != nil {
		return nil, fmt.Errorf("clearing custom status: %w", err)
	}

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	closed := closeLastOpen(records, roomID, s.now().UnixMilli())
	if closed < 0 {
		return nil, nil
	}
	if err := s.save(ctx, records); err != nil {
		return nil, err
	}
	record := records[closed]
	return &record, nil
}

func (s *presenceService) History(ctx context.Context) ([]models.StatusRecord, error) {
	return s.load(ctx)
}

func (s *presenceService) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Remove(ctx, models.PartitionLocal, statusHistoryKey); err != nil {
		return fmt.Errorf("clearing status history: %w", err)
	}
	return nil
}

func (s *presenceService) credentials(settings *models.Settings) (chat.Credentials, error) {
	token, err := s.tokens.GetChatToken()
	if err != nil {
		if errors.Is(err, ErrAuthMissing) {
			return chat.Credentials{}, err
		}
		return chat.Credentials{}, fmt.Errorf("%w: %v", ErrAuthMissing, err)
	}
	if settings.Chat.UserID == "" || settings.Chat.ServerURL == "" {
		return chat.Credentials{}, ErrAuthMissing
	}
	return chat.Credentials{ServerURL: settings.Chat.ServerURL, Token: token, UserID: settings.Chat.UserID}, nil
}

func (s *presenceService) load(ctx context.Context) ([]models.StatusRecord, error) {
	var records []models.StatusRecord
	if _, err := repositories.GetJSON(ctx, s.kv, models.PartitionLocal, statusHistoryKey, &records); err != nil {
		return nil, fmt.Errorf("loading status history: %w", err)
	}
	return records, nil
}

func (s *presenceService) save(ctx context.Context, records []models.StatusRecord) error {
	if err := repositories.SetJSON(ctx, s.kv, models.PartitionLocal, statusHistoryKey, records); err != nil {
		return fmt.Errorf("saving status history: %w", err)
	}
	return nil
}

func isFilteredRoom(filtered []string, roomID string) bool {
	if roomID == "" {
		return false
	}
	for _, room := range filtered {
		if strings.EqualFold(strings.TrimSpace(room), roomID) {
			return true
		}
	}
	return false
}

func hasOpenRecordForRoom(records []models.StatusRecord, roomID string) bool {
	for _, r := range records {
		if r.IsOpen() && r.RoomID == roomID {
			return true
		}
	}
	return false
}

// closeLastOpen closes the newest open record, preferring one for roomID when given.
// It returns the index of the closed record or -1.
func closeLastOpen(records []models.StatusRecord, roomID string, now int64) int {
	idx := -1
	for i := len(records) - 1; i >= 0; i-- {
		if !records[i].IsOpen() {
			continue
		}
		if roomID != "" && records[i].RoomID == roomID {
			idx = i
			break
		}
		if idx < 0 {
			idx = i
			if roomID == "" {
				break
			}
		}
	}
	if idx < 0 {
		return -1
	}
	end := now
	duration := end - records[idx].StartTime
	records[idx].EndTime = &end
	records[idx].Duration = &duration
	return idx
}

// resolveStatus picks each field from the room override, then the global settings, then the defaults.
func resolveStatus(presence models.PresenceSettings, roomID string) models.StatusOverride {
	var room models.StatusOverride
	if roomID != "" {
		if o, ok := presence.RoomOverrides[roomID]; ok {
			room = o
		} else {
			for id, o := range presence.RoomOverrides {
				if strings.EqualFold(id, roomID) {
					room = o
					break
				}
			}
		}
	}
	return models.StatusOverride{
		Availability: firstNonBlank(room.Availability, presence.Default.Availability, DefaultAvailability),
		Emoji:        firstNonBlank(room.Emoji, presence.Default.Emoji, DefaultEmoji),
		Text:         firstNonBlank(room.Text, presence.Default.Text, DefaultStatusText),
	}
}

func applyTitle(text, title string) string {
	if !strings.Contains(text, titlePlaceholder) {
		return text
	}
	out := strings.TrimSpace(strings.ReplaceAll(text, titlePlaceholder, title))
	if title == "" {
		out = strings.TrimRight(out, " -:|")
	}
	if out == "" {
		return DefaultStatusText
	}
	return out
}
