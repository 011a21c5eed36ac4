package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

const (
	historyKey = "history"
	// HistoryLimit is the number of entries kept; older ones are evicted from the tail.
	HistoryLimit = 100
)

type HistoryService interface {
	List(ctx context.Context) ([]models.HistoryEntry, error)
	Append(ctx context.Context, entry models.HistoryEntry) (*models.HistoryEntry, error)
	FindByTaskID(ctx context.Context, taskID string) (*models.HistoryEntry, int, error)
	Update(ctx context.Context, index int, patch models.HistoryPatch) (*models.HistoryEntry, error)
	Remove(ctx context.Context, index int) error
	Clear(ctx context.Context) error
	AttachMergeRequest(ctx context.Context, taskID, mergeRequestURL string) (*models.HistoryEntry, error)
	AttachTimeEstimation(ctx context.Context, index int, est models.TimeEstimation) (*models.HistoryEntry, error)
	Search(ctx context.Context, query string) ([]models.MatchResult, error)
}

// historyService keeps the log as a single JSON document in the local partition.
// Every mutation holds mu across its read-modify-write, so writers in this process
// cannot lose each other's changes. Other processes sharing the database still can.
type historyService struct {
	kv  repositories.KVRepository
	now func() time.Time
	mu  sync.Mutex
}

func NewHistoryService(kv repositories.KVRepository, now func() time.Time) HistoryService {
	if now == nil {
		now = time.Now
	}
	return &historyService{kv: kv, now: now}
}

func (s *historyService) List(ctx context.Context) ([]models.HistoryEntry, error) {
	return s.load(ctx)
}

func (s *historyService) Append(ctx context.Context, entry models.HistoryEntry) (*models.HistoryEntry, error) {
	entry.TaskID = strings.TrimSpace(entry.TaskID)
	entry.TaskTitle = strings.TrimSpace(entry.TaskTitle)
	if entry.TaskPriority == "" {
		entry.TaskPriority = models.PriorityNormal
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = s.now().UnixMilli()
	}
	entry.LastUpdated = nil
	entry.LastEdited = nil
	if err := validateStruct(entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	entries = append([]models.HistoryEntry{entry}, entries...)
	if len(entries) > HistoryLimit {
		slog.Debug("history: evicting oldest entries", "count", len(entries)-HistoryLimit)
		entries = entries[:HistoryLimit]
	}
	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByTaskID returns the most recent entry whose task id matches case-insensitively,
// with its index. A missing entry is reported as nil, -1 and no error.
func (s *historyService) FindByTaskID(ctx context.Context, taskID string) (*models.HistoryEntry, int, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, -1, err
	}
	idx := indexByTaskID(entries, taskID)
	if idx < 0 {
		return nil, -1, nil
	}
	return &entries[idx], idx, nil
}

func (s *historyService) Update(ctx context.Context, index int, patch models.HistoryPatch) (*models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, func([]models.HistoryEntry) (int, error) {
		return index, nil
	}, patch)
}

func (s *historyService) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("remove index %d: %w", index, ErrEntryNotFound)
	}
	entries = append(entries[:index], entries[index+1:]...)
	return s.save(ctx, entries)
}

func (s *historyService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, models.PartitionLocal, historyKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// AttachMergeRequest links a merge request page back to the entry generated for its task.
func (s *historyService) AttachMergeRequest(ctx context.Context, taskID, mergeRequestURL string) (*models.HistoryEntry, error) {
	mergeRequestURL = strings.TrimSpace(mergeRequestURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, func(entries []models.HistoryEntry) (int, error) {
		idx := indexByTaskID(entries, taskID)
		if idx < 0 {
			return -1, fmt.Errorf("task %s: %w", taskID, ErrEntryNotFound)
		}
		return idx, nil
	}, models.HistoryPatch{GitlabMergeRequestURL: &mergeRequestURL})
}

func (s *historyService) AttachTimeEstimation(ctx context.Context, index int, est models.TimeEstimation) (*models.HistoryEntry, error) {
	if est.Timestamp == 0 {
		est.Timestamp = s.now().UnixMilli()
	}
	return s.Update(ctx, index, models.HistoryPatch{TimeEstimation: &est})
}

// Search ranks entries by fuzzy match of the query against task id and title.
// OriginalIndex on each result points into the stored log.
func (s *historyService) Search(ctx context.Context, query string) ([]models.MatchResult, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	matches := fuzzy.FindFrom(query, historySource(entries))
	results := make([]models.MatchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, models.MatchResult{
			HistoryEntry:  entries[m.Index],
			OriginalIndex: m.Index,
		})
	}
	return results, nil
}

func (s *historyService) updateLocked(ctx context.Context, locate func([]models.HistoryEntry) (int, error), patch models.HistoryPatch) (*models.HistoryEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	index, err := locate(entries)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("update index %d: %w", index, ErrEntryNotFound)
	}

	updated := entries[index]
	patch.Apply(&updated)
	if err := validateStruct(updated); err != nil {
		return nil, err
	}
	now := s.now().UnixMilli()
	updated.LastUpdated = &now
	updated.LastEdited = &now
	entries[index] = updated

	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *historyService) load(ctx context.Context) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if _, err := repositories.GetJSON(ctx, s.kv, models.PartitionLocal, historyKey, &entries); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return entries, nil
}

func (s *historyService) save(ctx context.Context, entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	if err := repositories.SetJSON(ctx, s.kv, models.PartitionLocal, historyKey, entries); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

func indexByTaskID(entries []models.HistoryEntry, taskID string) int {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return -1
	}
	for i, e := range entries {
		if strings.EqualFold(e.TaskID, taskID) {
			return i
		}
	}
	return -1
}

type historySource []models.HistoryEntry

func (h historySource) String(i int) string {
	return h[i].TaskID + " " + h[i].TaskTitle
}

func (h historySource) Len() int {
	return len(h)
}
