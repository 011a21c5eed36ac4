package services

import (
	"context"
	"errors"
	"log/slog"

	"clickhelper/internal/extractor"
	"clickhelper/internal/matching"
	"clickhelper/internal/models"
)

// AutoSearchResult is what a page visit resolves to. Task is nil when the page had no task data.
type AutoSearchResult struct {
	Task    *models.TaskData     `json:"task,omitempty"`
	Matches []models.MatchResult `json:"matches"`
}

// AutoSearchService looks up cached generations for the page being visited.
// It runs opportunistically and never returns an error: failures are logged and
// produce an empty result.
type AutoSearchService interface {
	Search(ctx context.Context, page extractor.Page) AutoSearchResult
}

type autoSearchService struct {
	extractor extractor.PageExtractor
	history   HistoryService
}

func NewAutoSearchService(pageExtractor extractor.PageExtractor, history HistoryService) AutoSearchService {
	return &autoSearchService{extractor: pageExtractor, history: history}
}

func (s *autoSearchService) Search(ctx context.Context, page extractor.Page) AutoSearchResult {
	var task *models.TaskData
	if s.extractor != nil {
		extracted, err := s.extractor.Extract(ctx, page)
		switch {
		case errors.Is(err, ErrExtractionUnavailable):
			slog.Debug("auto-search: extraction unavailable, matching by url only", "url", page.URL, "error", err)
		case err != nil:
			slog.Warn("auto-search: extraction failed", "url", page.URL, "error", err)
		default:
			task = extracted
		}
	}

	entries, err := s.history.List(ctx)
	if err != nil {
		slog.Warn("auto-search: loading history failed", "error", err)
		return AutoSearchResult{Task: task}
	}

	matches := matching.Find(entries, page.URL, task)
	slog.Debug("auto-search: done", "url", page.URL, "entries", len(entries), "matches", len(matches))
	return AutoSearchResult{Task: task, Matches: matches}
}
