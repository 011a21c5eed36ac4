// Package extractor recovers task data from a tracker page.
//
// Scraping live markup is out of scope; extractors here read the task JSON the
// tracker serves for a page, either captured to a file or passed in directly.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"

	"clickhelper/internal/models"
)

// ErrUnavailable means the page could not be read at all. Callers treat it as
// "no task data" rather than a failure.
var ErrUnavailable = errors.New("page extraction unavailable")

// Page is an opened tracker page.
type Page struct {
	URL      string
	Document []byte
}

// PageExtractor returns nil without error when the page has no recognizable task.
type PageExtractor interface {
	Extract(ctx context.Context, page Page) (*models.TaskData, error)
}

// TaskJSON understands the task payload returned by the tracker API, e.g.
// {"id":"86b1","custom_id":"WDEV-12","name":"...","text_content":"...","priority":{"priority":"high"}}.
type TaskJSON struct{}

type taskPayload struct {
	ID          string          `json:"id"`
	CustomID    string          `json:"custom_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	TextContent string          `json:"text_content"`
	Priority    json.RawMessage `json:"priority"`
	URL         string          `json:"url"`
}

func (TaskJSON) Extract(_ context.Context, page Page) (*models.TaskData, error) {
	doc := strings.TrimSpace(string(page.Document))
	if doc == "" || doc[0] != '{' {
		return nil, nil
	}
	var p taskPayload
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, nil
	}

	id := firstNonEmpty(p.CustomID, p.ID)
	title := strings.TrimSpace(p.Name)
	if id == "" && title == "" {
		return nil, nil
	}
	return &models.TaskData{
		ID:          id,
		Title:       title,
		Description: firstNonEmpty(p.TextContent, p.Description),
		Priority:    string(models.ParsePriority(priorityLabel(p.Priority))),
		URL:         firstNonEmpty(page.URL, p.URL),
	}, nil
}

// priorityLabel accepts either a bare string or the tracker's {"priority":"high"} object.
func priorityLabel(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return label
	}
	var obj struct {
		Priority string `json:"priority"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Priority
	}
	return ""
}

// Static hands back fixed task data, used when the caller already knows the task.
type Static struct {
	Task *models.TaskData
}

func (s Static) Extract(_ context.Context, page Page) (*models.TaskData, error) {
	if s.Task == nil || (s.Task.ID == "" && s.Task.Title == "") {
		return nil, nil
	}
	task := *s.Task
	if task.URL == "" {
		task.URL = page.URL
	}
	return &task, nil
}

// LoadPage reads a captured page document. Missing or unreadable files map to ErrUnavailable.
func LoadPage(fsys afero.Fs, path, url string) (Page, error) {
	page := Page{URL: url}
	if strings.TrimSpace(path) == "" {
		return page, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			return page, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
		return page, fmt.Errorf("reading page %s: %w", path, err)
	}
	page.Document = data
	return page, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
