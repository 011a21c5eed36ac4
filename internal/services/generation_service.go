package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"clickhelper/internal/llm/client"
	"clickhelper/internal/models"
)

// APIKeyStore is the part of the keyring the generator needs.
type APIKeyStore interface {
	GetApiKey(provider string) (string, error)
}

// GenerationRules override the rules stored in settings when non-empty.
type GenerationRules struct {
	BranchRules string
	CommitRules string
	Language    string
}

type GenerateRequest struct {
	Task          models.TaskData
	Rules         GenerationRules
	ModelKey      string
	SaveToHistory bool
}

type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*models.GenerationResult, error)
	EstimateTime(ctx context.Context, index int, modelKey string) (*models.HistoryEntry, error)
}

type generationService struct {
	settings SettingsService
	catalog  ModelConfigService
	keys     APIKeyStore
	limits   RateLimitService
	history  HistoryService
	factory  client.Factory
	baseURLs map[client.Provider]string
}

// GenerationDeps bundles the collaborators of the generation service.
type GenerationDeps struct {
	Settings SettingsService
	Catalog  ModelConfigService
	Keys     APIKeyStore
	Limits   RateLimitService
	History  HistoryService
	// Factory defaults to client.New.
	Factory client.Factory
	// BaseURLs optionally points a provider at another endpoint.
	BaseURLs map[client.Provider]string
}

func NewGenerationService(deps GenerationDeps) GenerationService {
	if deps.Factory == nil {
		deps.Factory = client.New
	}
	return &generationService{
		settings: deps.Settings,
		catalog:  deps.Catalog,
		keys:     deps.Keys,
		limits:   deps.Limits,
		history:  deps.History,
		factory:  deps.Factory,
		baseURLs: deps.BaseURLs,
	}
}

func (s *generationService) Generate(ctx context.Context, req GenerateRequest) (*models.GenerationResult, error) {
	task := req.Task
	task.ID = strings.TrimSpace(task.ID)
	task.Title = strings.TrimSpace(task.Title)
	if task.ID == "" && task.Title == "" {
		return nil, errors.New("task id or title is required")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	data := client.PromptData{
		Task:        task,
		BranchRules: firstNonBlank(req.Rules.BranchRules, settings.Generation.BranchRules),
		CommitRules: firstNonBlank(req.Rules.CommitRules, settings.Generation.CommitRules),
		Language:    firstNonBlank(req.Rules.Language, settings.Generation.Language),
	}

	text, model, err := s.complete(ctx, settings, req.ModelKey, client.PromptGenerate, data)
	if err != nil {
		return nil, err
	}
	result, err := ParseGeneration(text)
	if err != nil {
		return nil, err
	}
	if err := s.limits.Record(ctx, model.Key); err != nil {
		slog.Warn("generation: recording rate limit hit failed", "model", model.Key, "error", err)
	}

	if req.SaveToHistory {
		title := task.Title
		if title == "" {
			title = task.ID
		}
		_, err := s.history.Append(ctx, models.HistoryEntry{
			TaskID:          firstNonBlank(task.ID, task.Title),
			TaskTitle:       title,
			TaskDescription: task.Description,
			TaskPriority:    models.ParsePriority(task.Priority),
			BranchName:      result.BranchName,
			CommitMessage:   result.CommitMessage,
			SourceURL:       task.URL,
		})
		if err != nil {
			return result, fmt.Errorf("saving generation to history: %w", err)
		}
	}
	return result, nil
}

// EstimateTime asks the model for an effort estimate of the entry at index and attaches it.
func (s *generationService) EstimateTime(ctx context.Context, index int, modelKey string) (*models.HistoryEntry, error) {
	entries, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("estimate index %d: %w", index, ErrEntryNotFound)
	}
	entry := entries[index]

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	data := client.PromptData{
		Task: models.TaskData{
			ID:          entry.TaskID,
			Title:       entry.TaskTitle,
			Description: entry.TaskDescription,
			Priority:    string(entry.TaskPriority),
			URL:         entry.SourceURL,
		},
		Language: settings.Generation.Language,
	}

	text, model, err := s.complete(ctx, settings, modelKey, client.PromptEstimate, data)
	if err != nil {
		return nil, err
	}
	est, err := ParseEstimation(text)
	if err != nil {
		return nil, err
	}
	if err := s.limits.Record(ctx, model.Key); err != nil {
		slog.Warn("estimate: recording rate limit hit failed", "model", model.Key, "error", err)
	}
	return s.history.AttachTimeEstimation(ctx, index, *est)
}

// complete resolves the model, credential and budget, renders the prompt and calls the provider.
func (s *generationService) complete(ctx context.Context, settings *models.Settings, modelKey, promptName string, data client.PromptData) (string, *models.LLMModel, error) {
	modelKey = firstNonBlank(modelKey, settings.Generation.ModelKey)
	model, err := s.catalog.ResolveEnabled(modelKey)
	if err != nil {
		return "", nil, err
	}

	apiKey, err := s.keys.GetApiKey(model.ProviderID)
	if err != nil {
		return "", nil, err
	}

	if err := s.limits.Check(ctx, model); err != nil {
		return "", nil, err
	}

	prompt, err := client.RenderPrompt(promptName, data)
	if err != nil {
		return "", nil, err
	}

	provider := client.Provider(model.ProviderID)
	gen, err := s.factory(ctx, client.Config{
		Provider:        provider,
		Model:           model.APIName,
		APIKey:          apiKey,
		BaseURL:         s.baseURLs[provider],
		Temperature:     settings.Generation.Temperature,
		MaxOutputTokens: settings.Generation.MaxOutputTokens,
	})
	if err != nil {
		return "", nil, err
	}

	slog.Debug("generation: calling provider", "model", model.Key, "prompt", promptName)
	text, err := gen.Generate(ctx, prompt)
	if errors.Is(err, client.ErrEmptyResponse) {
		return "", nil, fmt.Errorf("%w: %s returned no text", ErrParse, model.ProviderID)
	}
	if err != nil {
		return "", nil, upstreamError(model.ProviderID, err)
	}
	return text, model, nil
}

func upstreamError(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return &UpstreamError{Provider: provider, Status: statusErr.StatusCode, Message: statusErr.Message, Err: err}
	}
	return &UpstreamError{Provider: provider, Err: err}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
