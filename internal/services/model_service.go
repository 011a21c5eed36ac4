package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"clickhelper/internal/assets"
	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

type ModelConfigService interface {
	Startup(ctx context.Context) error
	ListModelGroups() ([]models.LLMModelGroup, error)
	SetModelEnabled(ctx context.Context, modelKey string, enabled bool) (*models.LLMModel, error)
	SetProviderEnabled(ctx context.Context, provider string, enabled bool) ([]models.LLMModel, error)
	GetModel(modelKey string) (*models.LLMModel, error)
	// ResolveEnabled returns the model for key, failing when it is unknown or switched off.
	ResolveEnabled(modelKey string) (*models.LLMModel, error)
}

type modelConfigService struct {
	repo repositories.ModelSettingRepository

	mu            sync.RWMutex
	providerOrder []string
	providerNames map[string]string
	models        map[string]*catalogModel
	settings      map[string]bool
}

type catalogModel struct {
	Key               string
	ProviderID        string
	Provider          string
	DisplayName       string
	APIName           string
	RequestsPerMinute int
	RequestsPerDay    int
}

type rawModelFile struct {
	Providers []rawProvider `json:"providers"`
}

type rawProvider struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Models      []rawModel `json:"models"`
}

type rawModel struct {
	DisplayName       string `json:"displayName"`
	APIName           string `json:"apiName"`
	RequestsPerMinute int    `json:"requestsPerMinute,omitempty"`
	RequestsPerDay    int    `json:"requestsPerDay,omitempty"`
}

func NewModelConfigService(repo repositories.ModelSettingRepository) ModelConfigService {
	return &modelConfigService{
		repo:          repo,
		models:        make(map[string]*catalogModel),
		settings:      make(map[string]bool),
		providerNames: make(map[string]string),
	}
}

// Startup loads the embedded catalog and seeds an enabled toggle for every model that has none.
// Calling it again reloads the toggles from storage.
func (s *modelConfigService) Startup(ctx context.Context) error {
	var parsed rawModelFile
	if err := json.Unmarshal(assets.ModelsData, &parsed); err != nil {
		return fmt.Errorf("parse models asset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.providerOrder = make([]string, 0, len(parsed.Providers))
	s.models = make(map[string]*catalogModel)
	s.settings = make(map[string]bool)
	for _, provider := range parsed.Providers {
		providerID := strings.TrimSpace(provider.ID)
		if providerID == "" {
			continue
		}
		s.providerNames[providerID] = strings.TrimSpace(provider.DisplayName)
		s.providerOrder = append(s.providerOrder, providerID)
		for _, mdl := range provider.Models {
			key := computeModelKey(providerID, mdl)
			s.models[key] = &catalogModel{
				Key:               key,
				ProviderID:        providerID,
				Provider:          s.providerNames[providerID],
				DisplayName:       strings.TrimSpace(mdl.DisplayName),
				APIName:           strings.TrimSpace(mdl.APIName),
				RequestsPerMinute: mdl.RequestsPerMinute,
				RequestsPerDay:    mdl.RequestsPerDay,
			}
		}
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load model settings: %w", err)
	}
	for _, setting := range existing {
		s.settings[setting.ModelKey] = setting.Enabled
	}
	for key, def := range s.models {
		if _, ok := s.settings[key]; !ok {
			if _, err := s.repo.Upsert(ctx, key, def.ProviderID, true); err != nil {
				return fmt.Errorf("seed model setting for %s: %w", key, err)
			}
			s.settings[key] = true
		}
	}

	return nil
}

func (s *modelConfigService) ListModelGroups() ([]models.LLMModelGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.LLMModelGroup, 0, len(s.providerOrder))
	for _, providerID := range s.providerOrder {
		group := models.LLMModelGroup{
			ProviderID:   providerID,
			ProviderName: s.providerName(providerID),
		}
		var modelsForProvider []models.LLMModel
		for _, mdl := range s.models {
			if mdl.ProviderID != providerID {
				continue
			}
			modelsForProvider = append(modelsForProvider, s.toLLMModel(mdl))
		}
		sortByDisplayName(modelsForProvider)
		group.Models = modelsForProvider
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *modelConfigService) SetModelEnabled(ctx context.Context, modelKey string, enabled bool) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("model %s not found", modelKey)
	}

	if _, err := s.repo.Upsert(ctx, modelKey, catalog.ProviderID, enabled); err != nil {
		return nil, err
	}
	s.settings[modelKey] = enabled
	model := s.toLLMModel(catalog)
	return &model, nil
}

func (s *modelConfigService) SetProviderEnabled(ctx context.Context, provider string, enabled bool) ([]models.LLMModel, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providerNames[provider]; !ok {
		return nil, fmt.Errorf("provider %s not found", provider)
	}
	if err := s.repo.SetProviderEnabled(ctx, provider, enabled); err != nil {
		return nil, err
	}

	updated := make([]models.LLMModel, 0)
	for _, mdl := range s.models {
		if mdl.ProviderID != provider {
			continue
		}
		s.settings[mdl.Key] = enabled
		updated = append(updated, s.toLLMModel(mdl))
	}
	sortByDisplayName(updated)
	return updated, nil
}

func (s *modelConfigService) GetModel(modelKey string) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("model %s not found", modelKey)
	}
	model := s.toLLMModel(catalog)
	return &model, nil
}

func (s *modelConfigService) ResolveEnabled(modelKey string) (*models.LLMModel, error) {
	model, err := s.GetModel(modelKey)
	if err != nil {
		return nil, err
	}
	if !model.Enabled {
		return nil, fmt.Errorf("%s: %w", model.Key, ErrModelDisabled)
	}
	return model, nil
}

func (s *modelConfigService) providerName(providerID string) string {
	if name, ok := s.providerNames[providerID]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return providerID
}

func (s *modelConfigService) toLLMModel(mdl *catalogModel) models.LLMModel {
	return models.LLMModel{
		Key:               mdl.Key,
		DisplayName:       mdl.DisplayName,
		APIName:           mdl.APIName,
		ProviderID:        mdl.ProviderID,
		ProviderName:      mdl.Provider,
		RequestsPerMinute: mdl.RequestsPerMinute,
		RequestsPerDay:    mdl.RequestsPerDay,
		Enabled:           s.settings[mdl.Key],
	}
}

func sortByDisplayName(list []models.LLMModel) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].DisplayName) < strings.ToLower(list[j].DisplayName)
	})
}

// computeModelKey is "<provider>|<apiName>", the form stored in settings and rate-limit state.
func computeModelKey(providerID string, mdl rawModel) string {
	return strings.TrimSpace(providerID) + "|" + strings.TrimSpace(mdl.APIName)
}
