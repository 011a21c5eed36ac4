package services

import (
	"context"
	"fmt"
	"time"

	"github.com/99designs/keyring"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"clickhelper/internal/chat"
	"clickhelper/internal/extractor"
	"clickhelper/internal/llm/client"
	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

// Options carries the collaborators that do not come from the database.
type Options struct {
	Keyring   keyring.Keyring
	Chat      chat.Presence
	Extractor extractor.PageExtractor
	Fs        afero.Fs
	Now       func() time.Time
	// Factory builds provider clients; nil means client.New.
	Factory client.Factory
	// BaseURLs optionally redirects providers.
	BaseURLs      map[client.Provider]string
	AutoSaveDelay time.Duration
}

// DbServices aggregates all domain services backed by the database.
type DbServices struct {
	KV         repositories.KVRepository
	Settings   SettingsService
	History    HistoryService
	RateLimits RateLimitService
	Models     ModelConfigService
	Keys       *KeyringService
	Generation GenerationService
	AutoSearch AutoSearchService
	Presence   PresenceService
	Templates  TemplateService
	Backup     BackupService
	Git        *GitService
	AutoSave   *AutoSaveService
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB, opts Options) *DbServices {
	if opts.Chat == nil {
		opts.Chat = chat.NewClient(nil)
	}
	if opts.Extractor == nil {
		opts.Extractor = extractor.TaskJSON{}
	}

	kv := repositories.NewKVRepository(db)
	modelSettings := repositories.NewModelSettingRepository(db)
	templateRepo := repositories.NewTemplateRepository(db)

	s := &DbServices{
		KV:         kv,
		Settings:   NewSettingsService(repositories.NewSettingsRepository(kv), opts.Now),
		History:    NewHistoryService(kv, opts.Now),
		RateLimits: NewRateLimitService(kv, opts.Now),
		Models:     NewModelConfigService(modelSettings),
		Keys:       NewKeyringService(opts.Keyring),
		Templates:  NewTemplateService(templateRepo),
		Git:        NewGitService(),
		AutoSave:   NewAutoSaveService(opts.AutoSaveDelay),
	}
	s.Backup = catalogReloadingBackup{
		BackupService: NewBackupService(opts.Fs, kv, modelSettings, templateRepo, repositories.NewTransactor(db), opts.Now),
		catalog:       s.Models,
	}
	s.AutoSearch = NewAutoSearchService(opts.Extractor, s.History)
	s.Presence = NewPresenceService(s.Settings, s.Keys, opts.Chat, kv, opts.Now)
	s.Generation = NewGenerationService(GenerationDeps{
		Settings: s.Settings,
		Catalog:  s.Models,
		Keys:     s.Keys,
		Limits:   s.RateLimits,
		History:  s.History,
		Factory:  opts.Factory,
		BaseURLs: opts.BaseURLs,
	})
	return s
}

// StartDbServices loads the model catalog and seeds the default review template.
func (s *DbServices) StartDbServices(ctx context.Context) error {
	if err := s.Models.Startup(ctx); err != nil {
		return fmt.Errorf("starting model catalog: %w", err)
	}
	if _, err := s.Templates.EnsureDefault(ctx); err != nil {
		return fmt.Errorf("seeding templates: %w", err)
	}
	return nil
}

// catalogReloadingBackup refreshes the cached model toggles after an import replaced them.
type catalogReloadingBackup struct {
	BackupService
	catalog ModelConfigService
}

func (b catalogReloadingBackup) Import(ctx context.Context, path string) (*models.Backup, error) {
	backup, err := b.BackupService.Import(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := b.catalog.Startup(ctx); err != nil {
		return backup, fmt.Errorf("reloading model catalog: %w", err)
	}
	return backup, nil
}
