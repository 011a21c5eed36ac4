package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

const backupVersion = 1

type BackupService interface {
	Export(ctx context.Context, path string) (*models.Backup, error)
	Import(ctx context.Context, path string) (*models.Backup, error)
}

type backupService struct {
	fs        afero.Fs
	kv        repositories.KVRepository
	models    repositories.ModelSettingRepository
	templates repositories.TemplateRepository
	tx        repositories.Transactor
	now       func() time.Time
}

// NewBackupService builds the backup service. With a nil tx the import writes are
// applied one after another and a failure can leave a partial restore.
func NewBackupService(fs afero.Fs, kv repositories.KVRepository, modelSettings repositories.ModelSettingRepository, templates repositories.TemplateRepository, tx repositories.Transactor, now func() time.Time) BackupService {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if now == nil {
		now = time.Now
	}
	return &backupService{fs: fs, kv: kv, models: modelSettings, templates: templates, tx: tx, now: now}
}

func (s *backupService) Export(ctx context.Context, path string) (*models.Backup, error) {
	local, err := s.kv.All(ctx, models.PartitionLocal)
	if err != nil {
		return nil, fmt.Errorf("backup: read local partition: %w", err)
	}
	sync, err := s.kv.All(ctx, models.PartitionSync)
	if err != nil {
		return nil, fmt.Errorf("backup: read sync partition: %w", err)
	}
	toggles, err := s.models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	tmpls, err := s.templates.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	backup := &models.Backup{
		Version:       backupVersion,
		ExportedAt:    s.now().UTC(),
		Local:         local,
		Sync:          sync,
		ModelSettings: toggles,
	}
	for _, t := range tmpls {
		backup.Templates = append(backup.Templates, *t)
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("backup: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("backup: create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, path, data, 0o600); err != nil {
		return nil, fmt.Errorf("backup: write %s: %w", path, err)
	}
	slog.Info("backup exported", "path", path, "local_keys", len(local), "sync_keys", len(sync))
	return backup, nil
}

// Import replaces the stored state with the file's content. The file is fully
// decoded and checked before anything is written, and the writes either all land or none do.
func (s *backupService) Import(ctx context.Context, path string) (*models.Backup, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("backup: read %s: %w", path, err)
	}
	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("backup: decode %s: %w", path, err)
	}
	if err := checkBackup(&backup); err != nil {
		return nil, err
	}

	if err := s.inTransaction(ctx, func(ctx context.Context) error {
		return s.restore(ctx, &backup)
	}); err != nil {
		return nil, err
	}
	slog.Info("backup imported", "path", path, "exported_at", backup.ExportedAt)
	return &backup, nil
}

func (s *backupService) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.InTransaction(ctx, fn)
}

func (s *backupService) restore(ctx context.Context, backup *models.Backup) error {
	if err := s.kv.Replace(ctx, models.PartitionLocal, backup.Local); err != nil {
		return fmt.Errorf("backup: restore local partition: %w", err)
	}
	if err := s.kv.Replace(ctx, models.PartitionSync, backup.Sync); err != nil {
		return fmt.Errorf("backup: restore sync partition: %w", err)
	}
	if err := s.models.ReplaceAll(ctx, backup.ModelSettings); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	for i := range backup.Templates {
		if err := s.restoreTemplate(ctx, backup.Templates[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *backupService) restoreTemplate(ctx context.Context, t models.Template) error {
	existing, err := s.templates.GetByName(ctx, t.Name)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	if existing != nil {
		existing.Content = t.Content
		err = s.templates.Update(ctx, existing)
	} else {
		t.ID = 0
		err = s.templates.Create(ctx, &t)
	}
	if err != nil {
		return fmt.Errorf("backup: restore template %q: %w", t.Name, err)
	}
	return nil
}

func checkBackup(b *models.Backup) error {
	if b.Version == 0 || b.Version > backupVersion {
		return fmt.Errorf("backup: unsupported version %d", b.Version)
	}
	if b.Local == nil {
		b.Local = map[string]json.RawMessage{}
	}
	if b.Sync == nil {
		b.Sync = map[string]json.RawMessage{}
	}
	if raw, ok := b.Local[historyKey]; ok {
		var entries []models.HistoryEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("backup: history is not a list of entries: %w", err)
		}
		if len(entries) > HistoryLimit {
			return fmt.Errorf("backup: history holds %d entries, limit is %d", len(entries), HistoryLimit)
		}
		for i := range entries {
			if err := validateStruct(entries[i]); err != nil {
				return fmt.Errorf("backup: history entry %d: %w", i, err)
			}
		}
	}
	for _, t := range b.Templates {
		if t.Name == "" {
			return errors.New("backup: template without a name")
		}
	}
	return nil
}
