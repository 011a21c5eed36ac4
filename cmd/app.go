package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"

	"clickhelper/internal/chat"
	"clickhelper/internal/config"
	"clickhelper/internal/database"
	"clickhelper/internal/events"
	"clickhelper/internal/llm/client"
	"clickhelper/internal/logging"
	"clickhelper/internal/messages"
	"clickhelper/internal/services"
	"clickhelper/internal/ui"
)

// app is the process-wide container, opened before every command that needs storage.
var app *application

type application struct {
	cfg     *config.Config
	svc     *services.DbServices
	router  *messages.Router
	fs      afero.Fs
	dbClose func() error
}

func openApp(ctx context.Context, v *viper.Viper, cfgFile string) (*application, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if cfg.Verbose || v.GetBool("verbose") {
		level = "debug"
	}
	logging.Setup(os.Stderr, level, cfg.LogFormat)
	events.SetCustomEmitter(ui.NotificationPrinter(os.Stderr))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	gormLevel := logger.Warn
	if level == "debug" {
		gormLevel = logger.Info
	}
	db, err := database.Init(database.Config{Path: cfg.DBPath, LogLevel: gormLevel})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	ring, err := services.OpenKeyring(services.KeyringConfig{Backend: cfg.Keyring.Backend, FileDir: cfg.Keyring.FileDir})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	fs := afero.NewOsFs()
	svc := services.NewDbServices(db, services.Options{
		Keyring: ring,
		Chat:    chat.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		Fs:      fs,
		BaseURLs: map[client.Provider]string{
			client.ProviderGemini:    cfg.Providers.GeminiBaseURL,
			client.ProviderOpenAI:    cfg.Providers.OpenAIBaseURL,
			client.ProviderAnthropic: cfg.Providers.AnthropicBaseURL,
		},
		AutoSaveDelay: cfg.AutoSave.Delay,
	})
	if err := svc.StartDbServices(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &application{
		cfg: cfg,
		svc: svc,
		router: &messages.Router{
			AutoSearch: svc.AutoSearch,
			Generation: svc.Generation,
			History:    svc.History,
			Presence:   svc.Presence,
		},
		fs:      fs,
		dbClose: sqlDB.Close,
	}, nil
}

// Close waits for pending auto-saves and closes the database.
func (a *application) Close() error {
	err := a.svc.AutoSave.Wait()
	if a.dbClose != nil {
		err = errors.Join(err, a.dbClose())
	}
	return err
}
