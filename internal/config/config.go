// Package config loads clickhelper's process configuration from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"clickhelper/internal/database"
)

const (
	configName = ".clickhelper"
	envPrefix  = "CLICKHELPER"
)

// Config is process configuration. User-editable preferences live in the settings store instead.
type Config struct {
	DBPath      string        `mapstructure:"dbPath" validate:"required"`
	LogLevel    string        `mapstructure:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat   string        `mapstructure:"logFormat" validate:"oneof=text json"`
	HTTPTimeout time.Duration `mapstructure:"httpTimeout" validate:"gt=0"`
	Keyring     KeyringConfig `mapstructure:"keyring"`
	Providers   Providers     `mapstructure:"providers"`
	AutoSave    AutoSave      `mapstructure:"autosave"`
	Verbose     bool          `mapstructure:"verbose"`
}

type KeyringConfig struct {
	Backend string `mapstructure:"backend" validate:"omitempty,oneof=keychain kwallet secret-service file pass wincred keyctl"`
	FileDir string `mapstructure:"fileDir"`
}

// Providers optionally redirects a provider to another endpoint (proxies, test servers).
type Providers struct {
	GeminiBaseURL    string `mapstructure:"geminiBaseUrl" validate:"omitempty,url"`
	OpenAIBaseURL    string `mapstructure:"openaiBaseUrl" validate:"omitempty,url"`
	AnthropicBaseURL string `mapstructure:"anthropicBaseUrl" validate:"omitempty,url"`
}

type AutoSave struct {
	Delay time.Duration `mapstructure:"delay" validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration in order of increasing precedence: defaults, config file, .env and
// environment (CLICKHELPER_*). cfgFile, when set, must exist.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(configName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.Keyring.FileDir == "" {
		cfg.Keyring.FileDir = filepath.Join(filepath.Dir(cfg.DBPath), "keys")
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dbPath", database.GetDefaultDBPath())
	v.SetDefault("logLevel", "warn")
	v.SetDefault("logFormat", "text")
	v.SetDefault("httpTimeout", 30*time.Second)
	v.SetDefault("autosave.delay", time.Second)
	v.SetDefault("keyring.backend", "")
	v.SetDefault("keyring.fileDir", "")
	v.SetDefault("providers.geminiBaseUrl", "")
	v.SetDefault("providers.openaiBaseUrl", "")
	v.SetDefault("providers.anthropicBaseUrl", "")
	v.SetDefault("verbose", false)
}
