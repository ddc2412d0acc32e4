// Package config manages application configuration from default values,
// an optional config.yaml file, and CARELINGO_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with CARELINGO_ (e.g. CARELINGO_AI_API_KEY)
// or through config.yaml in the working directory.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	AI       AIConfig       `mapstructure:"ai"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"             validate:"required"`
	Port            int           `mapstructure:"port"             validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s,max=1m"`
	MaxAudioBytes   int64         `mapstructure:"max_audio_bytes"  validate:"required,gt=0"`
}

// AIConfig configures the Gemini client. APIKey is deliberately not marked
// required: a missing credential surfaces as provider-call failures, which
// the workflow records inline rather than refusing to start.
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"required,min=1s,max=10m"`
}

// DatabaseConfig configures the SQLite message store.
type DatabaseConfig struct {
	Path            string `mapstructure:"path"             validate:"required"`
	MaintenanceCron string `mapstructure:"maintenance_cron" validate:"required"`
}

// StorageConfig configures the audio blob directory and the URL prefix the
// blobs are served under.
type StorageConfig struct {
	AudioDir  string `mapstructure:"audio_dir"  validate:"required"`
	URLPrefix string `mapstructure:"url_prefix" validate:"required,startswith=/"`
}

// Load reads configuration from defaults, config.yaml, and environment
// variables (in increasing precedence), then validates the result.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CARELINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay, we'll use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_audio_bytes", int64(25<<20))

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.timeout", 2*time.Minute)

	v.SetDefault("database.path", "carelingo.db")
	v.SetDefault("database.maintenance_cron", "0 3 * * *")

	v.SetDefault("storage.audio_dir", "static/audio")
	v.SetDefault("storage.url_prefix", "/static/audio")
}
