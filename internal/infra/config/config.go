// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/plcopy/internal/domain/failure"
)

// Config represents the application configuration.
type Config struct {
	Spotify    SpotifyConfig    `yaml:"spotify"`
	Pagination PaginationConfig `yaml:"pagination"`
	Library    LibraryConfig    `yaml:"library" validate:"-"`
	Export     ExportConfig     `yaml:"export"`
	Log        LogConfig        `yaml:"log"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID          string        `yaml:"client_id" validate:"required"`
	ClientSecret      string        `yaml:"client_secret" validate:"required"`
	TokenURL          string        `yaml:"token_url" default:"https://accounts.spotify.com/api/token" validate:"url"`
	AuthStyle         string        `yaml:"auth_style" default:"header" validate:"oneof=header params"`
	Timeout           time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	MaxRetries        int           `yaml:"max_retries" default:"3" validate:"gte=1,lte=10"`
	RetryDelay        time.Duration `yaml:"retry_delay" default:"1s" validate:"gte=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Backend           BackendConfig `yaml:"backend"`
}

// BackendConfig selects the page source used for retrieval.
// Settings are decoded by the chosen backend.
type BackendConfig struct {
	Type     string         `yaml:"type" default:"rest" validate:"oneof=rest sdk"`
	Settings map[string]any `yaml:"settings"`
}

// PaginationConfig represents paged retrieval settings.
type PaginationConfig struct {
	PageSize    int  `yaml:"page_size" default:"100" validate:"gte=1,lte=100"`
	TightBound  bool `yaml:"tight_bound"`
	Concurrency int  `yaml:"concurrency" default:"1" validate:"gte=1,lte=16"`
}

// LibraryConfig represents the local directory matching settings.
// It is validated separately because only copying commands need it.
type LibraryConfig struct {
	SourceDir  string   `yaml:"source_dir" validate:"required,dir"`
	TargetDir  string   `yaml:"target_dir" validate:"required"`
	OnError    string   `yaml:"on_error" default:"fail" validate:"oneof=fail skip"`
	Extensions []string `yaml:"extensions"`
	DryRun     bool     `yaml:"dry_run"`
}

// ExportConfig represents the markdown export settings.
type ExportConfig struct {
	Path       string `yaml:"path" default:"./export.md" validate:"required"`
	OmitHeader bool   `yaml:"omit_header"` // drop the "Playlist id" line
}

// LogConfig represents logging settings.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stderr"`
}

// Load loads configuration from a YAML file.
// An empty path builds the configuration from defaults and environment only.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, failure.Mark(errors.Wrap(err, "failed to read config file"), failure.ErrConfiguration)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, failure.Mark(errors.Wrap(err, "failed to parse config file"), failure.ErrConfiguration)
		}
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, failure.Mark(errors.Wrap(err, "failed to set defaults"), failure.ErrConfiguration)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("PLCOPY_SOURCE_DIR"); v != "" {
		c.Library.SourceDir = v
	}
	if v := os.Getenv("PLCOPY_TARGET_DIR"); v != "" {
		c.Library.TargetDir = v
	}
	if v := os.Getenv("PLCOPY_EXPORT_PATH"); v != "" {
		c.Export.Path = v
	}
}

// Validate validates everything except the library section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return failure.Mark(errors.Wrap(err, "struct validation failed"), failure.ErrConfiguration)
	}
	return nil
}

// ValidateLibrary validates the library section. The source directory must exist.
func (c *Config) ValidateLibrary() error {
	if err := validator.New().Struct(&c.Library); err != nil {
		return failure.Mark(errors.Wrap(err, "library validation failed"), failure.ErrConfiguration)
	}
	return nil
}
