// Package config loads narrator settings from file and environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/narrator/internal/text"
)

// Config holds every tunable. Precedence is defaults, then the YAML
// config file, then NARRATOR_* environment variables.
type Config struct {
	LogLevel string `env:"NARRATOR_LOG_LEVEL"`
	// OutputDir is where audio artifacts are written. Defaults to the
	// user's data directory.
	OutputDir string `env:"NARRATOR_OUTPUT_DIR"`
	UserID    string `env:"NARRATOR_USER_ID"`

	// Engine selects the synthesis backend: azure or mock.
	Engine      string `env:"NARRATOR_ENGINE"`
	AzureRegion string `env:"NARRATOR_AZURE_REGION"`
	AzureKey    string `env:"NARRATOR_AZURE_KEY"`
	// AzureBackupRegion enables automatic fallback to a second region.
	AzureBackupRegion string `env:"NARRATOR_AZURE_BACKUP_REGION"`

	// TranscriptAPI is the base URL of an optional transcript service
	// tried before the public caption endpoint.
	TranscriptAPI string `env:"NARRATOR_TRANSCRIPT_API"`
	Language      string `env:"NARRATOR_LANGUAGE"`

	ShortTextLimit int           `env:"NARRATOR_SHORT_TEXT_LIMIT"`
	ChunkSize      int           `env:"NARRATOR_CHUNK_SIZE"`
	ChunkInterval  time.Duration `env:"NARRATOR_CHUNK_INTERVAL"`
	CycleDelay     time.Duration `env:"NARRATOR_CYCLE_DELAY"`
	FailureDelay   time.Duration `env:"NARRATOR_FAILURE_DELAY"`
}

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("output_dir", "")
	viper.SetDefault("user_id", "default")
	viper.SetDefault("engine", "azure")
	viper.SetDefault("azure.region", "")
	viper.SetDefault("azure.key", "")
	viper.SetDefault("azure.backup_region", "")
	viper.SetDefault("transcript_api", "")
	viper.SetDefault("language", "English")
	viper.SetDefault("short_text_limit", text.ShortTextLimit)
	viper.SetDefault("chunk_size", text.DefaultChunkSize)
	viper.SetDefault("chunk_interval", 500*time.Millisecond)
	viper.SetDefault("cycle_delay", time.Second)
	viper.SetDefault("failure_delay", 2*time.Second)
}

// Load assembles the configuration. Viper must already have read the
// config file (or failed to find one).
func Load() (Config, error) {
	setDefaults()

	cfg := Config{
		LogLevel:          viper.GetString("log_level"),
		OutputDir:         viper.GetString("output_dir"),
		UserID:            viper.GetString("user_id"),
		Engine:            viper.GetString("engine"),
		AzureRegion:       viper.GetString("azure.region"),
		AzureKey:          viper.GetString("azure.key"),
		AzureBackupRegion: viper.GetString("azure.backup_region"),
		TranscriptAPI:     viper.GetString("transcript_api"),
		Language:          viper.GetString("language"),
		ShortTextLimit:    viper.GetInt("short_text_limit"),
		ChunkSize:         viper.GetInt("chunk_size"),
		ChunkInterval:     viper.GetDuration("chunk_interval"),
		CycleDelay:        viper.GetDuration("cycle_delay"),
		FailureDelay:      viper.GetDuration("failure_delay"),
	}

	// Environment variables win over the file.
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.OutputDir == "" {
		dir, err := defaultOutputDir()
		if err != nil {
			return cfg, err
		}
		cfg.OutputDir = dir
	}
	dir, err := homedir.Expand(cfg.OutputDir)
	if err != nil {
		return cfg, fmt.Errorf("expand output dir: %w", err)
	}
	cfg.OutputDir = dir

	return cfg, nil
}

func defaultOutputDir() (string, error) {
	scope := gap.NewScope(gap.User, "narrator")
	dirs, err := scope.DataDirs()
	if err != nil || len(dirs) == 0 {
		return "", fmt.Errorf("locate data directory: %w", err)
	}
	return filepath.Join(dirs[0], "audio"), nil
}
