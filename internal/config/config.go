package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
	Project  ProjectConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig controls the slog file handler. The TUI owns the terminal, so
// logs always go to a file.
type LogConfig struct {
	Level string
	Path  string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string        `mapstructure:"date_format"`
	StatusFade time.Duration `mapstructure:"status_fade"`
	Timezone   string
}

// ProjectConfig selects the project opened at startup. Empty means the first
// project in the database.
type ProjectConfig struct {
	ID string
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "projdesk")
}

func configPath() string {
	if p := os.Getenv("PROJDESK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "projdesk", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix PROJDESK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(dataDir(), "projdesk.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dataDir(), "projdesk.log"))
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.status_fade", "4s")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("project.id", "")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("PROJDESK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Dir(configPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PROJDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.status_fade", cfg.UI.StatusFade.String())
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("project.id", cfg.Project.ID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SlogLevel parses log.level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Location resolves ui.timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.UI.Timezone == "" || c.UI.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
