package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/elonfeng/seedradar/pkg/source"
)

// Config is the root configuration.
type Config struct {
	History    HistoryConfig    `yaml:"history" toml:"history"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
	Grouping   GroupingConfig   `yaml:"grouping" toml:"grouping"`
	Ranking    RankingConfig    `yaml:"ranking" toml:"ranking"`
	Chart      ChartConfig      `yaml:"chart" toml:"chart"`
	Categories []CategoryConfig `yaml:"categories" toml:"categories"`
	Filter     FilterConfig     `yaml:"filter" toml:"filter"`
	Alerts     AlertsConfig     `yaml:"alerts" toml:"alerts"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Log        LogConfig        `yaml:"log" toml:"log"`
}

// HistoryConfig selects where SummaryRecords are persisted.
type HistoryConfig struct {
	Backend     string `yaml:"backend" toml:"backend"` // "csv", "sqlite" or "postgres"
	Path        string `yaml:"path" toml:"path"`
	DatabaseURL string `yaml:"database_url" toml:"database_url"`
}

// Target returns the path or URL the configured backend opens.
func (h HistoryConfig) Target() string {
	if h.Backend == "postgres" {
		return h.DatabaseURL
	}
	return h.Path
}

// LockPath returns the file used to serialize collect runs.
func (h HistoryConfig) LockPath() string {
	if h.Backend == "postgres" {
		return filepath.Join(os.TempDir(), "seedradar.lock")
	}
	return h.Path + ".lock"
}

// OutputConfig configures snapshot and artifact directories.
type OutputConfig struct {
	RawDir     string `yaml:"raw_dir" toml:"raw_dir"`
	SummaryDir string `yaml:"summary_dir" toml:"summary_dir"`
	PublishDir string `yaml:"publish_dir" toml:"publish_dir"`
	Snapshots  bool   `yaml:"snapshots" toml:"snapshots"`
}

// GroupingConfig selects the entity grouping strategy.
type GroupingConfig struct {
	Strategy  string  `yaml:"strategy" toml:"strategy"` // "exact" or "similarity"
	Threshold float64 `yaml:"threshold" toml:"threshold"`
}

// RankingConfig configures the ranking engine.
type RankingConfig struct {
	TopN           int `yaml:"top_n" toml:"top_n"`
	WeeklyLookback int `yaml:"weekly_lookback" toml:"weekly_lookback"`
}

// ChartConfig configures chart generation.
type ChartConfig struct {
	TopN        int    `yaml:"top_n" toml:"top_n"`
	Granularity string `yaml:"granularity" toml:"granularity"` // "date" or "timestamp"
}

// CategoryConfig lists the sources sampled for one category.
type CategoryConfig struct {
	Name     string         `yaml:"name" toml:"name"`
	Disabled bool           `yaml:"disabled" toml:"disabled"`
	Sources  []SourceConfig `yaml:"sources" toml:"sources"`
}

// SourceConfig is a single listing source.
type SourceConfig struct {
	Name string `yaml:"name" toml:"name"`
	Type string `yaml:"type" toml:"type"` // "html", "rss" or "file"
	URL  string `yaml:"url" toml:"url"`
	Path string `yaml:"path" toml:"path"`
}

// FilterConfig configures listing filtering.
type FilterConfig struct {
	ExcludeKeywords []string `yaml:"exclude_keywords" toml:"exclude_keywords"`
}

// AlertsConfig configures ranking alerts and their destinations.
type AlertsConfig struct {
	TopN     int           `yaml:"top_n" toml:"top_n"`
	MinClimb int           `yaml:"min_climb" toml:"min_climb"`
	Slack    SlackConfig   `yaml:"slack" toml:"slack"`
	Discord  DiscordConfig `yaml:"discord" toml:"discord"`
	Webhook  WebhookConfig `yaml:"webhook" toml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	URL     string `yaml:"url" toml:"url"`
	Secret  string `yaml:"secret" toml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" toml:"port"`
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" toml:"rate_limit"` // requests per second per client
	RateBurst   int      `yaml:"rate_burst" toml:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "auto", "text" or "json"
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			Backend: "csv",
			Path:    "./data-summary/summary_data.csv",
		},
		Output: OutputConfig{
			RawDir:     "./data-raw",
			SummaryDir: "./data-summary",
			Snapshots:  true,
		},
		Grouping: GroupingConfig{Strategy: "exact", Threshold: 0.6},
		Ranking:  RankingConfig{TopN: 20, WeeklyLookback: 7},
		Chart:    ChartConfig{TopN: 20, Granularity: "date"},
		Categories: []CategoryConfig{
			{
				Name:    "games",
				Sources: []SourceConfig{{Name: "1337x", Type: "html", URL: "https://1337x.to/top-100-games"}},
			},
			{
				Name:    "movies",
				Sources: []SourceConfig{{Name: "1337x", Type: "html", URL: "https://1337x.to/top-100-movies"}},
			},
		},
		Alerts: AlertsConfig{TopN: 10, MinClimb: 5},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
			RateLimit:   5,
			RateBurst:   10,
		},
		Log: LogConfig{Level: "info", Format: "auto"},
	}
}

// Load reads configuration from a YAML or TOML file, then a .env file in the
// working directory, and applies env var overrides. An empty path uses defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// unmarshal decodes data over cfg. A file that lists categories replaces the
// default categories instead of extending them.
func unmarshal(path string, data []byte, cfg *Config) error {
	defaults := cfg.Categories
	cfg.Categories = nil

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if cfg.Categories == nil {
		cfg.Categories = defaults
	}
	return err
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEEDRADAR_HISTORY_BACKEND"); v != "" {
		cfg.History.Backend = v
	}
	if v := os.Getenv("SEEDRADAR_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("SEEDRADAR_DATABASE_URL"); v != "" {
		cfg.History.DatabaseURL = v
	}
	if v := os.Getenv("SEEDRADAR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("SEEDRADAR_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Webhook.URL = v
		cfg.Alerts.Webhook.Enabled = true
	}
	if v := os.Getenv("SEEDRADAR_WEBHOOK_SECRET"); v != "" {
		cfg.Alerts.Webhook.Secret = v
	}
}

// EnabledCategories returns the enabled categories in config order.
func (c *Config) EnabledCategories() []source.Category {
	var out []source.Category
	for _, cc := range c.Categories {
		if cc.Disabled {
			continue
		}
		if cat, err := source.ParseCategory(cc.Name); err == nil {
			out = append(out, cat)
		}
	}
	return out
}

// CategorySources returns the sources configured for category.
func (c *Config) CategorySources(category source.Category) []SourceConfig {
	for _, cc := range c.Categories {
		if cat, err := source.ParseCategory(cc.Name); err == nil && cat == category {
			return cc.Sources
		}
	}
	return nil
}
