package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elonfeng/seedradar/pkg/source"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateGrouping(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	if err := c.validateAlerts(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateHistory() error {
	switch c.History.Backend {
	case "csv", "sqlite":
		if strings.TrimSpace(c.History.Path) == "" {
			return fmt.Errorf("history.path must be set for the %s backend", c.History.Backend)
		}
	case "postgres":
		if strings.TrimSpace(c.History.DatabaseURL) == "" {
			return errors.New("history.database_url must be set for the postgres backend (or SEEDRADAR_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("history.backend: unsupported value %q", c.History.Backend)
	}
	if strings.TrimSpace(c.Output.SummaryDir) == "" {
		return errors.New("output.summary_dir must be set")
	}
	if c.Output.Snapshots && strings.TrimSpace(c.Output.RawDir) == "" {
		return errors.New("output.raw_dir must be set when output.snapshots is true")
	}
	return nil
}

func (c *Config) validateGrouping() error {
	switch c.Grouping.Strategy {
	case "exact", "similarity":
	default:
		return fmt.Errorf("grouping.strategy: unsupported value %q", c.Grouping.Strategy)
	}
	if c.Grouping.Threshold <= 0 || c.Grouping.Threshold > 1 {
		return errors.New("grouping.threshold must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateRanking() error {
	if c.Ranking.TopN <= 0 {
		return errors.New("ranking.top_n must be positive")
	}
	if c.Ranking.WeeklyLookback < 2 {
		return errors.New("ranking.weekly_lookback must be at least 2")
	}
	if c.Chart.TopN <= 0 {
		return errors.New("chart.top_n must be positive")
	}
	switch c.Chart.Granularity {
	case "date", "timestamp":
	default:
		return fmt.Errorf("chart.granularity: unsupported value %q", c.Chart.Granularity)
	}
	return nil
}

func (c *Config) validateCategories() error {
	seen := make(map[source.Category]bool)
	for _, cc := range c.Categories {
		cat, err := source.ParseCategory(cc.Name)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		if seen[cat] {
			return fmt.Errorf("categories: %s listed twice", cat)
		}
		seen[cat] = true

		for i, sc := range cc.Sources {
			switch sc.Type {
			case "html", "rss":
				if strings.TrimSpace(sc.URL) == "" {
					return fmt.Errorf("categories.%s.sources[%d]: url must be set for %s sources", cat, i, sc.Type)
				}
			case "file":
				if strings.TrimSpace(sc.Path) == "" {
					return fmt.Errorf("categories.%s.sources[%d]: path must be set for file sources", cat, i)
				}
			default:
				return fmt.Errorf("categories.%s.sources[%d].type: unsupported value %q", cat, i, sc.Type)
			}
		}
	}
	return nil
}

func (c *Config) validateAlerts() error {
	if c.Alerts.Slack.Enabled && strings.TrimSpace(c.Alerts.Slack.WebhookURL) == "" {
		return errors.New("alerts.slack.webhook_url must be set when alerts.slack.enabled is true")
	}
	if c.Alerts.Discord.Enabled && strings.TrimSpace(c.Alerts.Discord.WebhookURL) == "" {
		return errors.New("alerts.discord.webhook_url must be set when alerts.discord.enabled is true")
	}
	if c.Alerts.Webhook.Enabled && strings.TrimSpace(c.Alerts.Webhook.URL) == "" {
		return errors.New("alerts.webhook.url must be set when alerts.webhook.enabled is true")
	}
	if c.Alerts.TopN < 0 || c.Alerts.MinClimb < 0 {
		return errors.New("alerts.top_n and alerts.min_climb must not be negative")
	}
	return nil
}

func (c *Config) validateLog() error {
	switch strings.ToLower(c.Log.Format) {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unsupported value %q", c.Log.Level)
	}
	return nil
}
