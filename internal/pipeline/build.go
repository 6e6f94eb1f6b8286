package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/elonfeng/seedradar/internal/artifact"
	"github.com/elonfeng/seedradar/internal/config"
	"github.com/elonfeng/seedradar/internal/store"
	"github.com/elonfeng/seedradar/pkg/alert"
	"github.com/elonfeng/seedradar/pkg/group"
	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

// BuildEngine returns the trend engine described by cfg.
func BuildEngine(cfg *config.Config, logger *slog.Logger) (*trend.Engine, error) {
	charter, err := trend.NewCharter(cfg.Chart.TopN, cfg.Chart.Granularity)
	if err != nil {
		return nil, err
	}
	return trend.NewEngine(trend.NewRanker(cfg.Ranking.TopN, cfg.Ranking.WeeklyLookback), charter, logger), nil
}

// BuildSources returns the configured sources of every category.
func BuildSources(cfg *config.Config, logger *slog.Logger) (map[source.Category][]source.Source, error) {
	out := make(map[source.Category][]source.Source)
	for _, cc := range cfg.Categories {
		category, err := source.ParseCategory(cc.Name)
		if err != nil {
			return nil, err
		}
		for _, sc := range cc.Sources {
			name := sc.Name
			if name == "" {
				name = sc.Type
			}
			switch sc.Type {
			case "html":
				out[category] = append(out[category], source.NewHTMLTable(name, sc.URL, category, logger))
			case "rss":
				out[category] = append(out[category], source.NewFeed(name, sc.URL, category, logger))
			case "file":
				out[category] = append(out[category], source.NewFile(name, sc.Path, category, logger))
			default:
				return nil, fmt.Errorf("source %s: unsupported type %q", name, sc.Type)
			}
		}
	}
	return out, nil
}

// BuildAlertManager returns a manager with every enabled notifier.
func BuildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

// FromConfig builds a pipeline over history from cfg.
func FromConfig(cfg *config.Config, history store.History, logger *slog.Logger) (*Pipeline, error) {
	sources, err := BuildSources(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}
	grouper, err := group.New(cfg.Grouping.Strategy, cfg.Grouping.Threshold)
	if err != nil {
		return nil, fmt.Errorf("build grouper: %w", err)
	}
	engine, err := BuildEngine(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	var snapshots *store.Snapshots
	if cfg.Output.Snapshots {
		snapshots = store.NewSnapshots(cfg.Output.RawDir)
	}

	return New(Deps{
		Sources:   sources,
		Filter:    source.NewFilter(cfg.Filter.ExcludeKeywords),
		Grouper:   grouper,
		History:   history,
		Snapshots: snapshots,
		Engine:    engine,
		Artifacts: artifact.NewWriter(cfg.Output.SummaryDir, cfg.Output.PublishDir),
		Alerts:    BuildAlertManager(cfg),
		Rules:     alert.Rules{TopN: cfg.Alerts.TopN, MinClimb: cfg.Alerts.MinClimb},
		Logger:    logger,
	}), nil
}
