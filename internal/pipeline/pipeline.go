// Package pipeline runs one full invocation: collect listings, group them,
// append to history, then derive rankings, charts, artifacts and alerts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/elonfeng/seedradar/internal/artifact"
	"github.com/elonfeng/seedradar/internal/store"
	"github.com/elonfeng/seedradar/pkg/alert"
	"github.com/elonfeng/seedradar/pkg/group"
	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

// Pipeline wires the engine packages to storage and outputs.
type Pipeline struct {
	sources   map[source.Category][]source.Source
	filter    *source.Filter
	grouper   group.Grouper
	history   store.History
	snapshots *store.Snapshots
	engine    *trend.Engine
	artifacts *artifact.Writer
	alerts    *alert.Manager
	rules     alert.Rules
	logger    *slog.Logger
	now       func() time.Time
}

// Deps are the collaborators of a Pipeline. Snapshots, Artifacts and Alerts
// are optional.
type Deps struct {
	Sources   map[source.Category][]source.Source
	Filter    *source.Filter
	Grouper   group.Grouper
	History   store.History
	Snapshots *store.Snapshots
	Engine    *trend.Engine
	Artifacts *artifact.Writer
	Alerts    *alert.Manager
	Rules     alert.Rules
	Logger    *slog.Logger
	Now       func() time.Time
}

// New creates a pipeline.
func New(d Deps) *Pipeline {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Alerts == nil {
		d.Alerts = alert.NewManager(nil)
	}
	return &Pipeline{
		sources:   d.Sources,
		filter:    d.Filter,
		grouper:   d.Grouper,
		history:   d.History,
		snapshots: d.Snapshots,
		engine:    d.Engine,
		artifacts: d.Artifacts,
		alerts:    d.Alerts,
		rules:     d.Rules,
		logger:    d.Logger,
		now:       d.Now,
	}
}

// History returns the store the pipeline appends to.
func (p *Pipeline) History() store.History { return p.history }

// Engine returns the trend engine.
func (p *Pipeline) Engine() *trend.Engine { return p.engine }

// Options tune a single Run.
type Options struct {
	// SkipArtifacts leaves artifact files untouched.
	SkipArtifacts bool
}

// CategoryResult summarizes the collection phase of one category.
type CategoryResult struct {
	Category source.Category `json:"category"`
	Listings int             `json:"listings"`
	Groups   int             `json:"groups"`
	Appended int             `json:"appended"`
	Error    string          `json:"error,omitempty"`
}

// Result summarizes a Run.
type Result struct {
	RunID        string           `json:"run_id"`
	StartedAt    time.Time        `json:"started_at"`
	Categories   []CategoryResult `json:"categories"`
	HistoryReset bool             `json:"history_reset"`
	Report       *trend.Report    `json:"report,omitempty"`
	Artifacts    []string         `json:"artifacts,omitempty"`
	Alerts       int              `json:"alerts"`
}

// Failed returns the categories whose collection failed.
func (r *Result) Failed() []source.Category {
	var out []source.Category
	for _, c := range r.Categories {
		if c.Error != "" {
			out = append(out, c.Category)
		}
	}
	return out
}

// Run performs one invocation for categories. A failing category, artifact
// or notifier is logged and does not stop the others. Unreadable history is
// discarded and ranking is skipped for this run.
func (p *Pipeline) Run(ctx context.Context, categories []source.Category, opts Options) (*Result, error) {
	runAt := p.now()
	res := &Result{RunID: uuid.NewString(), StartedAt: runAt}
	logger := p.logger.With("run_id", res.RunID)
	logger.Info("run started", "categories", categories)

	for _, category := range categories {
		cr := p.collect(ctx, logger.With("category", category), category, runAt)
		res.Categories = append(res.Categories, cr)
	}

	history, err := p.history.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNoHistory):
		logger.Info("no history yet, skipping rankings")
		return res, nil
	case errors.Is(err, store.ErrCorrupt):
		logger.Error("history unreadable, discarding it", "err", err)
		if rerr := p.history.Reset(ctx); rerr != nil {
			return res, fmt.Errorf("reset corrupt history: %w", rerr)
		}
		res.HistoryReset = true
		return res, nil
	case err != nil:
		return res, fmt.Errorf("load history: %w", err)
	}

	report, err := p.engine.Run(ctx, history, categories)
	if err != nil {
		return res, fmt.Errorf("compute rankings: %w", err)
	}
	res.Report = report

	if p.artifacts != nil && !opts.SkipArtifacts {
		paths, err := p.artifacts.WriteReport(report, runAt)
		res.Artifacts = paths
		if err != nil {
			logger.Error("some artifacts failed to write", "written", len(paths), "err", err)
		} else {
			logger.Info("artifacts written", "files", len(paths))
		}
	}

	res.Alerts = p.alert(ctx, logger, report, categories)
	logger.Info("run finished",
		"rankings", len(report.Rankings), "skipped", len(report.Skipped), "alerts", res.Alerts)
	return res, nil
}

func (p *Pipeline) collect(ctx context.Context, logger *slog.Logger, category source.Category, runAt time.Time) CategoryResult {
	cr := CategoryResult{Category: category}
	fail := func(msg string, err error) CategoryResult {
		logger.Error(msg, "err", err)
		cr.Error = err.Error()
		return cr
	}

	listings, err := source.Collect(ctx, p.sources[category], p.filter, logger)
	if err != nil {
		return fail("collect failed", err)
	}
	cr.Listings = len(listings)
	if len(listings) == 0 {
		logger.Warn("no listings collected")
		return cr
	}

	groups := p.grouper.Group(listings)
	cr.Groups = len(groups)

	if p.snapshots != nil {
		if _, err := p.snapshots.WriteRaw(category, runAt, listings); err != nil {
			logger.Warn("raw snapshot failed", "err", err)
		}
		if _, err := p.snapshots.WriteGrouped(category, runAt, groups); err != nil {
			logger.Warn("grouped snapshot failed", "err", err)
		}
	}

	records := trend.Accumulate(category, groups, runAt)
	if err := p.history.Append(ctx, records); err != nil {
		return fail("append history failed", err)
	}
	cr.Appended = len(records)
	logger.Info("category collected", "listings", cr.Listings, "groups", cr.Groups)
	return cr
}

func (p *Pipeline) alert(ctx context.Context, logger *slog.Logger, report *trend.Report, categories []source.Category) int {
	if !p.alerts.HasNotifiers() {
		return 0
	}
	sent := 0
	for _, category := range categories {
		ranking, ok := report.Ranking(category, trend.PeriodDaily)
		if !ok {
			continue
		}
		n := p.rules.Detect(ranking)
		if n == nil {
			continue
		}
		if err := p.alerts.Broadcast(ctx, n); err != nil {
			logger.Warn("alert delivery failed", "category", category, "err", err)
			continue
		}
		sent++
	}
	return sent
}
