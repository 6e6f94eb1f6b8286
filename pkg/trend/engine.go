// Package trend accumulates per-run entity records into history and derives
// rankings and chart series from it.
package trend

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/elonfeng/seedradar/pkg/source"
)

// Engine computes every ranking and chart for a set of categories.
type Engine struct {
	ranker  Ranker
	charter Charter
	logger  *slog.Logger
}

// NewEngine creates a new trend engine.
func NewEngine(ranker Ranker, charter Charter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{ranker: ranker, charter: charter, logger: logger}
}

// Ranker returns the engine's ranker.
func (e *Engine) Ranker() Ranker { return e.ranker }

// Charter returns the engine's charter.
func (e *Engine) Charter() Charter { return e.charter }

// Skip records a ranking period left out of a report.
type Skip struct {
	Category source.Category `json:"category"`
	Period   Period          `json:"period"`
	Reason   string          `json:"reason"`
}

// Report holds everything derived from one pass over history.
type Report struct {
	Rankings []Ranking `json:"rankings"`
	Charts   []Chart   `json:"charts"`
	Skipped  []Skip    `json:"skipped"`
}

// Ranking returns the report's ranking for category and period, if present.
func (r *Report) Ranking(category source.Category, period Period) (*Ranking, bool) {
	for i := range r.Rankings {
		if r.Rankings[i].Category == category && r.Rankings[i].Period == period {
			return &r.Rankings[i], true
		}
	}
	return nil, false
}

// Run computes the daily and weekly rankings and the chart of each category.
// History is only read, so categories and periods are computed concurrently.
// Periods without enough history are listed in Report.Skipped.
func (e *Engine) Run(ctx context.Context, history []Record, categories []source.Category) (*Report, error) {
	periods := AllPeriods()

	rankings := make([]*Ranking, len(categories)*len(periods))
	skips := make([]*Skip, len(rankings))
	charts := make([]Chart, len(categories))

	g, ctx := errgroup.WithContext(ctx)
	for ci, category := range categories {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			charts[ci] = e.charter.Build(history, category)
			return nil
		})

		for pi, period := range periods {
			slot := ci*len(periods) + pi
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				ranking, err := e.ranker.Rank(history, category, period)
				if errors.Is(err, ErrInsufficientHistory) {
					skips[slot] = &Skip{Category: category, Period: period, Reason: err.Error()}
					return nil
				}
				if err != nil {
					return err
				}
				rankings[slot] = ranking
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Charts: charts}
	for i := range rankings {
		if rankings[i] != nil {
			report.Rankings = append(report.Rankings, *rankings[i])
		}
		if skips[i] != nil {
			e.logger.Info("ranking period skipped",
				"category", skips[i].Category, "period", skips[i].Period, "reason", skips[i].Reason)
			report.Skipped = append(report.Skipped, *skips[i])
		}
	}
	return report, nil
}
