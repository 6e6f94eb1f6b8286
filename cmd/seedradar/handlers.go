package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/elonfeng/seedradar/internal/config"
	"github.com/elonfeng/seedradar/internal/logging"
	"github.com/elonfeng/seedradar/internal/pipeline"
	"github.com/elonfeng/seedradar/internal/store"
	"github.com/elonfeng/seedradar/pkg/server"
	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.yml", "config.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup loads config and builds the logger and history store every command needs.
func setup() (*config.Config, *slog.Logger, store.History, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	history, err := store.Open(cfg.History.Backend, cfg.History.Target())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open history: %w", err)
	}
	return cfg, logger, history, nil
}

// selectCategories resolves --category values, defaulting to every enabled category.
func selectCategories(cfg *config.Config, names []string) ([]source.Category, error) {
	if len(names) == 0 {
		return cfg.EnabledCategories(), nil
	}
	var out []source.Category
	for _, name := range names {
		c, err := source.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// loadHistory reads history for read-only commands. A missing store is empty.
func loadHistory(ctx context.Context, history store.History) ([]trend.Record, error) {
	records, err := history.Load(ctx)
	if errors.Is(err, store.ErrNoHistory) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return records, nil
}

func runCollect(ctx context.Context, names []string, noArtifacts bool) error {
	cfg, logger, history, err := setup()
	if err != nil {
		return err
	}
	defer history.Close()

	categories, err := selectCategories(cfg, names)
	if err != nil {
		return err
	}

	lock := pipeline.NewRunLock(cfg.History.LockPath())
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer lock.Unlock()

	p, err := pipeline.FromConfig(cfg, history, logger)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, categories, pipeline.Options{SkipArtifacts: noArtifacts})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(res.Categories))
	for _, c := range res.Categories {
		status := "ok"
		if c.Error != "" {
			status = c.Error
		}
		rows = append(rows, []string{
			heading(c.Category),
			humanize.Comma(int64(c.Listings)),
			humanize.Comma(int64(c.Groups)),
			humanize.Comma(int64(c.Appended)),
			status,
		})
	}
	fmt.Fprintln(stdout, renderTable("Run "+res.RunID,
		[]string{"Category", "Listings", "Groups", "Appended", "Status"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft}))

	if res.HistoryReset {
		fmt.Fprintln(stdout, "history was unreadable and has been reset; rankings skipped for this run")
	}
	if res.Report != nil {
		for _, skip := range res.Report.Skipped {
			fmt.Fprintf(stdout, "%s %s ranking skipped: not enough history yet\n", heading(skip.Category), skip.Period)
		}
	}
	if len(res.Artifacts) > 0 {
		fmt.Fprintf(stdout, "wrote %d artifacts to %s\n", len(res.Artifacts), cfg.Output.SummaryDir)
	}

	if failed := res.Failed(); len(failed) > 0 && len(failed) == len(categories) {
		return fmt.Errorf("collect failed for every category")
	}
	return nil
}

func runRankings(ctx context.Context, categoryName, periodName string, jsonOutput bool) error {
	cfg, logger, history, err := setup()
	if err != nil {
		return err
	}
	defer history.Close()

	category, err := source.ParseCategory(categoryName)
	if err != nil {
		return err
	}
	period, err := trend.ParsePeriod(periodName)
	if err != nil {
		return err
	}
	records, err := loadHistory(ctx, history)
	if err != nil {
		return err
	}

	engine, err := pipeline.BuildEngine(cfg, logger)
	if err != nil {
		return err
	}
	ranking, err := engine.Ranker().Rank(records, category, period)
	if errors.Is(err, trend.ErrInsufficientHistory) {
		fmt.Fprintf(stdout, "no %s ranking yet for %s (try collecting more days first: seedradar collect)\n", period, category)
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(ranking)
	}
	fmt.Fprintln(stdout, renderRanking(ranking))
	return nil
}

func renderRanking(r *trend.Ranking) string {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.CurrentRank),
			formatChange(e.RankChange),
			e.Title,
			humanize.Comma(int64(e.Peers)),
			humanize.Comma(int64(e.Seeders)),
			humanize.Comma(int64(e.Leechers)),
		})
	}
	title := fmt.Sprintf("%s %s ranking, %s vs %s", heading(r.Category), r.Period, r.CurrentDate, r.PreviousDate)
	return renderTable(title,
		[]string{"#", "Change", "Title", "Peers", "Seeders", "Leechers"}, rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight, alignRight})
}

func runChart(ctx context.Context, categoryName string, jsonOutput bool) error {
	cfg, logger, history, err := setup()
	if err != nil {
		return err
	}
	defer history.Close()

	category, err := source.ParseCategory(categoryName)
	if err != nil {
		return err
	}
	records, err := loadHistory(ctx, history)
	if err != nil {
		return err
	}
	engine, err := pipeline.BuildEngine(cfg, logger)
	if err != nil {
		return err
	}

	chart := engine.Charter().Build(records, category)
	if jsonOutput {
		return writeJSON(chart)
	}
	if len(chart.Titles) == 0 {
		fmt.Fprintf(stdout, "no history yet for %s\n", category)
		return nil
	}
	fmt.Fprintln(stdout, renderChart(chart, 7))
	return nil
}

// renderChart shows one row per title over the last maxDates markers.
func renderChart(chart trend.Chart, maxDates int) string {
	first := max(0, len(chart.Dates)-maxDates)
	dates := chart.Dates[first:]

	headers := append([]string{"Title"}, dates...)
	aligns := []columnAlignment{alignLeft}
	for range dates {
		aligns = append(aligns, alignRight)
	}

	rows := make([][]string, 0, len(chart.Titles))
	for j, title := range chart.Titles {
		row := []string{title}
		for i := first; i < len(chart.Dates); i++ {
			row = append(row, humanize.Comma(int64(chart.Data[i][j])))
		}
		rows = append(rows, row)
	}
	return renderTable(heading(chart.Category)+" peers", headers, rows, aligns)
}

func runHistory(ctx context.Context, categoryName string, limit int) error {
	_, _, history, err := setup()
	if err != nil {
		return err
	}
	defer history.Close()

	records, err := loadHistory(ctx, history)
	if err != nil {
		return err
	}
	if categoryName != "" {
		category, err := source.ParseCategory(categoryName)
		if err != nil {
			return err
		}
		records = trend.FilterCategory(records, category)
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "no history found (try collecting data first: seedradar collect)")
		return nil
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp.After(records[j].Timestamp) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			humanize.Time(r.Timestamp),
			heading(r.Category),
			r.Title,
			humanize.Comma(int64(r.Peers)),
		})
	}
	fmt.Fprintln(stdout, renderTable("",
		[]string{"Sampled", "Category", "Title", "Peers"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
	return nil
}

func runServe(ctx context.Context, port int) error {
	cfg, logger, history, err := setup()
	if err != nil {
		return err
	}
	defer history.Close()

	if port == 0 {
		port = cfg.Server.Port
	}

	p, err := pipeline.FromConfig(cfg, history, logger)
	if err != nil {
		return err
	}

	srv := server.New(history, p.Engine(), p, pipeline.NewRunLock(cfg.History.LockPath()),
		cfg.EnabledCategories(), server.Options{
			Port:        port,
			CORSOrigins: cfg.Server.CORSOrigins,
			RateLimit:   cfg.Server.RateLimit,
			RateBurst:   cfg.Server.RateBurst,
		}, logger)
	return srv.ListenAndServe(ctx)
}

func formatChange(c trend.RankChange) string {
	switch {
	case c.New:
		return "NEW"
	case c.Delta > 0:
		return "▲" + strconv.Itoa(c.Delta)
	case c.Delta < 0:
		return "▼" + strconv.Itoa(-c.Delta)
	}
	return "="
}

func heading(c source.Category) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(c), "_", " "))
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
