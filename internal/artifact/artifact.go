// Package artifact writes ranking and chart JSON files for publishing.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

// RankingFile is the on-disk shape of one category+period ranking.
type RankingFile struct {
	Period    trend.Period  `json:"period"`
	UpdatedAt time.Time     `json:"updated_at"`
	Rankings  []trend.Entry `json:"rankings"`
}

// ChartFile is the on-disk shape of one category's chart.
type ChartFile struct {
	UpdatedAt time.Time `json:"updated_at"`
	Dates     []string  `json:"dates"`
	Titles    []string  `json:"titles"`
	Data      [][]uint  `json:"data"`
}

// RankingName returns the file name of a ranking artifact.
func RankingName(category source.Category, period trend.Period) string {
	return fmt.Sprintf("%s_%s_rankings.json", category, period)
}

// ChartName returns the file name of a chart artifact.
func ChartName(category source.Category) string {
	return fmt.Sprintf("%s_chart_data.json", category)
}

// Writer writes artifacts into a summary directory and, if set, mirrors
// each one into a publish directory.
type Writer struct {
	summaryDir string
	publishDir string
}

// NewWriter creates a Writer. publishDir may be empty.
func NewWriter(summaryDir, publishDir string) *Writer {
	return &Writer{summaryDir: summaryDir, publishDir: publishDir}
}

// WriteRanking writes one ranking and returns the summary-dir path.
func (w *Writer) WriteRanking(r trend.Ranking, updatedAt time.Time) (string, error) {
	entries := r.Entries
	if entries == nil {
		entries = []trend.Entry{}
	}
	return w.write(RankingName(r.Category, r.Period), RankingFile{
		Period:    r.Period,
		UpdatedAt: updatedAt.UTC(),
		Rankings:  entries,
	})
}

// WriteChart writes one chart and returns the summary-dir path.
func (w *Writer) WriteChart(c trend.Chart, updatedAt time.Time) (string, error) {
	return w.write(ChartName(c.Category), ChartFile{
		UpdatedAt: updatedAt.UTC(),
		Dates:     c.Dates,
		Titles:    c.Titles,
		Data:      c.Data,
	})
}

// WriteReport writes every ranking and chart in report. A failed file does
// not stop the others; the paths written are returned with the joined errors.
func (w *Writer) WriteReport(report *trend.Report, updatedAt time.Time) ([]string, error) {
	var (
		paths []string
		errs  []error
	)
	for _, r := range report.Rankings {
		p, err := w.WriteRanking(r, updatedAt)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s ranking: %w", r.Category, r.Period, err))
			continue
		}
		paths = append(paths, p)
	}
	for _, c := range report.Charts {
		p, err := w.WriteChart(c, updatedAt)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s chart: %w", c.Category, err))
			continue
		}
		paths = append(paths, p)
	}
	return paths, errors.Join(errs...)
}

func (w *Writer) write(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.summaryDir, name)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	if w.publishDir != "" {
		if err := writeFile(filepath.Join(w.publishDir, name), data); err != nil {
			return "", fmt.Errorf("publish %s: %w", name, err)
		}
	}
	return path, nil
}

// writeFile replaces path through a rename so readers never see a partial file.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
