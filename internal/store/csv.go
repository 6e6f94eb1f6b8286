package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

var historyHeader = []string{"title", "seeders", "leechers", "peers", "category", "date", "timestamp"}

// legacyTimestamp is the zone-less form older history files were written with.
const legacyTimestamp = "2006-01-02T15:04:05"

// CSVHistory stores history in a single CSV file. The header is written
// once and rows are only ever appended.
type CSVHistory struct {
	path string
}

// NewCSVHistory returns a CSV history at path. The file is created on the
// first Append.
func NewCSVHistory(path string) *CSVHistory {
	return &CSVHistory{path: path}
}

// Path returns the history file path.
func (h *CSVHistory) Path() string { return h.path }

func (h *CSVHistory) Append(_ context.Context, records []trend.Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open history %s: %w", h.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close history %s: %w", h.path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat history %s: %w", h.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(historyHeader); err != nil {
			return fmt.Errorf("write history header: %w", err)
		}
	}
	for _, r := range records {
		row := []string{
			r.Title,
			formatUint(r.Seeders),
			formatUint(r.Leechers),
			formatUint(r.Peers),
			string(r.Category),
			r.Date,
			r.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write history row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush history %s: %w", h.path, err)
	}
	return nil
}

func (h *CSVHistory) Load(_ context.Context) ([]trend.Record, error) {
	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", h.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(historyHeader)

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCorrupt, err)
	}
	if !slices.Equal(header, historyHeader) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrCorrupt, header)
	}

	var records []trend.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		rec, err := parseRow(row)
		if err != nil {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoHistory
	}
	return records, nil
}

func parseRow(row []string) (trend.Record, error) {
	var counts [3]uint
	for i, field := range row[1:4] {
		n, err := strconv.ParseUint(field, 10, 0)
		if err != nil {
			return trend.Record{}, fmt.Errorf("%s: %w", historyHeader[i+1], err)
		}
		counts[i] = uint(n)
	}
	if _, err := time.Parse(trend.DateLayout, row[5]); err != nil {
		return trend.Record{}, fmt.Errorf("date: %w", err)
	}
	ts, err := parseTimestamp(row[6])
	if err != nil {
		return trend.Record{}, fmt.Errorf("timestamp: %w", err)
	}
	return trend.Record{
		Title:     row[0],
		Seeders:   counts[0],
		Leechers:  counts[1],
		Peers:     counts[2],
		Category:  source.Category(row[4]),
		Date:      row[5],
		Timestamp: ts,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.ParseInLocation(legacyTimestamp, s, time.Local)
}

func (h *CSVHistory) Reset(_ context.Context) error {
	if err := os.Remove(h.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove history %s: %w", h.path, err)
	}
	return nil
}

func (h *CSVHistory) Close() error { return nil }
