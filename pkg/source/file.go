package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// File replays listings from a CSV file with a title,seeders,leechers header.
// Extra columns are ignored, so raw snapshot files can be fed back in.
type File struct {
	name     string
	path     string
	category Category
	logger   *slog.Logger
}

// NewFile creates a new CSV file source.
func NewFile(name, path string, category Category, logger *slog.Logger) *File {
	if name == "" {
		name = "file:" + string(category)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &File{name: name, path: path, category: category, logger: logger}
}

func (f *File) Name() string       { return f.name }
func (f *File) Category() Category { return f.category }

func (f *File) Fetch(ctx context.Context) ([]Listing, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open listing file %s: %w", f.path, err)
	}
	defer file.Close()
	return f.read(ctx, file)
}

func (f *File) read(ctx context.Context, r io.Reader) ([]Listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read listing header %s: %w", f.path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	titleCol, ok1 := cols["title"]
	seedCol, ok2 := cols["seeders"]
	leechCol, ok3 := cols["leechers"]
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("listing file %s: header must contain title, seeders, leechers", f.path)
	}
	width := max(titleCol, seedCol, leechCol) + 1

	var listings []Listing
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			f.logger.Warn("skipping malformed listing row", "source", f.name, "line", line, "err", err)
			continue
		}
		if len(rec) < width {
			f.logger.Warn("skipping short listing row", "source", f.name, "line", line)
			continue
		}

		seeders, err1 := parseCount(rec[seedCol])
		leechers, err2 := parseCount(rec[leechCol])
		title := strings.TrimSpace(rec[titleCol])
		if err1 != nil || err2 != nil || title == "" {
			f.logger.Warn("skipping listing row with bad fields", "source", f.name, "line", line)
			continue
		}

		listings = append(listings, Listing{
			Title:    title,
			Seeders:  seeders,
			Leechers: leechers,
			Category: f.category,
		})
	}
	return listings, nil
}
