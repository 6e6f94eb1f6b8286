package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Feed collects listings from a torrent RSS/Atom feed. Seeder and leecher
// counts are read from namespaced item extensions, e.g. <nyaa:seeders> or
// <torznab:attr name="seeders" value="..."/>.
type Feed struct {
	client   *http.Client
	parser   *gofeed.Parser
	name     string
	url      string
	category Category
	logger   *slog.Logger
}

// NewFeed creates a new feed collector.
func NewFeed(name, url string, category Category, logger *slog.Logger) *Feed {
	if name == "" {
		name = "rss:" + string(category)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		client:   &http.Client{Timeout: 30 * time.Second},
		parser:   gofeed.NewParser(),
		name:     name,
		url:      url,
		category: category,
		logger:   logger,
	}
}

func (f *Feed) Name() string       { return f.name }
func (f *Feed) Category() Category { return f.category }

func (f *Feed) Fetch(ctx context.Context) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", f.name, err)
	}
	req.Header.Set("User-Agent", "seedradar/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", f.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", f.name, resp.StatusCode)
	}

	return f.parse(resp.Body)
}

func (f *Feed) parse(r io.Reader) ([]Listing, error) {
	parsed, err := f.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", f.name, err)
	}

	var listings []Listing
	for _, entry := range parsed.Items {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		seeders, ok1 := extensionCount(entry, "seeders")
		leechers, ok2 := extensionCount(entry, "leechers")
		if !ok1 || !ok2 {
			f.logger.Warn("skipping feed item without peer counts", "source", f.name, "title", title)
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

// extensionCount looks up a count across all extension namespaces, either as
// an element named field or as a torznab-style attr element.
func extensionCount(item *gofeed.Item, field string) (uint, bool) {
	for _, elements := range item.Extensions {
		if exts, ok := elements[field]; ok && len(exts) > 0 {
			if n, err := parseCount(exts[0].Value); err == nil {
				return n, true
			}
		}
		for _, attr := range elements["attr"] {
			if attr.Attrs["name"] != field {
				continue
			}
			if n, err := parseCount(attr.Attrs["value"]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
