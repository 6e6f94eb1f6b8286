package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HTMLTable collects listings from a "top 100" HTML page whose rows carry the
// title link, seeders and leechers in the first three cells.
type HTMLTable struct {
	client   *http.Client
	name     string
	url      string
	category Category
	logger   *slog.Logger
}

// NewHTMLTable creates a new HTML table collector.
func NewHTMLTable(name, url string, category Category, logger *slog.Logger) *HTMLTable {
	if name == "" {
		name = "html:" + string(category)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLTable{
		client:   &http.Client{Timeout: 30 * time.Second},
		name:     name,
		url:      url,
		category: category,
		logger:   logger,
	}
}

func (h *HTMLTable) Name() string       { return h.name }
func (h *HTMLTable) Category() Category { return h.category }

func (h *HTMLTable) Fetch(ctx context.Context) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create html request %s: %w", h.name, err)
	}
	req.Header.Set("User-Agent", "seedradar/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch html %s: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("html %s status %d", h.name, resp.StatusCode)
	}

	return h.parse(resp.Body)
}

func (h *HTMLTable) parse(r io.Reader) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", h.name, err)
	}

	table := doc.Find("table.table-list").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("html %s: listing table not found", h.name)
	}

	var listings []Listing
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return // header row or layout filler
		}

		title := strings.TrimSpace(cells.Eq(0).Find(`a[href*="/torrent/"]`).First().Text())
		if title == "" {
			h.logger.Debug("skipping row without title link", "source", h.name, "row", i)
			return
		}

		seeders, err1 := parseCount(cells.Eq(1).Text())
		leechers, err2 := parseCount(cells.Eq(2).Text())
		if err1 != nil || err2 != nil {
			h.logger.Warn("skipping row with unparsable counts", "source", h.name, "title", title)
			return
		}

		listings = append(listings, Listing{
			Title:    title,
			Seeders:  seeders,
			Leechers: leechers,
			Category: h.category,
		})
	})

	return listings, nil
}

// parseCount parses a peer count such as "1,234".
func parseCount(s string) (uint, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", s, err)
	}
	return uint(n), nil
}
