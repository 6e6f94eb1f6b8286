package alert

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const maxLines = 10

var httpClient = &http.Client{Timeout: 10 * time.Second}

func formatPeers(n uint) string {
	return humanize.Comma(int64(n))
}

// bulletList renders up to maxLines movers, one per line.
func bulletList(movers []Mover) string {
	lines := make([]string, 0, min(maxLines, len(movers)))
	for _, m := range movers[:min(maxLines, len(movers))] {
		lines = append(lines, "• "+moverLine(m))
	}
	return strings.Join(lines, "\n")
}

// post sends a JSON body to url on behalf of the named notifier. Any non-2xx
// response is an error.
func post(ctx context.Context, client *http.Client, name, url string, body []byte, header http.Header) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "seedradar/1.0")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s status %d", name, resp.StatusCode)
	}
	return nil
}
