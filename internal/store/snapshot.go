package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/elonfeng/seedradar/pkg/group"
	"github.com/elonfeng/seedradar/pkg/normalize"
	"github.com/elonfeng/seedradar/pkg/source"
)

const snapshotStamp = "20060102_150405"

// Snapshots writes the per-run raw and grouped CSV files.
type Snapshots struct {
	dir string
}

// NewSnapshots returns a snapshot writer rooted at dir.
func NewSnapshots(dir string) *Snapshots {
	return &Snapshots{dir: dir}
}

// WriteRaw writes <category>_raw_<stamp>.csv and returns its path, or ""
// when there is nothing to write.
func (s *Snapshots) WriteRaw(category source.Category, at time.Time, listings []source.Listing) (string, error) {
	if len(listings) == 0 {
		return "", nil
	}
	derive := normalize.For(category)

	rows := [][]string{{"title", "clean_title", "seeders", "leechers", "total_peers", "category"}}
	for _, l := range listings {
		_, display := derive(l.Title)
		rows = append(rows, []string{
			l.Title,
			display,
			formatUint(l.Seeders),
			formatUint(l.Leechers),
			formatUint(l.Peers()),
			string(category),
		})
	}
	return s.write(fmt.Sprintf("%s_raw_%s.csv", category, at.Format(snapshotStamp)), rows)
}

// WriteGrouped writes <category>_grouped_<stamp>.csv and returns its path,
// or "" when there is nothing to write.
func (s *Snapshots) WriteGrouped(category source.Category, at time.Time, groups []group.Group) (string, error) {
	if len(groups) == 0 {
		return "", nil
	}

	rows := [][]string{{"main_title", "total_seeders", "total_leechers", "total_peers", "members"}}
	for _, g := range groups {
		members := make([]string, len(g.Members))
		for i, m := range g.Members {
			members[i] = m.Title
		}
		rows = append(rows, []string{
			g.Title,
			formatUint(g.TotalSeeders),
			formatUint(g.TotalLeechers),
			formatUint(g.TotalPeers),
			strings.Join(members, " | "),
		})
	}
	return s.write(fmt.Sprintf("%s_grouped_%s.csv", category, at.Format(snapshotStamp)), rows)
}

func (s *Snapshots) write(name string, rows [][]string) (path string, err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path = filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			path, err = "", fmt.Errorf("close snapshot %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return path, nil
}

func formatUint(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
