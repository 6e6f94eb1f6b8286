package trend

import (
	"time"

	"github.com/elonfeng/seedradar/pkg/group"
	"github.com/elonfeng/seedradar/pkg/source"
)

// DateLayout is the calendar-day format used for Record.Date.
const DateLayout = "2006-01-02"

// Record is one entity's aggregated counts from one run. Records are only
// ever appended to history.
type Record struct {
	Title     string          `json:"title" db:"title"`
	Seeders   uint            `json:"seeders" db:"seeders"`
	Leechers  uint            `json:"leechers" db:"leechers"`
	Peers     uint            `json:"peers" db:"peers"`
	Category  source.Category `json:"category" db:"category"`
	Date      string          `json:"date" db:"date"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}

// Accumulate builds one Record per group for a run that happened at runAt.
// The timestamp is kept at second resolution so it reads back identically
// from every history backend.
func Accumulate(category source.Category, groups []group.Group, runAt time.Time) []Record {
	if len(groups) == 0 {
		return nil
	}

	ts := runAt.Truncate(time.Second)
	date := ts.Format(DateLayout)

	records := make([]Record, 0, len(groups))
	for _, g := range groups {
		records = append(records, Record{
			Title:     g.Title,
			Seeders:   g.TotalSeeders,
			Leechers:  g.TotalLeechers,
			Peers:     g.TotalPeers,
			Category:  category,
			Date:      date,
			Timestamp: ts,
		})
	}
	return records
}

// FilterCategory returns the records of one category, keeping order.
func FilterCategory(records []Record, category source.Category) []Record {
	var out []Record
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
