package trend

import (
	"fmt"
	"sort"
	"time"

	"github.com/elonfeng/seedradar/pkg/source"
)

// Chart granularities.
const (
	GranularityDate      = "date"
	GranularityTimestamp = "timestamp"
)

// Chart is a per-title peers series: Data[i][j] is the peers of Titles[j]
// at Dates[i], 0 when the title was not sampled then.
type Chart struct {
	Category source.Category `json:"category"`
	Dates    []string        `json:"dates"`
	Titles   []string        `json:"titles"`
	Data     [][]uint        `json:"data"`
}

// Charter builds charts. TopN caps the number of title columns.
type Charter struct {
	TopN        int
	Granularity string
}

// NewCharter creates a charter, defaulting to 20 titles per calendar date.
func NewCharter(topN int, granularity string) (Charter, error) {
	if topN <= 0 {
		topN = 20
	}
	switch granularity {
	case "":
		granularity = GranularityDate
	case GranularityDate, GranularityTimestamp:
	default:
		return Charter{}, fmt.Errorf("unknown chart granularity %q", granularity)
	}
	return Charter{TopN: topN, Granularity: granularity}, nil
}

func (c Charter) marker(r Record) string {
	if c.Granularity == GranularityTimestamp {
		return r.Timestamp.UTC().Format(time.RFC3339)
	}
	return r.Date
}

// Build pivots the category's history into a marker x title matrix, keeping
// the maximum peers per cell and the TopN titles by their latest value.
func (c Charter) Build(history []Record, category source.Category) Chart {
	chart := Chart{
		Category: category,
		Dates:    []string{},
		Titles:   []string{},
		Data:     [][]uint{},
	}

	cells := make(map[string]map[string]uint)
	titleSet := make(map[string]bool)
	for _, r := range history {
		if r.Category != category {
			continue
		}
		m := c.marker(r)
		row, ok := cells[m]
		if !ok {
			row = make(map[string]uint)
			cells[m] = row
		}
		if r.Peers >= row[r.Title] {
			row[r.Title] = r.Peers
		}
		titleSet[r.Title] = true
	}
	if len(cells) == 0 {
		return chart
	}

	for m := range cells {
		chart.Dates = append(chart.Dates, m)
	}
	sort.Strings(chart.Dates)

	latest := cells[chart.Dates[len(chart.Dates)-1]]
	titles := make([]string, 0, len(titleSet))
	for t := range titleSet {
		titles = append(titles, t)
	}
	sort.Slice(titles, func(i, j int) bool {
		if latest[titles[i]] != latest[titles[j]] {
			return latest[titles[i]] > latest[titles[j]]
		}
		return titles[i] < titles[j]
	})
	if len(titles) > c.TopN {
		titles = titles[:c.TopN]
	}
	chart.Titles = titles

	for _, m := range chart.Dates {
		row := make([]uint, len(titles))
		for j, t := range titles {
			row[j] = cells[m][t]
		}
		chart.Data = append(chart.Data, row)
	}
	return chart
}
