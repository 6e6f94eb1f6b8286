package trend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/elonfeng/seedradar/pkg/source"
)

// Period is the comparison window of a ranking.
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// AllPeriods returns every ranking period.
func AllPeriods() []Period {
	return []Period{PeriodDaily, PeriodWeekly}
}

// ParsePeriod converts a user supplied name into a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// ErrInsufficientHistory means history has too few distinct dates for a period.
var ErrInsufficientHistory = errors.New("insufficient history for period")

// RankChange is a signed rank movement, or "new" when there is no previous rank.
// Positive values mean the title climbed.
type RankChange struct {
	New   bool
	Delta int
}

func (c RankChange) String() string {
	if c.New {
		return "new"
	}
	return strconv.Itoa(c.Delta)
}

func (c RankChange) MarshalJSON() ([]byte, error) {
	if c.New {
		return []byte(`"new"`), nil
	}
	return []byte(strconv.Itoa(c.Delta)), nil
}

func (c *RankChange) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"new"`)) {
		*c = RankChange{New: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode rank change %s: %w", data, err)
	}
	*c = RankChange{Delta: n}
	return nil
}

// Entry is one row of a ranking.
type Entry struct {
	Title        string     `json:"title"`
	CurrentRank  int        `json:"current_rank"`
	PreviousRank *int       `json:"previous_rank"`
	RankChange   RankChange `json:"rank_change"`
	Seeders      uint       `json:"seeders"`
	Leechers     uint       `json:"leechers"`
	Peers        uint       `json:"peers"`
}

// Ranking compares the latest sampled date of a category against an earlier one.
type Ranking struct {
	Category     source.Category `json:"category"`
	Period       Period          `json:"period"`
	CurrentDate  string          `json:"current_date"`
	PreviousDate string          `json:"previous_date"`
	Entries      []Entry         `json:"rankings"`
}

// Ranker computes rankings. TopN caps the number of entries and
// WeeklyLookback is the number of distinct dates a weekly ranking spans.
type Ranker struct {
	TopN           int
	WeeklyLookback int
}

// NewRanker creates a ranker, defaulting non-positive settings to 20 entries
// and a 7-date weekly window.
func NewRanker(topN, weeklyLookback int) Ranker {
	if topN <= 0 {
		topN = 20
	}
	if weeklyLookback < 2 {
		weeklyLookback = 7
	}
	return Ranker{TopN: topN, WeeklyLookback: weeklyLookback}
}

// lookback is how many distinct dates a period needs; the compared date is
// the one that many places from the end of the ascending date list.
func (r Ranker) lookback(p Period) int {
	if p == PeriodWeekly {
		return r.WeeklyLookback
	}
	return 2
}

// Rank computes the ranking of category for period over the full history.
// It returns ErrInsufficientHistory when the category has fewer distinct
// dates than the period requires.
func (r Ranker) Rank(history []Record, category source.Category, period Period) (*Ranking, error) {
	records := FilterCategory(history, category)
	dates := distinctDates(records)

	need := r.lookback(period)
	if len(dates) < need {
		return nil, fmt.Errorf("%w: %s %s has %d dates, needs %d",
			ErrInsufficientHistory, category, period, len(dates), need)
	}

	currentDate := dates[len(dates)-1]
	previousDate := dates[len(dates)-need]

	current := rankRows(records, currentDate)
	previous := rankRows(records, previousDate)

	previousRanks := make(map[string]int, len(previous))
	for i, row := range previous {
		previousRanks[row.Title] = i + 1
	}

	limit := min(r.TopN, len(current))
	entries := make([]Entry, 0, limit)
	for i, row := range current[:limit] {
		rank := i + 1
		entry := Entry{
			Title:       row.Title,
			CurrentRank: rank,
			Seeders:     row.Seeders,
			Leechers:    row.Leechers,
			Peers:       row.Peers,
		}
		if prev, ok := previousRanks[row.Title]; ok {
			entry.PreviousRank = &prev
			entry.RankChange = RankChange{Delta: prev - rank}
		} else {
			entry.RankChange = RankChange{New: true}
		}
		entries = append(entries, entry)
	}

	return &Ranking{
		Category:     category,
		Period:       period,
		CurrentDate:  currentDate,
		PreviousDate: previousDate,
		Entries:      entries,
	}, nil
}

// distinctDates returns the sorted calendar dates present in records.
func distinctDates(records []Record) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, r := range records {
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// rankRows returns one row per title for date, keeping the sample with the
// most peers, sorted by peers descending then title.
func rankRows(records []Record, date string) []Record {
	best := make(map[string]int)
	var rows []Record
	for _, r := range records {
		if r.Date != date {
			continue
		}
		if i, ok := best[r.Title]; ok {
			if r.Peers > rows[i].Peers {
				rows[i] = r
			}
			continue
		}
		best[r.Title] = len(rows)
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Peers != rows[j].Peers {
			return rows[i].Peers > rows[j].Peers
		}
		return rows[i].Title < rows[j].Title
	})
	return rows
}
