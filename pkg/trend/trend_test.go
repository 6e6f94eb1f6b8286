package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/seedradar/pkg/group"
	"github.com/elonfeng/seedradar/pkg/source"
)

func rec(category source.Category, date, title string, peers uint) Record {
	ts, _ := time.Parse(DateLayout, date)
	return Record{
		Title:     title,
		Seeders:   peers,
		Peers:     peers,
		Category:  category,
		Date:      date,
		Timestamp: ts.Add(12 * time.Hour),
	}
}

func game(date, title string, peers uint) Record {
	return rec(source.CategoryGames, date, title, peers)
}

func TestDailyRanking(t *testing.T) {
	history := []Record{
		game("2024-01-01", "A", 100),
		game("2024-01-01", "B", 50),
		game("2024-01-02", "A", 80),
		game("2024-01-02", "C", 90),
	}

	ranking, err := NewRanker(20, 7).Rank(history, source.CategoryGames, PeriodDaily)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-02", ranking.CurrentDate)
	assert.Equal(t, "2024-01-01", ranking.PreviousDate)
	require.Len(t, ranking.Entries, 2)

	c := ranking.Entries[0]
	assert.Equal(t, "C", c.Title)
	assert.Equal(t, 1, c.CurrentRank)
	assert.Nil(t, c.PreviousRank)
	assert.True(t, c.RankChange.New)

	a := ranking.Entries[1]
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, 2, a.CurrentRank)
	require.NotNil(t, a.PreviousRank)
	assert.Equal(t, 1, *a.PreviousRank)
	assert.Equal(t, RankChange{Delta: -1}, a.RankChange)
}

func TestWeeklyRankingNeedsSevenDates(t *testing.T) {
	var history []Record
	for day := 1; day <= 6; day++ {
		history = append(history, game(fmt.Sprintf("2024-01-%02d", day), "A", uint(day)))
	}
	ranker := NewRanker(20, 7)

	_, err := ranker.Rank(history, source.CategoryGames, PeriodWeekly)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	history = append(history,
		game("2024-01-07", "A", 10),
		game("2024-01-07", "B", 20),
	)
	ranking, err := ranker.Rank(history, source.CategoryGames, PeriodWeekly)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-07", ranking.CurrentDate)
	assert.Equal(t, "2024-01-01", ranking.PreviousDate)
	require.Len(t, ranking.Entries, 2)
	assert.Equal(t, "B", ranking.Entries[0].Title)
	assert.Equal(t, RankChange{Delta: -1}, ranking.Entries[1].RankChange)
}

func TestDailyRankingNeedsTwoDates(t *testing.T) {
	_, err := NewRanker(0, 0).Rank([]Record{game("2024-01-01", "A", 1)}, source.CategoryGames, PeriodDaily)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = NewRanker(0, 0).Rank(nil, source.CategoryMovies, PeriodDaily)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestRankingCapsAndSorts(t *testing.T) {
	var history []Record
	for i := range 30 {
		history = append(history, game("2024-01-01", fmt.Sprintf("T%02d", i), uint(i)))
		history = append(history, game("2024-01-02", fmt.Sprintf("T%02d", i), uint(i%5)))
	}

	ranking, err := NewRanker(20, 7).Rank(history, source.CategoryGames, PeriodDaily)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 20)

	for i, e := range ranking.Entries {
		assert.Equal(t, i+1, e.CurrentRank)
		if i == 0 {
			continue
		}
		prev := ranking.Entries[i-1]
		assert.True(t, prev.Peers > e.Peers || (prev.Peers == e.Peers && prev.Title < e.Title),
			"%s before %s", prev.Title, e.Title)
	}
}

func TestRankingUsesPerDateMaximum(t *testing.T) {
	history := []Record{
		game("2024-01-01", "A", 10),
		game("2024-01-02", "A", 5),
		game("2024-01-02", "B", 30),
		game("2024-01-02", "A", 40),
	}

	ranking, err := NewRanker(20, 7).Rank(history, source.CategoryGames, PeriodDaily)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 2)
	assert.Equal(t, "A", ranking.Entries[0].Title)
	assert.Equal(t, uint(40), ranking.Entries[0].Peers)
	assert.Equal(t, RankChange{Delta: 0}, ranking.Entries[0].RankChange)
}

func TestRankingIgnoresOtherCategories(t *testing.T) {
	history := []Record{
		game("2024-01-01", "A", 10),
		rec(source.CategoryMovies, "2024-01-02", "M", 10),
	}
	_, err := NewRanker(20, 7).Rank(history, source.CategoryGames, PeriodDaily)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestRankChangeJSON(t *testing.T) {
	data, err := json.Marshal([]RankChange{{New: true}, {Delta: 3}, {Delta: -2}})
	require.NoError(t, err)
	assert.JSONEq(t, `["new", 3, -2]`, string(data))

	var back []RankChange
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []RankChange{{New: true}, {Delta: 3}, {Delta: -2}}, back)

	var bad RankChange
	assert.Error(t, json.Unmarshal([]byte(`"up"`), &bad))
}

func TestEntryJSONShape(t *testing.T) {
	prev := 4
	data, err := json.Marshal(Entry{Title: "A", CurrentRank: 1, PreviousRank: &prev, RankChange: RankChange{Delta: 3}, Peers: 9})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"A","current_rank":1,"previous_rank":4,"rank_change":3,"seeders":0,"leechers":0,"peers":9}`, string(data))

	data, err = json.Marshal(Entry{Title: "B", CurrentRank: 2, RankChange: RankChange{New: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"B","current_rank":2,"previous_rank":null,"rank_change":"new","seeders":0,"leechers":0,"peers":0}`, string(data))
}

func TestChartPivot(t *testing.T) {
	history := []Record{
		game("2024-01-01", "A", 100),
		game("2024-01-01", "B", 50),
		game("2024-01-02", "A", 80),
		game("2024-01-02", "A", 60),
		game("2024-01-02", "C", 90),
		rec(source.CategoryMovies, "2024-01-02", "M", 999),
	}
	charter, err := NewCharter(20, "")
	require.NoError(t, err)

	chart := charter.Build(history, source.CategoryGames)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, chart.Dates)
	assert.Equal(t, []string{"C", "A", "B"}, chart.Titles)
	assert.Equal(t, [][]uint{{0, 100, 50}, {90, 80, 0}}, chart.Data)

	for _, row := range chart.Data {
		assert.Len(t, row, len(chart.Titles))
	}
}

func TestChartCapsTitles(t *testing.T) {
	var history []Record
	for i := range 25 {
		history = append(history, game("2024-01-01", fmt.Sprintf("T%02d", i), uint(i+1)))
	}
	charter, err := NewCharter(0, GranularityDate)
	require.NoError(t, err)

	chart := charter.Build(history, source.CategoryGames)
	require.Len(t, chart.Titles, 20)
	assert.Equal(t, "T24", chart.Titles[0])
	assert.Equal(t, "T05", chart.Titles[19])
}

func TestChartTimestampGranularity(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	history := []Record{
		{Title: "A", Peers: 1, Category: source.CategoryGames, Date: "2024-01-01", Timestamp: base},
		{Title: "A", Peers: 2, Category: source.CategoryGames, Date: "2024-01-01", Timestamp: base.Add(6 * time.Hour)},
	}
	charter, err := NewCharter(20, GranularityTimestamp)
	require.NoError(t, err)

	chart := charter.Build(history, source.CategoryGames)
	assert.Equal(t, []string{"2024-01-01T08:00:00Z", "2024-01-01T14:00:00Z"}, chart.Dates)
	assert.Equal(t, [][]uint{{1}, {2}}, chart.Data)

	_, err = NewCharter(20, "hourly")
	assert.Error(t, err)
}

func TestChartEmpty(t *testing.T) {
	charter, err := NewCharter(20, "")
	require.NoError(t, err)

	chart := charter.Build(nil, source.CategoryMovies)
	data, err := json.Marshal(chart)
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"movies","dates":[],"titles":[],"data":[]}`, string(data))
}

func TestAccumulate(t *testing.T) {
	runAt := time.Date(2024, 3, 5, 23, 59, 58, 900, time.UTC)
	records := Accumulate(source.CategoryGames, []group.Group{
		{Title: "Elden Ring", TotalSeeders: 420, TotalLeechers: 52, TotalPeers: 472},
		{Title: "Game Title", TotalSeeders: 30, TotalLeechers: 7, TotalPeers: 37},
	}, runAt)

	require.Len(t, records, 2)
	assert.Equal(t, Record{
		Title:     "Elden Ring",
		Seeders:   420,
		Leechers:  52,
		Peers:     472,
		Category:  source.CategoryGames,
		Date:      "2024-03-05",
		Timestamp: time.Date(2024, 3, 5, 23, 59, 58, 0, time.UTC),
	}, records[0])

	assert.Nil(t, Accumulate(source.CategoryGames, nil, runAt))
}

func TestEngineRun(t *testing.T) {
	history := []Record{
		game("2024-01-01", "A", 100),
		game("2024-01-02", "A", 80),
		game("2024-01-02", "C", 90),
	}
	charter, err := NewCharter(20, "")
	require.NoError(t, err)
	engine := NewEngine(NewRanker(20, 7), charter, nil)

	report, err := engine.Run(context.Background(), history, source.AllCategories())
	require.NoError(t, err)

	daily, ok := report.Ranking(source.CategoryGames, PeriodDaily)
	require.True(t, ok)
	assert.Equal(t, "C", daily.Entries[0].Title)

	_, ok = report.Ranking(source.CategoryGames, PeriodWeekly)
	assert.False(t, ok)

	assert.Len(t, report.Charts, 2)
	assert.Equal(t, source.CategoryGames, report.Charts[0].Category)
	assert.Empty(t, report.Charts[1].Titles)

	// games weekly, movies daily and weekly.
	assert.Len(t, report.Skipped, 3)
}

func TestEngineRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	charter, err := NewCharter(20, "")
	require.NoError(t, err)
	_, err = NewEngine(NewRanker(20, 7), charter, nil).Run(ctx, nil, source.AllCategories())
	assert.ErrorIs(t, err, context.Canceled)
}
