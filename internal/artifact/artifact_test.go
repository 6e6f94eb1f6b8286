package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

var updatedAt = time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)

func TestWriteRanking(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "summary"), "")

	prev := 1
	path, err := w.WriteRanking(trend.Ranking{
		Category: source.CategoryGames,
		Period:   trend.PeriodDaily,
		Entries: []trend.Entry{
			{Title: "C", CurrentRank: 1, RankChange: trend.RankChange{New: true}, Seeders: 80, Leechers: 10, Peers: 90},
			{Title: "A", CurrentRank: 2, PreviousRank: &prev, RankChange: trend.RankChange{Delta: -1}, Seeders: 70, Leechers: 10, Peers: 80},
		},
	}, updatedAt)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary", "games_daily_rankings.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"period": "daily",
		"updated_at": "2024-01-02T10:30:00Z",
		"rankings": [
			{"title": "C", "current_rank": 1, "previous_rank": null, "rank_change": "new", "seeders": 80, "leechers": 10, "peers": 90},
			{"title": "A", "current_rank": 2, "previous_rank": 1, "rank_change": -1, "seeders": 70, "leechers": 10, "peers": 80}
		]
	}`, string(data))
}

func TestWriteChartMirrorsToPublishDir(t *testing.T) {
	dir := t.TempDir()
	publish := filepath.Join(dir, "site", "data")
	w := NewWriter(filepath.Join(dir, "summary"), publish)

	chart := trend.Chart{
		Category: source.CategoryMovies,
		Dates:    []string{"2024-01-01", "2024-01-02"},
		Titles:   []string{"Dune Part Two"},
		Data:     [][]uint{{10}, {20}},
	}
	path, err := w.WriteChart(chart, updatedAt)
	require.NoError(t, err)

	summary, err := os.ReadFile(path)
	require.NoError(t, err)
	mirrored, err := os.ReadFile(filepath.Join(publish, "movies_chart_data.json"))
	require.NoError(t, err)
	assert.Equal(t, summary, mirrored)

	var got ChartFile
	require.NoError(t, json.Unmarshal(summary, &got))
	assert.Equal(t, chart.Titles, got.Titles)
	assert.Equal(t, chart.Data, got.Data)
	assert.True(t, updatedAt.Equal(got.UpdatedAt))
}

func TestWriteReportOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "")

	report := &trend.Report{
		Rankings: []trend.Ranking{{Category: source.CategoryGames, Period: trend.PeriodWeekly}},
		Charts:   []trend.Chart{{Category: source.CategoryGames, Dates: []string{}, Titles: []string{}, Data: [][]uint{}}},
	}
	paths, err := w.WriteReport(report, updatedAt)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	_, err = w.WriteReport(report, updatedAt.Add(time.Hour))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"games_weekly_rankings.json", "games_chart_data.json"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "games_weekly_rankings.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rankings": []`)
	assert.Contains(t, string(data), "2024-01-02T11:30:00Z")
}

func TestWriteReportContinuesPastFailure(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "")

	// A directory in place of the file makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "games_daily_rankings.json", "x"), 0o755))

	report := &trend.Report{
		Rankings: []trend.Ranking{
			{Category: source.CategoryGames, Period: trend.PeriodDaily},
			{Category: source.CategoryMovies, Period: trend.PeriodDaily},
		},
		Charts: []trend.Chart{
			{Category: source.CategoryGames, Dates: []string{}, Titles: []string{}, Data: [][]uint{}},
			{Category: source.CategoryMovies, Dates: []string{}, Titles: []string{}, Data: [][]uint{}},
		},
	}
	paths, err := w.WriteReport(report, updatedAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "games daily ranking")

	assert.Equal(t, []string{
		filepath.Join(dir, "movies_daily_rankings.json"),
		filepath.Join(dir, "games_chart_data.json"),
		filepath.Join(dir, "movies_chart_data.json"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}
