package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elonfeng/seedradar/pkg/source"
)

var sampleTitles = []string{
	"Game Title (v1.2) [REPACK]-GROUP",
	"Game Title Repack-GROUP2",
	"Elden Ring: Deluxe Edition (v1.10 + DLC) [FitGirl Repack]",
	"Baldur's Gate 3 - Digital Deluxe Edition v4.1.1.3622274-GOG",
	"Cyberpunk 2077 Ultimate Edition MULTi18-ElAmigos",
	"Oppenheimer.2023.1080p.BluRay.x264-YIFY",
	"Dune Part Two (2024) [2160p] [4K] [WEB] [5.1] [YTS.MX]",
	"The.Batman.2022.HDCAM.x264.AAC-EVO",
	"1917 (2019)",
	"TS",
	"T.S.",
	"Pokémon Scarlet v1.3.2 + 2 DLCs",
	"İstanbul Kırmızısı 2017 WEB-DL",
	"",
	"   ",
	"Half-Life 2: Episode Two",
	"Mission: Impossible - Dead Reckoning Part One 2023",
}

func TestKeyIdempotent(t *testing.T) {
	for _, title := range sampleTitles {
		t.Run(title, func(t *testing.T) {
			once := Normalize(title, ModeKey)
			twice := Normalize(once, ModeKey)
			assert.Equal(t, once, twice)
		})
	}
}

func TestKeyIsCompact(t *testing.T) {
	for _, title := range sampleTitles {
		k := Normalize(title, ModeKey)
		assert.NotContains(t, k, " ", "key for %q", title)
		assert.Equal(t, compact(k), k, "key for %q", title)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Game Title (v1.2) [REPACK]-GROUP", "gametitle"},
		{"Game Title Repack-GROUP2", "gametitle"},
		{"Elden Ring: Deluxe Edition (v1.10 + DLC) [FitGirl Repack]", "eldenring"},
		{"Cyberpunk 2077 Ultimate Edition MULTi18-ElAmigos", "cyberpunk"},
		{"Oppenheimer.2023.1080p.BluRay.x264-YIFY", "oppenheimer"},
		{"1080p", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.title, ModeKey))
		})
	}
}

func TestNormalizeDisplay(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Oppenheimer.2023.1080p.BluRay.x264", "Oppenheimer"},
		{"Half-Life 2: Episode Two", "Half-Life 2: Episode Two"},
		{"Some Game [Selective Download]", "Some Game"},
		{"Some Game (", "Some Game"},
		{"Game -", "Game"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.title, ModeDisplay))
		})
	}
}

func TestNormalizeDisplayNeverEmpty(t *testing.T) {
	assert.Equal(t, "1080p", Normalize("1080p", ModeDisplay))
	assert.Equal(t, "[FitGirl]", Normalize("  [FitGirl] ", ModeDisplay))
	assert.Equal(t, "", Normalize("   ", ModeDisplay))
}

func TestGameKey(t *testing.T) {
	tests := []struct {
		title       string
		wantKey     string
		wantDisplay string
	}{
		{"Game Title (v1.2) [REPACK]-GROUP", "gametitle", "Game Title"},
		{"Game Title Repack-GROUP2", "gametitle", "Game Title"},
		{"Elden Ring: Deluxe Edition (v1.10 + DLC) [FitGirl Repack]", "eldenring", "Elden Ring"},
		{"Baldur's Gate 3 - Digital Deluxe Edition v4.1.1.3622274-GOG", "baldursgate3", "Baldur's Gate 3"},
		{"Half-Life 2: Episode Two", "halflife2episodetwo", "Half-Life 2: Episode Two"},
		{"Dead Space - DLC", "deadspace", "Dead Space"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			k, d := GameKey(tt.title)
			assert.Equal(t, tt.wantKey, k)
			assert.Equal(t, tt.wantDisplay, d)
		})
	}
}

func TestGameKeyFallsBackWhenAllNoise(t *testing.T) {
	k, d := GameKey("FitGirl Repack")
	assert.Equal(t, "fitgirlrepack", k)
	assert.Equal(t, "FitGirl Repack", d)
}

func TestMovieKey(t *testing.T) {
	tests := []struct {
		title       string
		wantKey     string
		wantDisplay string
	}{
		{"Oppenheimer.2023.1080p.BluRay.x264-YIFY", "oppenheimer", "Oppenheimer"},
		{"Dune Part Two (2024) [2160p] [4K]", "duneparttwo", "Dune Part Two"},
		{"Dune: Part Two 2024 WEBRip", "duneparttwo", "Dune: Part Two"},
		{"Mission: Impossible - Dead Reckoning Part One 2023", "missionimpossibledeadreckoningpartone", "Mission: Impossible - Dead Reckoning Part One"},
		{"The Matrix 1080p BluRay", "thematrix", "The Matrix"},
		{"1917 (2019)", "19172019", "1917 (2019)"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			k, d := MovieKey(tt.title)
			assert.Equal(t, tt.wantKey, k)
			assert.Equal(t, tt.wantDisplay, d)
		})
	}
}

func TestForCategory(t *testing.T) {
	k, _ := For(source.CategoryMovies)("Barbie.2023.720p")
	assert.Equal(t, "barbie", k)

	k, _ = For(source.CategoryGames)("Barbie 2023 Repack")
	assert.Equal(t, "barbie", k)
}
