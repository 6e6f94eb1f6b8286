package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRule(t *testing.T, rules []Rule, name string) Rule {
	t.Helper()
	for _, r := range rules {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "rule not found", "%s", name)
	return Rule{}
}

func TestCommonRules(t *testing.T) {
	tests := []struct {
		rule string
		in   string
		want string
	}{
		{"brackets", "Title [MULTi10]", "Title  "},
		{"parens", "Title (Extended Cut)", "Title  "},
		{"version", "Title v1.2.3b", "Title  "},
		{"version", "Vol 3", "Vol 3"},
		{"build", "Title Build 15877", "Title  "},
		{"build", "Title build-15877", "Title  "},
		{"update", "Title Update 5 incl DLC", "Title  "},
		{"channels", "Title DDP 5.1", "Title DDP  "},
		{"separators", "The.Last_of.Us", "The Last of Us"},
		{"early-release", "Title HDCAM", "Title  "},
		{"source", "Title WEB-DL", "Title  "},
		{"codec", "Title x265", "Title  "},
		{"audio", "Title AAC", "Title  "},
		{"resolution", "Title 2160p 4K", "Title    "},
		{"repack", "Title-Repack", "Title- "},
		{"multi-language", "Title MULTi12", "Title  "},
		{"dlc", "Title DLC", "Title  "},
		{"language", "Title ENG", "Title  "},
		{"limited", "Title LiMiTED", "Title  "},
		{"remastered", "Title Remastered", "Title  "},
		{"extended", "Title EXTENDED", "Title  "},
		{"directors-cut", "Title Director's Cut", "Title  "},
		{"unrated", "Title UNRATED", "Title  "},
		{"complete-edition", "Title Complete Deluxe Edition", "Title  "},
		{"year", "Title 1999 2024", "Title    "},
		{"year", "Title 2150", "Title 2150"},
		{"plus-suffix", "Title + 5 DLCs + Bonus", "Title  "},
		{"release-group", "Title TENOKE", "Title  "},
		{"whitespace", "  a   b  ", " a b "},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.in, func(t *testing.T) {
			r := findRule(t, CommonRules, tt.rule)
			assert.Equal(t, tt.want, r.Apply(tt.in))
		})
	}
}

func TestKeyRules(t *testing.T) {
	tests := []struct {
		rule string
		in   string
		want string
	}{
		{"trailing-group", "Title -GROUP2", "Title"},
		{"trailing-group", "Half-Life 2", "Half-Life 2"},
		{"edition-words", "Title Game of the Year", "Title  "},
		{"release-words", "Title portable", "Title  "},
		{"language-words", "Title 12 languages", "Title  "},
		{"punctuation", "Baldur's: Gate!", "Baldurs Gate"},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.in, func(t *testing.T) {
			r := findRule(t, KeyRules, tt.rule)
			assert.Equal(t, tt.want, r.Apply(tt.in))
		})
	}
}

func TestDisplayRules(t *testing.T) {
	tests := []struct {
		rule string
		in   string
		want string
	}{
		{"selective-download", "Title Selective Download", "Title  "},
		{"unclosed-bracket", "Title (Build", "Title"},
		{"unclosed-bracket", "Title [F", "Title"},
		{"trailing-separators", "Title - :", "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.in, func(t *testing.T) {
			r := findRule(t, DisplayRules, tt.rule)
			assert.Equal(t, tt.want, r.Apply(tt.in))
		})
	}
}

func TestGameDisplaySuffixes(t *testing.T) {
	tests := []struct {
		rule string
		in   string
		want string
	}{
		{"build-suffix", "Title - 0 1", "Title"},
		{"build-suffix", "Title: OST Bundle", "Title"},
		{"edition-suffix", "Title: Premium Edition", "Title"},
		{"edition-suffix", "Title - Deluxe", "Title"},
		{"paren-suffix", "Title (0 1 2)", "Title"},
		{"bracket-suffix", "Title [FI", "Title [FI"},
		{"bracket-suffix", "Title [F]", "Title"},
		{"group-suffix", "Title -RUNE", "Title"},
		{"group-suffix", "Half-Life", "Half-Life"},
		{"early-purchase", "Title with early purchase bonus", "Title"},
		{"trailing-punctuation", "Title -(", "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.in, func(t *testing.T) {
			r := findRule(t, GameDisplaySuffixes, tt.rule)
			assert.Equal(t, tt.want, r.Apply(tt.in))
		})
	}
}
