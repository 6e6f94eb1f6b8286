// Package normalize turns noisy torrent listing titles into grouping keys and
// display titles.
//
// Two transforms share a common rule list. Key mode is aggressive: it strips
// punctuation, lower-cases and removes all whitespace, producing a compact
// identity string that is only ever compared, never shown. Display mode keeps
// case and word spacing and trims only trailing noise.
package normalize

import (
	"strings"

	"github.com/elonfeng/seedradar/pkg/source"
)

// Mode selects the transform applied by Normalize.
type Mode int

const (
	// ModeKey produces a lowercase, whitespace-free matching key.
	ModeKey Mode = iota
	// ModeDisplay produces a presentable, case-preserved title.
	ModeDisplay
)

func (m Mode) String() string {
	if m == ModeDisplay {
		return "display"
	}
	return "key"
}

// UnknownKey is used when neither the rules nor the bare title yield a key.
const UnknownKey = "unknown"

// maxKeyPasses bounds the fixpoint loop in key mode. Every pass that changes
// a key shortens it, so the loop ends well before this in practice.
const maxKeyPasses = 8

// Normalize converts a title according to mode.
//
// Key mode is idempotent: Normalize(Normalize(t, ModeKey), ModeKey) equals
// Normalize(t, ModeKey). It may return "" when every token of the title is noise.
// Display mode returns the trimmed original title when cleaning removes everything.
func Normalize(title string, mode Mode) string {
	if mode == ModeDisplay {
		return display(title)
	}
	return key(title)
}

func key(title string) string {
	k := compact(keyBasis(title))
	for i := 0; i < maxKeyPasses; i++ {
		next := compact(keyBasis(k))
		if next == k {
			break
		}
		k = next
	}
	return k
}

// keyBasis applies the common and key-only rules but keeps case and spacing.
func keyBasis(title string) string {
	s := applyRules(CommonRules, title)
	s = applyRules(KeyRules, s)
	return strings.TrimSpace(s)
}

func display(title string) string {
	s := applyRules(CommonRules, title)
	s = applyRules(DisplayRules, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return strings.TrimSpace(title)
	}
	return s
}

// compact lower-cases s and drops everything that is not a letter or digit.
func compact(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// bareKey is the last-resort key: the raw title compacted with no rules applied.
func bareKey(title string) string {
	if k := compact(title); k != "" {
		return k
	}
	return UnknownKey
}

// Deriver returns the grouping key and display title for one listing title.
type Deriver func(title string) (key, display string)

// For returns the category-specific key derivation.
func For(category source.Category) Deriver {
	if category == source.CategoryMovies {
		return MovieKey
	}
	return GameKey
}

// GameKey derives a game's grouping key with the aggressive transform and its
// display title with the conservative one plus game suffix stripping.
func GameKey(title string) (string, string) {
	k := key(title)
	if k == "" {
		k = bareKey(title)
	}

	d := display(title)
	trimmed := strings.TrimSpace(applyRules(GameDisplaySuffixes, d))
	if trimmed == "" {
		trimmed = d
	}
	return k, trimmed
}

// MovieKey derives a movie's grouping key from the text before its first year.
// "Dune Part Two 2024 1080p WEBRip" groups with "Dune.Part.Two.(2024).720p".
// Titles with no year, or nothing before it, fall back to the aggressive
// transform for both key and display.
func MovieKey(title string) (string, string) {
	spaced := dotSeparator.ReplaceAllString(title, " ")

	if loc := MovieYear.FindStringIndex(spaced); loc != nil {
		prefix := whitespace.ReplaceAllString(spaced[:loc[0]], " ")
		prefix = strings.TrimSpace(prefixTrail.ReplaceAllString(prefix, ""))
		if k := compact(prefix); k != "" {
			return k, prefix
		}
	}

	basis := keyBasis(title)
	k := key(title)
	if k == "" {
		k = bareKey(title)
	}
	if basis == "" {
		basis = display(title)
	}
	return k, basis
}
