package group

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/elonfeng/seedradar/pkg/normalize"
	"github.com/elonfeng/seedradar/pkg/source"
)

// Similarity is the greedy clustering grouper. Listings are walked from most
// to least popular; each unclaimed listing opens a group and absorbs every
// later unclaimed listing whose key-mode title ratio reaches the threshold.
type Similarity struct {
	threshold float64
}

// NewSimilarity creates a similarity grouper. Thresholds outside (0, 1]
// fall back to DefaultThreshold.
func NewSimilarity(threshold float64) *Similarity {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Similarity{threshold: threshold}
}

func (s *Similarity) Group(listings []source.Listing) []Group {
	if len(listings) == 0 {
		return nil
	}

	sorted := make([]source.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Peers() > sorted[j].Peers()
	})

	keys := make([]string, len(sorted))
	for i, l := range sorted {
		keys[i] = normalize.Normalize(l.Title, normalize.ModeKey)
	}

	processed := make([]bool, len(sorted))
	var groups []Group

	for i, rep := range sorted {
		if processed[i] {
			continue
		}
		processed[i] = true

		key, display := derive(rep)
		g := Group{
			Key:            key,
			Title:          display,
			Category:       rep.Category,
			Representative: rep,
		}
		g.add(rep)

		for j := i + 1; j < len(sorted); j++ {
			if processed[j] {
				continue
			}
			if Ratio(keys[i], keys[j]) >= s.threshold {
				g.add(sorted[j])
				processed[j] = true
			}
		}

		groups = append(groups, g)
	}

	return groups
}

// Ratio returns the Gestalt pattern-matching similarity of two strings,
// 2*M/T where M is the number of matched characters and T the total length.
func Ratio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
