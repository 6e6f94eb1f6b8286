// Package group clusters raw listings into logical entities.
package group

import (
	"fmt"

	"github.com/elonfeng/seedradar/pkg/normalize"
	"github.com/elonfeng/seedradar/pkg/source"
)

// Strategy names accepted by New.
const (
	StrategyExact      = "exact"
	StrategySimilarity = "similarity"
)

// DefaultThreshold is the similarity ratio at which two titles are merged.
const DefaultThreshold = 0.6

// Group is one logical title and every listing that was folded into it.
// TotalPeers always equals TotalSeeders + TotalLeechers.
type Group struct {
	Key            string           `json:"key"`
	Title          string           `json:"title"`
	Category       source.Category  `json:"category"`
	Representative source.Listing   `json:"representative"`
	Members        []source.Listing `json:"members"`
	TotalSeeders   uint             `json:"total_seeders"`
	TotalLeechers  uint             `json:"total_leechers"`
	TotalPeers     uint             `json:"total_peers"`
}

func (g *Group) add(l source.Listing) {
	g.Members = append(g.Members, l)
	g.TotalSeeders += l.Seeders
	g.TotalLeechers += l.Leechers
	g.TotalPeers = g.TotalSeeders + g.TotalLeechers
}

// Grouper turns a run's listings into entity groups. Implementations are
// deterministic: the same input always yields the same groups in the same order.
type Grouper interface {
	Group(listings []source.Listing) []Group
}

// New returns the grouper for a strategy name.
func New(strategy string, threshold float64) (Grouper, error) {
	switch strategy {
	case "", StrategyExact:
		return NewExactKey(), nil
	case StrategySimilarity:
		return NewSimilarity(threshold), nil
	}
	return nil, fmt.Errorf("unknown grouping strategy %q", strategy)
}

// derive picks the key derivation for the listing's category.
func derive(l source.Listing) (string, string) {
	return normalize.For(l.Category)(l.Title)
}
