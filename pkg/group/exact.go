package group

import "github.com/elonfeng/seedradar/pkg/source"

// ExactKey groups listings whose category-specific keys are equal. Groups
// come out in first-seen key order.
type ExactKey struct{}

// NewExactKey creates an exact-key grouper.
func NewExactKey() *ExactKey {
	return &ExactKey{}
}

func (ExactKey) Group(listings []source.Listing) []Group {
	if len(listings) == 0 {
		return nil
	}

	index := make(map[string]int)
	var groups []Group

	for _, l := range listings {
		key, display := derive(l)

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Key:            key,
				Title:          display,
				Category:       l.Category,
				Representative: l,
			})
		} else if l.Peers() > groups[i].Representative.Peers() {
			// Ties keep the earlier listing.
			groups[i].Representative = l
			groups[i].Title = display
		}
		groups[i].add(l)
	}

	return groups
}
