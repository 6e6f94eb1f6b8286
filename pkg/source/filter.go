package source

import "strings"

// Filter drops listings whose titles contain any excluded keyword.
type Filter struct {
	exclude []string
}

// NewFilter creates a filter from a list of keywords. Matching is case-insensitive.
func NewFilter(excludeKeywords []string) *Filter {
	exclude := make([]string, 0, len(excludeKeywords))
	for _, kw := range excludeKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			exclude = append(exclude, kw)
		}
	}
	return &Filter{exclude: exclude}
}

// Allows reports whether the title passes the filter.
func (f *Filter) Allows(title string) bool {
	if f == nil || len(f.exclude) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, ex := range f.exclude {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	return true
}

// Apply returns the listings that pass the filter, keeping their order.
func (f *Filter) Apply(listings []Listing) []Listing {
	if f == nil || len(f.exclude) == 0 {
		return listings
	}
	kept := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if f.Allows(l.Title) {
			kept = append(kept, l)
		}
	}
	return kept
}
