package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Category identifies which top list a listing was sampled from.
type Category string

const (
	CategoryGames  Category = "games"
	CategoryMovies Category = "movies"
)

// ErrUnknownCategory is returned when a category name is not recognized.
var ErrUnknownCategory = errors.New("unknown category")

// AllCategories returns all known categories in processing order.
func AllCategories() []Category {
	return []Category{CategoryGames, CategoryMovies}
}

// ParseCategory converts a user supplied name into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryGames:
		return CategoryGames, nil
	case CategoryMovies:
		return CategoryMovies, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Listing is one row of a sampled top list. Immutable once fetched.
type Listing struct {
	Title    string   `json:"title"`
	Seeders  uint     `json:"seeders"`
	Leechers uint     `json:"leechers"`
	Category Category `json:"category"`
}

// Peers returns seeders + leechers, the popularity metric.
func (l Listing) Peers() uint {
	return l.Seeders + l.Leechers
}

// Source is the interface every listing collector must implement.
type Source interface {
	Name() string
	Category() Category
	Fetch(ctx context.Context) ([]Listing, error)
}
