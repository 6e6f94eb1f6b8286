package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Collect fetches every source in order and concatenates their listings.
// A failing source is logged and skipped; an error is returned only when
// every source failed.
func Collect(ctx context.Context, sources []Source, filter *Filter, logger *slog.Logger) ([]Listing, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		all  []Listing
		errs []error
	)
	for _, src := range sources {
		listings, err := src.Fetch(ctx)
		if err != nil {
			logger.Warn("source fetch failed", "source", src.Name(), "category", src.Category(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		for i := range listings {
			listings[i].Category = src.Category()
		}
		listings = filter.Apply(listings)
		logger.Info("source fetched", "source", src.Name(), "category", src.Category(), "listings", len(listings))
		all = append(all, listings...)
	}

	if len(sources) > 0 && len(errs) == len(sources) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}
