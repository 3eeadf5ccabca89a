package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tickertape/internal/shared"
)

var errNoPriceSource = errors.New("no price source configured")

type PriceSource interface {
	History(ctx context.Context, symbol string, r DateRange) ([]Bar, error)
}

type MetadataSource interface {
	Metadata(ctx context.Context, symbol string) (Metadata, error)
}

// FallbackPrices asks each source in turn until one returns without error.
type FallbackPrices []PriceSource

func (f FallbackPrices) History(ctx context.Context, symbol string, r DateRange) ([]Bar, error) {
	var firstErr error
	for _, src := range f {
		if src == nil {
			continue
		}
		bars, err := src.History(ctx, symbol, r)
		if err == nil {
			return bars, nil
		}
		shared.LoggerFrom(ctx).Warnf("Price source failed for %s, trying the next one: %v", symbol, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errNoPriceSource
	}
	return nil, firstErr
}

// Fetcher pulls the price history and metadata of a single symbol.
type Fetcher struct {
	Prices   PriceSource
	Metadata MetadataSource
	// Best effort sources used to fill fields the primary metadata lacks.
	Enrichers []MetadataSource
}

// Fetch returns the bars of symbol inside r along with its metadata. A range that
// cannot contain any day gives an empty series instead of an error.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, r DateRange) (PriceSeries, Metadata, error) {
	series := PriceSeries{Symbol: symbol}

	if r.Valid() {
		bars, err := f.Prices.History(ctx, symbol, r)
		if err != nil {
			return PriceSeries{}, nil, fmt.Errorf("price history for %s: %w", symbol, err)
		}
		series.Bars = clip(bars, r)
	} else {
		shared.LoggerFrom(ctx).Infof("Empty date range %s for %s, skipping price history", r, symbol)
	}

	meta, err := f.Metadata.Metadata(ctx, symbol)
	if err != nil {
		return PriceSeries{}, nil, fmt.Errorf("metadata for %s: %w", symbol, err)
	}
	if meta == nil {
		meta = Metadata{}
	}

	for _, src := range f.Enrichers {
		extra, err := src.Metadata(ctx, symbol)
		if err != nil {
			shared.LoggerFrom(ctx).Warnf("Unable to enrich metadata for %s: %v", symbol, err)
			continue
		}
		meta.Merge(extra)
	}

	return series, meta, nil
}

// clip drops bars outside r and sorts the rest oldest first.
func clip(bars []Bar, r DateRange) []Bar {
	kept := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if r.Contains(b.Date) {
			kept = append(kept, b)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })
	return kept
}
