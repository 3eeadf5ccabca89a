package compare_test

import (
	"context"
	"time"

	"tickertape/internal/compare"
)

type mockPriceSource struct {
	HistoryFunc func(ctx context.Context, symbol string, r compare.DateRange) ([]compare.Bar, error)
	calls       []string
}

func (m *mockPriceSource) History(ctx context.Context, symbol string, r compare.DateRange) ([]compare.Bar, error) {
	m.calls = append(m.calls, symbol)
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, symbol, r)
	}
	return nil, nil
}

type mockMetadataSource struct {
	MetadataFunc func(ctx context.Context, symbol string) (compare.Metadata, error)
}

func (m *mockMetadataSource) Metadata(ctx context.Context, symbol string) (compare.Metadata, error) {
	if m.MetadataFunc != nil {
		return m.MetadataFunc(ctx, symbol)
	}
	return compare.Metadata{}, nil
}

func day(s string) time.Time {
	t, err := compare.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(date string, price float64) compare.Bar {
	return compare.Bar{Date: day(date), Open: price - 1, High: price + 1, Low: price - 2, Close: price, Volume: 1000}
}

// A resolver backed by a fixed table, unknown names resolve to "".
func tableResolver(table map[string]string) compare.Resolver {
	return compare.ResolverFunc(func(_ context.Context, query string) (string, error) {
		return table[query], nil
	})
}

var testRange = compare.DateRange{Start: day("2022-01-01"), End: day("2022-02-01")}
