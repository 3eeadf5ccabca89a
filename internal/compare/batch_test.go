package compare_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"tickertape/internal/compare"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComparer(resolver compare.Resolver, prices *mockPriceSource, meta *mockMetadataSource) *compare.Comparer {
	return &compare.Comparer{
		Resolver: resolver,
		Fetcher:  &compare.Fetcher{Prices: prices, Metadata: meta},
	}
}

func symbolPrices() *mockPriceSource {
	return &mockPriceSource{
		HistoryFunc: func(_ context.Context, symbol string, _ compare.DateRange) ([]compare.Bar, error) {
			return []compare.Bar{bar("2022-01-03", 10), bar("2022-01-04", 11)}, nil
		},
	}
}

func namedMetadata() *mockMetadataSource {
	return &mockMetadataSource{
		MetadataFunc: func(_ context.Context, symbol string) (compare.Metadata, error) {
			return compare.Metadata{compare.KeyLongName: symbol + " Inc."}, nil
		},
	}
}

func TestCompare_EmptyInput(t *testing.T) {
	t.Parallel()

	c := newComparer(tableResolver(nil), symbolPrices(), namedMetadata())
	report := c.Compare(context.Background(), nil, testRange)

	require.NotNil(t, report.Results)
	assert.True(t, report.Results.Empty())
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, report.Warnings())
}

func TestCompare_UnresolvedNameIsSkipped(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{"Apple": "AAPL", "Microsoft": "MSFT"})
	c := newComparer(resolver, symbolPrices(), namedMetadata())

	report := c.Compare(context.Background(), []string{"Apple", "Nonexistent Corp", "Microsoft"}, testRange)

	assert.Equal(t, []string{"AAPL", "MSFT"}, report.Results.Symbols())
	assert.Equal(t, []string{"Nonexistent Corp"}, report.Unresolved())
	assert.Empty(t, report.Warnings(), "unresolved names are not warnings")

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, compare.Fetched, report.Outcomes[0].Status)
	assert.Equal(t, compare.Unresolved, report.Outcomes[1].Status)
	assert.Equal(t, compare.Fetched, report.Outcomes[2].Status)
}

func TestCompare_FetchFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{"Apple": "AAPL", "Broken": "BRKN", "Microsoft": "MSFT"})
	prices := &mockPriceSource{
		HistoryFunc: func(_ context.Context, symbol string, _ compare.DateRange) ([]compare.Bar, error) {
			if symbol == "BRKN" {
				return nil, errors.New("connection reset")
			}
			return []compare.Bar{bar("2022-01-03", 10)}, nil
		},
	}
	c := newComparer(resolver, prices, namedMetadata())

	report := c.Compare(context.Background(), []string{"Apple", "Broken", "Microsoft"}, testRange)

	assert.Equal(t, []string{"AAPL", "MSFT"}, report.Results.Symbols())
	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Broken", warnings[0].Query)
	assert.Contains(t, warnings[0].Message(), "Couldn't fetch data for Broken")
	assert.Contains(t, warnings[0].Message(), "connection reset")

	_, ok := report.Results.Metadata("BRKN")
	assert.False(t, ok, "failed symbol must not leave metadata behind")
}

func TestCompare_MetadataFailureLeavesNoPrices(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{"Apple": "AAPL"})
	meta := &mockMetadataSource{
		MetadataFunc: func(context.Context, string) (compare.Metadata, error) {
			return nil, errors.New("quote unavailable")
		},
	}
	c := newComparer(resolver, symbolPrices(), meta)

	report := c.Compare(context.Background(), []string{"Apple"}, testRange)

	assert.True(t, report.Results.Empty())
	_, ok := report.Results.Prices("AAPL")
	assert.False(t, ok)
	require.Len(t, report.Warnings(), 1)
}

func TestCompare_ResolverErrorIsWarning(t *testing.T) {
	t.Parallel()

	resolver := compare.ResolverFunc(func(_ context.Context, query string) (string, error) {
		if query == "Flaky" {
			return "", errors.New("search unavailable")
		}
		return "AAPL", nil
	})
	c := newComparer(resolver, symbolPrices(), namedMetadata())

	report := c.Compare(context.Background(), []string{"Flaky", "Apple"}, testRange)

	assert.Equal(t, []string{"AAPL"}, report.Results.Symbols())
	require.Len(t, report.Warnings(), 1)
	assert.Equal(t, "Flaky", report.Warnings()[0].Query)
}

func TestCompare_PanicIsIsolated(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{"Apple": "AAPL", "Boom": "BOOM"})
	prices := &mockPriceSource{
		HistoryFunc: func(_ context.Context, symbol string, _ compare.DateRange) ([]compare.Bar, error) {
			if symbol == "BOOM" {
				panic("nil dereference")
			}
			return []compare.Bar{bar("2022-01-03", 10)}, nil
		},
	}
	c := newComparer(resolver, prices, namedMetadata())

	report := c.Compare(context.Background(), []string{"Boom", "Apple"}, testRange)

	assert.Equal(t, []string{"AAPL"}, report.Results.Symbols())
	require.Len(t, report.Warnings(), 1)
	assert.Contains(t, report.Warnings()[0].Err.Error(), "nil dereference")
}

func TestCompare_DuplicateSymbolKeepsLaterData(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{"Apple": "AAPL", "AAPL Inc": "AAPL", "Microsoft": "MSFT"})
	calls := 0
	prices := &mockPriceSource{
		HistoryFunc: func(_ context.Context, symbol string, _ compare.DateRange) ([]compare.Bar, error) {
			calls++
			return []compare.Bar{bar("2022-01-03", float64(calls))}, nil
		},
	}
	c := newComparer(resolver, prices, namedMetadata())

	report := c.Compare(context.Background(), []string{"Apple", "Microsoft", "AAPL Inc"}, testRange)

	assert.Equal(t, []string{"AAPL", "MSFT"}, report.Results.Symbols(), "first insertion position is kept")
	series, ok := report.Results.Prices("AAPL")
	require.True(t, ok)
	require.Len(t, series.Bars, 1)
	assert.Equal(t, 3.0, series.Bars[0].Close, "later occurrence wins")
}

func TestCompare_InvertedRangeGivesEmptySeries(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{"Apple": "AAPL"})
	prices := symbolPrices()
	c := newComparer(resolver, prices, namedMetadata())

	inverted := compare.DateRange{Start: day("2023-01-01"), End: day("2020-01-01")}
	report := c.Compare(context.Background(), []string{"Apple"}, inverted)

	require.Empty(t, report.Warnings())
	series, ok := report.Results.Prices("AAPL")
	require.True(t, ok)
	assert.True(t, series.Empty())
	assert.Empty(t, prices.calls, "no price request for an empty range")

	meta, ok := report.Results.Metadata("AAPL")
	require.True(t, ok)
	assert.Equal(t, "AAPL Inc.", meta.Get(compare.KeyLongName))
}

func TestCompare_Progress(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{"Apple": "AAPL"})
	c := newComparer(resolver, symbolPrices(), namedMetadata())

	var seen []compare.Progress
	c.Progress = func(p compare.Progress) { seen = append(seen, p) }

	c.Compare(context.Background(), []string{"Apple", "Unknown"}, testRange)

	assert.Equal(t, []compare.Progress{
		{Index: 0, Total: 2, Query: "Apple"},
		{Index: 1, Total: 2, Query: "Unknown"},
	}, seen)
}

func TestCompare_Properties(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]string{
		"Apple": "AAPL", "AAPL Inc": "AAPL", "Microsoft": "MSFT", "Broken": "BRKN", "Amazon": "AMZN",
	})
	prices := &mockPriceSource{
		HistoryFunc: func(_ context.Context, symbol string, _ compare.DateRange) ([]compare.Bar, error) {
			if symbol == "BRKN" {
				return nil, errors.New("boom")
			}
			return []compare.Bar{bar("2022-01-03", 10)}, nil
		},
	}
	c := newComparer(resolver, prices, namedMetadata())

	inputs := [][]string{
		{},
		{"Apple"},
		{"Nope"},
		{"Broken"},
		{"Apple", "AAPL Inc"},
		{"Apple", "Broken", "Nope", "Microsoft", "Amazon", "AAPL Inc"},
	}

	for _, queries := range inputs {
		report := c.Compare(context.Background(), queries, testRange)
		rs := report.Results

		assert.LessOrEqual(t, rs.Len(), len(queries))
		assert.Len(t, report.Outcomes, len(queries))
		for _, symbol := range rs.Symbols() {
			_, hasPrices := rs.Prices(symbol)
			_, hasMeta := rs.Metadata(symbol)
			assert.True(t, hasPrices && hasMeta, "symbol %s must be in both maps", symbol)
		}
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fetched", compare.Fetched.String())
	assert.Equal(t, "unresolved", compare.Unresolved.String())
	assert.Equal(t, "failed", compare.Failed.String())
	assert.Equal(t, "unknown", compare.Status(42).String())
}

func TestCompare_LogsToContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := log.WithContext(context.Background(), log.New(&buf))

	c := &compare.Comparer{
		Resolver: tableResolver(map[string]string{"Apple": "AAPL"}),
		Fetcher:  &compare.Fetcher{Prices: &mockPriceSource{}, Metadata: &mockMetadataSource{}},
	}
	c.Compare(ctx, []string{"Apple", "Nonexistent"}, testRange)

	assert.Contains(t, buf.String(), `Fetched AAPL for "Apple"`)
	assert.Contains(t, buf.String(), `No symbol found for "Nonexistent"`)
}
