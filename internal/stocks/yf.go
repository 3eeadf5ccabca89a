package stocks

import (
	"context"
	"fmt"
	"strings"
	"time"
	// exchange zones must resolve on hosts without a zoneinfo database
	_ "time/tzdata"

	"tickertape/internal/compare"

	"github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"
)

// Yahoo talks to Yahoo Finance through finance-go. It resolves names that are
// already tickers, and serves price history and quote metadata.
type Yahoo struct {
	// Swappable for tests.
	getQuote  func(symbol string) (*finance.Quote, error)
	getEquity func(symbol string) (*finance.Equity, error)
	getChart  func(params *chart.Params) ([]*finance.ChartBar, *time.Location, error)
}

func NewYahoo() *Yahoo {
	return &Yahoo{
		getQuote:  quote.Get,
		getEquity: equity.Get,
		getChart:  chartBars,
	}
}

var (
	_ compare.Resolver       = (*Yahoo)(nil)
	_ compare.PriceSource    = (*Yahoo)(nil)
	_ compare.MetadataSource = (*Yahoo)(nil)
)

// chartBars returns the bars of the chart along with the zone its exchange trades in.
func chartBars(params *chart.Params) ([]*finance.ChartBar, *time.Location, error) {
	iter := chart.Get(params)

	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, nil, err
	}
	// meta is only filled in once a page came back with bars
	if len(bars) == 0 {
		return nil, time.UTC, nil
	}
	return bars, exchangeLocation(iter.Meta()), nil
}

// exchangeLocation prefers the named zone, which knows about daylight saving,
// over the fixed offset of the request time.
func exchangeLocation(meta finance.ChartMeta) *time.Location {
	if meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	if meta.Gmtoffset != 0 {
		return time.FixedZone(meta.Timezone, meta.Gmtoffset)
	}
	return time.UTC
}

// Resolve treats the query as a ticker and asks Yahoo for its quote.
func (y *Yahoo) Resolve(_ context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	q, err := y.getQuote(query)
	if err != nil {
		return "", fmt.Errorf("yahoo quote %q: %w", query, err)
	}
	if q == nil {
		return "", nil
	}
	return q.Symbol, nil
}

// History returns the daily bars of symbol over r.
func (y *Yahoo) History(_ context.Context, symbol string, r compare.DateRange) ([]compare.Bar, error) {
	start, end := r.Start, r.End
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	bars, loc, err := y.getChart(params)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	return convertBars(bars, loc), nil
}

// convertBars keys each bar by its trading date on the exchange. Yahoo stamps daily
// bars with the session open, which falls on the previous UTC day for exchanges
// east of UTC.
func convertBars(bars []*finance.ChartBar, loc *time.Location) []compare.Bar {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]compare.Bar, 0, len(bars))
	for _, b := range bars {
		if b == nil {
			continue
		}
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		cls, _ := b.Close.Float64()

		// skip null bars (holidays etc.)
		if open == 0 && high == 0 && low == 0 && cls == 0 {
			continue
		}

		ts := time.Unix(int64(b.Timestamp), 0).In(loc)
		out = append(out, compare.Bar{
			Date:   time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: int64(b.Volume),
		})
	}
	return out
}

// Metadata returns the descriptive fields of the equity quote.
func (y *Yahoo) Metadata(_ context.Context, symbol string) (compare.Metadata, error) {
	eq, err := y.getEquity(symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo equity %s: %w", symbol, err)
	}
	if eq == nil {
		return nil, fmt.Errorf("yahoo equity %s: %w", symbol, ErrNotFound)
	}
	return equityMetadata(eq), nil
}

func equityMetadata(eq *finance.Equity) compare.Metadata {
	meta := compare.Metadata{
		compare.KeyLongName:  eq.LongName,
		compare.KeyShortName: eq.ShortName,
		compare.KeyExchange:  eq.FullExchangeName,
		compare.KeyCurrency:  eq.CurrencyID,
		compare.KeyQuoteType: fmt.Sprint(eq.QuoteType),
	}
	if eq.MarketCap > 0 {
		meta[compare.KeyMarketCap] = fmt.Sprint(eq.MarketCap)
	}
	// some listings only carry a short name
	if !meta.Has(compare.KeyLongName) {
		meta[compare.KeyLongName] = eq.ShortName
	}
	return meta
}
