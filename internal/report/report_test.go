package report_test

import (
	"math"
	"testing"
	"time"

	"tickertape/internal/compare"
	"tickertape/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := compare.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(date string, price float64, volume int64) compare.Bar {
	return compare.Bar{Date: day(date), Open: price, High: price + 1, Low: price - 1, Close: price + 0.5, Volume: volume}
}

func TestPriceRows(t *testing.T) {
	t.Parallel()

	rows := report.PriceRows(compare.PriceSeries{
		Symbol: "AAPL",
		Bars:   []compare.Bar{bar("2022-01-03", 177.8312, 104487900)},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2022-01-03", "177.83", "178.83", "176.83", "178.33", "104487900"}, rows[0])
	assert.Len(t, rows[0], len(report.PriceColumns))

	assert.Empty(t, report.PriceRows(compare.PriceSeries{Symbol: "ZZZZ"}))
}

func TestMetadataMarkdown(t *testing.T) {
	t.Parallel()

	md := report.MetadataMarkdown("AAPL", compare.Metadata{
		compare.KeyLongName: "Apple Inc.",
		compare.KeySector:   "Technology",
		compare.KeyCurrency: "USD",
	})

	assert.Contains(t, md, "**AAPL (Apple Inc.)**")
	assert.Contains(t, md, "Company Information:")
	assert.Contains(t, md, "- Industry: N/A")
	assert.Contains(t, md, "- Sector: Technology")
	assert.Contains(t, md, "- Currency: USD")
	assert.NotContains(t, md, "Market Cap", "optional fields are only listed when present")

	empty := report.MetadataMarkdown("ZZZZ", nil)
	assert.Contains(t, empty, "**ZZZZ (N/A)**")
	assert.Contains(t, empty, "- Sector: N/A")
}

func TestBuildChart_AlignsDates(t *testing.T) {
	t.Parallel()

	rs := compare.NewResultSet()
	rs.Put("MSFT", compare.PriceSeries{Bars: []compare.Bar{
		bar("2022-01-03", 10, 100),
		bar("2022-01-05", 12, 120),
	}}, nil)
	rs.Put("SAP", compare.PriceSeries{Bars: []compare.Bar{
		bar("2022-01-04", 20, 200),
		bar("2022-01-05", 21, 210),
	}}, nil)
	rs.Put("EMPTY", compare.PriceSeries{}, nil)

	c := report.BuildChart(rs, compare.Open)

	assert.Equal(t, "Stock Comparison Over Open", c.Title())
	assert.Equal(t, []time.Time{day("2022-01-03"), day("2022-01-04"), day("2022-01-05")}, c.Dates)
	require.Len(t, c.Series, 3)

	assert.Equal(t, "MSFT", c.Series[0].Symbol)
	assert.Equal(t, 10.0, c.Series[0].Values[0])
	assert.True(t, math.IsNaN(c.Series[0].Values[1]))
	assert.Equal(t, 12.0, c.Series[0].Values[2])

	assert.True(t, math.IsNaN(c.Series[1].Values[0]))
	assert.Equal(t, 20.0, c.Series[1].Values[1])

	for _, v := range c.Series[2].Values {
		assert.True(t, math.IsNaN(v))
	}
	assert.Equal(t, 4, c.Points())
}

func TestBuildCharts(t *testing.T) {
	t.Parallel()

	assert.Nil(t, report.BuildCharts(nil))
	assert.Nil(t, report.BuildCharts(compare.NewResultSet()))

	rs := compare.NewResultSet()
	rs.Put("AAPL", compare.PriceSeries{Bars: []compare.Bar{bar("2022-01-03", 10, 100)}}, nil)

	charts := report.BuildCharts(rs)
	require.Len(t, charts, len(compare.Fields))
	for i, f := range compare.Fields {
		assert.Equal(t, f, charts[i].Field)
	}
	assert.Equal(t, 100.0, charts[4].Series[0].Values[0])
	assert.Equal(t, 10.5, charts[1].Series[0].Values[0])
}

func TestBuildCharts_OnlyEmptySeries(t *testing.T) {
	t.Parallel()

	rs := compare.NewResultSet()
	rs.Put("AAPL", compare.PriceSeries{}, nil)

	charts := report.BuildCharts(rs)
	require.Len(t, charts, 5)
	for _, c := range charts {
		assert.Empty(t, c.Dates)
		assert.Zero(t, c.Points())
	}
}
