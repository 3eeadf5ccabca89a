package components

import (
	"math"
	"testing"
	"time"

	"tickertape/internal/compare"
	"tickertape/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChart_NoPoints(t *testing.T) {
	out := RenderChart(nil, report.Chart{Field: compare.Close}, 80, 10)

	assert.Contains(t, out, "Stock Comparison Over Close")
	assert.Contains(t, out, "No data points in the selected range.")
}

func TestRenderChart_SkipsEmptySeries(t *testing.T) {
	nan := math.NaN()
	c := report.Chart{
		Field: compare.Volume,
		Dates: []time.Time{
			time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 1, 4, 0, 0, 0, 0, time.UTC),
		},
		Series: []report.Series{
			{Symbol: "AAPL", Values: []float64{100, 200}},
			{Symbol: "GONE", Values: []float64{nan, nan}},
		},
	}

	out := RenderChart(nil, c, 80, 8)
	assert.Contains(t, out, "AAPL")
	assert.NotContains(t, out, "GONE")
	assert.Contains(t, out, "2022-01-03 to 2022-01-04")
}

func TestNewPriceTable(t *testing.T) {
	series := compare.PriceSeries{Symbol: "AAPL", Bars: []compare.Bar{
		{Date: time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}}

	tbl := NewPriceTable(nil, series, 80, 5)
	require.Len(t, tbl.Rows(), 1)
	assert.Equal(t, "2022-01-03", tbl.Rows()[0][0])
	assert.Len(t, tbl.Columns(), len(report.PriceColumns))
	assert.False(t, tbl.Focused())
}

func TestRenderCompanyPane(t *testing.T) {
	out := RenderCompanyPane(nil, "AAPL", compare.Metadata{compare.KeyLongName: "Apple Inc."}, 40)

	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "Industry")
}
