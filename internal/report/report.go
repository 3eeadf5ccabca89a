// Package report turns a comparison ResultSet into the rows, panes and chart
// series the UI draws. Nothing here touches the terminal.
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"tickertape/internal/compare"
)

var PriceColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// PriceRows formats each bar of series as a table row, oldest first.
func PriceRows(series compare.PriceSeries) [][]string {
	rows := make([][]string, 0, series.Len())
	for _, b := range series.Bars {
		rows = append(rows, []string{
			b.Date.Format(compare.DateLayout),
			fmt.Sprintf("%.2f", b.Open),
			fmt.Sprintf("%.2f", b.High),
			fmt.Sprintf("%.2f", b.Low),
			fmt.Sprintf("%.2f", b.Close),
			strconv.FormatInt(b.Volume, 10),
		})
	}
	return rows
}

// MetadataMarkdown is the left pane of a symbol: its name followed by company information.
func MetadataMarkdown(symbol string, meta compare.Metadata) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s (%s)**\n\n", symbol, meta.Get(compare.KeyLongName))
	b.WriteString("Company Information:\n\n")
	fmt.Fprintf(&b, "- Industry: %s\n", meta.Get(compare.KeyIndustry))
	fmt.Fprintf(&b, "- Sector: %s\n", meta.Get(compare.KeySector))

	optional := []struct{ label, key string }{
		{"Exchange", compare.KeyExchange},
		{"Currency", compare.KeyCurrency},
		{"Market Cap", compare.KeyMarketCap},
		{"Country", compare.KeyCountry},
		{"Employees", compare.KeyEmployees},
		{"Website", compare.KeyWebsite},
	}
	for _, o := range optional {
		if meta.Has(o.key) {
			fmt.Fprintf(&b, "- %s: %s\n", o.label, meta.Get(o.key))
		}
	}
	return b.String()
}

// Series is one symbol's line on a chart, aligned to Chart.Dates.
type Series struct {
	Symbol string
	// NaN where the symbol has no bar on that date.
	Values []float64
}

type Chart struct {
	Field  compare.Field
	Dates  []time.Time
	Series []Series
}

func (c Chart) Title() string {
	return fmt.Sprintf("Stock Comparison Over %s", c.Field)
}

// Points counts the values that can actually be drawn.
func (c Chart) Points() int {
	n := 0
	for _, s := range c.Series {
		for _, v := range s.Values {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// BuildChart lines up every symbol of rs on the union of their trading dates.
func BuildChart(rs *compare.ResultSet, field compare.Field) Chart {
	chart := Chart{Field: field}

	seen := make(map[time.Time]bool)
	for _, symbol := range rs.Symbols() {
		series, _ := rs.Prices(symbol)
		for _, b := range series.Bars {
			if !seen[b.Date] {
				seen[b.Date] = true
				chart.Dates = append(chart.Dates, b.Date)
			}
		}
	}
	sort.Slice(chart.Dates, func(i, j int) bool { return chart.Dates[i].Before(chart.Dates[j]) })

	index := make(map[time.Time]int, len(chart.Dates))
	for i, d := range chart.Dates {
		index[d] = i
	}

	for _, symbol := range rs.Symbols() {
		values := make([]float64, len(chart.Dates))
		for i := range values {
			values[i] = math.NaN()
		}
		series, _ := rs.Prices(symbol)
		for _, b := range series.Bars {
			values[index[b.Date]] = b.Value(field)
		}
		chart.Series = append(chart.Series, Series{Symbol: symbol, Values: values})
	}
	return chart
}

// BuildCharts returns one chart per field, in compare.Fields order. An empty
// result set has nothing to chart.
func BuildCharts(rs *compare.ResultSet) []Chart {
	if rs == nil || rs.Empty() {
		return nil
	}
	charts := make([]Chart, 0, len(compare.Fields))
	for _, f := range compare.Fields {
		charts = append(charts, BuildChart(rs, f))
	}
	return charts
}
