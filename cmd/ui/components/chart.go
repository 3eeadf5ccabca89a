package components

import (
	"fmt"
	"math"

	"tickertape/internal/compare"
	"tickertape/internal/report"
	"tickertape/internal/shared"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.DodgerBlue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Cyan,
	asciigraph.Orange,
	asciigraph.White,
}

// RenderChart draws one line per symbol of c. Symbols keep the same color on every chart.
func RenderChart(session *shared.Session, c report.Chart, width, height int) string {
	title := session.NewStyle().
		Bold(true).
		Foreground(shared.AccentColor()).
		Render(c.Title())

	if c.Points() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "No data points in the selected range.", "")
	}

	var (
		data    [][]float64
		colors  []asciigraph.AnsiColor
		legends []string
	)
	for i, s := range c.Series {
		if !plottable(s.Values) {
			continue
		}
		data = append(data, s.Values)
		colors = append(colors, seriesColors[i%len(seriesColors)])
		legends = append(legends, s.Symbol)
	}

	precision := uint(2)
	if c.Field == compare.Volume {
		precision = 0
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(height),
		// leave room for the y axis labels
		asciigraph.Width(max(width-16, 10)),
		asciigraph.Precision(precision),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(fmt.Sprintf("Date: %s to %s, y: %s",
			c.Dates[0].Format(compare.DateLayout),
			c.Dates[len(c.Dates)-1].Format(compare.DateLayout),
			c.Field)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, graph, "")
}

func plottable(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
