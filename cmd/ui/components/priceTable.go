package components

import (
	"tickertape/internal/compare"
	"tickertape/internal/report"
	"tickertape/internal/shared"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type TableStyle struct {
	InnerStyle table.Styles
	OuterStyle lipgloss.Style
}

// Returns the styles of a focused and an unfocused price table.
func PriceTableStyles(session *shared.Session) (focused TableStyle, unfocused TableStyle) {
	accentColor := shared.AccentColor()

	focused = TableStyle{
		InnerStyle: table.Styles{
			Header: session.NewStyle().
				Align(lipgloss.Center).
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")),
			Cell:     session.NewStyle(),
			Selected: session.NewStyle().Bold(true).Foreground(accentColor),
		},
		OuterStyle: session.NewStyle().
			BorderForeground(accentColor).
			Border(lipgloss.NormalBorder()),
	}

	unfocused = TableStyle{
		InnerStyle: table.Styles{
			Header: session.NewStyle().
				BorderForeground(accentColor).
				Bold(false),
			Cell:     session.NewStyle(),
			Selected: session.NewStyle(),
		},
		OuterStyle: session.NewStyle().Border(lipgloss.NormalBorder()),
	}
	return focused, unfocused
}

// NewPriceTable shows the bars of series in a table width cells wide.
func NewPriceTable(session *shared.Session, series compare.PriceSeries, width, height int) table.Model {
	// the date column is fixed, the numbers share what is left
	dateWidth := 10
	numWidth := max((width-dateWidth)/(len(report.PriceColumns)-1)-2, 6)

	cols := make([]table.Column, 0, len(report.PriceColumns))
	for i, title := range report.PriceColumns {
		w := numWidth
		if i == 0 {
			w = dateWidth
		}
		cols = append(cols, table.Column{Title: title, Width: w})
	}

	var rows []table.Row
	for _, r := range report.PriceRows(series) {
		rows = append(rows, table.Row(r))
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithFocused(false),
	)
	_, unfocused := PriceTableStyles(session)
	t.SetStyles(unfocused.InnerStyle)
	return t
}
