package components

import (
	"tickertape/internal/compare"
	"tickertape/internal/report"
	"tickertape/internal/shared"

	"github.com/charmbracelet/glamour"
)

// RenderCompanyPane draws the metadata of symbol as markdown, wrapped to width.
func RenderCompanyPane(session *shared.Session, symbol string, meta compare.Metadata, width int) string {
	md := report.MetadataMarkdown(symbol, meta)
	paneStyle := session.NewStyle().Width(width)

	styler, err := glamour.NewTermRenderer(
		glamour.WithStyles(shared.CreateMarkdownUserConfig()),
		glamour.WithWordWrap(max(width-4, 10)),
	)
	if err != nil {
		session.Logger().Errorf("Cannot create glamour renderer %s", err)
		return paneStyle.Render(md)
	}

	out, err := styler.Render(md)
	if err != nil {
		session.Logger().Errorf("Cannot render markdown content %s", err)
		return paneStyle.Render(md)
	}
	return paneStyle.Render(out)
}
