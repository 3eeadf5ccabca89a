package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tickertape/cmd/ui/components"
	"tickertape/internal/compare"
	"tickertape/internal/report"
	"tickertape/internal/shared"
	"tickertape/internal/stocks"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

type DisplayOverlayMsg tea.Model

// Prompt results
type namesSetMsg string
type startSetMsg time.Time
type endSetMsg time.Time

type comparisonProgressMsg compare.Progress
type comparisonDoneMsg compare.Report

type previewLine struct {
	query  string
	symbol string
}
type previewDoneMsg []previewLine

const description = "Compare the stock prices of different companies over time. " +
	"Enter company names and the ticker symbols are looked up automatically, " +
	"for example Microsoft (MSFT), Amazon (AMZN), Apple (AAPL)."

// Searcher looks up securities by name, for the suggestion list.
type Searcher interface {
	Search(ctx context.Context, query string) ([]stocks.Suggestion, error)
}

// Compare is the stock comparison tab: the inputs on top and the results of the
// last run underneath.
type Compare struct {
	Name     string
	Comparer *compare.Comparer
	// logs and styles of the terminal this tab is drawn on
	Session  *shared.Session
	// nil when no search backend is configured
	Searcher Searcher

	// screen height
	height int
	// screen width
	width int

	names string
	start time.Time
	end   time.Time

	running  bool
	progress compare.Progress
	updates  chan tea.Msg
	spinner  spinner.Model

	// Only the latest run is kept.
	report *compare.Report
	panes  []string
	tables []table.Model
	charts []string
	// index of the focused table
	focused int

	focusedStyle   components.TableStyle
	unfocusedStyle components.TableStyle

	vp viewport.Model
}

func (c *Compare) Init() tea.Cmd {
	var err error
	if c.start, err = compare.ParseDate(shared.ConfigString("compare.defaultStart")); err != nil {
		c.Session.Logger().Warnf("Bad compare.defaultStart in config: %v", err)
		c.start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if c.end, err = compare.ParseDate(shared.ConfigString("compare.defaultEnd")); err != nil {
		c.Session.Logger().Warnf("Bad compare.defaultEnd in config: %v", err)
		c.end = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	c.focusedStyle, c.unfocusedStyle = components.PriceTableStyles(c.Session)
	c.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	c.spinner.Style = c.Session.NewStyle().Foreground(shared.AccentColor())
	c.vp = viewport.New(c.width, 0)
	// j/k belong to the focused table
	c.vp.KeyMap.Up.SetKeys("ctrl+p")
	c.vp.KeyMap.Down.SetKeys("ctrl+n")
	return nil
}

func (c *Compare) dateRange() compare.DateRange {
	return compare.DateRange{Start: c.start, End: c.end}
}

// Runs the batch off the event loop and streams its progress back through c.updates.
// The channel holds every message of the run, so the worker finishes even when the
// program quits before reading them.
func (c *Compare) runComparison(queries []string) tea.Cmd {
	updates := make(chan tea.Msg, len(queries)+1)
	c.updates = updates

	comparer := *c.Comparer
	comparer.Progress = func(p compare.Progress) {
		updates <- comparisonProgressMsg(p)
	}
	r := c.dateRange()
	ctx := c.Session.Context(context.Background())

	go func() {
		rep := comparer.Compare(ctx, queries, r)
		updates <- comparisonDoneMsg(rep)
		close(updates)
	}()

	return tea.Batch(waitForUpdate(updates), c.spinner.Tick)
}

func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

// Resolves every typed name on its own, failures count as unresolved.
func (c *Compare) previewSymbols(queries []string) tea.Cmd {
	resolver := c.Comparer.Resolver
	ctx := c.Session.Context(context.Background())
	return func() tea.Msg {
		lines := make([]previewLine, 0, len(queries))
		for _, q := range queries {
			lines = append(lines, previewLine{query: q, symbol: compare.Lookup(ctx, resolver, q)})
		}
		return previewDoneMsg(lines)
	}
}

// searchCompany returns the prompt callback that opens the suggestion list for a query.
func searchCompany(session *shared.Session, searcher Searcher, width, height int) func(string) tea.Msg {
	return func(query string) tea.Msg {
		return openSuggestions(session, searcher, query, width, height)
	}
}

func openSuggestions(session *shared.Session, searcher Searcher, query string, width, height int) tea.Msg {
	if searcher == nil {
		return shared.SendNotificationMsg{Message: "Set FMP_KEY to search company names", DisplayTime: 3000}
	}
	list, err := searcher.Search(session.Context(context.Background()), query)
	if err != nil {
		session.Logger().Errorf("Search for %q failed: %v", query, err)
		return shared.SendNotificationMsg{Message: fmt.Sprintf("Search failed: %v", err), DisplayTime: 3000}
	}
	if len(list) == 0 {
		return shared.SendNotificationMsg{Message: fmt.Sprintf("No results for %q", query), DisplayTime: 3000}
	}
	return DisplayOverlayMsg(&components.SymbolSuggestions{
		Session:     session,
		Symbols:     list,
		SearchQuery: query,
		Width:       width / 2,
		Height:      int(float64(height) * .8),
	})
}

func datePrompt(label string, current time.Time, wrap func(time.Time) tea.Msg) shared.PromptOpenMsg {
	return shared.PromptOpenMsg{
		Prompt:  fmt.Sprintf("%s (YYYY-MM-DD): ", label),
		Initial: current.Format(compare.DateLayout),
		CallbackFunc: func(s string) tea.Msg {
			t, err := compare.ParseDate(s)
			if err != nil {
				return shared.SendNotificationMsg{Message: fmt.Sprintf("Invalid date %q", s), DisplayTime: 3000}
			}
			return wrap(t)
		},
	}
}

// appendName adds symbol to the comma separated names unless it is already there.
func appendName(names, symbol string) string {
	for _, n := range compare.ParseQueries(names) {
		if strings.EqualFold(n, symbol) {
			return names
		}
	}
	if strings.TrimSpace(names) == "" {
		return symbol
	}
	return strings.TrimRight(strings.TrimSpace(names), ",") + ", " + symbol
}

// Lays out the current report. Must run again whenever the size or focus changes.
func (c *Compare) buildResults() {
	c.panes, c.tables, c.charts = nil, nil, nil
	c.focused = 0
	if c.report == nil || c.report.Results.Empty() {
		c.refreshContent()
		return
	}

	rs := c.report.Results
	paneWidth := int(float64(c.width) * .4)
	tableWidth := c.width - paneWidth - 4
	tableHeight := shared.ConfigInt("compare.tableHeight")
	chartHeight := shared.ConfigInt("compare.chartHeight")

	for _, symbol := range rs.Symbols() {
		meta, _ := rs.Metadata(symbol)
		series, _ := rs.Prices(symbol)
		c.panes = append(c.panes, components.RenderCompanyPane(c.Session, symbol, meta, paneWidth))
		c.tables = append(c.tables, components.NewPriceTable(c.Session, series, tableWidth, tableHeight))
	}
	for _, chart := range report.BuildCharts(rs) {
		c.charts = append(c.charts, components.RenderChart(c.Session, chart, c.width-2, chartHeight))
	}

	if len(c.tables) > 0 {
		c.tables[0].Focus()
		c.tables[0].SetStyles(c.focusedStyle.InnerStyle)
	}
	c.refreshContent()
}

func (c *Compare) refreshContent() {
	if len(c.tables) == 0 {
		c.vp.SetContent("")
		return
	}

	var sections []string
	for i, t := range c.tables {
		border := c.unfocusedStyle.OuterStyle
		if i == c.focused {
			border = c.focusedStyle.OuterStyle
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, c.panes[i], border.Render(t.View()))
		sections = append(sections, row)
	}
	sections = append(sections, c.charts...)
	c.vp.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (c *Compare) cycleFocus(step int) {
	if len(c.tables) == 0 {
		return
	}
	c.tables[c.focused].Blur()
	c.tables[c.focused].SetStyles(c.unfocusedStyle.InnerStyle)
	c.focused = (c.focused + step + len(c.tables)) % len(c.tables)
	c.tables[c.focused].Focus()
	c.tables[c.focused].SetStyles(c.focusedStyle.InnerStyle)
	c.Session.Logger().Infof("Focusing on table %v", c.focused)
}

func warningNotification(warnings []compare.Outcome) tea.Cmd {
	if len(warnings) == 0 {
		return nil
	}
	message := warnings[0].Message()
	if len(warnings) > 1 {
		message = fmt.Sprintf("%s (+%d more, press w)", message, len(warnings)-1)
	}
	return shared.Notify(message, 5*time.Second)
}

func (c *Compare) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height - 1
		c.vp.Width = c.width
		c.vp.Height = max(c.height-lipgloss.Height(c.header())-2, 3)
		c.buildResults()

	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			names := c.names
			return c, func() tea.Msg {
				return shared.PromptOpenMsg{
					Prompt:       "Company names (comma separated): ",
					Initial:      names,
					CallbackFunc: func(s string) tea.Msg { return namesSetMsg(s) },
				}
			}
		case "s":
			prompt := datePrompt("Start date", c.start, func(t time.Time) tea.Msg { return startSetMsg(t) })
			return c, func() tea.Msg { return prompt }
		case "e":
			prompt := datePrompt("End date", c.end, func(t time.Time) tea.Msg { return endSetMsg(t) })
			return c, func() tea.Msg { return prompt }
		case "/":
			callback := searchCompany(c.Session, c.Searcher, c.width, c.height)
			return c, func() tea.Msg {
				return shared.PromptOpenMsg{
					Prompt:       "Search company: ",
					CallbackFunc: callback,
				}
			}
		case "p":
			queries := compare.ParseQueries(c.names)
			if len(queries) == 0 {
				return c, shared.Notify("Enter at least one company name (press n)", 3*time.Second)
			}
			return c, c.previewSymbols(queries)
		case "w":
			if c.report == nil || len(c.report.Warnings()) == 0 {
				return c, shared.Notify("No warnings", 2*time.Second)
			}
			var lines []string
			for _, o := range c.report.Warnings() {
				lines = append(lines, o.Message())
			}
			modal := &components.NoticeModal{
				Session: c.Session,
				Title:   "Warnings",
				Lines:   lines,
				W:       c.width / 2,
				H:       int(float64(c.height) * .6),
			}
			return c, func() tea.Msg { return DisplayOverlayMsg(modal) }
		case "enter":
			if c.running {
				return c, shared.Notify("A comparison is already running", 2*time.Second)
			}
			queries := compare.ParseQueries(c.names)
			if len(queries) == 0 {
				return c, shared.Notify("Enter at least one company name (press n)", 3*time.Second)
			}
			c.Session.Logger().Infof("Comparing %v over %s", queries, c.dateRange())
			c.running = true
			c.progress = compare.Progress{Total: len(queries)}
			return c, c.runComparison(queries)
		case "tab":
			c.cycleFocus(1)
			c.refreshContent()
			return c, nil
		case "shift+tab":
			c.cycleFocus(-1)
			c.refreshContent()
			return c, nil
		case "up", "down", "k", "j":
			if len(c.tables) > 0 {
				c.tables[c.focused], cmd = c.tables[c.focused].Update(msg)
				c.refreshContent()
			}
			return c, cmd
		}
		c.vp, cmd = c.vp.Update(msg)

	case namesSetMsg:
		c.names = string(msg)
		c.Session.Logger().Infof("Names set to %q", c.names)

	case startSetMsg:
		c.start = time.Time(msg)

	case endSetMsg:
		c.end = time.Time(msg)

	case components.SuggestionPickedMsg:
		c.names = appendName(c.names, msg.Symbol)

	case previewDoneMsg:
		var lines []string
		for _, l := range msg {
			symbol := l.symbol
			if symbol == "" {
				symbol = "not found"
			}
			lines = append(lines, fmt.Sprintf("%s → %s", l.query, symbol))
		}
		modal := &components.NoticeModal{
			Session: c.Session,
			Title:   "Symbols",
			Lines:   lines,
			W:       c.width / 2,
			H:       int(float64(c.height) * .6),
		}
		return c, func() tea.Msg { return DisplayOverlayMsg(modal) }

	case spinner.TickMsg:
		if c.running {
			c.spinner, cmd = c.spinner.Update(msg)
		}

	case comparisonProgressMsg:
		c.progress = compare.Progress(msg)
		return c, waitForUpdate(c.updates)

	case comparisonDoneMsg:
		rep := compare.Report(msg)
		c.running = false
		c.report = &rep
		c.Session.Logger().Infof("Comparison finished with %d symbols", rep.Results.Len())
		c.buildResults()
		c.vp.GotoTop()
		return c, warningNotification(rep.Warnings())
	}

	return c, cmd
}

func (c *Compare) header() string {
	accent := shared.AccentColor()
	titleStyle := c.Session.NewStyle().Bold(true).Foreground(accent)
	labelStyle := c.Session.NewStyle().Bold(true)

	names := c.names
	if strings.TrimSpace(names) == "" {
		names = "(none, press n)"
	}

	inputs := fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Companies:"), names,
		labelStyle.Render("Start:"), c.start.Format(compare.DateLayout),
		labelStyle.Render("End:"), c.end.Format(compare.DateLayout),
	)

	var status string
	switch {
	case c.running:
		status = fmt.Sprintf("%s Fetching %d/%d: %s", c.spinner.View(), c.progress.Index+1, c.progress.Total, c.progress.Query)
	case c.report != nil:
		status = fmt.Sprintf("%d fetched, %d not found, %d failed",
			c.report.Results.Len(), len(c.report.Unresolved()), len(c.report.Warnings()))
	default:
		status = "Press enter to compare."
	}

	descStyle := c.Session.NewStyle().Width(max(c.width, 20))
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Stock Comparison Tool"),
		descStyle.Render(description),
		"",
		inputs,
		status,
	)
}

func (c *Compare) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, c.header(), "", c.vp.View())
}

type CompareKeyMap struct {
	Names   key.Binding
	Start   key.Binding
	End     key.Binding
	Compare key.Binding
	Search  key.Binding
	Preview key.Binding
	Warn    key.Binding
	Cycle   key.Binding
	Scroll  key.Binding
}

func (c *Compare) GetKeys() []key.Binding {
	keymap := CompareKeyMap{
		Names:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Names")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Start")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "End")),
		Compare: key.NewBinding(key.WithKeys("enter"), key.WithHelp("<enter>", "Compare")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Search")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Preview symbols")),
		Warn:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "Warnings")),
		Cycle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("<tab>", "Next table")),
		Scroll:  key.NewBinding(key.WithKeys("pgdown", "pgup"), key.WithHelp("pgup/pgdn", "Scroll")),
	}

	keyList := []key.Binding{keymap.Names, keymap.Start, keymap.End, keymap.Compare, keymap.Search, keymap.Preview}
	if len(c.tables) > 0 {
		keyList = append(keyList, keymap.Cycle, keymap.Scroll)
	}
	if c.report != nil && len(c.report.Warnings()) > 0 {
		keyList = append(keyList, keymap.Warn)
	}
	return keyList
}
