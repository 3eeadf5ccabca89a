package components

import (
	"fmt"

	"tickertape/internal/shared"
	"tickertape/internal/stocks"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Sent when the user picks a suggestion.
type SuggestionPickedMsg stocks.Suggestion

type suggestionItem stocks.Suggestion

func (e suggestionItem) Title() string {
	return e.Name
}

func (e suggestionItem) Description() string {
	return fmt.Sprintf("%s - %s", e.Symbol, e.StockExchange)
}

func (e suggestionItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", e.Symbol, e.Name, e.StockExchange)
}

// Pop-up list of search results for a company name.
type SymbolSuggestions struct {
	Session     *shared.Session
	Symbols     []stocks.Suggestion
	SearchQuery string
	List        list.Model
	Width       int
	Height      int
}

func (s *SymbolSuggestions) Init() tea.Cmd {
	// Convert the symbols list to a list of item interfaces
	items := make([]list.Item, len(s.Symbols))
	for i, symbol := range s.Symbols {
		items[i] = suggestionItem(symbol)
	}

	delegate := list.NewDefaultDelegate()

	// Change the styling of the currently selected entry
	accentColor := shared.AccentColor()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(accentColor).BorderForeground(accentColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(accentColor).BorderForeground(accentColor)

	s.List = list.New(items, delegate, s.Width, s.Height)
	s.List.Title = fmt.Sprintf("Results for %q", s.SearchQuery)
	s.List.SetShowHelp(false)
	s.List.SetFilteringEnabled(true)

	return nil
}

func (s *SymbolSuggestions) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.Width = msg.Width / 2
		s.Height = int(float64(msg.Height) * .8)
	case tea.KeyMsg:
		// only react if the user isn't currently searching
		if !s.List.SettingFilter() {
			switch msg.String() {
			case "esc":
				s.Session.Logger().Info("Closing suggestions")
				return s, func() tea.Msg { return shared.ModalCloseMsg(true) }
			case "enter":
				item, ok := s.List.SelectedItem().(suggestionItem)
				if !ok {
					return s, nil
				}
				s.Session.Logger().Infof("Picked suggestion %s", item.Symbol)
				return s, tea.Batch(
					func() tea.Msg { return SuggestionPickedMsg(item) },
					func() tea.Msg { return shared.ModalCloseMsg(true) },
				)
			}
		}
	}

	s.List.SetWidth(s.Width)
	s.List.SetHeight(s.Height)
	var cmd tea.Cmd
	s.List, cmd = s.List.Update(msg)
	return s, cmd
}

func (s *SymbolSuggestions) View() string {
	titleStyle := s.Session.NewStyle().Bold(true).Foreground(shared.AccentColor())
	listStyle := s.Session.NewStyle().Border(lipgloss.RoundedBorder()).Width(s.Width).Height(s.Height)
	s.List.Styles.Title = titleStyle
	s.List.Styles.ActivePaginationDot = s.Session.NewStyle().Foreground(shared.AccentColor())
	return listStyle.Render(s.List.View())
}

func (s *SymbolSuggestions) GetKeys() []key.Binding {
	keys := s.List.KeyMap
	selectKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("<enter>", "Add symbol"),
	)
	if s.List.SettingFilter() {
		escape := key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("<esc>", "Cancel filter"),
		)
		return []key.Binding{keys.CursorUp, keys.CursorDown, escape}
	}
	return []key.Binding{keys.CursorUp, keys.CursorDown, selectKey, keys.Filter, keys.NextPage, keys.PrevPage}
}
