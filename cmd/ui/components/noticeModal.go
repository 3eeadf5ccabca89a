package components

import (
	"fmt"
	"strings"

	"tickertape/internal/shared"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Pop-up listing a few lines of text, used for warnings and the symbol preview.
type NoticeModal struct {
	Session *shared.Session
	Title   string
	Lines   []string
	// width
	W int
	H int
	// viewport model
	vp viewport.Model
}

func (n *NoticeModal) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", n.Title)
	for _, line := range n.Lines {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

func (n *NoticeModal) render() string {
	md := n.markdown()
	styler, err := glamour.NewTermRenderer(
		glamour.WithStyles(shared.CreateMarkdownUserConfig()),
		glamour.WithWordWrap(max(n.W-5, 10)),
	)
	if err != nil {
		n.Session.Logger().Errorf("Cannot create glamour renderer %s", err)
		return md
	}
	out, err := styler.Render(md)
	if err != nil {
		n.Session.Logger().Errorf("Cannot render markdown content %s", err)
		return md
	}
	return out
}

func (n *NoticeModal) Init() tea.Cmd {
	n.vp = viewport.New(n.W, n.H)
	n.vp.Style = n.Session.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(shared.AccentColor()).
		Width(n.W)
	n.vp.SetContent(n.render())
	return nil
}

func (n *NoticeModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		n.W = msg.Width / 2
		n.H = int(float64(msg.Height) * .6)
		n.vp.Width = n.W
		n.vp.Height = n.H
		n.vp.SetContent(n.render())
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "enter":
			return n, func() tea.Msg { return shared.ModalCloseMsg(true) }
		}
	}
	n.vp, cmd = n.vp.Update(msg)
	return n, cmd
}

func (n *NoticeModal) View() string {
	return n.vp.View()
}

func (n *NoticeModal) GetKeys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "Scroll down")),
		key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "Scroll up")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("<esc>", "Close")),
	}
}
