// Place globals variables here.
package shared

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	UserLog  = log.New(os.Stderr)
	Renderer = lipgloss.DefaultRenderer()
)

// Session is what differs between terminals served by one process: where the
// logs go and which colour profile styles render with. A nil Session uses
// UserLog and Renderer.
type Session struct {
	Log      *log.Logger
	Renderer *lipgloss.Renderer
}

func (s *Session) Logger() *log.Logger {
	if s == nil || s.Log == nil {
		return UserLog
	}
	return s.Log
}

// use instead of lipgloss.NewStyle()
func (s *Session) NewStyle() lipgloss.Style {
	if s == nil || s.Renderer == nil {
		return Renderer.NewStyle()
	}
	return s.Renderer.NewStyle()
}

// Context attaches the session log to ctx so library code logs to the right file.
func (s *Session) Context(ctx context.Context) context.Context {
	return log.WithContext(ctx, s.Logger())
}

// LoggerFrom returns the logger attached to ctx, or UserLog when there is none.
func LoggerFrom(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(log.ContextKey).(*log.Logger); ok && l != nil {
			return l
		}
	}
	return UserLog
}

// Message Events
type ModalCloseMsg bool

// Opens the prompt on the bottom bar, CallbackFunc runs with the submitted text.
type PromptOpenMsg struct {
	Prompt       string
	Initial      string
	CallbackFunc func(string) tea.Msg
}

// Shows Message in place of the help bar for DisplayTime milliseconds.
type SendNotificationMsg struct {
	Message     string
	DisplayTime int
}

type HideNotificationMsg struct{}

// Notify wraps a notification in a command.
func Notify(message string, displayTime time.Duration) tea.Cmd {
	return func() tea.Msg {
		return SendNotificationMsg{Message: message, DisplayTime: int(displayTime.Milliseconds())}
	}
}

func AccentColor() lipgloss.Color {
	return lipgloss.Color(ConfigString("theme.accentColor"))
}

/*
NOTE: HELPER FUNCTIONS FOR GLAMOUR THEMES
*/
func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// Returns an ansi.StyleConfig for the company panes, using the accent color from the users config.
func CreateMarkdownUserConfig() ansi.StyleConfig {
	accent := ConfigString("theme.accentColor")
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr("#f8f8f2"),
			},
			Margin: uintPtr(1),
		},
		Paragraph: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(accent),
				Bold:        boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix: "## ",
			},
		},
		Emph: ansi.StylePrimitive{
			Color:  stringPtr(accent),
			Italic: boolPtr(true),
		},
		Strong: ansi.StylePrimitive{
			Bold:  boolPtr(true),
			Color: stringPtr("#ffb86c"),
		},
		List: ansi.StyleList{
			LevelIndent: 2,
		},
		Item: ansi.StylePrimitive{
			BlockPrefix: "• ",
		},
		Link: ansi.StylePrimitive{
			Color:     stringPtr("#8be9fd"),
			Underline: boolPtr(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: stringPtr("#ff79c6"),
			Bold:  boolPtr(true),
		},
		HorizontalRule: ansi.StylePrimitive{
			Color:  stringPtr("#6272A4"),
			Format: "\n--------\n",
		},
	}
}
