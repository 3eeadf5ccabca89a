package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tickertape/cmd/ui/views"
	"tickertape/internal/compare"
	"tickertape/internal/shared"
	"tickertape/internal/stocks"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

type Tab struct {
	name  string
	model MappedModel
}

type OverlayWrapper struct {
	*overlay.Model
	foreground MappedModel
}

// Implement MappedModel interface for OverlayWrapper
func (o *OverlayWrapper) GetKeys() []key.Binding {
	if o.foreground != nil {
		return o.foreground.GetKeys()
	}
	return []key.Binding{}
}

type Prompt struct {
	Model    textinput.Model
	Prompt   string
	Callback func(string) tea.Msg
}

// The "entry" model.
type MainModel struct {
	// pointers to all the tabs
	tabs []*Tab
	// index of active tab in the list
	activeTab int
	// model responsible for showing overlay and contents "underneath" it
	overlayManager *OverlayWrapper
	// whether or not an overlay is open
	overlayOpen bool
	// For aligning
	Width int
	// Prompt Model
	input Prompt

	// logs and styles of the terminal the program runs on
	session *shared.Session

	// The notification text displaying
	NotificationText string
	// Whether or not a notification is showing
	ShowingNotification bool
}

type TabChangeMsg int

type MappedModel interface {
	tea.Model
	GetKeys() []key.Binding
}

func (m MainModel) Init() tea.Cmd {
	tab := m.tabs[m.activeTab].model
	return tea.Batch(tea.ClearScreen, tea.SetWindowTitle("tickertape"), tab.Init())
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	tab := m.tabs[m.activeTab].model
	var cmd tea.Cmd
	if !m.overlayOpen && !m.input.Model.Focused() {
		// Only send keypresses to the current tab if we are not in a modal right now
		_, cmd = tab.Update(msg)
	} else if m.overlayOpen {
		// Send updates to the foreground if it's open
		_, cmd = m.overlayManager.Foreground.Update(msg)
		if _, ok := msg.(tea.KeyMsg); !ok {
			// If the message is not a KeyMsg, also send it to the background tab
			var tabCmd tea.Cmd
			_, tabCmd = tab.Update(msg)
			cmd = tea.Batch(cmd, tabCmd)
		}
	} else if _, ok := msg.(tea.KeyMsg); !ok {
		// prompt is open, everything but keypresses still reaches the tab
		_, cmd = tab.Update(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	case tea.KeyMsg:
		if m.input.Model.Focused() {
			switch msg.String() {
			// if the user presses escape break out of the prompt
			case "esc":
				m.input.Model.Blur()
			case "enter":
				m.input.Model.Blur()
				if m.input.Callback != nil {
					callback, value := m.input.Callback, m.input.Model.Value()
					cmd = func() tea.Msg {
						return callback(value)
					}
				} else {
					log.Warn("Tried to run prompt callback but was nil, did you set the value of CallbackFunc?")
				}
			default:
				m.input.Model, cmd = m.input.Model.Update(msg)
			}
			return m, cmd
		}

		if msg.String() == "ctrl+c" {
			m.session.Logger().Info("Exiting on interrupt")
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		}

		if m.overlayOpen {
			break
		}

		for i := range m.tabs {
			// run if key index is equal to key pressed (accounting for 0 index shift)
			if keyIndex, err := strconv.Atoi(msg.String()); err == nil && i+1 == keyIndex {
				return m, func() tea.Msg { return TabChangeMsg(i) }
			}
		}
		switch msg.String() {
		case "Q", "q":
			m.session.Logger().Info("Exiting on user request")
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		}

	case shared.ModalCloseMsg:
		m.session.Logger().Info("Exiting overlay")
		m.overlayOpen = false
		m.overlayManager = nil
		return m, cmd

	case TabChangeMsg:
		m.session.Logger().Infof("Switching to view tabs[%d]", int(msg))
		m.activeTab = int(msg)

	case views.DisplayOverlayMsg:
		// NOTE: The code for pressing escape to exit the overlay
		//  lives in the foreground models themselves.
		if !m.overlayOpen {
			foreground, ok := msg.(MappedModel)
			if !ok {
				log.Warn("Overlay model does not implement MappedModel, ignoring")
				break
			}
			m.session.Logger().Info("displaying overlay")
			m.overlayManager = &OverlayWrapper{
				Model:      overlay.New(foreground, tab, overlay.Center, overlay.Center, 0, 0),
				foreground: foreground,
			}
			m.overlayOpen = true
			cmd = tea.Batch(cmd, foreground.Init())
		}

	case shared.PromptOpenMsg:
		m.session.Logger().Infof("PromptOpenMsg: %s", msg.Prompt)

		m.input.Model = textinput.New()
		m.input.Model.Prompt = ""
		promptWidth := max(m.Width-len(msg.Prompt)-1, 10)

		m.input.Model.Width = promptWidth
		m.input.Model.CharLimit = 512
		m.input.Model.SetValue(msg.Initial)
		m.input.Model.CursorEnd()
		m.input.Model.Focus()
		m.input.Prompt = msg.Prompt
		m.input.Callback = msg.CallbackFunc

	case shared.SendNotificationMsg:
		m.NotificationText = msg.Message
		m.ShowingNotification = true
		cmd = tea.Batch(cmd, tea.Tick(time.Duration(msg.DisplayTime)*time.Millisecond, func(t time.Time) tea.Msg {
			return shared.HideNotificationMsg{}
		}))
	case shared.HideNotificationMsg:
		m.ShowingNotification = false
	}

	return m, cmd
}

func RenderHelp(session *shared.Session, keys []key.Binding, width int) string {
	var b strings.Builder

	boldStyle := session.NewStyle().
		Bold(true).
		Foreground(shared.AccentColor())
	for _, binds := range keys {
		b.WriteString(fmt.Sprintf("%s - %s ", boldStyle.Render(binds.Help().Key), binds.Help().Desc))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (m MainModel) View() string {
	tab := m.tabs[m.activeTab].model

	// build tabbar
	var b strings.Builder
	for i, t := range m.tabs {
		var tabText string
		if i == m.activeTab {
			bg := m.session.NewStyle().Background(shared.AccentColor())
			tabText = bg.Render(fmt.Sprintf(" (%d) %s ", i+1, t.name))
		} else {
			tabText = fmt.Sprintf(" (%d) %s ", i+1, t.name)
		}
		b.WriteString(tabText)
	}

	// What text to show on the bottom
	var bottomText string
	var screen string

	if !m.overlayOpen {
		screen = tab.View()
		if m.input.Model.Focused() {
			// prompt is bold and in accent color
			styledPrompt := m.session.NewStyle().Foreground(shared.AccentColor()).Bold(true).Render(m.input.Prompt)
			bottomText = styledPrompt + m.input.Model.View()
		} else {
			bottomText = RenderHelp(m.session, tab.GetKeys(), m.Width)
		}
	} else {
		screen = m.overlayManager.View()
		bottomText = RenderHelp(m.session, m.overlayManager.GetKeys(), m.Width)
	}
	if m.ShowingNotification && !m.input.Model.Focused() {
		bottomText = m.NotificationText
	}
	return lipgloss.JoinVertical(0, b.String(), screen, bottomText)
}

func (m MainModel) GetKeys() []key.Binding {
	if m.overlayManager != nil {
		return m.overlayManager.GetKeys()
	}
	return m.tabs[m.activeTab].model.GetKeys()
}

// Wires the providers into a Comparer. The FMP client is nil without an API key.
func newComparer() (*compare.Comparer, *stocks.FMPClient) {
	yahoo := stocks.NewYahoo()

	var fmp *stocks.FMPClient
	if apiKey, ok := os.LookupEnv("FMP_KEY"); ok && apiKey != "" {
		fmp = stocks.NewFMPClient(
			shared.ConfigString("providers.fmp.baseURL"),
			apiKey,
			shared.Koanf.Duration("providers.fmp.timeout"),
		)
	}

	fetcher := &compare.Fetcher{
		Prices:   yahoo,
		Metadata: yahoo,
	}
	if token, ok := os.LookupEnv("TIINGO_KEY"); ok && token != "" {
		tiingo := stocks.NewTiingoClient(
			shared.ConfigString("providers.tiingo.baseURL"),
			token,
			shared.Koanf.Duration("providers.tiingo.timeout"),
		)
		fetcher.Prices = compare.FallbackPrices{yahoo, tiingo}
	}
	resolver := compare.ChainResolver{}
	if fmp != nil {
		resolver = append(resolver, fmp)
		fetcher.Enrichers = append(fetcher.Enrichers, fmp)
	}
	resolver = append(resolver, yahoo)

	if shared.Koanf.Bool("providers.yahoo.scrapeProfile") {
		fetcher.Enrichers = append(fetcher.Enrichers, &stocks.ProfileScraper{
			URLTemplate: shared.ConfigString("providers.yahoo.profileURL"),
			UserAgent:   shared.ConfigString("providers.yahoo.userAgent"),
		})
	}

	return &compare.Comparer{Resolver: resolver, Fetcher: fetcher}, fmp
}

func newMainModel(session *shared.Session) MainModel {
	comparer, fmp := newComparer()

	compareView := &views.Compare{
		Name:     "Compare",
		Comparer: comparer,
		Session:  session,
	}
	// keep the interface nil when there is no client
	if fmp != nil {
		compareView.Searcher = fmp
	}

	return MainModel{
		tabs:      []*Tab{{name: "Compare", model: compareView}},
		activeTab: 0,
		input:     Prompt{Model: textinput.New()},
		session:   session,
	}
}

func loadConfig() {
	if err := shared.LoadDefaultConfig(); err != nil {
		log.Fatalf("Error loading default config %v", err)
	}

	configHome, err := os.UserHomeDir()
	if err != nil {
		shared.UserLog.Errorf("Error occurred while loading config file path: %v", err)
		return
	}

	configFilePath := filepath.Join(configHome, ".config", "tickertape", "config.json")
	shared.UserLog.Infof("Checking for config file at path %s", configFilePath)

	// Check if user config file exists
	if _, err := os.Stat(configFilePath); err == nil {
		shared.UserLog.Infof("Config file found at %s, loading...", configFilePath)
		if err := shared.LoadUserConfig(configFilePath); err != nil {
			shared.UserLog.Warnf("Unable to load user config file, %v", err)
		}
	}
}

// Function to setup the application as an SSH server.
func setupSSHServer(host string, port string, logFile *os.File) {
	logOutput := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(logOutput)

	s, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithHostKeyPath(".ssh/id_ed25519"),
		wish.WithMiddleware(
			bubbleteaMiddleware(),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)

	if err != nil {
		log.Fatal(err)
	}

	// Done channel notifies when program is closed or killed
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Starting SSH Server", "Host", host, "Port", port)

	go func() {
		// Start SSH server and log if there is an error that causes the server to close
		if err = s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Error("Could not start server", "error", err)
			done <- nil
		}
	}()

	// Code below this only runs when the server is closed.
	<-done

	log.Info("Stopping SSH Server")
	// give 30 seconds for ssh server to stop
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Error("Could not stop server", "error", err)
	}
}

func main() {
	logFile, err := os.OpenFile("./debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal(err)
	}

	defer logFile.Close()

	shared.UserLog = log.New(logFile)
	log.SetOutput(logFile)
	loadConfig()

	// SECTION: SSH Server setup
	host, hostExists := os.LookupEnv("SSH_HOST")
	port, portExists := os.LookupEnv("SSH_PORT")

	if hostExists && portExists {
		setupSSHServer(host, port, logFile)
		return
	}

	if _, err := tea.NewProgram(newMainModel(&shared.Session{Log: shared.UserLog, Renderer: shared.Renderer}), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

// Custom middleware for bubbletea, one program per session.
func bubbleteaMiddleware() wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {
		m, opts := setupSSHApplication(s)
		return tea.NewProgram(m, opts...)
	}

	return bm.MiddlewareWithProgramHandler(teaHandler, termenv.Ascii)
}

// Setup bubbletea model to work with Wish. Every session gets its own renderer and
// log file, the process wide ones stay untouched.
func setupSSHApplication(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	userString := fmt.Sprintf("%s.%s", s.User(), strings.Split(s.RemoteAddr().String(), ":")[0])
	log.Infof("Connection from %s", userString)

	session := &shared.Session{
		// use instead of lipgloss.NewStyle()
		Renderer: bm.MakeRenderer(s),
		Log:      shared.UserLog.With("user", userString),
	}

	logger, f, err := newSessionLogger("./logs", userString, time.Now())
	if err != nil {
		log.Error("Cannot create log file", "error", err)
	} else {
		session.Log = logger
		session.Log.Info("User log created")

		go func() {
			<-s.Context().Done()
			logger.Info("Connection closed, ending file.")
			if err := f.Close(); err != nil {
				log.Error("Error closing log file", "error", err)
			}
		}()
	}

	return newMainModel(session), []tea.ProgramOption{tea.WithAltScreen(), tea.WithInput(s), tea.WithOutput(s)}
}

// Opens the log file of one SSH session under dir.
func newSessionLogger(dir, userString string, now time.Time) (*log.Logger, *os.File, error) {
	// Make the logs directory if it doesn't exist yet.
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}

	logTimeStamp := now.Format("01.02.2006 15:04 MST")
	f, err := os.OpenFile(
		filepath.Join(dir, fmt.Sprintf("%s %s.log", userString, logTimeStamp)),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}

	logger := log.New(f)
	logger.SetTimeFormat("2006/01/02 15:04:05")
	return logger, f, nil
}
