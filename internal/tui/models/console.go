package models

import (
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/tui/components"
	"github.com/allbin/go-sercmd/internal/tui/keys"
	"github.com/allbin/go-sercmd/internal/tui/styles"
)

// QuitCommand typed at the prompt leaves the console
const QuitCommand = "q"

// Exchanger is the part of a transport the console drives
type Exchanger interface {
	Exchange(command string) (string, error)
	Path() string
	Config() sercmd.Config
}

// ExchangeDoneMsg carries the outcome of one exchange back to Update
type ExchangeDoneMsg struct {
	Command string
	Reply   string
	Err     error
	Elapsed time.Duration
}

// ConsoleModel is an interactive command console on one transport. It keeps
// at most one exchange in flight; Enter while busy is refused and quitting
// while busy waits for the reply, so the transport is idle once the program
// returns.
type ConsoleModel struct {
	exchanger Exchanger
	clock     clock.Clock

	transcript *components.Transcript
	statusBar  *components.StatusBar
	input      *components.Input
	help       help.Model
	keys       keys.ConsoleKeys

	greeting string
	busy     bool
	quitting bool
	ready    bool
}

// NewConsoleModel creates a console; greeting, when not empty, is sent as
// soon as the program starts.
func NewConsoleModel(exchanger Exchanger, greeting string) *ConsoleModel {
	config := exchanger.Config()
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &ConsoleModel{
		exchanger:  exchanger,
		clock:      clk,
		transcript: components.NewTranscript(0, 0),
		statusBar:  components.NewStatusBar(exchanger.Path(), config),
		input:      components.NewInput("Type a command and press Enter, q to quit"),
		help:       help.New(),
		keys:       keys.NewConsoleKeys(),
		greeting:   greeting,
	}
}

func (m *ConsoleModel) Init() tea.Cmd {
	if m.greeting == "" {
		return nil
	}
	return m.send(m.greeting)
}

// Busy reports whether an exchange is in flight
func (m *ConsoleModel) Busy() bool {
	return m.busy
}

func (m *ConsoleModel) Transcript() *components.Transcript {
	return m.transcript
}

func (m *ConsoleModel) StatusBar() *components.StatusBar {
	return m.statusBar
}

func (m *ConsoleModel) Input() *components.Input {
	return m.input
}

// send marks the console busy and returns the command running the exchange
func (m *ConsoleModel) send(command string) tea.Cmd {
	m.busy = true
	m.statusBar.SetBusy(command)
	m.transcript.Add(components.Entry{Time: m.clock.Now(), Kind: components.EntryCommand, Text: command})

	exchanger, clk := m.exchanger, m.clock
	return func() tea.Msg {
		start := clk.Now()
		reply, err := exchanger.Exchange(command)
		return ExchangeDoneMsg{
			Command: command,
			Reply:   reply,
			Err:     err,
			Elapsed: clk.Since(start),
		}
	}
}

func (m *ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := 3
		statusBarHeight := 1
		helpHeight := 1
		borderHeight := 1
		m.transcript.SetSize(msg.Width, msg.Height-inputHeight-statusBarHeight-helpHeight-borderHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.ready = true
		cmds = append(cmds, m.transcript.Update(msg))
		return m, tea.Batch(cmds...)

	case ExchangeDoneMsg:
		m.busy = false
		m.statusBar.SetResult(msg.Elapsed, msg.Err)
		if msg.Err != nil {
			m.transcript.Add(components.Entry{Time: m.clock.Now(), Kind: components.EntryError, Text: msg.Err.Error()})
		} else {
			m.transcript.Add(components.Entry{Time: m.clock.Now(), Kind: components.EntryReply, Text: strings.TrimSpace(msg.Reply)})
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, m.quit()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Clear):
			m.transcript.Clear()
			return m, nil

		case key.Matches(msg, m.keys.ScrollUp):
			m.transcript.ScrollUp()
			return m, nil

		case key.Matches(msg, m.keys.ScrollDown):
			m.transcript.ScrollDown()
			return m, nil

		case key.Matches(msg, m.keys.HistoryUp):
			m.input.NavigateHistoryUp()
			return m, nil

		case key.Matches(msg, m.keys.HistoryDown):
			m.input.NavigateHistoryDown()
			return m, nil

		case key.Matches(msg, m.keys.Send):
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles Enter on the command line
func (m *ConsoleModel) submit() tea.Cmd {
	command := m.input.Value()
	if command == QuitCommand {
		return m.quit()
	}
	if m.busy {
		m.statusBar.SetMessage("exchange in progress, wait for the reply")
		return nil
	}

	m.input.AddToHistory(command)
	m.input.SetValue("")
	return m.send(command)
}

// quit ends the program, or once the exchange in flight has completed
func (m *ConsoleModel) quit() tea.Cmd {
	if !m.busy {
		return tea.Quit
	}
	m.quitting = true
	m.statusBar.SetMessage("quitting after the reply")
	return nil
}

func (m *ConsoleModel) View() string {
	content := "Initializing..."
	if m.ready {
		content = m.transcript.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ContentBorderStyle.Render(content),
		m.input.View(m.busy),
		m.statusBar.View(),
		m.help.View(m.keys),
	)
}
