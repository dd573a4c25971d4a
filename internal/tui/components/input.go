package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-sercmd/internal/tui/styles"
)

const maxHistory = 100

// Input is the command line of the console with shell-like history
type Input struct {
	textInput     textinput.Model
	history       []string
	historyIndex  int
	currentInput  string // what was typed before browsing history
	terminalWidth int
}

func NewInput(placeholder string) *Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.Focus()

	return &Input{
		textInput:    ti,
		history:      make([]string, 0),
		historyIndex: -1,
	}
}

func (i *Input) SetWidth(width int) {
	i.terminalWidth = width
	// border(2) + padding(2) + prompt(2)
	usableWidth := width - 6
	if usableWidth < 20 {
		usableWidth = 20
	}
	i.textInput.Width = usableWidth
}

func (i *Input) Value() string {
	return i.textInput.Value()
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// View renders the prompt; busy dims it while an exchange is in flight
func (i *Input) View(busy bool) string {
	promptStyle := lipgloss.NewStyle().Foreground(styles.Green).Bold(true)
	borderColor := styles.Green
	if busy {
		promptStyle = promptStyle.Foreground(styles.Overlay0)
		borderColor = styles.Surface2
	}

	content := lipgloss.JoinHorizontal(lipgloss.Left, promptStyle.Render(">"), " ", i.textInput.View())

	width := i.terminalWidth - 4
	if width < 10 {
		width = 10
	}
	return styles.InputStyle.
		Width(width).
		BorderForeground(borderColor).
		Render(content)
}

// AddToHistory records a command unless it is blank or repeats the last one
func (i *Input) AddToHistory(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}

	if len(i.history) == 0 || i.history[len(i.history)-1] != command {
		i.history = append(i.history, command)
		if len(i.history) > maxHistory {
			i.history = i.history[1:]
		}
	}

	i.historyIndex = -1
	i.currentInput = ""
}

// History returns the recorded commands, oldest first
func (i *Input) History() []string {
	return i.history
}

// NavigateHistoryUp moves to the previous command
func (i *Input) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}

	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}

	i.textInput.SetValue(i.history[i.historyIndex])
}

// NavigateHistoryDown moves to the next command, and back to the unfinished
// line after the newest one
func (i *Input) NavigateHistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
		return
	}

	i.historyIndex = -1
	i.textInput.SetValue(i.currentInput)
	i.currentInput = ""
}
