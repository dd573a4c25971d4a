package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/allbin/go-sercmd/internal/tui/styles"
)

// EntryKind says who produced a transcript line
type EntryKind int

const (
	EntryCommand EntryKind = iota
	EntryReply
	EntryError
	EntryNotice
)

// Entry is one item in the console transcript
type Entry struct {
	Time time.Time
	Kind EntryKind
	Text string
}

// Transcript is the scrolling record of commands and replies
type Transcript struct {
	viewport viewport.Model
	entries  []Entry
}

func NewTranscript(width, height int) *Transcript {
	return &Transcript{
		viewport: viewport.New(width, height),
		entries:  make([]Entry, 0),
	}
}

func (t *Transcript) SetSize(width, height int) {
	if height < 1 {
		height = 1
	}
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// Add appends an entry and scrolls to it
func (t *Transcript) Add(entry Entry) {
	t.entries = append(t.entries, entry)
	t.refresh()
}

func (t *Transcript) Entries() []Entry {
	return t.entries
}

func (t *Transcript) Clear() {
	t.entries = make([]Entry, 0)
	t.refresh()
}

func (t *Transcript) ScrollUp() {
	t.viewport.HalfViewUp()
}

func (t *Transcript) ScrollDown() {
	t.viewport.HalfViewDown()
}

func (t *Transcript) refresh() {
	lines := make([]string, 0, len(t.entries))
	for _, entry := range t.entries {
		lines = append(lines, formatEntry(entry))
	}
	t.viewport.SetContent(strings.Join(lines, "\n"))
	t.viewport.GotoBottom()
}

func formatEntry(entry Entry) string {
	stamp := styles.TimestampStyle.Render(entry.Time.Format("15:04:05.000"))

	switch entry.Kind {
	case EntryCommand:
		return stamp + " " + styles.CommandStyle.Render("> "+entry.Text)
	case EntryError:
		return stamp + " " + styles.ErrorStyle.Render("error: "+entry.Text)
	case EntryNotice:
		return stamp + " " + styles.NoticeStyle.Render(entry.Text)
	default:
		// Multi-line replies are indented under the timestamp
		indent := strings.Repeat(" ", len("15:04:05.000")+1)
		lines := strings.Split(entry.Text, "\n")
		for i, line := range lines {
			lines[i] = styles.ReplyStyle.Render(line)
			if i > 0 {
				lines[i] = indent + lines[i]
			}
		}
		return stamp + " " + strings.Join(lines, "\n")
	}
}

// Update only passes resize messages so the viewport never eats key bindings
func (t *Transcript) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.WindowSizeMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

func (t *Transcript) View() string {
	return t.viewport.View()
}
