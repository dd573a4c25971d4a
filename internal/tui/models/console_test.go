package models

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/tui/components"
	"github.com/allbin/go-sercmd/internal/tui/styles"
)

type fakeExchanger struct {
	mu      sync.Mutex
	clock   *clock.Mock
	delay   time.Duration
	replies map[string]string
	sent    []string
}

func (f *fakeExchanger) Exchange(command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, command)
	f.clock.Add(f.delay)
	reply, ok := f.replies[command]
	if !ok {
		return "", sercmd.ErrTimeout
	}
	return reply, nil
}

func (f *fakeExchanger) Path() string {
	return "/dev/ttyACM0"
}

func (f *fakeExchanger) Config() sercmd.Config {
	config := sercmd.DefaultConfig()
	config.Clock = f.clock
	return config
}

func newTestConsole(greeting string) (*ConsoleModel, *fakeExchanger) {
	exchanger := &fakeExchanger{
		clock: clock.NewMock(),
		delay: 40 * time.Millisecond,
		replies: map[string]string{
			"version": "cpufw 1.0\n200 OK\n\n",
			"status":  "idle\n\n",
		},
	}
	return NewConsoleModel(exchanger, greeting), exchanger
}

func enter(m *ConsoleModel, text string) tea.Cmd {
	m.Input().SetValue(text)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestConsoleGreeting(t *testing.T) {
	m, exchanger := newTestConsole("version")

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Expected the greeting to be sent on start")
	}
	if !m.Busy() {
		t.Error("Expected the console to be busy while the greeting runs")
	}

	m.Update(cmd())
	if m.Busy() {
		t.Error("Expected the console to be idle after the reply")
	}
	if len(exchanger.sent) != 1 || exchanger.sent[0] != "version" {
		t.Errorf("Expected version to be sent, got %v", exchanger.sent)
	}

	entries := m.Transcript().Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected command and reply entries, got %d", len(entries))
	}
	if entries[1].Kind != components.EntryReply || entries[1].Text != "cpufw 1.0\n200 OK" {
		t.Errorf("Expected the trimmed reply, got %+v", entries[1])
	}
}

func TestConsoleNoGreeting(t *testing.T) {
	m, _ := newTestConsole("")
	if cmd := m.Init(); cmd != nil {
		t.Error("Expected no command without a greeting")
	}
}

func TestConsoleSendCommand(t *testing.T) {
	m, exchanger := newTestConsole("")

	cmd := enter(m, "status")
	if cmd == nil {
		t.Fatal("Expected an exchange command")
	}
	if m.Input().Value() != "" {
		t.Errorf("Expected the prompt to be cleared, got %q", m.Input().Value())
	}

	msg, ok := cmd().(ExchangeDoneMsg)
	if !ok {
		t.Fatalf("Expected ExchangeDoneMsg, got %T", msg)
	}
	if msg.Elapsed != 40*time.Millisecond {
		t.Errorf("Expected 40ms latency, got %v", msg.Elapsed)
	}
	m.Update(msg)

	if m.StatusBar().Status() != styles.StatusReady {
		t.Errorf("Expected READY, got %v", m.StatusBar().Status())
	}
	if got := m.Input().History(); len(got) != 1 || got[0] != "status" {
		t.Errorf("Expected status in history, got %v", got)
	}
	if len(exchanger.sent) != 1 {
		t.Errorf("Expected one exchange, got %v", exchanger.sent)
	}
}

func TestConsoleOneExchangeInFlight(t *testing.T) {
	m, exchanger := newTestConsole("")

	first := enter(m, "version")
	if first == nil {
		t.Fatal("Expected an exchange command")
	}

	if second := enter(m, "status"); second != nil {
		t.Error("Expected a second command to be refused while busy")
	}
	if m.Input().Value() != "status" {
		t.Errorf("Expected the refused command to stay on the prompt, got %q", m.Input().Value())
	}
	if !strings.Contains(m.StatusBar().Message(), "in progress") {
		t.Errorf("Expected a busy hint, got %q", m.StatusBar().Message())
	}

	m.Update(first())
	if len(exchanger.sent) != 1 {
		t.Errorf("Expected only the first command sent, got %v", exchanger.sent)
	}

	if again := enter(m, "status"); again == nil {
		t.Error("Expected the command to be accepted once idle")
	}
}

func TestConsoleExchangeError(t *testing.T) {
	m, _ := newTestConsole("")

	msg := enter(m, "reboot")().(ExchangeDoneMsg)
	if !errors.Is(msg.Err, sercmd.ErrTimeout) {
		t.Errorf("Expected the timeout to be reported, got %v", msg.Err)
	}
	m.Update(msg)

	entries := m.Transcript().Entries()
	last := entries[len(entries)-1]
	if last.Kind != components.EntryError {
		t.Errorf("Expected an error entry, got %+v", last)
	}
	if m.StatusBar().Status() != styles.StatusError {
		t.Errorf("Expected ERROR, got %v", m.StatusBar().Status())
	}
}

func TestConsoleQuit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		text string
	}{
		{"q command", tea.KeyMsg{Type: tea.KeyEnter}, "q"},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, ""},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, exchanger := newTestConsole("")
			m.Input().SetValue(tt.text)

			_, cmd := m.Update(tt.msg)
			if cmd == nil {
				t.Fatal("Expected a quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("Expected tea.QuitMsg")
			}
			if len(exchanger.sent) != 0 {
				t.Errorf("Expected nothing sent, got %v", exchanger.sent)
			}
		})
	}
}

func TestConsoleQuitWaitsForExchange(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		text string
	}{
		{"q command", tea.KeyMsg{Type: tea.KeyEnter}, "q"},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, ""},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestConsole("")

			pending := enter(m, "version")
			if pending == nil {
				t.Fatal("Expected an exchange command")
			}

			m.Input().SetValue(tt.text)
			if _, cmd := m.Update(tt.msg); cmd != nil {
				t.Fatal("Expected quit to wait while an exchange is in flight")
			}
			if !strings.Contains(m.StatusBar().Message(), "quitting") {
				t.Errorf("Expected a quitting hint, got %q", m.StatusBar().Message())
			}

			_, cmd := m.Update(pending())
			if cmd == nil {
				t.Fatal("Expected a quit command once the reply arrived")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("Expected tea.QuitMsg")
			}

			entries := m.Transcript().Entries()
			if last := entries[len(entries)-1]; last.Kind != components.EntryReply {
				t.Errorf("Expected the reply to be recorded before quitting, got %+v", last)
			}
		})
	}
}

func TestConsoleHistoryKeys(t *testing.T) {
	m, _ := newTestConsole("")

	m.Update(enter(m, "version")())
	m.Update(enter(m, "status")())

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Input().Value() != "status" {
		t.Errorf("Expected status, got %q", m.Input().Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Input().Value() != "version" {
		t.Errorf("Expected version, got %q", m.Input().Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Input().Value() != "status" {
		t.Errorf("Expected status, got %q", m.Input().Value())
	}
}

func TestConsoleView(t *testing.T) {
	m, _ := newTestConsole("")

	if !strings.Contains(m.View(), "Initializing") {
		t.Error("Expected a placeholder before the first resize")
	}

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(enter(m, "version")())

	view := m.View()
	for _, want := range []string{"/dev/ttyACM0", "200 OK", "115200 8N1 RTS/CTS"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in the view", want)
		}
	}
}
