package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/tui/styles"
)

func TestInputHistory(t *testing.T) {
	input := NewInput("command")

	for _, command := range []string{"version", "status", "status", "  ", "reset"} {
		input.AddToHistory(command)
	}

	history := input.History()
	expected := []string{"version", "status", "reset"}
	if strings.Join(history, ",") != strings.Join(expected, ",") {
		t.Fatalf("Expected history %v, got %v", expected, history)
	}

	input.SetValue("stat")
	input.NavigateHistoryUp()
	if input.Value() != "reset" {
		t.Errorf("Expected reset, got %q", input.Value())
	}
	input.NavigateHistoryUp()
	input.NavigateHistoryUp()
	input.NavigateHistoryUp()
	if input.Value() != "version" {
		t.Errorf("Expected to stop at the oldest command, got %q", input.Value())
	}

	input.NavigateHistoryDown()
	if input.Value() != "status" {
		t.Errorf("Expected status, got %q", input.Value())
	}
	input.NavigateHistoryDown()
	input.NavigateHistoryDown()
	if input.Value() != "stat" {
		t.Errorf("Expected the unfinished line back, got %q", input.Value())
	}
}

func TestInputHistoryLimit(t *testing.T) {
	input := NewInput("")
	for i := 0; i < maxHistory+10; i++ {
		input.AddToHistory(strings.Repeat("x", i+1))
	}
	if len(input.History()) != maxHistory {
		t.Errorf("Expected %d entries, got %d", maxHistory, len(input.History()))
	}
}

func TestStatusBar(t *testing.T) {
	bar := NewStatusBar("/dev/ttyACM0", sercmd.DefaultConfig())

	if got := bar.LinkSummary(); got != "115200 8N1 RTS/CTS" {
		t.Errorf("Expected 115200 8N1 RTS/CTS, got %q", got)
	}
	if bar.Status() != styles.StatusReady {
		t.Errorf("Expected READY, got %v", bar.Status())
	}

	bar.SetBusy("version")
	if bar.Status() != styles.StatusBusy {
		t.Errorf("Expected BUSY, got %v", bar.Status())
	}

	bar.SetResult(2*time.Second, errors.New("timeout"))
	if bar.Status() != styles.StatusError || bar.Message() != "timeout" {
		t.Errorf("Expected ERROR with message, got %v %q", bar.Status(), bar.Message())
	}

	bar.SetResult(30*time.Millisecond, nil)
	if bar.Status() != styles.StatusReady || bar.Message() != "" {
		t.Errorf("Expected READY, got %v %q", bar.Status(), bar.Message())
	}

	view := bar.View()
	if !strings.Contains(view, "/dev/ttyACM0") || !strings.Contains(view, "30ms") {
		t.Errorf("Expected port and latency in the view, got %q", view)
	}
}

func TestStatusBarNoFlowControl(t *testing.T) {
	config := sercmd.DefaultConfig()
	config.BaudRate = 9600
	config.FlowControl = sercmd.FlowControlNone

	bar := NewStatusBar("COM3", config)
	if got := bar.LinkSummary(); got != "9600 8N1 no flow control" {
		t.Errorf("Unexpected summary %q", got)
	}
}

func TestTranscript(t *testing.T) {
	transcript := NewTranscript(80, 10)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	transcript.Add(Entry{Time: now, Kind: EntryCommand, Text: "version"})
	transcript.Add(Entry{Time: now, Kind: EntryReply, Text: "cpufw 1.0\n200 OK"})
	transcript.Add(Entry{Time: now, Kind: EntryError, Text: "timeout"})

	if len(transcript.Entries()) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(transcript.Entries()))
	}

	view := transcript.View()
	for _, want := range []string{"> version", "cpufw 1.0", "200 OK", "error: timeout", "03:04:05.000"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in the transcript, got %q", want, view)
		}
	}

	transcript.Clear()
	if len(transcript.Entries()) != 0 {
		t.Errorf("Expected an empty transcript, got %d entries", len(transcript.Entries()))
	}
}

func TestPortTable(t *testing.T) {
	view := PortTable([]sercmd.PortInfo{
		{Path: "/dev/ttyACM0", Description: "USB CDC/ACM Device", IsUSB: true, VendorID: "2341", ProductID: "0043", Product: "Unit"},
		{Path: "/dev/ttyS0", Description: "Standard Serial Port"},
	})

	for _, want := range []string{"/dev/ttyACM0", "2341:0043", "/dev/ttyS0", "Standard Serial Port"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in the table, got:\n%s", want, view)
		}
	}
}
