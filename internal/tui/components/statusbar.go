package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/tui/styles"
)

// StatusBar shows the port, its link settings and how the last exchange went
type StatusBar struct {
	portPath    string
	baudRate    int
	flowControl sercmd.FlowControl
	status      styles.StatusType
	message     string
	latency     time.Duration
	width       int
}

func NewStatusBar(portPath string, config sercmd.Config) *StatusBar {
	return &StatusBar{
		portPath:    portPath,
		baudRate:    config.BaudRate,
		flowControl: config.FlowControl,
		status:      styles.StatusReady,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetBusy(command string) {
	sb.status = styles.StatusBusy
	sb.message = fmt.Sprintf("waiting for %q", command)
}

// SetResult records the outcome of the last exchange
func (sb *StatusBar) SetResult(latency time.Duration, err error) {
	sb.latency = latency
	if err != nil {
		sb.status = styles.StatusError
		sb.message = err.Error()
		return
	}
	sb.status = styles.StatusReady
	sb.message = ""
}

// SetMessage shows a transient hint without changing the link state
func (sb *StatusBar) SetMessage(message string) {
	sb.message = message
}

func (sb *StatusBar) Status() styles.StatusType {
	return sb.status
}

func (sb *StatusBar) Message() string {
	return sb.message
}

// LinkSummary formats the link settings, e.g. "115200 8N1 RTS/CTS"
func (sb *StatusBar) LinkSummary() string {
	flow := "no flow control"
	if sb.flowControl == sercmd.FlowControlRTSCTS {
		flow = "RTS/CTS"
	}
	return fmt.Sprintf("%d 8N1 %s", sb.baudRate, flow)
}

func (sb *StatusBar) View() string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	badge := styles.GetStatusStyle(sb.status).Render(sb.status.String())
	port := lipgloss.NewStyle().
		Foreground(styles.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)
	divider := lipgloss.NewStyle().
		Foreground(styles.Surface2).
		Padding(0, 1).
		Render("│")

	message := ""
	if sb.message != "" {
		message = lipgloss.NewStyle().Foreground(styles.Peach).Render(sb.message)
	}
	left := lipgloss.JoinHorizontal(lipgloss.Left, badge, port, divider, message)

	latency := "-"
	if sb.latency > 0 {
		latency = sb.latency.Round(time.Millisecond).String()
	}
	right := lipgloss.NewStyle().
		Foreground(styles.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("⚡ %s │ last %s", sb.LinkSummary(), latency))

	spacerWidth := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, left, spacer, right))
}
