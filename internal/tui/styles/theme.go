package styles

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha colors used by the console
var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Surface2 = lipgloss.Color("#585b70")
	Overlay0 = lipgloss.Color("#6c7086")
	Subtext0 = lipgloss.Color("#a6adc8")
	Subtext1 = lipgloss.Color("#bac2de")
	Text     = lipgloss.Color("#cdd6f4")

	Blue   = lipgloss.Color("#89b4fa")
	Teal   = lipgloss.Color("#94e2d5")
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387")
	Red    = lipgloss.Color("#f38ba8")
	Mauve  = lipgloss.Color("#cba6f7")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve).
			Background(Surface0).
			Padding(0, 1)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(0, 1)

	// Transcript entries
	CommandStyle   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	ReplyStyle     = lipgloss.NewStyle().Foreground(Text)
	NoticeStyle    = lipgloss.NewStyle().Foreground(Subtext0).Italic(true)
	TimestampStyle = lipgloss.NewStyle().Foreground(Overlay0)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Red)

	InfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Yellow)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Mauve)
)

// StatusType is the state of the link shown in the status bar
type StatusType int

const (
	StatusReady StatusType = iota
	StatusBusy
	StatusError
)

func (s StatusType) String() string {
	switch s {
	case StatusReady:
		return "READY"
	case StatusBusy:
		return "BUSY"
	case StatusError:
		return "ERROR"
	default:
		return "READY"
	}
}

// GetStatusStyle returns the badge style for a link state
func GetStatusStyle(status StatusType) lipgloss.Style {
	badge := lipgloss.NewStyle().
		Foreground(Base).
		Bold(true).
		Padding(0, 1)

	switch status {
	case StatusBusy:
		return badge.Background(Yellow)
	case StatusError:
		return badge.Background(Red)
	default:
		return badge.Background(Green)
	}
}
