package keys

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeys are the bindings of the interactive console. Printable keys
// always go to the command line, so nothing here is a bare letter.
type ConsoleKeys struct {
	Send        key.Binding
	HistoryUp   key.Binding
	HistoryDown key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Clear       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func NewConsoleKeys() ConsoleKeys {
	return ConsoleKeys{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send command"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous command"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next command"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear transcript"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc/ctrl+c", "quit"),
		),
	}
}

func (k ConsoleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.HistoryUp, k.Help, k.Quit}
}

func (k ConsoleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.HistoryUp, k.HistoryDown},
		{k.ScrollUp, k.ScrollDown, k.Clear},
		{k.Help, k.Quit},
	}
}
