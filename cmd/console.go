/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/allbin/go-sercmd/internal/tui/models"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console [port]",
	Short: "Interactive full-screen console for the unit",
	Long: `Open a full-screen console to the unit.

The port is found the same way as for sercmd itself unless it is given as an
argument or with --port. The unit's version is requested on start. Each
command waits for its reply before the next one can be sent; the status bar
shows the link settings and how long the last reply took.

Keys:
  enter       send command (q quits)
  up/down     command history
  pgup/pgdn   scroll transcript
  ctrl+l      clear transcript
  esc/ctrl+c  quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := settings.Port
		if len(args) == 1 {
			portPath = args[0]
		}

		s := newSession(cmd.InOrStdin(), cmd.OutOrStdout(), logger, transportOptions()...)
		transport, err := s.connect(portPath)
		if err != nil {
			return err
		}
		defer transport.Close()

		model := models.NewConsoleModel(transport, settings.Probe.Command)
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
