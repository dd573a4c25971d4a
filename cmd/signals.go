/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/allbin/go-sercmd"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals [port]",
	Short: "Display current modem signal states",
	Long: `Display the current state of all modem control signals.

Shows the state of CTS, DSR, RI, DCD, RTS, and DTR signals for the specified
port, or for --port. The unit paces its output with RTS/CTS, so a CTS that
stays LOW usually means a cable without handshake lines.

Examples:
  sercmd signals /dev/ttyACM0
  sercmd signals COM3

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)
  RTS - Request To Send (output)
  DTR - Data Terminal Ready (output)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := settings.Port
		if len(args) == 1 {
			portPath = args[0]
		}
		if portPath == "" {
			return fmt.Errorf("no port given")
		}
		return showSignals(cmd.OutOrStdout(), portPath, transportOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}

func showSignals(out io.Writer, portPath string, opts ...sercmd.Option) error {
	transport, err := sercmd.Open(portPath, opts...)
	if err != nil {
		return fmt.Errorf("error opening port: %w", err)
	}
	defer transport.Close()

	signals, err := transport.ModemSignals()
	if err != nil {
		return fmt.Errorf("error reading modem signals: %w", err)
	}

	fmt.Fprintf(out, "Modem Signals for %s:\n\n", portPath)
	fmt.Fprintf(out, "  CTS (Clear To Send):       %s\n", formatSignalState(signals.CTS))
	fmt.Fprintf(out, "  DSR (Data Set Ready):      %s\n", formatSignalState(signals.DSR))
	fmt.Fprintf(out, "  RI  (Ring Indicator):      %s\n", formatSignalState(signals.RI))
	fmt.Fprintf(out, "  DCD (Data Carrier Detect): %s\n", formatSignalState(signals.DCD))
	fmt.Fprintf(out, "  RTS (Request To Send):     %s\n", formatSignalState(signals.RTS))
	fmt.Fprintf(out, "  DTR (Data Terminal Ready): %s\n", formatSignalState(signals.DTR))
	return nil
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}
