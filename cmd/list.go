/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/tui/components"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports that can be opened",
	Long: `List the serial ports that can be opened on this host.

On Windows COM1 to COM256 are tried, on unix systems the /dev/tty* nodes.
Ports that are missing, busy or not permitted are left out. The index shown
with --table is the number to enter when sercmd asks which port to use.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tableFormat, _ := cmd.Flags().GetBool("table")
		return listPorts(cmd.OutOrStdout(), tableFormat, transportOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("table", "T", false, "Display output in a styled table with port details")
}

func listPorts(out io.Writer, tableFormat bool, opts ...sercmd.Option) error {
	ports, err := sercmd.Discover(opts...)
	if errors.Is(err, sercmd.ErrUnsupportedPlatform) {
		fmt.Fprintln(out, warnStyle.Render(err.Error()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("error listing ports: %w", err)
	}

	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}

	if !tableFormat {
		for _, port := range ports {
			fmt.Fprintln(out, port)
		}
		return nil
	}

	infos, err := sercmd.DescribePorts(ports)
	if err != nil {
		logger.Warn("Port details unavailable", zap.Error(err))
	}
	fmt.Fprintf(out, "Found %d serial port(s):\n\n", len(ports))
	fmt.Fprintln(out, components.PortTable(infos))
	return nil
}
