/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/allbin/go-sercmd"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Find the port the unit is connected to",
	Long: `Scan the serial ports and ask each one for its version.

The first port that answers with the confirmation marker is reported along
with its reply. Nothing is asked interactively; the command fails when no
port answers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return probePorts(cmd.OutOrStdout(), transportOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func probePorts(out io.Writer, opts ...sercmd.Option) error {
	ports, err := sercmd.Discover(opts...)
	if err != nil {
		return err
	}

	prober, err := sercmd.NewProber(opts...)
	if err != nil {
		return err
	}

	transport, err := prober.FindDevice(ports)
	if errors.Is(err, sercmd.ErrNoDeviceFound) {
		fmt.Fprintln(out, errorStyle.Render("✗ Unit not found"))
		return err
	}
	if err != nil {
		return err
	}
	defer transport.Close()

	fmt.Fprintf(out, "%s Unit found on %s\n", infoStyle.Render("✓"), transport.Path())

	reply, err := transport.Exchange(transport.Config().ProbeCommand)
	if err != nil {
		return fmt.Errorf("unit stopped answering: %w", err)
	}
	printReply(out, reply)
	return nil
}
