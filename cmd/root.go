/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/config"
	"github.com/allbin/go-sercmd/internal/logging"
)

var (
	cfgFile   string
	verbosity int

	v        = viper.New()
	settings *config.Config
	logger   = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sercmd",
	Short: "Send commands to the unit over a serial port",
	Long: `Send text commands to the unit and print its replies.

Without --port the serial ports are scanned and each one is asked for its
version; the first port that answers with "200 OK" is used. If no port
answers, the ports are listed and you are asked to pick one.

Test communication:
  sercmd -c version

If the port is known:
  sercmd -p /dev/ttyACM0 -c version

Without -c an interactive prompt is started. Type q to quit.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: $HOME/.config/sercmd/sercmd.yaml or ./sercmd.yaml)")
	flags.CountVarP(&verbosity, "verbosity", "v", "Increase logging information, -v=INFO, -vv=DEBUG")
	flags.StringP("port", "p", "", "Set serial port, e.g. /dev/ttyACM0")
	flags.IntP("baud", "b", sercmd.DefaultBaudRate, "Baud rate")
	flags.StringP("flow-control", "f", sercmd.FlowControlRTSCTS.String(), "Flow control: none, rtscts")
	flags.DurationP("timeout", "t", sercmd.DefaultExchangeTimeout, "Time to wait for a complete reply")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides -v)")
	flags.String("log-format", "console", "Log format: console, json")
	flags.String("log-file", "", "Write logs to a rotated file instead of stderr")

	bindings := map[string]string{
		"port":             "port",
		"baud":             "baud",
		"flow_control":     "flow-control",
		"exchange_timeout": "timeout",
		"log.level":        "log-level",
		"log.format":       "log-format",
		"log.file":         "log-file",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.Flags().StringP("command", "c", "", "Execute command and exit")
}

// setup loads the configuration and builds the logger for every command
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	settings = loaded

	built, err := logging.New(settings.Log, verbosity)
	if err != nil {
		return err
	}
	logger = built.Named("sercmd")

	logger.Info("Setting logging level", zap.Int("verbosity", verbosity))
	logger.Debug("Configuration loaded",
		zap.String("config_file", v.ConfigFileUsed()),
		zap.String("port", settings.Port),
		zap.Int("baud", settings.Baud),
		zap.String("flow_control", settings.FlowControl),
		zap.Duration("exchange_timeout", settings.ExchangeTimeout),
	)
	return nil
}

// transportOptions are the library options for the loaded configuration
func transportOptions() []sercmd.Option {
	return append(settings.Options(), sercmd.WithLogger(logger))
}

func runRoot(cmd *cobra.Command, args []string) error {
	command, _ := cmd.Flags().GetString("command")
	runOnce := cmd.Flags().Changed("command")
	if runOnce {
		logger.Info("Single command", zap.String("cmd", command))
	}

	s := newSession(cmd.InOrStdin(), cmd.OutOrStdout(), logger, transportOptions()...)
	transport, err := s.connect(settings.Port)
	if err != nil {
		return err
	}
	defer transport.Close()

	stop := finishOnInterrupt(cmd.OutOrStdout())
	defer stop()

	if runOnce {
		reply, err := transport.Exchange(command)
		if err != nil {
			return fmt.Errorf("%s: %w", command, err)
		}
		printReply(cmd.OutOrStdout(), reply)
		return nil
	}

	return s.repl(transport, settings.Probe.Command)
}
