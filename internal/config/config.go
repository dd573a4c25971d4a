// Package config loads the sercmd CLI settings from defaults, an optional
// YAML file, SERCMD_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/allbin/go-sercmd"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SERCMD_PORT
	EnvPrefix = "SERCMD"

	fileName = "sercmd"
)

// Config is the CLI configuration
type Config struct {
	Port            string        `mapstructure:"port"`
	Baud            int           `mapstructure:"baud"`
	FlowControl     string        `mapstructure:"flow_control"`
	ExchangeTimeout time.Duration `mapstructure:"exchange_timeout"`
	Probe           ProbeConfig   `mapstructure:"probe"`
	Log             LogConfig     `mapstructure:"log"`
}

// ProbeConfig holds the handshake used to recognise the unit
type ProbeConfig struct {
	Command string `mapstructure:"command"`
	Marker  string `mapstructure:"marker"`
}

// LogConfig holds logging configuration. An empty Level means the level is
// taken from the -v count.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads configuration into v. When configFile is empty, sercmd.yaml is
// searched for in $HOME/.config/sercmd and the working directory and a
// missing file is not an error. An explicit configFile must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", fileName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "")
	v.SetDefault("baud", sercmd.DefaultBaudRate)
	v.SetDefault("flow_control", sercmd.FlowControlRTSCTS.String())
	v.SetDefault("exchange_timeout", sercmd.DefaultExchangeTimeout)

	v.SetDefault("probe.command", sercmd.DefaultProbeCommand)
	v.SetDefault("probe.marker", sercmd.DefaultProbeMarker)

	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
}

func validate(config *Config) error {
	if _, err := parseFlowControl(config.FlowControl); err != nil {
		return err
	}
	if config.ExchangeTimeout <= 0 {
		return fmt.Errorf("exchange_timeout must be positive, got %v", config.ExchangeTimeout)
	}
	switch config.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}
	return nil
}

func parseFlowControl(name string) (sercmd.FlowControl, error) {
	switch strings.ToLower(name) {
	case "rtscts", "":
		return sercmd.FlowControlRTSCTS, nil
	case "none":
		return sercmd.FlowControlNone, nil
	default:
		return sercmd.FlowControlNone, fmt.Errorf("invalid flow_control: %s", name)
	}
}

// Options converts the link and probe settings into transport options. The
// baud rate is checked here, by sercmd.WithBaudRate.
func (c *Config) Options() []sercmd.Option {
	flow, _ := parseFlowControl(c.FlowControl)
	return []sercmd.Option{
		sercmd.WithBaudRate(c.Baud),
		sercmd.WithFlowControl(flow),
		sercmd.WithExchangeTimeout(c.ExchangeTimeout),
		sercmd.WithProbeCommand(c.Probe.Command),
		sercmd.WithProbeMarker(c.Probe.Marker),
	}
}
