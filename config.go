package sercmd

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FlowControl represents the flow control mode
type FlowControl int

const (
	FlowControlNone FlowControl = iota
	FlowControlRTSCTS
)

func (fc FlowControl) String() string {
	switch fc {
	case FlowControlNone:
		return "none"
	case FlowControlRTSCTS:
		return "rtscts"
	default:
		return "unknown"
	}
}

// Link and protocol defaults for the unit.
const (
	DefaultBaudRate        = 115200
	DefaultReadTimeout     = 10 * time.Millisecond
	DefaultExchangeTimeout = 2 * time.Second
	DefaultProbeCommand    = "version"
	DefaultProbeMarker     = "200 OK"
)

// Config holds the link, protocol and collaborator settings shared by the
// scanner, the transport and the prober.
type Config struct {
	BaudRate    int
	FlowControl FlowControl

	// ReadTimeout bounds a single driver read; a read that sees no data
	// within it returns zero bytes.
	ReadTimeout time.Duration

	// ExchangeTimeout is the wall-clock budget for a complete response frame.
	ExchangeTimeout time.Duration

	ProbeCommand string
	ProbeMarker  string

	Logger *zap.Logger
	Clock  clock.Clock

	opener OpenFunc
	fs     afero.Fs
	goos   string
}

// Option is a functional option for configuring the transport layer
type Option func(*Config) error

// DefaultConfig returns the configuration the unit expects: 115200 baud,
// RTS/CTS hardware flow control, 10ms reads and a 2s exchange budget.
func DefaultConfig() Config {
	return Config{
		BaudRate:        DefaultBaudRate,
		FlowControl:     FlowControlRTSCTS,
		ReadTimeout:     DefaultReadTimeout,
		ExchangeTimeout: DefaultExchangeTimeout,
		ProbeCommand:    DefaultProbeCommand,
		ProbeMarker:     DefaultProbeMarker,
		Logger:          zap.NewNop(),
		Clock:           clock.New(),
		opener:          openDevice,
		fs:              afero.NewOsFs(),
		goos:            hostOS,
	}
}

func newConfig(opts []Option) (Config, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return Config{}, err
		}
	}
	return config, nil
}

// validBaudRates lists the rates every supported driver accepts.
var validBaudRates = map[int]bool{
	1200: true, 2400: true, 4800: true, 9600: true, 19200: true,
	38400: true, 57600: true, 115200: true, 230400: true, 460800: true,
	921600: true,
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if !validBaudRates[rate] {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithFlowControl sets the flow control mode
func WithFlowControl(fc FlowControl) Option {
	return func(c *Config) error {
		if fc != FlowControlNone && fc != FlowControlRTSCTS {
			return ErrInvalidConfig
		}
		c.FlowControl = fc
		return nil
	}
}

// WithReadTimeout sets the per-read driver timeout
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 || timeout > time.Second {
			return ErrInvalidConfig
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithExchangeTimeout sets the budget for receiving a complete response
func WithExchangeTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.ExchangeTimeout = timeout
		return nil
	}
}

// WithProbeCommand sets the handshake command sent to each candidate
func WithProbeCommand(command string) Option {
	return func(c *Config) error {
		if err := validateCommand(command); err != nil {
			return err
		}
		c.ProbeCommand = command
		return nil
	}
}

// WithProbeMarker sets the substring that confirms the unit in a probe reply
func WithProbeMarker(marker string) Option {
	return func(c *Config) error {
		if marker == "" {
			return ErrInvalidConfig
		}
		c.ProbeMarker = marker
		return nil
	}
}

// WithLogger sets the logger. A nil logger discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.Logger = logger
		return nil
	}
}

// WithClock replaces the wall clock used for exchange deadlines
func WithClock(clk clock.Clock) Option {
	return func(c *Config) error {
		if clk == nil {
			return ErrInvalidConfig
		}
		c.Clock = clk
		return nil
	}
}

// WithPortOpener replaces the platform driver used to open device paths
func WithPortOpener(open OpenFunc) Option {
	return func(c *Config) error {
		if open == nil {
			return ErrInvalidConfig
		}
		c.opener = open
		return nil
	}
}

// WithFilesystem sets the filesystem searched for device nodes on unix hosts
func WithFilesystem(fs afero.Fs) Option {
	return func(c *Config) error {
		if fs == nil {
			return ErrInvalidConfig
		}
		c.fs = fs
		return nil
	}
}

// WithPlatform overrides the operating system used to pick a discovery strategy
func WithPlatform(goos string) Option {
	return func(c *Config) error {
		if goos == "" {
			return ErrInvalidConfig
		}
		c.goos = goos
		return nil
	}
}
