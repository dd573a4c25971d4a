package sercmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const readChunk = 256

// frameTerminator ends every response: the unit always closes a reply with
// an empty line.
var frameTerminator = []byte("\n\n")

// Transport owns one open serial connection to the unit and performs
// strictly sequential request/response exchanges on it. A Transport is not
// safe for concurrent use.
type Transport struct {
	path   string
	port   Port
	config Config
	clock  clock.Clock
	logger *zap.Logger
	closed bool
}

// Open opens the serial port at path with the unit's link settings
func Open(path string, opts ...Option) (*Transport, error) {
	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return openTransport(path, config)
}

func openTransport(path string, config Config) (*Transport, error) {
	logger := config.Logger.Named("transport").With(zap.String("port", path))

	port, err := config.opener(path, config)
	if err != nil {
		if !errors.Is(err, ErrConnection) {
			err = openError(path, err)
		}
		logger.Debug("Failed to open serial port", zap.Error(err))
		return nil, err
	}

	logger.Info("Serial port opened",
		zap.Int("baud_rate", config.BaudRate),
		zap.Stringer("flow_control", config.FlowControl),
	)
	return &Transport{
		path:   path,
		port:   port,
		config: config,
		clock:  config.Clock,
		logger: logger,
	}, nil
}

// NewTransport wraps an already open Port. The transport takes ownership of
// port and closes it on Close.
func NewTransport(path string, port Port, opts ...Option) (*Transport, error) {
	if port == nil {
		return nil, ErrInvalidConfig
	}
	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Transport{
		path:   path,
		port:   port,
		config: config,
		clock:  config.Clock,
		logger: config.Logger.Named("transport").With(zap.String("port", path)),
	}, nil
}

// Path returns the device path the transport was opened on
func (t *Transport) Path() string {
	return t.path
}

// Config returns the settings the transport was opened with
func (t *Transport) Config() Config {
	return t.config
}

// validateCommand rejects payloads that are not a single line of text
func validateCommand(command string) error {
	if !utf8.ValidString(command) {
		return fmt.Errorf("%w: invalid UTF-8", ErrInvalidArgument)
	}
	if strings.ContainsAny(command, "\r\n") {
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidArgument, command)
	}
	return nil
}

// Exchange sends command as one line and returns the unit's response,
// including its terminating blank line. It fails with ErrTimeout when no
// complete frame arrives within the exchange budget and with ErrTransport on
// I/O failure; no partial response is ever returned.
func (t *Transport) Exchange(command string) (string, error) {
	if err := validateCommand(command); err != nil {
		return "", err
	}
	if t.closed {
		return "", ErrPortClosed
	}

	if err := t.FlushInput(); err != nil {
		return "", err
	}

	if err := t.writeLine(command); err != nil {
		return "", err
	}

	start := t.clock.Now()
	response, err := t.readFrame()
	if err != nil {
		t.logger.Debug("Exchange failed",
			zap.String("command", command),
			zap.Duration("elapsed", t.clock.Since(start)),
			zap.Error(err),
		)
		return "", err
	}

	if !utf8.Valid(response) {
		return "", fmt.Errorf("%w: %s: response is not valid UTF-8", ErrTransport, t.path)
	}

	t.logger.Debug("Exchange completed",
		zap.String("command", command),
		zap.Int("bytes", len(response)),
		zap.Duration("elapsed", t.clock.Since(start)),
	)
	return string(response), nil
}

// FlushInput drops stale input left over from an earlier, possibly partial,
// exchange. It flushes the driver buffer and then reads until a read times
// out empty. A line that keeps talking for a whole exchange budget is
// reported as ErrTransport.
func (t *Transport) FlushInput() error {
	if t.closed {
		return ErrPortClosed
	}

	if err := t.port.FlushInput(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", ErrTransport, t.path, err)
	}

	deadline := t.clock.Now().Add(t.config.ExchangeTimeout)
	buf := make([]byte, readChunk)
	discarded := 0
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			return fmt.Errorf("%w: flush %s: %v", ErrTransport, t.path, err)
		}
		if n == 0 {
			break
		}
		discarded += n
		if !t.clock.Now().Before(deadline) {
			return fmt.Errorf("%w: %s: input did not settle after discarding %d bytes", ErrTransport, t.path, discarded)
		}
	}

	if discarded > 0 {
		t.logger.Debug("Discarded stale input", zap.Int("bytes", discarded))
	}
	return nil
}

func (t *Transport) writeLine(command string) error {
	line := make([]byte, 0, len(command)+1)
	line = append(line, command...)
	line = append(line, '\n')

	n, err := t.port.Write(line)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrTransport, t.path, err)
	}
	if n != len(line) {
		return fmt.Errorf("%w: incomplete write to %s: wrote %d of %d bytes", ErrTransport, t.path, n, len(line))
	}
	return nil
}

// readFrame accumulates input until it holds the frame terminator or the
// exchange budget runs out
func (t *Transport) readFrame() ([]byte, error) {
	deadline := t.clock.Now().Add(t.config.ExchangeTimeout)
	buf := make([]byte, readChunk)
	var response []byte

	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			response = append(response, buf[:n]...)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrTransport, t.path, err)
		}
		if bytes.Contains(response, frameTerminator) {
			return response, nil
		}
		if !t.clock.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s: no complete reply within %v", ErrTimeout, t.path, t.config.ExchangeTimeout)
		}
	}
}

// ModemSignals reports the modem control lines of the underlying port
func (t *Transport) ModemSignals() (ModemSignals, error) {
	if t.closed {
		return ModemSignals{}, ErrPortClosed
	}
	return t.port.ModemSignals()
}

// Close releases the serial port. Closing twice returns ErrPortClosed.
func (t *Transport) Close() error {
	if t.closed {
		return ErrPortClosed
	}
	t.closed = true

	if err := t.port.Close(); err != nil {
		t.logger.Warn("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close %s: %w", t.path, err)
	}
	t.logger.Info("Serial port closed")
	return nil
}
