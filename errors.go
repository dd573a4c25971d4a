package sercmd

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	// Discovery
	ErrUnsupportedPlatform = errors.New("serial port discovery not supported on this platform")

	// Opening a port. Open failures always match ErrConnection and, when the
	// cause is known, one of the more specific errors below.
	ErrConnection       = errors.New("could not open serial port")
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")

	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")
	ErrPortClosed      = errors.New("serial port is closed")

	// Exchange
	ErrInvalidArgument = errors.New("command must be a single line of UTF-8 text")
	ErrTimeout         = errors.New("timeout before end of message")
	ErrTransport       = errors.New("serial transport failure")

	// Probing
	ErrUnexpectedReply = errors.New("reply lacks the confirmation marker")
	ErrNoDeviceFound   = errors.New("no port is connected to the unit")
)

// openError wraps a driver failure for path so that it matches ErrConnection
// as well as the classified cause.
func openError(path string, cause error) error {
	return fmt.Errorf("%w %s: %w", ErrConnection, path, cause)
}
