//go:build !linux && !darwin

package sercmd

import (
	"errors"
	"fmt"
	"io/fs"

	"go.bug.st/serial"
)

// bugstPort wraps go.bug.st/serial on platforms without the termios driver
type bugstPort struct {
	serial.Port
}

var _ Port = (*bugstPort)(nil)

// classifyPortError maps go.bug.st/serial failures onto the package errors.
// On unix the library returns some open(2) errnos unwrapped.
func classifyPortError(err error) error {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
		case errors.Is(err, fs.ErrPermission):
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		default:
			return err
		}
	}
	switch portErr.Code() {
	case serial.PortNotFound:
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	case serial.PermissionDenied:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case serial.PortBusy:
		return fmt.Errorf("%w: %w", ErrDeviceInUse, err)
	case serial.InvalidSpeed:
		return fmt.Errorf("%w: %w", ErrInvalidBaudRate, err)
	default:
		return err
	}
}

// openDevice opens path through go.bug.st/serial. The library has no
// hardware flow control setting, so RTS/CTS mode only asserts RTS and DTR
// on open and leaves pacing to the peer. Linux and macOS use the termios
// driver instead.
func openDevice(path string, config Config) (Port, error) {
	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if config.FlowControl == FlowControlRTSCTS {
		mode.InitialStatusBits = &serial.ModemOutputBits{RTS: true, DTR: true}
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, openError(path, classifyPortError(err))
	}

	if err := port.SetReadTimeout(config.ReadTimeout); err != nil {
		port.Close()
		return nil, openError(path, fmt.Errorf("failed to set read timeout: %v", err))
	}

	return &bugstPort{Port: port}, nil
}

// FlushInput discards any unread input data
func (p *bugstPort) FlushInput() error {
	return p.ResetInputBuffer()
}

// ModemSignals reports the input lines; the library cannot read back RTS/DTR
func (p *bugstPort) ModemSignals() (ModemSignals, error) {
	bits, err := p.GetModemStatusBits()
	if err != nil {
		return ModemSignals{}, err
	}
	return ModemSignals{
		CTS: bits.CTS,
		DSR: bits.DSR,
		RI:  bits.RI,
		DCD: bits.DCD,
	}, nil
}
