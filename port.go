package sercmd

import (
	"io"
	"runtime"
)

var hostOS = runtime.GOOS

// Port represents an open serial connection as used by a Transport.
//
// Read waits at most the configured read timeout and returns zero bytes and a
// nil error when no data arrived in that window.
type Port interface {
	io.ReadWriteCloser

	// FlushInput discards data the driver has received but not yet delivered
	FlushInput() error

	// ModemSignals reports the modem control lines
	ModemSignals() (ModemSignals, error)
}

// OpenFunc opens the device at path using the link settings in config.
type OpenFunc func(path string, config Config) (Port, error)

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
	RTS bool // Request To Send
	DTR bool // Data Terminal Ready
}
