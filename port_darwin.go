//go:build darwin

package sercmd

import "golang.org/x/sys/unix"

const (
	ioctlReadTermios  = unix.TIOCGETA
	ioctlWriteTermios = unix.TIOCSETA
)

// getBaudRate returns the termios speed for rate. BSD speeds are the rate
// itself, so every rate WithBaudRate accepts passes through.
func getBaudRate(rate int) (uint32, error) {
	if !validBaudRates[rate] {
		return 0, ErrInvalidBaudRate
	}
	return uint32(rate), nil
}

func setSpeed(termios *unix.Termios, baudRate uint32) {
	termios.Ispeed = uint64(baudRate)
	termios.Ospeed = uint64(baudRate)
}

// flushQueue discards the queue selected by TCIFLUSH or TCOFLUSH. TIOCFLUSH
// takes FREAD and FWRITE, which share their values with those constants.
func flushQueue(fd int, queue int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, queue)
}
