//go:build linux || darwin

package sercmd

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// ttyPort is the termios implementation of Port for Linux and macOS
type ttyPort struct {
	mu          sync.RWMutex
	fd          int
	path        string
	readTimeout time.Duration
	closed      bool
}

// Ensure ttyPort implements Port interface at compile time
var _ Port = (*ttyPort)(nil)

// classifyErrno maps an open(2) failure onto the package errors
func classifyErrno(err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%w: %w", ErrDeviceInUse, err)
	default:
		return err
	}
}

// openDevice opens a tty in raw mode with the link settings from config
func openDevice(path string, config Config) (Port, error) {
	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return nil, openError(path, err)
	}

	// O_NONBLOCK keeps open from waiting on carrier detect
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, openError(path, classifyErrno(err))
	}

	if err := configurePort(fd, baudRate, config.FlowControl); err != nil {
		unix.Close(fd)
		return nil, openError(path, err)
	}

	// Reads are paced by poll(2), writes may block on flow control
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, openError(path, fmt.Errorf("failed to clear O_NONBLOCK: %v", err))
	}

	return &ttyPort{
		fd:          fd,
		path:        path,
		readTimeout: config.ReadTimeout,
	}, nil
}

// configurePort puts the tty in raw 8N1 mode at the given speed
func configurePort(fd int, baudRate uint32, flow FlowControl) error {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("failed to get termios: %v", err)
	}

	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// VMIN=0, VTIME=0: read returns whatever is buffered, poll does the waiting
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	setSpeed(termios, baudRate)

	if flow == FlowControlRTSCTS {
		termios.Cflag |= unix.CRTSCTS
	}

	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, termios); err != nil {
		return fmt.Errorf("failed to set termios: %v", err)
	}
	return nil
}

// pollMillis converts the read timeout for poll(2), never below 1ms
func pollMillis(d time.Duration) int {
	ms := int(d / time.Millisecond)
	if ms < 1 {
		return 1
	}
	return ms
}

// Read waits up to the read timeout for input and returns what is available
func (p *ttyPort) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	ready, err := unix.Poll(fds, pollMillis(p.readTimeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("poll %s: %w", p.path, err)
	}
	if ready == 0 {
		return 0, nil
	}

	n, err := unix.Read(p.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", p.path, err)
	}
	if n == 0 {
		// Readable with nothing to read means the line hung up
		return 0, io.EOF
	}
	return n, nil
}

// Write writes data to the serial port
func (p *ttyPort) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	written := 0
	for written < len(data) {
		n, err := unix.Write(p.fd, data[written:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return written, fmt.Errorf("write %s: %w", p.path, err)
		}
		written += n
	}
	return written, nil
}

// FlushInput discards any unread input data
func (p *ttyPort) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return flushQueue(p.fd, unix.TCIFLUSH)
}

// ModemSignals returns current state of all modem control signals
func (p *ttyPort) ModemSignals() (ModemSignals, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ModemSignals{}, ErrPortClosed
	}

	status, err := unix.IoctlGetInt(p.fd, unix.TIOCMGET)
	if err != nil {
		return ModemSignals{}, err
	}
	return signalsFromStatus(status), nil
}

func signalsFromStatus(status int) ModemSignals {
	return ModemSignals{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RTS: status&unix.TIOCM_RTS != 0,
		DTR: status&unix.TIOCM_DTR != 0,
	}
}

// Close closes the serial port
func (p *ttyPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	// Drop pending output so close does not wait on a peer that never
	// raises CTS
	flushQueue(p.fd, unix.TCOFLUSH)

	err := unix.Close(p.fd)
	p.closed = true
	return err
}
