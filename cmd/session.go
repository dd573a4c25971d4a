/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/tui/styles"
)

const quitCommand = "q"

var (
	errorStyle = lipgloss.NewStyle().Foreground(styles.Red).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(styles.Yellow).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(styles.Mauve).Bold(true)
)

// session is the operator side of the tool: it finds the unit, asking the
// operator for help when automatic detection fails, and runs the prompt.
type session struct {
	in     *bufio.Reader
	out    io.Writer
	logger *zap.Logger
	opts   []sercmd.Option
}

func newSession(in io.Reader, out io.Writer, logger *zap.Logger, opts ...sercmd.Option) *session {
	return &session{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		opts:   opts,
	}
}

// readLine returns one line of operator input without its line ending
func (s *session) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// connect returns an open transport to the unit. A named port is opened as
// is; otherwise the ports are scanned and probed.
func (s *session) connect(port string) (*sercmd.Transport, error) {
	if port != "" {
		s.logger.Info("Using configured port", zap.String("port", port))
		return sercmd.Open(port, s.opts...)
	}

	ports, err := s.waitForPorts()
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out, "Available port(s):")
	for i, path := range ports {
		fmt.Fprintf(s.out, "Port %d: %s\n", i, path)
	}

	prober, err := sercmd.NewProber(s.opts...)
	if err != nil {
		return nil, err
	}

	transport, err := prober.FindDevice(ports)
	if err == nil {
		fmt.Fprintf(s.out, "%s Using %s\n", infoStyle.Render("⚡"), transport.Path())
		return transport, nil
	}
	if !errors.Is(err, sercmd.ErrNoDeviceFound) {
		return nil, err
	}

	s.logger.Info("Unit not detected automatically", zap.Error(err))
	return s.choosePort(prober, ports)
}

// waitForPorts scans until at least one port shows up, asking the operator
// to check the cable between scans
func (s *session) waitForPorts() ([]string, error) {
	for {
		ports, err := sercmd.Discover(s.opts...)
		if err != nil {
			return nil, fmt.Errorf("%w; name the port with --port", err)
		}
		if len(ports) > 0 {
			return ports, nil
		}

		s.logger.Error("No serial ports found")
		fmt.Fprintln(s.out, warnStyle.Render("Cant find usb port. Check connection cable and press ENTER..."))
		if _, err := s.readLine(); err != nil {
			return nil, fmt.Errorf("no serial ports found: %w", err)
		}
	}
}

// choosePort lets the operator pick a port by number until one confirms
func (s *session) choosePort(prober *sercmd.Prober, ports []string) (*sercmd.Transport, error) {
	for {
		fmt.Fprint(s.out, "Enter port number to use: ")
		line, err := s.readLine()
		if err != nil {
			return nil, fmt.Errorf("no port selected: %w", err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 0 || n >= len(ports) {
			fmt.Fprintf(s.out, "Enter a number from 0 to %d.\n", len(ports)-1)
			continue
		}

		result, transport, err := prober.Probe(ports[n])
		if result == sercmd.ProbeConfirmed {
			return transport, nil
		}

		s.logger.Info("Selected port rejected",
			zap.String("port", ports[n]),
			zap.Stringer("result", result),
			zap.Error(err),
		)
		fmt.Fprintln(s.out, "The port seems not to be connected to the unit. Try another port.")
	}
}

// repl greets the unit and then sends each line the operator enters until
// q or end of input
func (s *session) repl(transport *sercmd.Transport, greeting string) error {
	s.exchange(transport, greeting)
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Enter command or (q)uit.")

	for {
		fmt.Fprint(s.out, "> ")
		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			break
		}
		if err != nil {
			return err
		}
		if line == quitCommand {
			break
		}
		s.exchange(transport, line)
	}

	fmt.Fprintln(s.out, "Finished")
	return nil
}

// exchange sends one command and prints the reply; failures are printed and
// the session goes on
func (s *session) exchange(transport *sercmd.Transport, command string) {
	reply, err := transport.Exchange(command)
	if err != nil {
		s.logger.Error("Exchange failed", zap.String("cmd", command), zap.Error(err))
		fmt.Fprintln(s.out, errorStyle.Render("error: "+err.Error()))
		return
	}
	printReply(s.out, reply)
}

func printReply(out io.Writer, reply string) {
	fmt.Fprintln(out, strings.TrimSpace(reply))
}

// finishOnInterrupt ends the process cleanly on Ctrl+C; the returned
// function removes the handler
func finishOnInterrupt(out io.Writer) func() {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Finished")
			logger.Sync()
			os.Exit(0)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
