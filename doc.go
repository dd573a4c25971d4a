// Package sercmd is the command transport for talking to the hardware unit
// over a serial link.
//
// The unit speaks a line-oriented text protocol: each request is one UTF-8
// line terminated by a newline, and each response is text that ends with an
// empty line. The package finds the port the unit is attached to and
// exchanges commands with it, one at a time.
//
// # Basic Usage
//
// Discover candidate ports and let the prober pick the one the unit answers on:
//
//	ports, err := sercmd.Discover()
//	if err != nil && !errors.Is(err, sercmd.ErrUnsupportedPlatform) {
//	    log.Fatal(err)
//	}
//
//	transport, err := sercmd.FindDevice(ports)
//	if errors.Is(err, sercmd.ErrNoDeviceFound) {
//	    // ask the operator to pick a port or reconnect the cable
//	    return err
//	}
//	if err != nil {
//	    return err
//	}
//	defer transport.Close()
//
//	reply, err := transport.Exchange("version")
//
// If the port is already known, open it directly:
//
//	transport, err := sercmd.Open("/dev/ttyACM0")
//
// # Link Settings
//
// The defaults match the unit and rarely need changing:
//
//   - BaudRate: 115200, 8N1
//   - FlowControl: RTS/CTS
//   - ReadTimeout: 10ms per driver read
//   - ExchangeTimeout: 2 seconds for a complete response
//   - Probe: "version", confirmed by "200 OK" in the reply
//
// Use functional options to override them or to inject a logger:
//
//	transport, err := sercmd.Open("/dev/ttyACM0",
//	    sercmd.WithExchangeTimeout(5*time.Second),
//	    sercmd.WithLogger(logger),
//	)
//
// # Error Handling
//
// Errors are matched with errors.Is:
//
//	var (
//	    ErrUnsupportedPlatform // no discovery strategy for this OS
//	    ErrConnection          // the port could not be opened
//	    ErrTimeout             // no complete response within the budget
//	    ErrTransport           // I/O failure during an exchange
//	    ErrInvalidArgument     // command is not a single line of UTF-8
//	    ErrNoDeviceFound       // no candidate confirmed the unit
//	)
//
// Exchange never retries. ErrTimeout and ErrTransport are distinct so that
// callers can decide to retry only on timeout.
//
// # Platform Support
//
// On Linux ports are driven through termios with hardware flow control. On
// other platforms go.bug.st/serial is used; it cannot enable RTS/CTS pacing
// and only asserts RTS and DTR on open. Discovery probes COM1 to COM256 on
// Windows and globs /dev/tty[A-Za-z]* on unix systems.
package sercmd
