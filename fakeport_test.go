package sercmd

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// fakePort is a scripted unit on the other end of a line. Reads that find
// nothing pending advance the mock clock by the read timeout, the way a real
// driver read would block.
type fakePort struct {
	mu sync.Mutex

	clock   *clock.Mock
	tick    time.Duration
	chunk   int
	replies map[string]string

	pending []byte
	written bytes.Buffer
	line    bytes.Buffer

	// babble refills pending on every read so the line never goes quiet
	babble []byte

	readErr  error
	writeErr error
	closeErr error

	// replyErr fails reads once a command has been written
	replyErr error

	flushes int
	reads   int
	closed  bool
}

func newFakePort(clk *clock.Mock, replies map[string]string) *fakePort {
	return &fakePort{
		clock:   clk,
		tick:    DefaultReadTimeout,
		chunk:   readChunk,
		replies: replies,
	}
}

func (f *fakePort) Read(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrPortClosed
	}
	f.reads++
	if f.readErr != nil {
		return 0, f.readErr
	}
	if f.replyErr != nil && f.written.Len() > 0 {
		return 0, f.replyErr
	}
	if len(f.babble) > 0 {
		f.pending = append(f.pending, f.babble...)
		f.clock.Add(f.tick)
	}
	if len(f.pending) == 0 {
		f.clock.Add(f.tick)
		return 0, nil
	}

	limit := len(buf)
	if f.chunk > 0 && f.chunk < limit {
		limit = f.chunk
	}
	n := copy(buf[:limit], f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func (f *fakePort) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrPortClosed
	}
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written.Write(data)

	for _, b := range data {
		if b != '\n' {
			f.line.WriteByte(b)
			continue
		}
		if reply, ok := f.replies[f.line.String()]; ok {
			f.pending = append(f.pending, reply...)
		}
		f.line.Reset()
	}
	return len(data), nil
}

func (f *fakePort) FlushInput() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrPortClosed
	}
	f.flushes++
	return nil
}

func (f *fakePort) ModemSignals() (ModemSignals, error) {
	return ModemSignals{CTS: true, RTS: true}, nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrPortClosed
	}
	f.closed = true
	return f.closeErr
}

func (f *fakePort) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakePort) pendingLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// fakeHost hands out copies of scripted ports by path and tracks how many
// are open at once
type fakeHost struct {
	mu      sync.Mutex
	script  map[string]*fakePort
	openErr map[string]error
	opened  map[string][]*fakePort
	opens   map[string]int
	open    int
	maxOpen int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		script:  make(map[string]*fakePort),
		openErr: make(map[string]error),
		opened:  make(map[string][]*fakePort),
		opens:   make(map[string]int),
	}
}

// Open satisfies OpenFunc
func (h *fakeHost) Open(path string, config Config) (Port, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.opens[path]++
	if err, ok := h.openErr[path]; ok {
		return nil, err
	}
	tmpl, ok := h.script[path]
	if !ok {
		return nil, openError(path, ErrDeviceNotFound)
	}

	port := &fakePort{
		clock:   tmpl.clock,
		tick:    tmpl.tick,
		chunk:   tmpl.chunk,
		replies: tmpl.replies,
		babble:  tmpl.babble,
		pending: append([]byte(nil), tmpl.pending...),
	}
	h.opened[path] = append(h.opened[path], port)
	h.open++
	if h.open > h.maxOpen {
		h.maxOpen = h.open
	}
	return &trackedPort{fakePort: port, host: h}, nil
}

func (h *fakeHost) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.open--
}

func (h *fakeHost) openCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open
}

func (h *fakeHost) totalOpens() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0
	for _, n := range h.opens {
		total += n
	}
	return total
}

// trackedPort decrements the host's open count on the first close
type trackedPort struct {
	*fakePort
	host *fakeHost
}

func (p *trackedPort) Close() error {
	err := p.fakePort.Close()
	if !errors.Is(err, ErrPortClosed) {
		p.host.release()
	}
	return err
}
