package sercmd

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ProbeResult is the outcome of validating one candidate port
type ProbeResult int

const (
	// ProbeConfirmed means the unit answered with the confirmation marker
	ProbeConfirmed ProbeResult = iota
	// ProbeAbsent means something answered, but not the unit
	ProbeAbsent
	// ProbeError means the port could not be opened or the exchange failed
	ProbeError
)

func (r ProbeResult) String() string {
	switch r {
	case ProbeConfirmed:
		return "confirmed"
	case ProbeAbsent:
		return "absent"
	case ProbeError:
		return "error"
	default:
		return "unknown"
	}
}

// Prober decides which candidate port the unit is attached to
type Prober struct {
	config Config
	logger *zap.Logger
}

// NewProber creates a prober that opens candidates with the given options
func NewProber(opts ...Option) (*Prober, error) {
	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Prober{
		config: config,
		logger: config.Logger.Named("probe"),
	}, nil
}

// Probe opens path, sends the probe command and inspects the reply. Only a
// confirmed probe returns an open Transport; on every other outcome the port
// has already been closed and the error says why.
func (p *Prober) Probe(path string) (ProbeResult, *Transport, error) {
	logger := p.logger.With(zap.String("port", path))

	transport, err := openTransport(path, p.config)
	if err != nil {
		return ProbeError, nil, err
	}

	reply, err := transport.Exchange(p.config.ProbeCommand)
	if err != nil {
		p.release(transport, logger)
		return ProbeError, nil, err
	}

	if !strings.Contains(reply, p.config.ProbeMarker) {
		p.release(transport, logger)
		return ProbeAbsent, nil, fmt.Errorf("%w: %s answered %q without %q",
			ErrUnexpectedReply, path, strings.TrimSpace(reply), p.config.ProbeMarker)
	}

	return ProbeConfirmed, transport, nil
}

// FindDevice probes candidates in order and returns the open Transport of the
// first one the unit confirms. Failing candidates are closed before the next
// one is opened. When nothing confirms, the error matches ErrNoDeviceFound
// and wraps every per-candidate failure.
func (p *Prober) FindDevice(candidates []string) (*Transport, error) {
	if len(candidates) == 0 {
		p.logger.Info("No candidate ports to probe")
		return nil, fmt.Errorf("%w: no candidate ports", ErrNoDeviceFound)
	}

	var failures error
	for _, path := range candidates {
		p.logger.Debug("Probing port", zap.String("port", path))

		result, transport, err := p.Probe(path)
		if result == ProbeConfirmed {
			p.logger.Info("Unit confirmed", zap.String("port", path))
			return transport, nil
		}

		p.logger.Info("Port rejected",
			zap.String("port", path),
			zap.Stringer("result", result),
			zap.Error(err),
		)
		failures = multierr.Append(failures, err)
	}

	return nil, fmt.Errorf("%w: tried %d port(s): %w", ErrNoDeviceFound, len(candidates), failures)
}

func (p *Prober) release(transport *Transport, logger *zap.Logger) {
	if err := transport.Close(); err != nil && !errors.Is(err, ErrPortClosed) {
		logger.Warn("Failed to release probed port", zap.Error(err))
	}
}

// FindDevice probes candidates with a one-off Prober
func FindDevice(candidates []string, opts ...Option) (*Transport, error) {
	prober, err := NewProber(opts...)
	if err != nil {
		return nil, err
	}
	return prober.FindDevice(candidates)
}
