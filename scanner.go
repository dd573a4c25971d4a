package sercmd

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// comPortCount is how many COMn names are tried on Windows
	comPortCount = 256

	// devicePattern matches tty nodes with a letter after "tty", which
	// skips the numbered virtual consoles
	devicePattern = "/dev/tty[A-Za-z]*"

	// darwinPattern matches the callin nodes of USB adapters on macOS
	darwinPattern = "/dev/tty.*"
)

// unixPlatforms are the GOOS values discovered by globbing /dev
var unixPlatforms = map[string]bool{
	"linux":     true,
	"darwin":    true,
	"freebsd":   true,
	"netbsd":    true,
	"openbsd":   true,
	"dragonfly": true,
	"solaris":   true,
	"illumos":   true,
	"aix":       true,
}

// Scanner enumerates candidate serial ports on the host
type Scanner struct {
	config Config
	logger *zap.Logger
}

// NewScanner creates a scanner for the host platform
func NewScanner(opts ...Option) (*Scanner, error) {
	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		config: config,
		logger: config.Logger.Named("scanner"),
	}, nil
}

// Discover returns the candidate ports that can be opened and closed again.
// Each candidate is opened exactly once; a candidate that fails is left out.
// On a platform without a discovery strategy it returns an empty slice and
// ErrUnsupportedPlatform, which callers should report rather than treat as
// fatal.
func (s *Scanner) Discover() ([]string, error) {
	s.logger.Info("Scanning ports", zap.String("platform", s.config.goos))

	candidates, err := s.candidates()
	if err != nil {
		s.logger.Warn("Port discovery unavailable", zap.Error(err))
		return []string{}, err
	}

	available := make([]string, 0, len(candidates))
	for _, path := range candidates {
		port, err := s.config.opener(path, s.config)
		if err != nil {
			s.logger.Debug("Skipping port", zap.String("port", path), zap.Error(err))
			continue
		}
		if err := port.Close(); err != nil {
			s.logger.Debug("Skipping port after failed close", zap.String("port", path), zap.Error(err))
			continue
		}
		available = append(available, path)
	}

	s.logger.Info("Available ports", zap.Strings("ports", available))
	return available, nil
}

// candidates lists the device names worth trying on the configured platform
func (s *Scanner) candidates() ([]string, error) {
	switch {
	case s.config.goos == "windows":
		names := make([]string, 0, comPortCount)
		for i := 1; i <= comPortCount; i++ {
			names = append(names, fmt.Sprintf("COM%d", i))
		}
		return names, nil

	case unixPlatforms[s.config.goos]:
		patterns := []string{devicePattern}
		if s.config.goos == "darwin" {
			patterns = append(patterns, darwinPattern)
		}

		var names []string
		for _, pattern := range patterns {
			matches, err := afero.Glob(s.config.fs, pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
			}
			names = append(names, matches...)
		}
		sort.Strings(names)
		return names, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, s.config.goos)
	}
}

// Discover scans the host for candidate ports with a one-off Scanner
func Discover(opts ...Option) ([]string, error) {
	scanner, err := NewScanner(opts...)
	if err != nil {
		return nil, err
	}
	return scanner.Discover()
}
