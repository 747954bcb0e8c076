package bench

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

const bytesPerMB = 1024 * 1024

// MemorySampler measures the resident-memory delta across a call.
//
// Implementations are chosen once at startup by NewMemorySampler; callers
// never probe for the capability themselves.
type MemorySampler interface {
	// Available reports whether Sample produces real measurements.
	Available() bool
	// Sample runs fn and returns the RSS delta observed around it together
	// with fn's error.
	Sample(fn func() error) (MemoryUsage, error)
}

// NewMemorySampler returns a process RSS sampler when enabled and the host
// supports it, otherwise a sampler that reports nothing.
func NewMemorySampler(enabled bool, logger *slog.Logger) MemorySampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !enabled {
		logger.Debug("memory tracking disabled by configuration")
		return NewUnavailableSampler(logger)
	}
	s, err := newProcessSampler()
	if err != nil {
		logger.Debug("process memory introspection not supported", "error", err)
		return NewUnavailableSampler(logger)
	}
	return s
}

// NewLazySampler defers NewMemorySampler until the first Available or
// Sample call, so commands that never measure skip the process probe.
func NewLazySampler(enabled bool, logger *slog.Logger) MemorySampler {
	return &lazySampler{resolve: func() MemorySampler { return NewMemorySampler(enabled, logger) }}
}

type lazySampler struct {
	resolve func() MemorySampler
	once    sync.Once
	s       MemorySampler
}

func (l *lazySampler) get() MemorySampler {
	l.once.Do(func() { l.s = l.resolve() })
	return l.s
}

func (l *lazySampler) Available() bool { return l.get().Available() }

func (l *lazySampler) Sample(fn func() error) (MemoryUsage, error) { return l.get().Sample(fn) }

type processSampler struct {
	proc *process.Process
}

func newProcessSampler() (*processSampler, error) {
	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32 on supported platforms
	if err != nil {
		return nil, err
	}
	if _, err := p.MemoryInfo(); err != nil {
		return nil, err
	}
	return &processSampler{proc: p}, nil
}

func (s *processSampler) Available() bool { return true }

func (s *processSampler) rssMB() (float64, error) {
	runtime.GC()
	debug.FreeOSMemory()
	info, err := s.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / bytesPerMB, nil
}

func (s *processSampler) Sample(fn func() error) (MemoryUsage, error) {
	before, errBefore := s.rssMB()
	fnErr := fn()
	after, errAfter := s.rssMB()
	if errBefore != nil || errAfter != nil {
		return MemoryUsage{}, fnErr
	}
	return MemoryUsage{MB: after - before, Measured: true}, fnErr
}

// unavailableSampler runs the function without measuring. It warns once.
type unavailableSampler struct {
	logger *slog.Logger
	once   sync.Once
}

// NewUnavailableSampler returns a sampler that never measures.
func NewUnavailableSampler(logger *slog.Logger) MemorySampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &unavailableSampler{logger: logger}
}

func (s *unavailableSampler) Available() bool { return false }

func (s *unavailableSampler) Sample(fn func() error) (MemoryUsage, error) {
	s.once.Do(func() {
		s.logger.Warn("memory introspection unavailable, memory usage will not be measured")
	})
	return MemoryUsage{}, fn()
}
