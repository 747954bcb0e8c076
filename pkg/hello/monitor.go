package hello

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dkoosis/hellobench/pkg/bench"
)

// Observation is what a Monitor saw of one operation.
type Observation struct {
	Operation string
	Elapsed   time.Duration
	Memory    bench.MemoryUsage
	Err       error
}

// Monitor logs the start, duration and memory delta of operations.
type Monitor struct {
	logger  *slog.Logger
	sampler bench.MemorySampler
}

// NewMonitor creates a Monitor. A nil or unavailable sampler records time only.
func NewMonitor(logger *slog.Logger, sampler bench.MemorySampler) *Monitor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Monitor{logger: logger, sampler: sampler}
}

// Run executes fn under observation and returns fn's error unchanged.
func (m *Monitor) Run(operation string, fn func() error) (Observation, error) {
	obs := Observation{Operation: operation}
	m.logger.Info("starting " + operation)

	timed := func() error {
		start := time.Now()
		err := fn()
		obs.Elapsed = time.Since(start)
		return err
	}
	if m.sampler != nil && m.sampler.Available() {
		obs.Memory, obs.Err = m.sampler.Sample(timed)
	} else {
		obs.Err = timed()
	}

	if obs.Err != nil {
		m.logger.Error("error in "+operation, "error", obs.Err)
	}
	m.logger.Info("completed "+operation,
		"execution_time", fmt.Sprintf("%.6f seconds", obs.Elapsed.Seconds()),
		"memory_delta", obs.Memory.String(),
	)
	return obs, obs.Err
}
