// Package bench times repeated invocations of functions and external
// programs and collects the results for reporting.
package bench

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultScriptTimeout bounds each external program run.
	DefaultScriptTimeout = 30 * time.Second

	// DefaultMemoryStride samples memory on every Nth iteration to bound overhead.
	DefaultMemoryStride = 100

	// ScalabilityIterations is the iteration count used per input size.
	ScalabilityIterations = 10
)

var (
	// ErrInvalidIterations is returned for an iteration count below 1.
	ErrInvalidIterations = errors.New("iterations must be at least 1")

	// ErrInvalidSize is returned for a non-positive scalability size.
	ErrInvalidSize = errors.New("scalability size must be positive")
)

// Observer receives per-iteration and per-result events. The metrics
// package provides a Prometheus-backed implementation.
type Observer interface {
	ObserveIteration(name string, elapsed time.Duration, err error)
	ObserveResult(r Result)
}

type nopObserver struct{}

func (nopObserver) ObserveIteration(string, time.Duration, error) {}
func (nopObserver) ObserveResult(Result)                          {}

// Runner executes benchmarks sequentially and appends every result to its
// ResultSet.
type Runner struct {
	results         *ResultSet
	sampler         MemorySampler
	logger          *slog.Logger
	observer        Observer
	scriptTimeout   time.Duration
	memoryStride    int
	timeThreshold   float64 // seconds; 0 disables
	memoryThreshold float64 // MB; 0 disables
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithSampler sets the memory sampler.
func WithSampler(s MemorySampler) Option {
	return func(r *Runner) { r.sampler = s }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithScriptTimeout bounds each RunScriptBenchmark call.
func WithScriptTimeout(d time.Duration) Option {
	return func(r *Runner) { r.scriptTimeout = d }
}

// WithMemoryStride samples memory every n iterations.
func WithMemoryStride(n int) Option {
	return func(r *Runner) { r.memoryStride = n }
}

// WithWarningThresholds logs a warning for results slower than seconds or
// using more than megabytes. Zero disables a threshold.
func WithWarningThresholds(seconds, megabytes float64) Option {
	return func(r *Runner) {
		r.timeThreshold = seconds
		r.memoryThreshold = megabytes
	}
}

// NewRunner creates a runner. Without WithSampler it resolves a process
// memory sampler on first use, so script-only runners never probe.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		results:       NewResultSet(),
		scriptTimeout: DefaultScriptTimeout,
		memoryStride:  DefaultMemoryStride,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.sampler == nil {
		r.sampler = NewLazySampler(true, r.logger)
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	if r.memoryStride < 1 {
		r.memoryStride = DefaultMemoryStride
	}
	if r.scriptTimeout <= 0 {
		r.scriptTimeout = DefaultScriptTimeout
	}
	return r
}

// Results returns the runner's result set.
func (r *Runner) Results() *ResultSet { return r.results }

// BenchmarkFunction invokes fn iterations times and appends the aggregate.
//
// Failures are counted, never fatal. When nothing succeeds the returned
// result is zero-valued with ErrorCount == iterations and Outcome ==
// OutcomeError, and it is not appended to the result set.
// Arguments are bound by closing over them in fn.
func (r *Runner) BenchmarkFunction(name string, iterations int, fn Func) (Result, error) {
	if iterations < 1 {
		return Result{}, fmt.Errorf("benchmark %q: %w (got %d)", name, ErrInvalidIterations, iterations)
	}
	r.logger.Info("benchmarking", "name", name, "iterations", iterations)

	var (
		total      time.Duration
		successes  int
		errs       int
		memTotal   float64
		memSamples int
	)
	for i := range iterations {
		a := r.attempt(fn, i%r.memoryStride == 0)
		r.observer.ObserveIteration(name, a.Elapsed, a.Err)
		if !a.OK() {
			errs++
			r.logger.Debug("iteration failed", "name", name, "iteration", i, "error", a.Err)
			continue
		}
		successes++
		total += a.Elapsed
		if a.Memory.Measured {
			memTotal += a.Memory.MB
			memSamples++
		}
	}

	if successes == 0 {
		r.logger.Error("no successful executions", "name", name, "iterations", iterations)
		return Result{
			Name:       name,
			ErrorCount: iterations,
			Iterations: iterations,
			Outcome:    OutcomeError,
		}, nil
	}

	avg := total.Seconds() / float64(successes)
	var mem MemoryUsage
	if memSamples > 0 {
		mem = MemoryUsage{MB: memTotal / float64(memSamples), Measured: true}
	}
	res, _ := r.record(Result{
		Name:                name,
		ExecutionTime:       avg,
		Memory:              mem,
		OperationsPerSecond: opsPerSecond(avg),
		SuccessRate:         successRate(iterations, errs),
		ErrorCount:          errs,
		Iterations:          iterations,
		Outcome:             OutcomeSuccess,
	})
	return res, nil
}

// attempt runs fn once, optionally inside the memory sampler.
func (r *Runner) attempt(fn Func, sampleMemory bool) Attempt {
	var a Attempt
	timed := func() error {
		_, elapsed, err := Measure(func() (struct{}, error) {
			return struct{}{}, fn()
		})
		a.Elapsed = elapsed
		return err
	}
	if sampleMemory {
		a.Memory, a.Err = r.sampler.Sample(timed)
		return a
	}
	a.Err = timed()
	return a
}

// RunScalabilityTest benchmarks fn against generated inputs of each size,
// in order, with ScalabilityIterations iterations per size.
func (r *Runner) RunScalabilityTest(name string, sizes []int, fn func(input []string) error) ([]Result, error) {
	for _, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("scalability test %q: %w (got %d)", name, ErrInvalidSize, size)
		}
	}

	results := make([]Result, 0, len(sizes))
	for _, size := range sizes {
		r.logger.Info("testing scalability", "name", name, "size", size)
		input := make([]string, size)
		for i := range input {
			input[i] = fmt.Sprintf("Hello World %d", i)
		}
		res, err := r.BenchmarkFunction(fmt.Sprintf("%s (size=%d)", name, size), ScalabilityIterations, func() error {
			return fn(input)
		})
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// record warns about threshold breaches, notifies the observer and appends,
// returning the result and its index in the set.
func (r *Runner) record(res Result) (Result, int) {
	if r.timeThreshold > 0 && res.ExecutionTime > r.timeThreshold {
		r.logger.Warn("execution time above threshold",
			"name", res.Name, "execution_time", res.ExecutionTime, "threshold", r.timeThreshold)
	}
	if r.memoryThreshold > 0 && res.Memory.Measured && res.Memory.MB > r.memoryThreshold {
		r.logger.Warn("memory usage above threshold",
			"name", res.Name, "memory_mb", res.Memory.MB, "threshold", r.memoryThreshold)
	}
	r.observer.ObserveResult(res)
	return res, r.results.Append(res)
}
