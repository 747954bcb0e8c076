// Package profile records per-stage timings and allocations, and optionally
// a pprof CPU profile, for the hello binaries' --profile mode.
package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"text/tabwriter"
	"time"
)

// Stage is one profiled section.
type Stage struct {
	Name       string        `json:"stage"`
	Duration   time.Duration `json:"duration"`
	AllocBytes uint64        `json:"alloc_bytes"`
	Mallocs    uint64        `json:"mallocs"`
	Err        error         `json:"-"`
}

// Profiler tracks stages throughout command execution. A disabled profiler
// still runs stages but records nothing.
type Profiler struct {
	enabled   bool
	startTime time.Time
	stages    []Stage
	out       io.Writer
	cpuFile   *os.File
}

// New creates a profiler writing its table to out.
func New(enabled bool, out io.Writer) *Profiler {
	return &Profiler{
		enabled:   enabled,
		startTime: time.Now(),
		out:       out,
	}
}

// Enabled reports whether stages are recorded.
func (p *Profiler) Enabled() bool { return p.enabled }

// Stage runs fn and records its duration and heap allocations.
func (p *Profiler) Stage(name string, fn func() error) error {
	if !p.enabled {
		return fn()
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	runtime.ReadMemStats(&after)

	p.stages = append(p.stages, Stage{
		Name:       name,
		Duration:   d,
		AllocBytes: after.TotalAlloc - before.TotalAlloc,
		Mallocs:    after.Mallocs - before.Mallocs,
		Err:        err,
	})
	return err
}

// Stages returns the recorded stages in order.
func (p *Profiler) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// StartCPU begins a pprof CPU profile written to path. Stop ends it.
func (p *Profiler) StartCPU(path string) error {
	if p.cpuFile != nil {
		return errors.New("cpu profile already running")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("starting cpu profile: %w", err)
	}
	p.cpuFile = f
	return nil
}

// Stop ends a running CPU profile.
func (p *Profiler) Stop() error {
	if p.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := p.cpuFile.Close()
	p.cpuFile = nil
	return err
}

// Write outputs the stage table.
func (p *Profiler) Write() error {
	if !p.enabled || len(p.stages) == 0 {
		return nil
	}

	total := time.Since(p.startTime)
	fmt.Fprintf(p.out, "\n# hellobench Performance Profile\n")
	fmt.Fprintf(p.out, "Total Duration: %s (%d ms)\n\n", total, total.Milliseconds())

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Stage\tDuration\tAlloc(B)\tMallocs\tStatus")
	fmt.Fprintln(tw, "-----\t--------\t--------\t-------\t------")
	for _, s := range p.stages {
		status := "ok"
		if s.Err != nil {
			status = "error: " + s.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.Name, s.Duration, s.AllocBytes, s.Mallocs, status)
	}
	return tw.Flush()
}
