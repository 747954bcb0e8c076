// Package hello holds the hello world variants the harness measures: a
// synchronous printer, a bounded concurrent batch processor and the
// in-process functions benchmarked by perfbench.
package hello

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dkoosis/hellobench/pkg/bench"
)

// DefaultMessage is printed when no message is given.
const DefaultMessage = "Hello World"

// LargeRepeatThreshold is the repeat count above which Print warns.
const LargeRepeatThreshold = 1000

// ErrInvalidRepeat is returned for a repeat count below 1.
var ErrInvalidRepeat = errors.New("repeat count must be at least 1")

// Printer writes hello messages, each run wrapped in a Monitor.
type Printer struct {
	out     io.Writer
	logger  *slog.Logger
	monitor *Monitor
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, logger *slog.Logger, sampler bench.MemorySampler) *Printer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Printer{out: out, logger: logger, monitor: NewMonitor(logger, sampler)}
}

// Print writes message repeat times. With repeat > 1 each line carries a
// " #n" suffix counting from 1.
func (p *Printer) Print(message string, repeat int) error {
	if repeat < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidRepeat, repeat)
	}
	if repeat > LargeRepeatThreshold {
		p.logger.Warn("large repeat count may impact performance", "repeat", repeat)
	}

	_, err := p.monitor.Run(fmt.Sprintf("printing message %d times", repeat), func() error {
		for i := range repeat {
			line := message
			if repeat > 1 {
				line = fmt.Sprintf("%s #%d", message, i+1)
			}
			if _, err := fmt.Fprintln(p.out, line); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// Case is one canned print benchmark.
type Case struct {
	Name    string
	Message string
	Repeat  int
}

// BenchmarkCases are run by RunBenchmark, in order.
var BenchmarkCases = []Case{
	{"Single message", DefaultMessage, 1},
	{"10 messages", DefaultMessage, 10},
	{"100 messages", DefaultMessage, 100},
	{"Custom message", "Performance Test", 50},
}

// RunBenchmark prints every canned case under its own monitor and returns
// the observations.
func (p *Printer) RunBenchmark() ([]Observation, error) {
	p.logger.Info("running performance benchmarks")
	observations := make([]Observation, 0, len(BenchmarkCases))
	for _, c := range BenchmarkCases {
		obs, err := p.monitor.Run("benchmark: "+c.Name, func() error {
			return p.Print(c.Message, c.Repeat)
		})
		observations = append(observations, obs)
		if err != nil {
			return observations, err
		}
	}
	return observations, nil
}

// Simple writes one greeting.
func Simple(w io.Writer) error {
	_, err := fmt.Fprintln(w, DefaultMessage)
	return err
}

// Complex builds a few throwaway strings before writing the greeting.
func Complex(w io.Writer) error {
	var sb strings.Builder
	for i := range 100 {
		if i%10 == 0 {
			sb.Reset()
			fmt.Fprintf(&sb, "%s %d", DefaultMessage, i)
		}
	}
	_, err := fmt.Fprintln(w, DefaultMessage)
	return err
}

// ConcatAll joins input lines; it is the workload of the scalability test.
func ConcatAll(w io.Writer) func(input []string) error {
	return func(input []string) error {
		_, err := io.WriteString(w, strings.Join(input, "\n"))
		return err
	}
}
