// Package report renders benchmark results as a Markdown document.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/hellobench/pkg/bench"
)

const (
	// DefaultFilename is where Save writes when no path is given.
	DefaultFilename = "performance_report.md"

	// TimestampLayout formats the generation time.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Generator renders a ResultSet. Output depends only on the set and the clock.
type Generator struct {
	results *bench.ResultSet
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the logger used by Save.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator for results.
func New(results *bench.ResultSet, opts ...Option) *Generator {
	g := &Generator{
		results: results,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Generate renders the report.
func (g *Generator) Generate() string {
	results := g.results.Results()
	sorted := bench.SortByExecutionTime(results)

	var sb strings.Builder
	sb.WriteString("# Performance Test Report\n\n")
	fmt.Fprintf(&sb, "Total tests run: %d\n", len(results))
	fmt.Fprintf(&sb, "Report generated at: %s\n\n", g.now().Format(TimestampLayout))

	sb.WriteString("## Test Results\n\n")
	if len(sorted) == 0 {
		sb.WriteString("_No results recorded._\n\n")
	}
	for _, r := range sorted {
		fmt.Fprintf(&sb, "### %s\n", r.Name)
		fmt.Fprintf(&sb, "- Execution time: %.6f seconds\n", r.ExecutionTime)
		fmt.Fprintf(&sb, "- Memory usage: %s\n", r.Memory)
		fmt.Fprintf(&sb, "- Operations per second: %.2f\n", r.OperationsPerSecond)
		fmt.Fprintf(&sb, "- Success rate: %.2f%%\n", r.SuccessRate*100)
		fmt.Fprintf(&sb, "- Error count: %d\n\n", r.ErrorCount)
	}

	if baseline, baseIdx, ok := g.results.Baseline(bench.BaselineLabel); ok && len(results) > 1 {
		title := cases.Title(language.English).String(bench.BaselineLabel)
		sb.WriteString("## Performance Improvements\n\n")
		for i, r := range results {
			if i == baseIdx {
				continue
			}
			fmt.Fprintf(&sb, "### %s vs %s\n", r.Name, title)
			fmt.Fprintf(&sb, "- Speedup: %.2fx\n", bench.Speedup(baseline, r))
			fmt.Fprintf(&sb, "- Memory change: %s\n\n", memoryChange(baseline, r))
		}
	}

	sb.WriteString("## Recommendations\n\n")
	if len(sorted) == 0 {
		sb.WriteString("No data available.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "1. **Fastest implementation**: %s\n", sorted[0].Name)
	fmt.Fprintf(&sb, "2. **Most memory efficient**: %s\n", mostMemoryEfficient(results))
	fmt.Fprintf(&sb, "3. **Most reliable**: %s\n", mostReliable(results))
	return sb.String()
}

// Save writes the report to path, replacing any existing file.
func (g *Generator) Save(path string) error {
	if path == "" {
		path = DefaultFilename
	}
	if err := os.WriteFile(path, []byte(g.Generate()), 0o644); err != nil { //nolint:gosec // report is meant to be shared
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	g.logger.Info("performance report saved", "path", path)
	return nil
}

func memoryChange(baseline, r bench.Result) string {
	if !baseline.Memory.Measured || !r.Memory.Measured {
		return "not measured"
	}
	return fmt.Sprintf("%+.2f MB", r.Memory.MB-baseline.Memory.MB)
}

// mostMemoryEfficient returns the first result with the lowest measured memory.
func mostMemoryEfficient(results []bench.Result) string {
	best := -1
	for i, r := range results {
		if !r.Memory.Measured {
			continue
		}
		if best < 0 || r.Memory.MB < results[best].Memory.MB {
			best = i
		}
	}
	if best < 0 {
		return "n/a (memory not measured)"
	}
	return results[best].Name
}

// mostReliable returns the first result with the highest success rate.
func mostReliable(results []bench.Result) string {
	best := 0
	for i, r := range results {
		if r.SuccessRate > results[best].SuccessRate {
			best = i
		}
	}
	return results[best].Name
}
