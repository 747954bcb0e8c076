package bench

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// BaselineLabel is the label CompareImplementations records its reference
// result under.
const BaselineLabel = "original"

// ErrNoSuchResult is returned when a baseline refers to an index outside the set.
var ErrNoSuchResult = errors.New("no such result")

// Outcome classifies how a benchmark run ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"  // ran to completion but reported failure (non-zero exit)
	OutcomeTimeout Outcome = "timeout" // killed after the script timeout
	OutcomeError   Outcome = "error"   // could not run at all
)

// MemoryUsage is a memory delta in megabytes.
// Measured is false when no sample was taken, which is distinct from a
// measured delta of zero.
type MemoryUsage struct {
	MB       float64 `json:"mb"`
	Measured bool    `json:"measured"`
}

// String formats the usage for humans: "1.25 MB" or "not measured".
func (m MemoryUsage) String() string {
	if !m.Measured {
		return "not measured"
	}
	return fmt.Sprintf("%.2f MB", m.MB)
}

// Result is the immutable summary of one completed benchmark.
type Result struct {
	Name                string      `json:"name"`
	ExecutionTime       float64     `json:"execution_time"` // seconds, averaged over successful calls
	Memory              MemoryUsage `json:"memory"`
	OperationsPerSecond float64     `json:"operations_per_second"`
	SuccessRate         float64     `json:"success_rate"`
	ErrorCount          int         `json:"error_count"`
	Iterations          int         `json:"iterations"`
	Outcome             Outcome     `json:"outcome"`
}

// opsPerSecond returns 1/seconds, or 0 when seconds is not positive.
func opsPerSecond(seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return 1 / seconds
}

// successRate returns the fraction of iterations that did not fail.
func successRate(iterations, errs int) float64 {
	if iterations <= 0 {
		return 0
	}
	return float64(iterations-errs) / float64(iterations)
}

// Speedup returns baseline.ExecutionTime / r.ExecutionTime, or 0 when r has
// no execution time.
func Speedup(baseline, r Result) float64 {
	if r.ExecutionTime <= 0 {
		return 0
	}
	return baseline.ExecutionTime / r.ExecutionTime
}

// SortByExecutionTime returns a copy of results ordered by ascending
// execution time. Equal times keep their original order.
func SortByExecutionTime(results []Result) []Result {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExecutionTime < sorted[j].ExecutionTime
	})
	return sorted
}

// ResultSet is an append-only, ordered collection of results with optional
// labelled baselines.
type ResultSet struct {
	mu        sync.Mutex
	results   []Result
	baselines map[string]int
}

// NewResultSet returns an empty set.
func NewResultSet() *ResultSet {
	return &ResultSet{baselines: make(map[string]int)}
}

// Append adds r and returns its index.
func (s *ResultSet) Append(r Result) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return len(s.results) - 1
}

// Len returns the number of results.
func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Results returns a snapshot in insertion order.
func (s *ResultSet) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// SetBaseline designates the result at index as the baseline for label.
func (s *ResultSet) SetBaseline(label string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.results) {
		return fmt.Errorf("baseline %q at index %d: %w", label, index, ErrNoSuchResult)
	}
	s.baselines[label] = index
	return nil
}

// Baseline returns the result designated for label and its index.
func (s *ResultSet) Baseline(label string) (Result, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.baselines[label]
	if !ok {
		return Result{}, -1, false
	}
	return s.results[idx], idx, true
}
