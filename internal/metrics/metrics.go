// Package metrics summarises benchmark results as a metrics report and
// exports them in the Prometheus text format.
package metrics

import "github.com/dkoosis/hellobench/pkg/bench"

// Columns are the per-row values of a Report, in order.
var Columns = []string{"exec_s", "ops_per_s", "success", "memory_mb"}

// Report is a tabular summary of a benchmark run.
type Report struct {
	Scope       string       `json:"scope"`
	Columns     []string     `json:"columns"`
	Rows        []Row        `json:"rows"`
	Regressions []Regression `json:"regressions"`
}

// Row is a single named row of metric values. Memory is -1 when not measured.
type Row struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	N      int       `json:"n,omitempty"`
}

// Regression records a metric that got worse between runs.
type Regression struct {
	Group  string  `json:"group"`
	Metric string  `json:"metric"`
	From   float64 `json:"from"`
	To     float64 `json:"to"`
}

// Ratio is To/From, or 0 when From is zero.
func (r Regression) Ratio() float64 {
	if r.From == 0 {
		return 0
	}
	return r.To / r.From
}

// FromResults builds a Report with one row per result, in insertion order.
func FromResults(scope string, results []bench.Result, regressions []Regression) *Report {
	rep := &Report{
		Scope:       scope,
		Columns:     Columns,
		Rows:        make([]Row, 0, len(results)),
		Regressions: regressions,
	}
	if rep.Regressions == nil {
		rep.Regressions = []Regression{}
	}
	for _, r := range results {
		mem := -1.0
		if r.Memory.Measured {
			mem = r.Memory.MB
		}
		rep.Rows = append(rep.Rows, Row{
			Name:   r.Name,
			Values: []float64{r.ExecutionTime, r.OperationsPerSecond, r.SuccessRate, mem},
			N:      r.Iterations,
		})
	}
	return rep
}
