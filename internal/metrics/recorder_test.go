package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hellobench/pkg/bench"
)

func TestRecorder_CountsIterationsByStatus(t *testing.T) {
	t.Parallel()

	m := NewRecorder()
	m.ObserveIteration("hello", time.Millisecond, nil)
	m.ObserveIteration("hello", 2*time.Millisecond, nil)
	m.ObserveIteration("hello", 0, errors.New("boom"))

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.Iterations.WithLabelValues("hello", "ok")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Iterations.WithLabelValues("hello", "error")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.IterationDuration))
}

func TestRecorder_ExportsResultGauges(t *testing.T) {
	t.Parallel()

	m := NewRecorder()
	m.ObserveResult(bench.Result{
		Name:                "Simple Hello Function",
		ExecutionTime:       0.002,
		OperationsPerSecond: 500,
		SuccessRate:         0.5,
		Memory:              bench.MemoryUsage{MB: 3, Measured: true},
		Outcome:             bench.OutcomeSuccess,
	})
	m.ObserveResult(bench.Result{Name: "Script: x (TIMEOUT)", Outcome: bench.OutcomeTimeout})

	assert.InDelta(t, 0.002, testutil.ToFloat64(m.ExecutionTime.WithLabelValues("Simple Hello Function")), 1e-12)
	assert.InDelta(t, 500.0, testutil.ToFloat64(m.OpsPerSecond.WithLabelValues("Simple Hello Function")), 1e-9)
	assert.InDelta(t, 0.5, testutil.ToFloat64(m.SuccessRate.WithLabelValues("Simple Hello Function")), 1e-9)
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.MemoryUsage.WithLabelValues("Simple Hello Function")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.MemoryUsage), "unmeasured memory is not exported")
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("timeout")), 1e-9)
}

func TestRecorder_WiresIntoRunner(t *testing.T) {
	t.Parallel()

	m := NewRecorder()
	r := bench.NewRunner(bench.WithObserver(m), bench.WithSampler(bench.NewUnavailableSampler(nil)))
	_, err := r.BenchmarkFunction("noop", 5, func() error { return nil })
	require.NoError(t, err)

	assert.InDelta(t, 5.0, testutil.ToFloat64(m.Iterations.WithLabelValues("noop", "ok")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("success")), 1e-9)
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()

	m := NewRecorder()
	m.ObserveResult(bench.Result{Name: "hello", ExecutionTime: 1, Outcome: bench.OutcomeSuccess})

	path := filepath.Join(t.TempDir(), "hellobench.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE hellobench_result_execution_seconds gauge")
	assert.Contains(t, text, `hellobench_result_execution_seconds{benchmark="hello"} 1`)

	err = testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(`
# HELP hellobench_results_total Recorded benchmark results by outcome.
# TYPE hellobench_results_total counter
hellobench_results_total{outcome="success"} 1
`), "hellobench_results_total")
	assert.NoError(t, err)
}

func TestRecorder_WriteTextfile_Errors_When_DirMissing(t *testing.T) {
	t.Parallel()

	err := NewRecorder().WriteTextfile(filepath.Join(t.TempDir(), "nope", "x.prom"))
	assert.Error(t, err)
}
