package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hellobench/pkg/bench"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", DefaultFilename))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ok(name string, secs float64) bench.Result {
	return bench.Result{Name: name, ExecutionTime: secs, OperationsPerSecond: 1 / secs,
		SuccessRate: 1, Iterations: 10, Outcome: bench.OutcomeSuccess}
}

func TestNewRunID_IsUUID(t *testing.T) {
	t.Parallel()

	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestRecord_RoundTripsThroughRecent(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	withMem := ok("Simple Hello Function", 0.001)
	withMem.Memory = bench.MemoryUsage{MB: 12.25, Measured: true}
	timeout := bench.Result{Name: "Script: hang (TIMEOUT)", ExecutionTime: 30, ErrorCount: 1,
		Iterations: 1, Outcome: bench.OutcomeTimeout}

	require.NoError(t, s.Record(ctx, "run-1", []bench.Result{withMem, timeout}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, timeout, entries[0].Result, "newest first")
	assert.Equal(t, withMem, entries[1].Result)
	assert.Equal(t, "run-1", entries[1].RunID)
	assert.WithinDuration(t, time.Now(), entries[0].RecordedAt, time.Minute)

	limited, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPrevious_SkipsCurrentRunAndFailures(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "run-1", []bench.Result{ok("hello", 0.5)}))
	failed := ok("hello", 0.1)
	failed.Outcome = bench.OutcomeError
	require.NoError(t, s.Record(ctx, "run-2", []bench.Result{failed}))
	require.NoError(t, s.Record(ctx, "run-3", []bench.Result{ok("hello", 0.9)}))

	prev, found, err := s.Previous(ctx, "hello", "run-3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "run-1", prev.RunID)
	assert.InDelta(t, 0.5, prev.Result.ExecutionTime, 1e-12)

	_, found, err = s.Previous(ctx, "unknown", "run-3")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegressions_FlagsSlowdownsAboveThreshold(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "old", []bench.Result{ok("a", 1.0), ok("b", 1.0), ok("c", 1.0)}))

	current := []bench.Result{ok("a", 1.05), ok("b", 1.5), ok("c", 0.5), ok("new", 9)}
	regs, err := s.Regressions(ctx, "now", current, 0.10)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "b", regs[0].Group)
	assert.Equal(t, "exec_s", regs[0].Metric)
	assert.InDelta(t, 1.0, regs[0].From, 1e-12)
	assert.InDelta(t, 1.5, regs[0].To, 1e-12)
}

func TestPrune_RemovesOldEntries(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	require.NoError(t, s.Record(ctx, "old", []bench.Result{ok("a", 1)}))
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, s.Record(ctx, "new", []bench.Result{ok("a", 1)}))

	n, err := s.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].RunID)
}

func TestDisabled_IsInert(t *testing.T) {
	t.Parallel()

	s := Disabled()
	ctx := context.Background()
	assert.False(t, s.Enabled())
	require.NoError(t, s.Record(ctx, "r", []bench.Result{ok("a", 1)}))
	entries, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
	regs, err := s.Regressions(ctx, "r", []bench.Result{ok("a", 1)}, 0)
	require.NoError(t, err)
	assert.Empty(t, regs)
	require.NoError(t, s.Close())
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), "r1", []bench.Result{ok("a", 1)}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTrim_DropsOldestRuns_When_OverSizeLimit(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	run := func(id string) []bench.Result {
		results := make([]bench.Result, 400)
		for i := range results {
			results[i] = ok(fmt.Sprintf("%s implementation with a fairly long benchmark name %04d", id, i), 0.01)
		}
		return results
	}
	for _, id := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, s.Record(ctx, id, run(id)))
	}

	full, err := s.Size(ctx)
	require.NoError(t, err)
	require.Positive(t, full)

	removed, err := s.Trim(ctx, full-1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(400))

	size, err := s.Size(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, size, full-1)

	entries, err := s.Recent(ctx, 2000)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "newest", entries[0].RunID)
	for _, e := range entries {
		assert.NotEqual(t, "oldest", e.RunID)
	}
}

func TestTrim_KeepsEverything_When_UnderLimitOrDisabled(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "r1", []bench.Result{ok("a", 1)}))

	for _, limit := range []int64{0, 50 * 1024 * 1024} {
		n, err := s.Trim(ctx, limit)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	entries, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	n, err := Disabled().Trim(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
