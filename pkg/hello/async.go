package hello

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// SimulatedIODelay is the per-message delay used by Batch.
	SimulatedIODelay = time.Millisecond

	// WebRequests is the request count of SimulateWebLoad.
	WebRequests = 1000
)

// Sizes and limits of the async benchmark matrix.
var (
	AsyncBenchmarkSizes  = []int{1, 10, 50, 100, 500}
	AsyncBenchmarkLimits = []int{5, 10, 20}
)

// Say returns message after delay, or the context error if ctx ends first.
func Say(ctx context.Context, message string, delay time.Duration) (string, error) {
	if delay <= 0 {
		return message, ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return message, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Messages returns count numbered copies of base: "base #1" ... "base #count".
func Messages(base string, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("%s #%d", base, i+1)
	}
	return out
}

// Batch processes messages concurrently. At most Limit messages are in
// flight at once, and at most BatchSize goroutines are started before the
// previous chunk drains.
type Batch struct {
	Limit     int
	BatchSize int
	Logger    *slog.Logger

	// Do handles one message. Defaults to Say with SimulatedIODelay.
	Do func(ctx context.Context, message string) (string, error)
}

// Process returns the successful results in input order. Per-message
// failures are logged and dropped; only cancellation of ctx is an error.
func (b Batch) Process(ctx context.Context, messages []string) ([]string, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	do := b.Do
	if do == nil {
		do = func(ctx context.Context, msg string) (string, error) {
			return Say(ctx, msg, SimulatedIODelay)
		}
	}
	limit := max(b.Limit, 1)
	chunk := b.BatchSize
	if chunk < 1 {
		chunk = len(messages)
	}

	sem := semaphore.NewWeighted(int64(limit))
	results := make([]string, len(messages))
	errs := make([]error, len(messages))

	start := time.Now()
	logger.Info("starting async batch processing", "messages", len(messages), "limit", limit)

	for lo := 0; lo < len(messages); lo += chunk {
		hi := min(lo+chunk, len(messages))
		var g errgroup.Group
		for i := lo; i < hi; i++ {
			if err := sem.Acquire(ctx, 1); err != nil {
				_ = g.Wait()
				return nil, err
			}
			g.Go(func() error {
				defer sem.Release(1)
				results[i], errs[i] = do(ctx, messages[i])
				return nil
			})
		}
		_ = g.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ok := results[:0]
	for i, err := range errs {
		if err != nil {
			logger.Error("failed to process message", "index", i, "error", err)
			continue
		}
		ok = append(ok, results[i])
	}
	logger.Info("completed async batch processing",
		"messages", len(messages),
		"execution_time", fmt.Sprintf("%.6f seconds", time.Since(start).Seconds()))
	return ok, nil
}

// AsyncRun is one cell of the async benchmark matrix.
type AsyncRun struct {
	Size      int
	Limit     int
	Processed int
	Elapsed   time.Duration
}

// AsyncBenchmark runs Batch over every size and every limit not above the size.
func AsyncBenchmark(ctx context.Context, batchSize int, logger *slog.Logger) ([]AsyncRun, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("running async performance benchmarks")

	var runs []AsyncRun
	for _, size := range AsyncBenchmarkSizes {
		messages := Messages(DefaultMessage, size)
		for _, limit := range AsyncBenchmarkLimits {
			if limit > size {
				continue
			}
			start := time.Now()
			out, err := Batch{Limit: limit, BatchSize: batchSize, Logger: logger}.Process(ctx, messages)
			if err != nil {
				return runs, err
			}
			run := AsyncRun{Size: size, Limit: limit, Processed: len(out), Elapsed: time.Since(start)}
			logger.Info(fmt.Sprintf("processed %d/%d messages successfully", run.Processed, size),
				"limit", limit, "execution_time", fmt.Sprintf("%.6f seconds", run.Elapsed.Seconds()))
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// webDelay is the simulated processing time of request id.
func webDelay(id int) time.Duration {
	return time.Millisecond + time.Duration(id%10)*100*time.Microsecond
}

// SimulateWebLoad issues requests concurrent simulated requests, at most
// limit at a time (limit < 1 means unbounded), and returns how many
// succeeded.
func SimulateWebLoad(ctx context.Context, requests, limit int, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("simulating concurrent web load", "requests", requests)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	start := time.Now()
	handled := make([]bool, requests)
	for i := range requests {
		g.Go(func() error {
			if _, err := Say(gctx, fmt.Sprintf("Response %d", i), webDelay(i)); err != nil {
				return err
			}
			handled[i] = true
			return nil
		})
	}
	err := g.Wait()

	n := 0
	for _, ok := range handled {
		if ok {
			n++
		}
	}
	logger.Info(fmt.Sprintf("handled %d/%d requests successfully", n, requests),
		"execution_time", fmt.Sprintf("%.6f seconds", time.Since(start).Seconds()))
	return n, err
}
