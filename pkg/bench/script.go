package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dkoosis/hellobench/internal/procexec"
)

// Candidate is an external implementation to compare.
type Candidate struct {
	Path string
	Args []string
}

// DefaultCandidates lists the hello binaries built into binDir. The first
// entry is the plain implementation and serves as the baseline.
func DefaultCandidates(binDir string) []Candidate {
	return []Candidate{
		{Path: filepath.Join(binDir, exeName("hello-world"))},
		{Path: filepath.Join(binDir, exeName("hello"))},
		{Path: filepath.Join(binDir, exeName("hello-async")), Args: []string{"--count", "10"}},
	}
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// RunScriptBenchmark runs an external program once under the runner's
// timeout and appends the result. The name records the outcome class:
//
//	Script: hello              exited 0
//	Script: hello (EXIT 2)     exited non-zero
//	Script: hello (TIMEOUT)    killed after the timeout
//	Script: hello (ERROR)      could not be run
//
// Memory is never measured for external programs.
func (r *Runner) RunScriptBenchmark(ctx context.Context, path string, args ...string) Result {
	res, _ := r.runScript(ctx, path, args...)
	return res
}

func (r *Runner) runScript(ctx context.Context, path string, args ...string) (Result, int) {
	base := "Script: " + filepath.Base(path)
	r.logger.Info("running script benchmark", "path", path, "args", args)

	run, err := procexec.Run(ctx, r.scriptTimeout, path, args...)
	elapsed := run.Duration.Seconds()

	switch {
	case err == nil:
		return r.record(Result{
			Name:                base,
			ExecutionTime:       elapsed,
			OperationsPerSecond: opsPerSecond(elapsed),
			SuccessRate:         1,
			Iterations:          1,
			Outcome:             OutcomeSuccess,
		})

	case errors.Is(err, procexec.ErrTimeout):
		r.logger.Warn("script timed out", "path", path, "timeout", r.scriptTimeout)
		return r.record(Result{
			Name:          base + " (TIMEOUT)",
			ExecutionTime: r.scriptTimeout.Seconds(),
			ErrorCount:    1,
			Iterations:    1,
			Outcome:       OutcomeTimeout,
		})

	case errors.Is(err, procexec.ErrNonZeroExit):
		r.logger.Warn("script exited with failure", "path", path, "exit_code", run.ExitCode,
			"stderr", string(run.Stderr))
		return r.record(Result{
			Name:                fmt.Sprintf("%s (EXIT %d)", base, run.ExitCode),
			ExecutionTime:       elapsed,
			OperationsPerSecond: opsPerSecond(elapsed),
			ErrorCount:          1,
			Iterations:          1,
			Outcome:             OutcomeFailed,
		})

	default:
		r.logger.Error("error running script", "path", path, "error", err)
		return r.record(Result{
			Name:       base + " (ERROR)",
			ErrorCount: 1,
			Iterations: 1,
			Outcome:    OutcomeError,
		})
	}
}

// CompareImplementations benchmarks each candidate that exists on disk.
// Missing candidates are skipped. The first candidate, when present, becomes
// the baseline under BaselineLabel.
func (r *Runner) CompareImplementations(ctx context.Context, candidates []Candidate) []Result {
	r.logger.Info("comparing implementation performances", "candidates", len(candidates))

	var results []Result
	for i, c := range candidates {
		if _, err := os.Stat(c.Path); err != nil {
			r.logger.Info("implementation not found, skipping", "path", c.Path)
			continue
		}
		res, idx := r.runScript(ctx, c.Path, c.Args...)
		if i == 0 {
			if err := r.results.SetBaseline(BaselineLabel, idx); err != nil {
				r.logger.Error("recording baseline", "error", err)
			}
		}
		results = append(results, res)
	}
	return results
}
