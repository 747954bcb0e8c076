package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hellobench/internal/cli"
	"github.com/dkoosis/hellobench/internal/config"
	"github.com/dkoosis/hellobench/internal/history"
	"github.com/dkoosis/hellobench/internal/metrics"
	"github.com/dkoosis/hellobench/internal/profile"
	"github.com/dkoosis/hellobench/pkg/bench"
	"github.com/dkoosis/hellobench/pkg/hello"
	"github.com/dkoosis/hellobench/pkg/mapper"
	"github.com/dkoosis/hellobench/pkg/report"
)

// DefaultIterations is the iteration count of the in-process benchmarks.
const DefaultIterations = 1000

// errRegressed is returned by run --fail-on-regression.
var errRegressed = errors.New("performance regressed")

type runOptions struct {
	binDir           string
	iterations       int
	sizes            []int
	output           string
	metricsFile      string
	showReport       bool
	noHistory        bool
	failOnRegression bool
}

func newRunCmd(out *outputFlags, stdout, stderr io.Writer) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare the hello implementations and write a performance report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cli.Bootstrap(cmd.Flags(), stderr)
			if err != nil {
				return err
			}
			defer env.Close()
			return runSuite(cmd.Context(), env, opts, out, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.binDir, "bin-dir", "bin", "Directory holding the hello binaries")
	f.IntVar(&opts.iterations, "iterations", DefaultIterations, "Iterations per in-process benchmark")
	f.IntSliceVar(&opts.sizes, "sizes", nil, "Input sizes for the scalability test, e.g. 10,100,1000")
	f.StringVar(&opts.output, "output", report.DefaultFilename, "Markdown report path")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	f.BoolVar(&opts.showReport, "show-report", false, "Render the Markdown report to stdout")
	f.BoolVar(&opts.noHistory, "no-history", false, "Do not record results or check regressions")
	f.BoolVar(&opts.failOnRegression, "fail-on-regression", false, "Exit 1 when a result regressed")
	f.Bool("profile", false, "Write a stage profile to stderr")
	f.Bool("cache", true, "Keep result history in the cache directory")
	f.Float64("time-threshold", 1, "Warn when a benchmark averages more seconds than this")
	f.Float64("memory-threshold", 100, "Warn when a benchmark uses more MB than this")
	f.Float64("regression-threshold", 0.10, "Slowdown fraction reported as a regression")
	return cmd
}

// runSuite benchmarks the external binaries and the in-process functions,
// then reports, records and renders the results.
func runSuite(ctx context.Context, env *cli.Env, opts runOptions, out *outputFlags, stdout, stderr io.Writer) error {
	cfg := env.Config
	renderer, err := newRenderer(out, cfg.NoColor, stdout)
	if err != nil {
		return err
	}

	store, err := openHistory(cfg, opts.noHistory)
	if err != nil {
		return err
	}
	defer store.Close()

	recorder := metrics.NewRecorder()
	prof := profile.New(cfg.StageProfile(), stderr)
	runner := bench.NewRunner(
		bench.WithLogger(env.Logger),
		bench.WithSampler(env.Sampler),
		bench.WithObserver(recorder),
		bench.WithScriptTimeout(cfg.ScriptTimeout()),
		bench.WithWarningThresholds(cfg.TimeWarningThresholdS, cfg.MemoryWarningThresholdMB),
	)

	env.Logger.Info("starting performance tests")
	err = prof.Stage("implementations", func() error {
		runner.CompareImplementations(ctx, bench.DefaultCandidates(opts.binDir))
		return ctx.Err()
	})
	if err != nil {
		return err
	}

	err = prof.Stage("functions", func() error {
		if _, err := runner.BenchmarkFunction("Simple Hello World", opts.iterations, func() error {
			return hello.Simple(io.Discard)
		}); err != nil {
			return err
		}
		_, err := runner.BenchmarkFunction("Complex Hello World", opts.iterations, func() error {
			return hello.Complex(io.Discard)
		})
		return err
	})
	if err != nil {
		return err
	}

	var scalability []bench.Result
	if len(opts.sizes) > 0 {
		err = prof.Stage("scalability", func() error {
			scalability, err = runner.RunScalabilityTest("String concatenation", opts.sizes, hello.ConcatAll(io.Discard))
			return err
		})
		if err != nil {
			return err
		}
	}

	results := runner.Results()
	var regressions []metrics.Regression
	err = prof.Stage("history", func() error {
		regressions, err = recordHistory(ctx, store, cfg, results.Results())
		return err
	})
	if err != nil {
		return err
	}

	gen := report.New(results, report.WithLogger(env.Logger))
	if err := gen.Save(opts.output); err != nil {
		return err
	}
	if opts.metricsFile != "" {
		if err := recorder.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
	}

	fmt.Fprint(stdout, renderer.Render(mapper.FromRun(results, scalability, regressions)))
	if opts.showReport {
		md, err := renderMarkdown(gen.Generate(), termWidth(stdout), cfg.NoColor)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, md)
	}
	env.Logger.Info("performance tests completed", "results", results.Len(), "report", opts.output)

	if err := prof.Write(); err != nil {
		return err
	}
	if opts.failOnRegression && len(regressions) > 0 {
		return fmt.Errorf("%w: %d result(s) slower than the previous run", errRegressed, len(regressions))
	}
	return nil
}

// openHistory opens the history database in the cache directory, or a
// disabled store when caching or history is off.
func openHistory(cfg *config.Config, noHistory bool) (*history.Store, error) {
	cache := cfg.Cache()
	if noHistory || !cache.Enabled {
		return history.Disabled(), nil
	}
	if err := cache.EnsureDir(); err != nil {
		return nil, err
	}
	return history.Open(cache.Path(history.DefaultFilename))
}

// recordHistory checks results against the previous run, records them and
// prunes entries older than the cache TTL or beyond the cache size limit.
func recordHistory(ctx context.Context, store *history.Store, cfg *config.Config, results []bench.Result) ([]metrics.Regression, error) {
	if !store.Enabled() {
		return nil, nil
	}
	runID := history.NewRunID()
	regressions, err := store.Regressions(ctx, runID, results, cfg.RegressionThreshold)
	if err != nil {
		return nil, err
	}
	if err := store.Record(ctx, runID, results); err != nil {
		return nil, err
	}
	if cache := cfg.Cache(); cache.AutoCleanup {
		if _, err := store.Prune(ctx, cache.TTL); err != nil {
			return nil, err
		}
		if _, err := store.Trim(ctx, cache.MaxBytes()); err != nil {
			return nil, err
		}
	}
	return regressions, nil
}
