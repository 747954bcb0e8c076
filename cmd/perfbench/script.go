package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hellobench/internal/cli"
	"github.com/dkoosis/hellobench/pkg/bench"
	"github.com/dkoosis/hellobench/pkg/mapper"
)

func newScriptCmd(out *outputFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "script <path> [-- args...]",
		Short: "Benchmark a single external program",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.Bootstrap(cmd.Flags(), stderr)
			if err != nil {
				return err
			}
			defer env.Close()

			renderer, err := newRenderer(out, env.Config.NoColor, stdout)
			if err != nil {
				return err
			}
			runner := newScriptRunner(env)
			res := runner.RunScriptBenchmark(cmd.Context(), args[0], args[1:]...)
			fmt.Fprint(stdout, renderer.Render(mapper.FromScript(res)))

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if res.Outcome != bench.OutcomeSuccess {
				return fmt.Errorf("%s: %s", res.Name, res.Outcome)
			}
			return nil
		},
	}
}

// newScriptRunner builds the runner for a single program run from the
// bootstrapped environment, sharing its sampler.
func newScriptRunner(env *cli.Env) *bench.Runner {
	return bench.NewRunner(
		bench.WithLogger(env.Logger),
		bench.WithSampler(env.Sampler),
		bench.WithScriptTimeout(env.Config.ScriptTimeout()),
	)
}
