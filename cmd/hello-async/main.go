// hello-async prints messages through a bounded concurrent pipeline.
//
// Usage:
//
//	hello-async --count 10                 # ten numbered messages
//	hello-async --benchmark                # size × limit matrix
//	hello-async --web-simulation           # 1000 concurrent simulated requests
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hellobench/internal/cli"
	"github.com/dkoosis/hellobench/pkg/hello"
)

func main() {
	os.Exit(cli.Execute(newRootCmd(os.Stdout, os.Stderr), os.Args[1:], os.Stderr))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		message   string
		count     int
		benchmark bool
		webSim    bool
	)

	cmd := &cobra.Command{
		Use:   "hello-async",
		Short: "Print Hello World concurrently with bounded parallelism",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1 (got %d)", count)
			}
			env, err := cli.Bootstrap(cmd.Flags(), stderr)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			cfg := env.Config

			switch {
			case webSim:
				n, err := hello.SimulateWebLoad(ctx, hello.WebRequests, cfg.MaxConcurrentOperations, env.Logger)
				fmt.Fprintf(stdout, "Handled %d/%d requests\n", n, hello.WebRequests)
				return err
			case benchmark:
				runs, err := hello.AsyncBenchmark(ctx, cfg.BatchSize, env.Logger)
				for _, r := range runs {
					fmt.Fprintf(stdout, "size=%d limit=%d processed=%d time=%.6fs\n",
						r.Size, r.Limit, r.Processed, r.Elapsed.Seconds())
				}
				return err
			default:
				out, err := hello.Batch{
					Limit:     cfg.MaxConcurrentOperations,
					BatchSize: cfg.BatchSize,
					Logger:    env.Logger,
				}.Process(ctx, hello.Messages(message, count))
				if err != nil {
					return err
				}
				for _, line := range out {
					fmt.Fprintln(stdout, line)
				}
				return nil
			}
		},
	}

	f := cmd.Flags()
	f.StringVar(&message, "message", hello.DefaultMessage, "Base message")
	f.IntVar(&count, "count", 10, "Number of messages to process")
	f.BoolVar(&benchmark, "benchmark", false, "Run the async benchmark matrix")
	f.BoolVar(&webSim, "web-simulation", false, "Simulate concurrent web requests")
	f.Int("concurrent-limit", 50, "Maximum messages in flight")
	f.Int("batch-size", 100, "Messages dispatched per batch")
	cli.AddCommonFlags(f)
	return cmd
}
