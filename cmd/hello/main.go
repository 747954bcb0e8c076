// hello prints a message with performance monitoring.
//
// Usage:
//
//	hello                               # one "Hello World"
//	hello --message Hi --repeat 3       # "Hi #1" .. "Hi #3"
//	hello --benchmark --profile         # canned cases plus a stage profile
//	hello --cpu-profile cpu.out         # pprof CPU profile
package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hellobench/internal/cli"
	"github.com/dkoosis/hellobench/internal/profile"
	"github.com/dkoosis/hellobench/pkg/hello"
)

func main() {
	os.Exit(cli.Execute(newRootCmd(os.Stdout, os.Stderr), os.Args[1:], os.Stderr))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		message    string
		repeat     int
		benchmark  bool
		cpuProfile string
	)

	cmd := &cobra.Command{
		Use:   "hello",
		Short: "Print Hello World with performance monitoring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			env, err := cli.Bootstrap(cmd.Flags(), stderr)
			if err != nil {
				return err
			}
			defer env.Close()

			prof := profile.New(env.Config.StageProfile(), stderr)
			if cpuProfile != "" {
				if err := prof.StartCPU(cpuProfile); err != nil {
					return err
				}
				defer func() { err = errors.Join(err, prof.Stop()) }()
			}

			printer := hello.NewPrinter(stdout, env.Logger, env.Sampler)
			if benchmark {
				err = prof.Stage("benchmark", func() error {
					_, err := printer.RunBenchmark()
					return err
				})
			} else {
				err = prof.Stage("print", func() error {
					return printer.Print(message, repeat)
				})
			}
			return errors.Join(err, prof.Write())
		},
	}

	f := cmd.Flags()
	f.StringVar(&message, "message", hello.DefaultMessage, "Message to print")
	f.IntVar(&repeat, "repeat", 1, "Number of times to print the message")
	f.BoolVar(&benchmark, "benchmark", false, "Run the canned print benchmarks")
	f.Bool("profile", false, "Write a stage profile to stderr")
	f.StringVar(&cpuProfile, "cpu-profile", "", "Write a pprof CPU profile to `path`")
	cli.AddCommonFlags(f)
	return cmd
}
