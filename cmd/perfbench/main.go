// perfbench benchmarks the hello implementations and reports the results.
//
// Usage:
//
//	perfbench run                         # compare bin/hello-*, write performance_report.md
//	perfbench run --sizes 10,100,1000     # add a scalability test
//	perfbench script ./bin/hello -- --repeat 5
//	perfbench config                      # resolved configuration with sources
//	perfbench history --limit 20
//
// Output modes (auto-detected):
//
//	terminal  styled output (default when stdout is a TTY)
//	llm       terse plain text (default when piped)
//	json      structured JSON for automation
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hellobench/internal/cli"
	"github.com/dkoosis/hellobench/internal/version"
	"github.com/dkoosis/hellobench/pkg/render"
)

func main() {
	os.Exit(cli.Execute(newRootCmd(os.Stdout, os.Stderr), os.Args[1:], os.Stderr))
}

// outputFlags are shared by every subcommand that renders patterns.
type outputFlags struct {
	format string
	theme  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	out := &outputFlags{}
	root := &cobra.Command{
		Use:   "perfbench",
		Short: "Benchmark the hello implementations",
	}
	root.SetOut(stdout)

	pf := root.PersistentFlags()
	pf.StringVar(&out.format, "format", "auto", "Output format: auto, terminal, llm, json")
	pf.StringVar(&out.theme, "theme", render.ThemeNames[0], "Theme: "+strings.Join(render.ThemeNames, ", "))
	cli.AddCommonFlags(pf)

	root.AddCommand(
		newRunCmd(out, stdout, stderr),
		newScriptCmd(out, stdout, stderr),
		newConfigCmd(stdout),
		newHistoryCmd(out, stdout, stderr),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				fmt.Fprintln(stdout, version.String("perfbench"))
			},
		},
	)
	return root
}

func newConfigCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = stdout.Write(out)
			return err
		},
	}
}
