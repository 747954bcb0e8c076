// Package cli holds the process plumbing shared by the hellobench binaries:
// signal handling, exit codes and the config/logging bootstrap.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dkoosis/hellobench/internal/config"
	"github.com/dkoosis/hellobench/internal/logging"
	"github.com/dkoosis/hellobench/internal/procexec"
	"github.com/dkoosis/hellobench/pkg/bench"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

// ConfigFlag names the flag holding an explicit configuration file path.
const ConfigFlag = "config"

// Execute runs cmd with args under a context cancelled by SIGINT or
// SIGTERM and returns the process exit code.
func Execute(cmd *cobra.Command, args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), procexec.InterruptSignals()...)
	defer stop()
	return ExecuteContext(ctx, cmd, args, stderr)
}

// ExecuteContext runs cmd under ctx. Errors are printed to stderr once,
// prefixed with the command name.
func ExecuteContext(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetErr(stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ctx)
	return ExitCode(ctx, err, cmd.Name(), stderr)
}

// ExitCode maps the outcome of a command to an exit code. Cancellation of
// ctx wins over any error, since interrupted work usually fails as a result.
func ExitCode(ctx context.Context, err error, name string, stderr io.Writer) int {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		fmt.Fprintf(stderr, "%s: interrupted\n", name)
		return ExitInterrupted
	case err != nil:
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return ExitError
	default:
		return ExitOK
	}
}

// AddCommonFlags registers the configuration flags every binary accepts.
func AddCommonFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFlag, "", "Path to a .hellobench.yaml configuration file")
	fs.String("environment", config.EnvDevelopment, "Environment preset: development, staging, production")
	fs.Bool("debug", false, "Enable debug logging")
	fs.Bool("verbose", false, "Include source locations in log records")
	fs.Bool("no-color", false, "Disable colored output")
	fs.Bool("memory", true, "Track memory usage")
	fs.Bool("log-metrics", true, "Append JSON log records to the performance log")
	fs.String("log-file", "performance.log", "Performance log path")
	fs.Float64("timeout", 30, "Timeout in seconds for each external program")
}

// LoadConfig resolves the configuration, honouring the --config flag when
// flags defines it.
func LoadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	loader := config.Loader{Flags: flags}
	if f := flags.Lookup(ConfigFlag); f != nil {
		loader.ConfigFile = f.Value.String()
	}
	return loader.Load()
}

// Env is the per-process state built from the resolved configuration.
type Env struct {
	Config  *config.Config
	Logger  *slog.Logger
	Sampler bench.MemorySampler
	closer  io.Closer
}

// Bootstrap resolves the configuration from flags and the environment, then
// builds the logger and memory sampler it describes.
func Bootstrap(flags *pflag.FlagSet, stderr io.Writer) (*Env, error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Logging(), stderr)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded",
		"environment", cfg.Environment,
		"overrides", cfg.Overrides())

	sampler := bench.NewMemorySampler
	if cfg.LazyLoading {
		sampler = bench.NewLazySampler
	}
	return &Env{
		Config:  cfg,
		Logger:  logger,
		Sampler: sampler(cfg.EnableMemoryTracking, logger),
		closer:  closer,
	}, nil
}

// Close releases the performance log.
func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
