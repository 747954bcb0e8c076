package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hellobench/internal/cli"
)

// perfbench runs the root command with sub as the subcommand. File logging
// is off and the production preset keeps stderr quiet.
func perfbench(t *testing.T, sub string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{sub, "--log-metrics=false", "--environment=production"}, args...)
	code := cli.ExecuteContext(context.Background(), newRootCmd(&stdout, &stderr), full, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
}

func TestRun_WritesReportMetricsAndHistory(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	t.Chdir(dir)
	binDir := filepath.Join(dir, "bin")
	require.NoError(t, os.Mkdir(binDir, 0o755))
	for _, name := range []string{"hello-world", "hello", "hello-async"} {
		writeScript(t, binDir, name, "echo Hello World")
	}

	code, stdout, stderr := perfbench(t, "run",
		"--bin-dir", binDir,
		"--iterations", "5",
		"--sizes", "2,4",
		"--metrics-file", "metrics.prom",
		"--format", "llm")

	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, "SCOPE: PERFORMANCE TEST SUMMARY, tests=7, succeeded=7, failures=0, timeouts=0, regressions=0")
	assert.Contains(t, stdout, "## vs Original")
	assert.Contains(t, stdout, "Scalability: ")

	md, err := os.ReadFile("performance_report.md")
	require.NoError(t, err)
	assert.Contains(t, string(md), "Total tests run: 7")
	assert.Contains(t, string(md), "vs Original")
	assert.Contains(t, string(md), "### Simple Hello World")

	prom, err := os.ReadFile("metrics.prom")
	require.NoError(t, err)
	assert.Contains(t, string(prom), "hellobench_result_execution_seconds")

	_, err = os.Stat(filepath.Join("cache", "history.db"))
	require.NoError(t, err)

	code, stdout, stderr = perfbench(t, "history", "--format", "llm")
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, "SCOPE: BENCHMARK HISTORY, entries=7, runs=1")
}

func TestRun_SkipsHistory_When_Disabled(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	t.Chdir(dir)

	code, stdout, stderr := perfbench(t, "run", "--bin-dir", filepath.Join(dir, "missing"), "--iterations", "2", "--no-history", "--format", "json")

	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, `"tool": "hellobench"`)
	assert.NoDirExists(t, filepath.Join(dir, "cache"))
}

func TestRun_Fails_When_FormatUnknown(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := perfbench(t, "run", "--format", "xml")

	assert.Equal(t, cli.ExitError, code)
	assert.Contains(t, stderr, `unknown format "xml"`)
	assert.NoFileExists(t, "performance_report.md")
}

func TestScript_ReportsSuccess(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, dir, "greet", `echo "$@"`)

	code, stdout, stderr := perfbench(t, "script", "--format", "llm", path, "--", "a", "b")

	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, "SCOPE: SCRIPT BENCHMARK, outcome=success")
	assert.Contains(t, stdout, "  OK Script: greet time=")
}

func TestScript_Fails_When_ExitNonZero(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, dir, "failing", "exit 3")

	code, stdout, stderr := perfbench(t, "script", "--format", "llm", path)

	assert.Equal(t, cli.ExitError, code)
	assert.Contains(t, stdout, "  FAIL Script: failing (EXIT 3)")
	assert.Contains(t, stderr, "perfbench: Script: failing (EXIT 3): failed")
}

func TestNewScriptRunner_UsesEnvSampler_When_MemoryTrackingOff(t *testing.T) {
	t.Chdir(t.TempDir())
	fs := pflag.NewFlagSet("script", pflag.ContinueOnError)
	cli.AddCommonFlags(fs)
	require.NoError(t, fs.Parse([]string{"--memory=false", "--log-metrics=false", "--environment=production"}))
	env, err := cli.Bootstrap(fs, &bytes.Buffer{})
	require.NoError(t, err)
	defer env.Close()

	var sink []byte
	res, err := newScriptRunner(env).BenchmarkFunction("alloc", 1, func() error {
		sink = make([]byte, 1<<20)
		return nil
	})
	require.NoError(t, err)
	assert.NotNil(t, sink)
	assert.False(t, res.Memory.Measured)
}

func TestRun_OmitsStageProfile_When_DefaultEnvironment(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PERF_ENABLE_PROFILING", "")
	binDir := filepath.Join(dir, "bin")
	require.NoError(t, os.Mkdir(binDir, 0o755))
	writeScript(t, binDir, "hello-world", "echo Hello World")

	var stdout, stderr bytes.Buffer
	code := cli.ExecuteContext(context.Background(), newRootCmd(&stdout, &stderr),
		[]string{"run", "--log-metrics=false", "--no-history", "--bin-dir", binDir, "--iterations", "2", "--format", "llm"}, &stderr)

	require.Equal(t, cli.ExitOK, code, stderr.String())
	assert.NotContains(t, stderr.String(), "# hellobench Performance Profile")
}

func TestRun_Fails_When_ThemeUnknown(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := perfbench(t, "run", "--theme", "neon", "--no-history")

	assert.Equal(t, cli.ExitError, code)
	assert.Contains(t, stderr, `unknown theme "neon" (expected default, orca, mono)`)
}

func TestConfig_PrintsSources(t *testing.T) {
	t.Chdir(t.TempDir())

	code, stdout, stderr := perfbench(t, "config")

	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, "environment: production # source: cli")
	assert.Contains(t, stdout, "debug_mode: false # source: preset")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := perfbench(t, "version")

	assert.Equal(t, cli.ExitOK, code)
	assert.Equal(t, "perfbench dev (commit unknown, built unknown)\n", stdout)
}
