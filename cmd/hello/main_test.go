package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hellobench/internal/cli"
)

// runHello executes the command in an isolated working directory with
// file logging off.
func runHello(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	var stdout, stderr bytes.Buffer
	args = append([]string{"--log-metrics=false", "--environment=production"}, args...)
	code := cli.ExecuteContext(context.Background(), newRootCmd(&stdout, &stderr), args, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHello_PrintsDefaultMessageOnce(t *testing.T) {
	code, stdout, _ := runHello(t)

	assert.Equal(t, cli.ExitOK, code)
	assert.Equal(t, "Hello World\n", stdout)
}

func TestHello_NumbersRepeatedMessages(t *testing.T) {
	code, stdout, _ := runHello(t, "--message", "Hi", "--repeat", "3")

	assert.Equal(t, cli.ExitOK, code)
	assert.Equal(t, "Hi #1\nHi #2\nHi #3\n", stdout)
}

func TestHello_Fails_When_RepeatNotPositive(t *testing.T) {
	code, stdout, stderr := runHello(t, "--repeat", "0")

	assert.Equal(t, cli.ExitError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "repeat count must be at least 1")
}

func TestHello_WritesStageProfile_When_ProfilingEnabled(t *testing.T) {
	code, _, stderr := runHello(t, "--profile")

	assert.Equal(t, cli.ExitOK, code)
	assert.Contains(t, stderr, "# hellobench Performance Profile")
	assert.Contains(t, stderr, "print")
}

func TestHello_OmitsStageProfile_When_DefaultEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PERF_ENABLE_PROFILING", "")
	var stdout, stderr bytes.Buffer

	code := cli.ExecuteContext(context.Background(), newRootCmd(&stdout, &stderr),
		[]string{"--log-metrics=false"}, &stderr)

	assert.Equal(t, cli.ExitOK, code)
	assert.Equal(t, "Hello World\n", stdout.String())
	assert.NotContains(t, stderr.String(), "# hellobench Performance Profile")
}

func TestHello_WritesCPUProfile(t *testing.T) {
	code, _, _ := runHello(t, "--benchmark", "--cpu-profile", "cpu.out")

	require.Equal(t, cli.ExitOK, code)
	wd, err := os.Getwd()
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(wd, "cpu.out"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
