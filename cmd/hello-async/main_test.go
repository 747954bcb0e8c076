package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hellobench/internal/cli"
)

func runAsync(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	var stdout, stderr bytes.Buffer
	args = append([]string{"--log-metrics=false", "--environment=production"}, args...)
	code := cli.ExecuteContext(ctx, newRootCmd(&stdout, &stderr), args, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHelloAsync_PrintsNumberedMessagesInOrder(t *testing.T) {
	code, stdout, _ := runAsync(t, context.Background(), "--count", "5", "--concurrent-limit", "2")

	require.Equal(t, cli.ExitOK, code)
	assert.Equal(t, "Hello World #1\nHello World #2\nHello World #3\nHello World #4\nHello World #5\n", stdout)
}

func TestHelloAsync_Fails_When_CountNotPositive(t *testing.T) {
	code, _, stderr := runAsync(t, context.Background(), "--count", "0")

	assert.Equal(t, cli.ExitError, code)
	assert.Contains(t, stderr, "count must be at least 1")
}

func TestHelloAsync_Fails_When_ConcurrentLimitInvalid(t *testing.T) {
	code, _, stderr := runAsync(t, context.Background(), "--concurrent-limit", "0")

	assert.Equal(t, cli.ExitError, code)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestHelloAsync_SimulatesWebLoad(t *testing.T) {
	code, stdout, _ := runAsync(t, context.Background(), "--web-simulation", "--concurrent-limit", "200")

	require.Equal(t, cli.ExitOK, code)
	assert.Equal(t, "Handled 1000/1000 requests\n", stdout)
}

func TestHelloAsync_ReportsInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, stdout, stderr := runAsync(t, ctx, "--count", "3")

	assert.Equal(t, cli.ExitInterrupted, code)
	assert.Empty(t, stdout)
	assert.True(t, strings.HasSuffix(stderr, "hello-async: interrupted\n"))
}
