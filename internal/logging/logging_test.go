package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hellobench/internal/config"
)

func TestNew_WritesTextToStderr_When_PerformanceLoggingOff(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{Level: slog.LevelInfo}, &stderr)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("benchmarking", "name", "Simple Hello Function")

	out := stderr.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=benchmarking")
	assert.Contains(t, out, `name="Simple Hello Function"`)
}

func TestNew_AppendsJSONToLogFile_When_PerformanceLoggingOn(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "performance.log")
	require.NoError(t, os.WriteFile(path, []byte(`{"msg":"earlier"}`+"\n"), 0o600))

	var stderr bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{
		Level:              slog.LevelWarn,
		PerformanceLogging: true,
		LogFile:            path,
	}, &stderr)
	require.NoError(t, err)

	logger.Info("filtered")
	logger.With("component", "runner").Warn("execution time above threshold", "threshold", 1.0)
	require.NoError(t, closer.Close())

	assert.Contains(t, stderr.String(), "execution time above threshold")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"msg":"earlier"}`, lines[0])

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "runner", rec["component"])
	assert.InDelta(t, 1.0, rec["threshold"], 1e-9)
}

func TestNew_Errors_When_LogFileUnwritable(t *testing.T) {
	t.Parallel()

	_, _, err := New(config.LoggingConfig{
		PerformanceLogging: true,
		LogFile:            filepath.Join(t.TempDir(), "missing", "performance.log"),
	}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_AddsSource_When_VerboseDebug(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	logger, _, err := New(config.LoggingConfig{Level: slog.LevelDebug, Verbose: true, Debug: true}, &stderr)
	require.NoError(t, err)

	logger.Debug("probe")
	assert.Contains(t, stderr.String(), "source=")
	assert.Contains(t, stderr.String(), "logging_test.go")
}

func TestMultiHandler_GroupsApplyToAllHandlers(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).WithGroup("bench")

	logger.Info("iteration", "n", 3)

	assert.Contains(t, a.String(), "bench.n=3")
	assert.Empty(t, b.String())
}
