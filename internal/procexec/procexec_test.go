//go:build unix

package procexec

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsNil_When_ProgramSucceeds(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), time.Second, "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", string(res.Stdout))
	assert.False(t, res.TimedOut)
	assert.GreaterOrEqual(t, res.Duration, time.Duration(0))
}

func TestRun_ReturnsExitCodeError_When_ProgramFails(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), time.Second, "sh", "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonZeroExit))

	var codeErr ExitCodeError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, 3, codeErr.Code)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops\n", string(res.Stderr))
}

func TestRun_KillsProcessGroup_When_TimeoutExpires(t *testing.T) {
	t.Parallel()

	start := time.Now()
	res, err := Run(context.Background(), 100*time.Millisecond, "sh", "-c", "sleep 10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, res.TimedOut)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_ReturnsStartError_When_ProgramMissing(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), time.Second, "./definitely-not-here")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNonZeroExit))
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, -1, res.ExitCode)
}

func TestRun_ReturnsNotFound_When_CommandNotOnPath(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), time.Second, "no-such-command-hellobench")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestRun_ReturnsContextError_When_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, 10*time.Second, "sh", "-c", "sleep 10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
