// Package procexec runs external programs under a hard timeout.
//
// Each child runs in its own process group so that a timeout terminates the
// whole tree, not just the direct child.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	// DefaultTimeout bounds a run when the caller passes no timeout.
	DefaultTimeout = 30 * time.Second

	// SignalTimeout is the grace period between the terminate signal and SIGKILL.
	SignalTimeout = 2 * time.Second
)

var (
	// ErrTimeout is returned when the program outlives its timeout.
	ErrTimeout = errors.New("timed out")

	// ErrNonZeroExit is returned when a program completes with a non-zero code.
	// Use errors.As with ExitCodeError to get the code.
	ErrNonZeroExit = errors.New("command exited with non-zero code")
)

// ExitCodeError carries the exit code of a failed program.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// Result describes a finished (or killed) program.
type Result struct {
	ExitCode int
	Duration time.Duration
	TimedOut bool
	Stdout   []byte
	Stderr   []byte
}

// Run executes name with args and waits for it, at most timeout.
//
// Error semantics:
//   - nil when the program exits 0
//   - ErrNonZeroExit wrapped with ExitCodeError for a non-zero exit
//   - ErrTimeout when the program was killed after timeout
//   - ctx.Err() when ctx was cancelled first
//   - any other error means the program could not be started
//
// The returned Result is always non-nil.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...) //nolint:gosec // running the caller's program is the point
	cmd.Env = os.Environ()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = SignalTimeout
	setProcessGroup(cmd)

	res := &Result{ExitCode: -1}
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-timer.C:
		terminate(cmd, done)
		res.Duration = time.Since(start)
		res.TimedOut = true
		res.Stdout, res.Stderr = stdout.Bytes(), stderr.Bytes()
		return res, fmt.Errorf("%s after %s: %w", name, timeout, ErrTimeout)
	case <-ctx.Done():
		terminate(cmd, done)
		res.Duration = time.Since(start)
		return res, ctx.Err()
	}

	res.Duration = time.Since(start)
	res.Stdout, res.Stderr = stdout.Bytes(), stderr.Bytes()

	if waitErr == nil {
		res.ExitCode = 0
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code, ok := exitCodeFromError(exitErr)
		if !ok {
			code = 1
		}
		res.ExitCode = code
		return res, fmt.Errorf("%w: %w", ErrNonZeroExit, ExitCodeError{Code: code})
	}
	return res, fmt.Errorf("waiting for %s: %w", name, waitErr)
}

// terminate asks the process group to stop, then kills it if it has not
// exited within SignalTimeout. It returns once Wait has completed.
func terminate(cmd *exec.Cmd, done <-chan error) {
	_ = signalProcessGroup(cmd, terminateSignal())
	select {
	case <-done:
		return
	case <-time.After(SignalTimeout):
	}
	_ = killProcessGroup(cmd)
	<-done
}
