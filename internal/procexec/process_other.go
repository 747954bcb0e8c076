//go:build !unix

package procexec

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op without process group support.
func setProcessGroup(_ *exec.Cmd) {}

// signalProcessGroup signals the process directly on non-Unix platforms.
func signalProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(sig)
}

// killProcessGroup kills the process directly on non-Unix platforms.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// exitCodeFromError uses ProcessState.ExitCode, available cross-platform.
func exitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	if exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode(), true
	}
	return 0, false
}

func terminateSignal() os.Signal { return os.Kill }

// InterruptSignals returns the signals that abort a run on non-Unix platforms.
func InterruptSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
