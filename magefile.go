//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	modulePath = "github.com/dkoosis/hellobench"
	binDir     = "bin"
)

// binaries are built from cmd/<name> into bin/<name>.
var binaries = []string{"hello-world", "hello", "hello-async", "perfbench"}

// Default target - build the binaries
var Default = Build

// Build builds every binary into bin/ with version metadata.
func Build() error {
	date := time.Now().UTC().Format(time.RFC3339)
	ldflags := fmt.Sprintf("-s -w -X '%[1]s/internal/version.Version=%[2]s' -X '%[1]s/internal/version.CommitHash=%[3]s' -X '%[1]s/internal/version.BuildDate=%[4]s'",
		modulePath, gitVersion(), gitCommit(), date)

	for _, name := range binaries {
		fmt.Printf("Building %s...\n", name)
		if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath(name), "./cmd/"+name); err != nil {
			return fmt.Errorf("building %s: %w", name, err)
		}
	}
	return nil
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs tests with the race detector.
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Bench builds the binaries, then compares them with perfbench.
func Bench() error {
	mg.Deps(Build)
	return sh.RunV(binPath("perfbench"), "run", "--bin-dir", binDir, "--sizes", "10,100,1000")
}

// Clean removes build artifacts and generated reports.
func Clean() error {
	for _, path := range []string{binDir, "cache", "performance_report.md", "performance.log"} {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return nil
}

func binPath(name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(binDir, name)
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}
