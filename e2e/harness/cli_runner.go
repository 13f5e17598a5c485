package harness

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/artpar/hostdeck/internal/cli"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands against the harness data directory.
type CLIRunner struct {
	harness *E2EHarness
}

// Run executes a CLI command with the given arguments.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	return r.RunWithInput("", args...)
}

// RunWithInput executes a CLI command reading stdin from input.
func (r *CLIRunner) RunWithInput(input string, args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{
		"--data-dir", r.harness.dataDir,
		"--config", r.harness.ConfigPath(),
		"--storage", r.harness.storage,
	}, args...))

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// MustRun executes a CLI command and fails the test on error.
func (r *CLIRunner) MustRun(args ...string) string {
	r.harness.t.Helper()
	result, err := r.Run(args...)
	if err != nil {
		r.harness.t.Fatalf("hostdeck %s: %v\n%s", strings.Join(args, " "), err, result.Stderr)
	}
	return result.Stdout
}

// List returns the plain tree listing.
func (r *CLIRunner) List(args ...string) string {
	r.harness.t.Helper()
	return r.MustRun(append([]string{"ls"}, args...)...)
}
