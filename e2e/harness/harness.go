// Package harness provides E2E testing utilities for hostdeck.
package harness

import (
	"path/filepath"
	"testing"
	"time"
)

// E2EHarness is the main test orchestrator. Every runner it hands out shares
// one data directory, so CLI and TUI sessions see each other's edits.
type E2EHarness struct {
	t       *testing.T
	dataDir string
	storage string
	timeout time.Duration
}

// Config configures the harness.
type Config struct {
	Storage string        // Default: sqlite
	Timeout time.Duration // Default: 5 seconds
}

// New creates a new E2E harness.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Storage == "" {
		cfg.Storage = "sqlite"
	}

	return &E2EHarness{
		t:       t,
		dataDir: t.TempDir(),
		storage: cfg.Storage,
		timeout: cfg.Timeout,
	}
}

// DataDir returns the data directory the runners use.
func (h *E2EHarness) DataDir() string {
	return h.dataDir
}

// ConfigPath returns a config path that does not exist, so defaults apply.
func (h *E2EHarness) ConfigPath() string {
	return filepath.Join(h.dataDir, "config.yaml")
}

// Timeout returns the configured timeout.
func (h *E2EHarness) Timeout() time.Duration {
	return h.timeout
}

// T returns the testing.T instance.
func (h *E2EHarness) T() *testing.T {
	return h.t
}

// CLI returns a CLI runner for this harness.
func (h *E2EHarness) CLI() *CLIRunner {
	return &CLIRunner{harness: h}
}

// TUI returns a TUI runner for this harness.
func (h *E2EHarness) TUI() *TUIRunner {
	return &TUIRunner{harness: h}
}
