package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/hostdeck/internal/hosttree"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageYAML   = "yaml"
)

// Config holds application configuration.
type Config struct {
	DataDir        string `yaml:"data_dir"`
	Storage        string `yaml:"storage"`
	DatabaseFile   string `yaml:"database_file"`
	CopySuffix     string `yaml:"copy_suffix"`
	NewFolderName  string `yaml:"new_folder_name"`
	ConfirmRemoval bool   `yaml:"confirm_removal"`
	LogLevel       string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:        "~/.hostdeck",
		Storage:        StorageSQLite,
		DatabaseFile:   "hosts.db",
		CopySuffix:     hosttree.DefaultCopySuffix,
		NewFolderName:  hosttree.DefaultFolderName,
		ConfirmRemoval: true,
		LogLevel:       "info",
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageYAML:
	default:
		return fmt.Errorf("unknown storage %q, want %q or %q", c.Storage, StorageSQLite, StorageYAML)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ResolvedDataDir returns DataDir with a leading ~ expanded.
func (c Config) ResolvedDataDir() string {
	return ExpandHome(c.DataDir)
}

// DatabasePath returns the sqlite file path inside the data directory.
func (c Config) DatabasePath() string {
	if filepath.IsAbs(c.DatabaseFile) {
		return c.DatabaseFile
	}
	return filepath.Join(c.ResolvedDataDir(), c.DatabaseFile)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
