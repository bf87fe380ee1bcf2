package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultLogPath is used when LOG_PATH is unset or empty
	DefaultLogPath = "/app/logs"

	// LogFileName is the name of the file created inside the log directory
	LogFileName = "log.txt"

	// LogPathEnv names the only environment override for the log directory
	LogPathEnv = "LOG_PATH"
)

// Config holds everything the writer needs. It is built once at startup
// and passed down explicitly.
type Config struct {
	// LogPath is the directory that receives log.txt
	LogPath string

	// Entries is the number of lines appended per run
	Entries int

	// Interval is the pause after each appended entry
	Interval time.Duration

	// MetricsAddr enables a /metrics endpoint for the duration of the run
	MetricsAddr string

	// DiagLog is the diagnostic log file. Empty means next to the executable.
	DiagLog string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogPath:  DefaultLogPath,
		Entries:  5,
		Interval: 1 * time.Second,
	}
}

// LoadFromEnv returns the defaults with LOG_PATH applied
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if p, ok := os.LookupEnv(LogPathEnv); ok && p != "" {
		cfg.LogPath = p
	}

	return cfg
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.LogPath == "" {
		return fmt.Errorf("log path must not be empty")
	}
	if c.Entries <= 0 {
		return fmt.Errorf("entries must be positive, got: %d", c.Entries)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be >= 0, got: %s", c.Interval)
	}
	return nil
}

// LogFile returns the full path of log.txt
func (c *Config) LogFile() string {
	return filepath.Join(c.LogPath, LogFileName)
}
