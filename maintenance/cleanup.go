// Package maintenance provides housekeeping for the session log
// directory. Housekeeping is a best-effort collaborator: every failure is
// reported through a callback and swallowed, and never affects report
// generation.
package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default cleanup configuration values.
const (
	DefaultMaxAge    = 48 * time.Hour
	DefaultLogSuffix = ".log"
)

// CleanupConfig holds configuration for log retention cleanup.
type CleanupConfig struct {
	// MaxAge is the age beyond which a log file is deleted.
	// Default: 48 hours
	MaxAge time.Duration

	// Suffix restricts deletion to files with this name suffix.
	// Default: ".log"
	Suffix string

	// OnCleanup is called after a run that deleted at least one file.
	// The count is the number of files deleted.
	OnCleanup func(count int)

	// OnError is called for each file that could not be inspected or
	// deleted. Errors are otherwise swallowed.
	OnError func(err error)
}

// DefaultCleanupConfig returns the default cleanup configuration.
func DefaultCleanupConfig() *CleanupConfig {
	return &CleanupConfig{
		MaxAge: DefaultMaxAge,
		Suffix: DefaultLogSuffix,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *CleanupConfig) ApplyDefaults() {
	if c.MaxAge == 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.Suffix == "" {
		c.Suffix = DefaultLogSuffix
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *CleanupConfig) Validate() error {
	if c.MaxAge < 0 {
		return fmt.Errorf("%w: max_age must be non-negative, got %s", ErrInvalidConfig, c.MaxAge)
	}
	return nil
}

// Cleanup deletes aged session logs from a directory.
type Cleanup struct {
	dir    string
	config *CleanupConfig
}

// NewCleanup creates a cleanup service for the given log directory.
// A nil config uses defaults.
func NewCleanup(dir string, config *CleanupConfig) *Cleanup {
	if config == nil {
		config = DefaultCleanupConfig()
	} else {
		config.ApplyDefaults()
	}
	return &Cleanup{dir: dir, config: config}
}

// Run deletes log files older than MaxAge and returns the number deleted.
// A missing directory is not an error; per-file failures are reported via
// OnError and swallowed. Run never fails.
func (c *Cleanup) Run() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.reportError(err)
		}
		return 0
	}

	cutoff := time.Now().Add(-c.config.MaxAge)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), c.config.Suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			c.reportError(err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			c.reportError(err)
			continue
		}
		deleted++
	}

	if deleted > 0 && c.config.OnCleanup != nil {
		c.config.OnCleanup(deleted)
	}
	return deleted
}

func (c *Cleanup) reportError(err error) {
	if c.config.OnError != nil {
		c.config.OnError(err)
	}
}
