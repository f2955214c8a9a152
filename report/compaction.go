package report

import (
	"fmt"
	"strings"
)

// Default compaction values. The step threshold keeps roughly a work-week
// of detailed history; older steps survive only as archive entries.
const (
	DefaultMaxDetailedSteps = 30
	DefaultArchiveResultCap = 160
	DefaultSizeCeiling      = 250 * 1024

	// minDetailedSteps is the floor for tightened compaction when the
	// rendered document exceeds the size ceiling.
	minDetailedSteps = 5
)

// CompactionConfig holds compaction configuration.
type CompactionConfig struct {
	// MaxDetailedSteps is the maximum number of full-detail steps retained
	// across all sessions before the oldest are collapsed into the archive.
	// Default: 30
	MaxDetailedSteps int

	// ArchiveResultCap is the character cap applied to an archive entry's
	// one-line result.
	// Default: 160
	ArchiveResultCap int

	// SizeCeiling is the byte budget for the rendered document.
	// Default: 250 KiB
	SizeCeiling int
}

// DefaultCompactionConfig returns a CompactionConfig with defaults.
func DefaultCompactionConfig() *CompactionConfig {
	return &CompactionConfig{
		MaxDetailedSteps: DefaultMaxDetailedSteps,
		ArchiveResultCap: DefaultArchiveResultCap,
		SizeCeiling:      DefaultSizeCeiling,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *CompactionConfig) ApplyDefaults() {
	if c.MaxDetailedSteps == 0 {
		c.MaxDetailedSteps = DefaultMaxDetailedSteps
	}
	if c.ArchiveResultCap == 0 {
		c.ArchiveResultCap = DefaultArchiveResultCap
	}
	if c.SizeCeiling == 0 {
		c.SizeCeiling = DefaultSizeCeiling
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *CompactionConfig) Validate() error {
	if c.MaxDetailedSteps <= 0 {
		return fmt.Errorf("%w: max_detailed_steps must be positive, got %d", ErrInvalidConfig, c.MaxDetailedSteps)
	}
	if c.ArchiveResultCap <= 0 {
		return fmt.Errorf("%w: archive_result_cap must be positive, got %d", ErrInvalidConfig, c.ArchiveResultCap)
	}
	if c.SizeCeiling <= 0 {
		return fmt.Errorf("%w: size_ceiling must be positive, got %d", ErrInvalidConfig, c.SizeCeiling)
	}
	return nil
}

// Compact collapses the oldest full-detail steps into archive entries until
// at most config.MaxDetailedSteps remain. Recency order is preserved both
// in the archive and within the surviving sessions; sessions emptied of
// steps are removed. Applying Compact twice is a no-op: archived entries
// are never re-expanded and the archive only grows or stays the same size.
func Compact(r *Report, config *CompactionConfig) {
	if config == nil {
		config = DefaultCompactionConfig()
	} else {
		config.ApplyDefaults()
	}

	excess := r.DetailedSteps() - config.MaxDetailedSteps
	for excess > 0 && len(r.Sessions) > 0 {
		oldest := &r.Sessions[0]
		take := excess
		if take > len(oldest.Steps) {
			take = len(oldest.Steps)
		}
		for _, step := range oldest.Steps[:take] {
			r.Archive = append(r.Archive, ArchiveEntry{
				Title:  step.Title,
				Status: step.Status,
				Result: oneLine(step.Result, config.ArchiveResultCap),
			})
		}
		oldest.Steps = oldest.Steps[take:]
		if len(oldest.Steps) == 0 {
			r.Sessions = r.Sessions[1:]
		}
		excess -= take
	}
}

// oneLine reduces text to its first line, capped at max characters.
func oneLine(text string, max int) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
