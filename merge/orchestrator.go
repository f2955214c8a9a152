package merge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ykai16/context-cartographer/engine"
	"github.com/ykai16/context-cartographer/report"
)

// Sentinel errors for merge operations.
var (
	// ErrInvalidConfig indicates invalid orchestrator configuration.
	ErrInvalidConfig = errors.New("invalid merge configuration")

	// ErrUnparseableResponse indicates the engine response did not
	// contain a decodable report object.
	ErrUnparseableResponse = errors.New("unparseable engine response")
)

// Config holds orchestrator configuration.
type Config struct {
	// Engine is the summarization capability (required).
	Engine engine.Summarizer

	// Compaction governs the step threshold applied after each merge.
	// Nil uses defaults.
	Compaction *report.CompactionConfig

	// MaxTokens bounds the engine response. Zero uses the engine default.
	MaxTokens int

	// Logger receives warnings from fail-soft paths. Nil uses the
	// default logger.
	Logger *log.Logger

	// Now supplies timestamps; overridable in tests. Nil uses time.Now.
	Now func() time.Time
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine == nil {
		return fmt.Errorf("%w: engine is required", ErrInvalidConfig)
	}
	return nil
}

// Orchestrator combines a previous report and a compressed transcript
// into a new report by delegating extraction to the engine.
type Orchestrator struct {
	engine     engine.Summarizer
	compaction *report.CompactionConfig
	maxTokens  int
	logger     *log.Logger
	now        func() time.Time
}

// New creates an Orchestrator.
func New(config Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	compaction := config.Compaction
	if compaction == nil {
		compaction = report.DefaultCompactionConfig()
	} else {
		compaction.ApplyDefaults()
	}
	if err := compaction.Validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		engine:     config.Engine,
		compaction: compaction,
		maxTokens:  config.MaxTokens,
		logger:     logger,
		now:        now,
	}, nil
}

// Merge produces the new cumulative report. It never returns an error:
// engine failures and unparseable responses are converted into a report
// that carries the previous content forward under an error-flavored
// narrative, so the run always yields an artifact and history is never
// destroyed by a broken merge. The boolean reports whether the new
// session was actually merged, so callers can record the run outcome
// truthfully.
func (o *Orchestrator) Merge(ctx context.Context, prev *report.Report, transcript string) (*report.Report, bool) {
	if prev == nil {
		prev = &report.Report{}
	}

	previousJSON := ""
	if !prev.Empty() {
		state, err := report.EncodeState(prev)
		if err != nil {
			return o.failSoft(prev, err), false
		}
		previousJSON = state
	}

	raw, err := o.engine.Summarize(ctx, engine.Request{
		System:    ExtractionSystemPrompt,
		Prompt:    BuildMergePrompt(previousJSON, transcript, o.compaction.MaxDetailedSteps),
		MaxTokens: o.maxTokens,
	})
	if err != nil {
		return o.failSoft(prev, err), false
	}

	merged, err := parseResponse(raw)
	if err != nil {
		return o.failSoft(prev, err), false
	}

	now := o.now()
	merged.Normalize(now)
	merged.GeneratedAt = now
	report.Compact(merged, o.compaction)
	return merged, true
}

// failSoft returns a report that surfaces the failure as its narrative
// while carrying the previous content forward unchanged.
func (o *Orchestrator) failSoft(prev *report.Report, err error) *report.Report {
	o.logger.Printf("⚠️  merge failed, carrying previous report forward: %v", err)

	out := *prev
	out.Narrative = fmt.Sprintf("⚠️ Merge failed: %v. The report below reflects the previous run; the latest session was not merged.", err)
	if strings.TrimSpace(out.Anchor) == "" {
		out.Anchor = "The latest session could not be analyzed. Re-run once the summarization engine is reachable."
	}
	out.GeneratedAt = o.now()
	return &out
}

// Placeholder produces the capability-unavailable report: the previous
// content is preserved and the narrative states the limitation plus raw
// facts about the unanalyzed log, so the run still yields an artifact.
func Placeholder(prev *report.Report, logPath string, logSize int64, now time.Time) *report.Report {
	if prev == nil {
		prev = &report.Report{}
	}
	out := *prev
	out.Narrative = fmt.Sprintf(
		"⚠️ No summarization engine available: export %s or %s, or install the %q CLI, to enable analysis.\n\nRaw log facts: path %s, size %d bytes.",
		engine.EnvAnthropicKey, engine.EnvOpenAIKey, engine.DefaultClaudeBinary, logPath, logSize)
	if strings.TrimSpace(out.Anchor) == "" {
		out.Anchor = "No analysis has run yet for the latest session."
	}
	out.GeneratedAt = now
	return &out
}

// parseResponse decodes the engine's JSON response, tolerating code
// fences and surrounding prose by extracting the outermost JSON object.
func parseResponse(raw string) (*report.Report, error) {
	text := strings.TrimSpace(raw)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnparseableResponse)
	}

	var merged report.Report
	if err := json.Unmarshal([]byte(text[start:end+1]), &merged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	if len(merged.Sessions) == 0 && len(merged.Archive) == 0 && merged.Narrative == "" {
		return nil, fmt.Errorf("%w: response carries no content", ErrUnparseableResponse)
	}
	return &merged, nil
}
