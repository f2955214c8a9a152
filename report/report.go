package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of an iteration step.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
	StatusInProgress Status = "in_progress"
)

// MaxArtifacts is the maximum number of artifact names kept per step.
const MaxArtifacts = 10

// NormalizeStatus maps an arbitrary status string to a known Status.
// Unknown values become StatusInProgress rather than being rejected, since
// the status originates from extracted narrative, not trusted input.
func NormalizeStatus(s string) Status {
	switch Status(s) {
	case StatusSuccess, StatusPartial, StatusFailed, StatusInProgress:
		return Status(s)
	default:
		return StatusInProgress
	}
}

// Step is one unit of narrative: a user intent and its outcome.
type Step struct {
	// Title is a short descriptive title for the step.
	Title string `json:"title"`

	// Intent is the motivation behind the prompt: what problem or goal
	// drove it, and what prior context led the user here.
	Intent string `json:"intent"`

	// Expected is what the user hoped would happen.
	Expected string `json:"expected"`

	// Result is what concretely happened.
	Result string `json:"result"`

	// Status is the step outcome.
	Status Status `json:"status"`

	// Artifacts lists files created or modified, capped at MaxArtifacts.
	Artifacts []string `json:"artifacts,omitempty"`

	// Transition explains why the user moved to the next step. Empty for
	// the last step of the last session.
	Transition string `json:"transition,omitempty"`
}

// Session is an ordered sequence of steps from one pipeline run.
type Session struct {
	// ID identifies the session.
	ID uuid.UUID `json:"id"`

	// Timestamp is when the session was merged into the report.
	Timestamp time.Time `json:"timestamp"`

	// Narrative is the flowing story of this session.
	Narrative string `json:"narrative,omitempty"`

	// Steps are the session's iteration steps, in recency order.
	Steps []Step `json:"steps"`
}

// UnmarshalJSON decodes a session while tolerating an empty or malformed
// id and timestamp. Engine output legitimately leaves both empty on a new
// session; Normalize stamps them afterwards.
func (s *Session) UnmarshalJSON(data []byte) error {
	type alias Session
	aux := struct {
		ID        string `json:"id"`
		Timestamp string `json:"timestamp"`
		*alias
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if id, err := uuid.Parse(aux.ID); err == nil {
		s.ID = id
	} else {
		s.ID = uuid.Nil
	}
	if ts, err := time.Parse(time.RFC3339, aux.Timestamp); err == nil {
		s.Timestamp = ts
	} else {
		s.Timestamp = time.Time{}
	}
	return nil
}

// ArchiveEntry is a compacted step retaining only title, status, and a
// one-line result.
type ArchiveEntry struct {
	Title  string `json:"title"`
	Status Status `json:"status"`
	Result string `json:"result"`
}

// Report is the cumulative, persisted progress report.
type Report struct {
	// Project names the project or directory the sessions belong to.
	Project string `json:"project,omitempty"`

	// Narrative is the whole-history narrative summary, regenerated on
	// every merge.
	Narrative string `json:"narrative"`

	// Anchor is the "where we left off" context anchor, regenerated on
	// every merge.
	Anchor string `json:"anchor"`

	// OpenThreads lists unresolved issues and pending tasks.
	OpenThreads []string `json:"open_threads,omitempty"`

	// Sessions holds full-detail sessions, oldest to newest.
	Sessions []Session `json:"sessions"`

	// Archive holds compacted steps older than the compaction threshold,
	// oldest first. It only ever grows.
	Archive []ArchiveEntry `json:"archive,omitempty"`

	// GeneratedAt is when the report was last produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// DetailedSteps returns the number of full-detail steps across all sessions.
func (r *Report) DetailedSteps() int {
	n := 0
	for _, s := range r.Sessions {
		n += len(s.Steps)
	}
	return n
}

// Empty reports whether the report carries no content at all, meaning the
// next merge is a first run.
func (r *Report) Empty() bool {
	return r == nil ||
		(len(r.Sessions) == 0 && len(r.Archive) == 0 &&
			r.Narrative == "" && r.Anchor == "" && len(r.OpenThreads) == 0)
}

// Normalize repairs extracted content in place: statuses are mapped to
// known values, artifact lists are capped, and sessions missing an ID or
// timestamp are stamped.
func (r *Report) Normalize(now time.Time) {
	for i := range r.Sessions {
		s := &r.Sessions[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if s.Timestamp.IsZero() {
			s.Timestamp = now
		}
		for j := range s.Steps {
			st := &s.Steps[j]
			st.Status = NormalizeStatus(string(st.Status))
			if len(st.Artifacts) > MaxArtifacts {
				st.Artifacts = st.Artifacts[:MaxArtifacts]
			}
		}
	}
	for i := range r.Archive {
		r.Archive[i].Status = NormalizeStatus(string(r.Archive[i].Status))
	}
}
