// Package merge combines a previous cumulative report with a new
// session's compressed transcript into an updated report.
//
// The Orchestrator does not parse narrative content itself. It assembles
// a single request, carrying the previous report state verbatim and the
// current compressed transcript under a fixed extraction instruction, and
// delegates the extraction and merge reasoning to an external
// summarization engine. The engine's JSON response is validated,
// normalized, compacted, and returned as the new report.
//
// The merge contract is fail-soft and visible: an engine failure or an
// unparseable response never raises an error. Instead the previous
// report's content is carried forward unchanged under an error-flavored
// narrative, so every run still produces an artifact and a broken merge
// never destroys accumulated history.
package merge
