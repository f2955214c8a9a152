// Package report defines the cumulative progress report: its data model,
// the compaction transform that bounds its size, the file-backed store
// that persists it, and the renderers that turn it into a human-readable
// document.
//
// # Data model
//
// A Report is an ordered sequence of Sessions (oldest to newest), each an
// ordered sequence of iteration Steps, plus three always-current
// synthesized fields: a narrative summary, a "where we left off" anchor,
// and a list of open threads. Steps older than the compaction threshold
// are collapsed into Archive entries that retain only title, status, and
// a one-line result.
//
// # Compaction
//
// Compact is a pure transform over the Report value, independent of how
// the report is serialized. It is idempotent: archived entries are never
// re-expanded, and the archive only grows or stays the same size.
//
// # Persistence
//
// The rendered document is the sole persisted artifact. Each renderer
// embeds the canonical JSON state inside the document (an HTML comment in
// Markdown output, a JSON script block in HTML output), and Store.Load
// extracts it on the next run. Writes are full overwrites via a temp file
// and rename in the destination directory, so a crash mid-run leaves the
// prior report intact.
package report
