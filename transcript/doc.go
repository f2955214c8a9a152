// Package transcript reduces raw terminal session logs to a bounded,
// signal-dense representation suitable for LLM analysis.
//
// Raw logs captured from interactive AI coding sessions are full of ANSI
// escape sequences, progress spinners, and very long pasted or generated
// lines. The package applies two stages:
//
//   - Sanitize: strips cursor-movement and color escape sequences and all
//     control characters except line breaks. Printable content is never
//     removed or reordered.
//
//   - Compress: marks interactive prompt lines as step boundaries, drops
//     known low-signal progress lines, truncates overlong lines keeping
//     both ends, and finally windows the result to a trailing character
//     budget so downstream processing always receives a bounded input.
//
// Both stages are best-effort filters: they never fail on malformed input.
// Invalid UTF-8 is replaced rather than rejected, and a missing log file
// yields an empty transcript, signaling "nothing to process" to the caller.
package transcript
