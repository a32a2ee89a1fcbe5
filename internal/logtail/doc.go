// Package logtail reads the end of vitrine's log file for the activity view.
//
// Read extracts the last N lines with a single pass and a ring buffer, so
// memory stays O(N) regardless of file size. Parse decodes the JSON lines the
// production zap encoder writes; Entry.Format renders them compactly.
//
// Read returns nil, nil for a missing file. Lines that are not JSON are kept
// verbatim.
package logtail
