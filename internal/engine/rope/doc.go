// Package rope provides an immutable, balanced rope for text storage.
//
// The rope is a persistent tree whose leaves hold bounded UTF-8 chunks
// and whose internal nodes cache additive metric summaries (bytes,
// codepoints, newlines). Edits copy the spine in O(log n) and share all
// untouched subtrees, so snapshots are cheap and safe to read from any
// goroutine.
//
// Navigation is metric-based: a Cursor steps between boundaries of a
// chosen Metric (bytes, codepoints, lines, or grapheme clusters). Leaf
// boundaries never split a UTF-8 scalar, and any operation that would
// slice inside one fails with ErrInvalidOffset.
package rope
