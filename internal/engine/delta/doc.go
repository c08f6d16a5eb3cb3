// Package delta implements the edit algebra shared by the buffer and
// the revision engine: half-open byte intervals, run-length encoded
// subsets used as deletion masks, and deltas built from copy and insert
// elements over a base rope.
//
// A Delta describes a transformation from one rope to another. It can
// be applied directly, composed with a later delta, or factored into an
// insert-only delta plus a Subset of deletions over the union string
// (the base with all insertions applied). The factored form is what the
// revision engine stores and rebases.
package delta
