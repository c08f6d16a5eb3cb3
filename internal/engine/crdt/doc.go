// Package crdt maintains the revision history of a buffer. Every edit
// is stored as an insertion subset plus a deletion subset over a
// growing union string; the visible text, the tombstones, and any
// historical revision content are all projections of that union. This
// representation lets the engine rebase concurrent edits, toggle undo
// groups without replaying history, merge with a peer engine, and
// garbage collect dead history while keeping the head text identical.
package crdt
