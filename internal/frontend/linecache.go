// Package frontend holds the client-side line cache a renderer keeps
// in sync by applying update programs from the core.
package frontend

import "github.com/dshills/editcore/internal/client"

// LineCache mirrors the visual lines of one view. Entries are nil
// where the core has invalidated lines the renderer never requested.
type LineCache struct {
	lines       []*client.Line
	annotations []client.AnnotationSlice
	pristine    bool
}

// NewLineCache returns an empty cache.
func NewLineCache() *LineCache {
	return &LineCache{pristine: true}
}

// Height is the number of visual lines, valid or not.
func (c *LineCache) Height() int { return len(c.lines) }

// Line returns the cached line at ix, or nil when it is invalid or
// out of range.
func (c *LineCache) Line(ix int) *client.Line {
	if ix < 0 || ix >= len(c.lines) {
		return nil
	}
	return c.lines[ix]
}

// Annotations returns the annotation slices of the last update.
func (c *LineCache) Annotations() []client.AnnotationSlice { return c.annotations }

// Pristine reports whether the buffer matched its file at the last
// update.
func (c *LineCache) Pristine() bool { return c.pristine }

// Apply executes one update program against the cache.
func (c *LineCache) Apply(u client.Update) {
	var lines []*client.Line
	old := c.lines
	ix := 0
	for _, op := range u.Ops {
		switch op.Op {
		case client.OpSkip:
			ix += op.N
		case client.OpInvalidate:
			for i := 0; i < op.N; i++ {
				lines = append(lines, nil)
			}
		case client.OpCopy:
			ln := op.FirstLineNumber
			for i := 0; i < op.N && ix < len(old); i, ix = i+1, ix+1 {
				line := old[ix]
				if line == nil {
					// An invalid line still occupies a logical slot.
					ln++
					lines = append(lines, nil)
					continue
				}
				copied := *line
				if copied.Ln != 0 {
					copied.Ln = ln
					ln++
				}
				lines = append(lines, &copied)
			}
		case client.OpInsert:
			for i := range op.Lines {
				line := op.Lines[i]
				lines = append(lines, &line)
			}
		case client.OpUpdate:
			for i := 0; i < op.N && ix < len(old); i, ix = i+1, ix+1 {
				line := old[ix]
				if line == nil || i >= len(op.Lines) {
					lines = append(lines, line)
					continue
				}
				updated := *line
				updated.Cursors = op.Lines[i].Cursors
				if op.Lines[i].Ln != 0 {
					updated.Ln = op.Lines[i].Ln
				}
				lines = append(lines, &updated)
			}
		}
	}
	c.lines = lines
	c.pristine = u.Pristine
	c.annotations = u.Annotations
}
