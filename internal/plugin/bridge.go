// Package plugin connects out-of-band span producers, such as
// highlighters, to a buffer. Batches arrive tagged with the revision
// they were computed against and are transformed onto the head before
// they land.
package plugin

import (
	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/editor"
	"github.com/dshills/editcore/internal/engine/crdt"
	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
	"github.com/dshills/editcore/internal/engine/spans"
)

// Span is one style run in a batch, relative to the batch start.
type Span struct {
	Start int
	Len   int
	Style spans.StyleID
}

// Annotation is one annotated run in a batch, relative to the batch
// start. Payload may be empty.
type Annotation struct {
	Start   int
	Len     int
	Payload string
}

// Bridge is a plugin's handle to one view of a buffer.
type Bridge struct {
	ctx *editor.EventCtx
}

// NewBridge returns a bridge over an event context.
func NewBridge(ctx *editor.EventCtx) *Bridge {
	return &Bridge{ctx: ctx}
}

// StartEdit marks a revision as held by a plugin; GC waits for the
// matching FinishEdit.
func (b *Bridge) StartEdit() { b.ctx.Editor.IncRevsInFlight() }

// FinishEdit releases a revision held by StartEdit.
func (b *Bridge) FinishEdit() { b.ctx.Editor.DecRevsInFlight() }

// Head returns the current head text and its token, for computing a
// batch against a stable revision.
func (b *Bridge) Head() (rope.Rope, crdt.RevToken) {
	engine := b.ctx.Editor.Engine()
	return engine.Head(), engine.HeadToken()
}

// GetRev returns the text of a revision a batch was computed against.
// ok is false when the revision has been garbage collected.
func (b *Bridge) GetRev(rev crdt.RevToken) (rope.Rope, bool) {
	return b.ctx.Editor.Engine().GetRev(rev)
}

// UpdateSpans replaces plugin's style spans over [start, start+length)
// of the revision rev. Batches against an unknown revision are
// dropped; batches against a superseded one are rebased onto the head.
func (b *Bridge) UpdateSpans(plugin spans.PluginID, start, length int, batch []Span, rev crdt.RevToken) {
	ed := b.ctx.Editor
	start, end, ok := b.rebase(start, start+length, rev)
	if !ok {
		return
	}

	sb := spans.NewBuilder[spans.StyleID](end - start)
	for _, s := range batch {
		lo, hi := clampRun(s.Start, s.Len, end-start)
		if lo >= hi {
			continue
		}
		sb.Add(delta.Interval{Start: lo, End: hi}, s.Style)
	}
	ed.Layers().UpdateLayer(plugin, delta.Interval{Start: start, End: end}, sb.Build())

	b.ctx.View.InvalidateStyles(ed.Text(), start, end)
	b.ctx.ScheduleRender()
}

// UpdateAnnotations replaces plugin's annotations of one type over
// [start, start+length) of the revision rev, with the same staleness
// rules as UpdateSpans.
func (b *Bridge) UpdateAnnotations(plugin spans.PluginID, typ client.AnnotationType, start, length int, batch []Annotation, rev crdt.RevToken) {
	ed := b.ctx.Editor
	start, end, ok := b.rebase(start, start+length, rev)
	if !ok {
		return
	}

	sb := spans.NewBuilder[string](end - start)
	for _, a := range batch {
		lo, hi := clampRun(a.Start, a.Len, end-start)
		if lo >= hi {
			continue
		}
		sb.Add(delta.Interval{Start: lo, End: hi}, a.Payload)
	}
	b.ctx.View.Annotations().Update(plugin, typ, delta.Interval{Start: start, End: end}, sb.Build())

	// Annotations ride on the next update; force one out.
	b.ctx.View.SetDirty(ed.Text())
	b.ctx.ScheduleRender()
}

// rebase maps a batch interval from rev onto the head. ok is false
// when rev is no longer known.
func (b *Bridge) rebase(start, end int, rev crdt.RevToken) (int, int, bool) {
	engine := b.ctx.Editor.Engine()
	if rev == engine.HeadToken() {
		return start, end, true
	}
	d, err := engine.TryDeltaRevHead(rev)
	if err != nil {
		return 0, 0, false
	}
	tr := delta.NewTransformer(d)
	return tr.Transform(start, false), tr.Transform(end, true), true
}

func clampRun(start, length, max int) (int, int) {
	lo, hi := start, start+length
	if lo < 0 {
		lo = 0
	}
	if hi > max {
		hi = max
	}
	return lo, hi
}
