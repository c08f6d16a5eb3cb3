// Package view tracks everything about a buffer that is per-window
// rather than per-text: the selection, the scroll position, soft wrap
// state, and the shadow of the front-end's line cache used to compute
// minimal render updates.
package view

import (
	"unicode/utf8"

	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
	"github.com/dshills/editcore/internal/engine/spans"
)

// Mode is the modal editing state of a view. The core only stores it;
// interpretation of keys per mode happens in the front-end.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeVisual
	ModeCommand
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInsert:
		return "insert"
	case ModeVisual:
		return "visual"
	case ModeCommand:
		return "command"
	}
	return "unknown"
}

// GestureKind distinguishes pointer gestures.
type GestureKind uint8

const (
	GestureSelect GestureKind = iota
	GestureSelectExtend
	GestureDrag
)

// GestureType carries a gesture and its granularity. Multi toggles
// multi-cursor behavior on Select.
type GestureType struct {
	Kind     GestureKind
	Quantity Quantity
	Multi    bool
}

// dragState remembers the anchor of an in-progress pointer drag.
type dragState struct {
	// baseSel is the selection before the drag started, kept for
	// multi-cursor drags.
	baseSel Selection
	// min and max are the extent of the anchor unit.
	min, max int
	quantity Quantity
}

// View is one window onto a buffer.
type View struct {
	viewID client.ViewID
	client *client.Client
	styles *client.ThemeStyleMap

	selection Selection
	drag      *dragState
	mode      Mode

	// firstLine is the topmost visual line of the viewport.
	firstLine int
	// height is the viewport height in visual lines.
	height int

	lines  *Lines
	shadow *LineCacheShadow

	// scrollTo is an offset the front-end should scroll into view on
	// the next render, or -1.
	scrollTo int

	annotations *AnnotationStore
	pristine    bool
}

func NewView(viewID client.ViewID, cl *client.Client, styles *client.ThemeStyleMap) *View {
	return &View{
		viewID:      viewID,
		client:      cl,
		styles:      styles,
		selection:   NewSelection(),
		lines:       NewLines(),
		shadow:      NewShadow(0),
		scrollTo:    -1,
		annotations: NewAnnotationStore(),
		pristine:    true,
	}
}

func (v *View) ID() client.ViewID    { return v.viewID }
func (v *View) Mode() Mode           { return v.mode }
func (v *View) SetMode(mode Mode)    { v.mode = mode }
func (v *View) Selection() Selection { return v.selection }
func (v *View) Lines() *Lines        { return v.lines }
func (v *View) Height() int          { return v.height }

func (v *View) Annotations() *AnnotationStore { return v.annotations }

// SetPristine records whether the buffer matches its saved state; it
// is reported with every update.
func (v *View) SetPristine(pristine bool) { v.pristine = pristine }

// Resize sets the viewport height in visual lines.
func (v *View) Resize(text rope.Rope, height int) {
	if height == v.height {
		return
	}
	v.height = height
	v.SetDirty(text)
}

// SetScroll updates the viewport after the front-end scrolled.
func (v *View) SetScroll(first, last int) {
	if first < 0 {
		first = 0
	}
	v.firstLine = first
	if last > first {
		v.height = last - first
	}
}

// Move replaces the selection with the result of a movement.
func (v *View) Move(text rope.Rope, motion Motion, quantity Quantity) {
	sel := SelectionMovement(motion, quantity, v.selection, v.lines, v.height, text, false)
	v.SetSelection(text, sel)
}

// MoveSelection extends each region by a movement.
func (v *View) MoveSelection(text rope.Rope, motion Motion, quantity Quantity) {
	sel := SelectionMovement(motion, quantity, v.selection, v.lines, v.height, text, true)
	v.SetSelection(text, sel)
}

// AddSelection adds a caret above or below each existing region at the
// same horizontal position, skipping lines too short to hold it.
func (v *View) AddSelection(text rope.Rope, motion Motion) {
	sel := v.selection
	added := sel
	for _, r := range sel.Regions() {
		nr := RegionMovement(motion, QuantitySelection, r, v.lines, v.height, text, false)
		added.AddRegion(nr)
	}
	v.SetSelection(text, added)
}

// SelectAll selects the whole buffer without scrolling.
func (v *View) SelectAll(text rope.Rope) {
	sel := SelectionFromRegion(Region(0, text.Len()))
	v.setSelectionRaw(text, sel)
}

// CollapseSelections reduces every region to a caret at its active end
// and keeps only the resulting carets.
func (v *View) CollapseSelections(text rope.Rope) {
	sel := v.selection
	sel.Collapse()
	v.SetSelection(text, sel)
}

// GoToLine places a single caret at the start of a logical line.
func (v *View) GoToLine(text rope.Rope, line int) {
	last := text.LineOfOffset(text.Len())
	if line > last {
		line = last
	}
	offset := text.OffsetOfLine(line)
	v.SetSelection(text, SelectionFromRegion(Caret(offset)))
}

// DoGesture routes a pointer gesture given in visual line and column.
func (v *View) DoGesture(text rope.Rope, line, col int, ty GestureType) {
	offset := LineColToOffset(v.lines, text, line, col)
	switch ty.Kind {
	case GestureSelect:
		v.doSelect(text, offset, ty.Quantity, ty.Multi)
	case GestureSelectExtend:
		v.extendSelection(text, offset, ty.Quantity)
	case GestureDrag:
		v.DoDrag(text, offset)
	}
}

// doSelect starts a new selection at offset. With multi, clicking an
// existing caret removes it instead, as long as another region
// remains.
func (v *View) doSelect(text rope.Rope, offset int, quantity Quantity, multi bool) {
	if multi && quantity == QuantityCharacter && v.selection.Len() > 1 &&
		len(v.selection.RegionsInRange(offset, offset)) > 0 {
		v.deselectAtOffset(text, offset)
		return
	}
	v.startDrag(text, offset, quantity, multi)
}

func (v *View) deselectAtOffset(text rope.Rope, offset int) {
	sel := v.selection
	sel.DeleteRange(offset, offset, true)
	if sel.Len() > 0 {
		v.SetSelection(text, sel)
	}
}

func (v *View) startDrag(text rope.Rope, offset int, quantity Quantity, multi bool) {
	iv := unit(text, offset, quantity)
	region := Region(iv.Start, iv.End)
	base := Selection{}
	if multi {
		base = v.selection
	}
	sel := base
	sel.AddRegion(region)
	v.drag = &dragState{baseSel: base, min: iv.Start, max: iv.End, quantity: quantity}
	v.SetSelection(text, sel)
}

// extendSelection grows the last region toward offset, as for a
// shift-click.
func (v *View) extendSelection(text rope.Rope, offset int, quantity Quantity) {
	anchor := 0
	if regions := v.selection.Regions(); len(regions) > 0 {
		anchor = regions[len(regions)-1].Start
	}
	start := delta.Interval{Start: anchor, End: anchor}
	region := v.rangeRegion(text, start, offset, quantity)
	v.drag = &dragState{baseSel: Selection{}, min: anchor, max: anchor, quantity: quantity}
	v.SetSelection(text, SelectionFromRegion(region))
}

// DoDrag continues an in-progress drag toward offset.
func (v *View) DoDrag(text rope.Rope, offset int) {
	if v.drag == nil {
		return
	}
	sel := v.drag.baseSel
	start := delta.Interval{Start: v.drag.min, End: v.drag.max}
	sel.AddRegion(v.rangeRegion(text, start, offset, v.drag.quantity))
	v.SetSelection(text, sel)
}

// rangeRegion spans from the drag anchor unit to the unit at offset,
// keeping the anchor on the far side so the selection grows away from
// it in either direction.
func (v *View) rangeRegion(text rope.Rope, start delta.Interval, offset int, quantity Quantity) SelRegion {
	end := unit(text, offset, quantity)
	if offset >= start.Start {
		return Region(start.Start, end.End)
	}
	return Region(start.End, end.Start)
}

// unit is the selection granule at offset: a point, the surrounding
// word, or the whole logical line including its newline.
func unit(text rope.Rope, offset int, quantity Quantity) delta.Interval {
	switch quantity {
	case QuantityWord:
		start, end := NewWordCursor(text, offset).SelectWord()
		return delta.Interval{Start: start, End: end}
	case QuantityLine:
		line := text.LineOfOffset(offset)
		return delta.Interval{Start: text.OffsetOfLine(line), End: text.OffsetOfLine(line + 1)}
	default:
		return delta.Interval{Start: offset, End: offset}
	}
}

// SetSelection installs a new selection, invalidating the lines the
// old and new selections touch and scrolling the cursor into view.
func (v *View) SetSelection(text rope.Rope, sel Selection) {
	v.invalidateSelection(text, v.selection)
	v.setSelectionRaw(text, sel)
	v.scrollToCursor(text)
}

// setSelectionRaw installs and invalidates but does not scroll.
func (v *View) setSelectionRaw(text rope.Rope, sel Selection) {
	v.selection = sel
	v.invalidateSelection(text, sel)
}

// setSelectionForEdit is used after an edit: the shadow is already
// invalidated by the edit itself, so only scrolling remains.
func (v *View) setSelectionForEdit(text rope.Rope, sel Selection) {
	v.selection = sel
	v.scrollToCursor(text)
}

// invalidateSelection clears cursor validity (and style validity, when
// a highlight needs repainting) for the lines a selection covers.
func (v *View) invalidateSelection(text rope.Rope, sel Selection) {
	regions := sel.Regions()
	if len(regions) == 0 {
		return
	}
	first := v.lines.LineOfOffset(text, regions[0].Min())
	last := v.lines.LineOfOffset(text, regions[len(regions)-1].Max())
	bits := ValidCursor
	for _, r := range regions {
		if !r.IsCaret() {
			bits |= ValidStyles
			break
		}
	}
	v.shadow.PartialInvalidate(first, last+1, bits)
}

// InvalidateStyles marks the lines covering [start,end) as needing a
// style repaint, typically after a plugin updated its spans.
func (v *View) InvalidateStyles(text rope.Rope, start, end int) {
	firstLine := v.lines.LineOfOffset(text, start)
	lastLine := v.lines.LineOfOffset(text, end)
	if end > v.lines.OffsetOfLine(text, lastLine) {
		lastLine++
	}
	v.shadow.PartialInvalidate(firstLine, lastLine+1, ValidStyles)
}

// scrollToCursor moves the viewport so the active end of the last
// region is visible and records the offset for the front-end.
func (v *View) scrollToCursor(text rope.Rope) {
	regions := v.selection.Regions()
	if len(regions) == 0 {
		return
	}
	end := regions[len(regions)-1].End
	line := v.lines.LineOfOffset(text, end)
	if line < v.firstLine {
		v.firstLine = line
	} else if v.height > 0 && v.firstLine+v.height <= line {
		v.firstLine = line - (v.height - 1)
	}
	v.scrollTo = end
}

// SetDirty discards the shadow entirely; the next render re-encodes
// every line the plan touches.
func (v *View) SetDirty(text rope.Rope) {
	v.shadow = NewShadow(v.lines.VisualLineCount(text))
}

// interval of text the viewport can show, with one line of slack.
func (v *View) visibleInterval(text rope.Rope) delta.Interval {
	start := v.lines.OffsetOfLine(text, v.firstLine)
	end := v.lines.OffsetOfLine(text, v.firstLine+v.height+1)
	return delta.Interval{Start: start, End: end}
}

// AfterEdit reconciles the view with a committed delta: soft wrap is
// patched, the shadow loses the edited lines, annotations over the
// edit are dropped, and the selection is carried across the delta.
func (v *View) AfterEdit(text, lastText rope.Rope, d delta.Delta, wc WidthMeasurer, drift InsertDrift, pristine bool) {
	iv, newLen := d.Summary()

	inval := v.lines.AfterEdit(text, lastText, d, wc, v.visibleInterval(text))
	v.shadow.Edit(inval.StartLine, inval.StartLine+inval.InvalCount, inval.NewCount)

	v.drag = nil
	v.annotations.Invalidate(delta.Interval{Start: iv.Start, End: iv.Start + newLen})

	sel := v.selection.ApplyDelta(d, true, drift)
	v.setSelectionForEdit(text, sel)
	v.pristine = pristine
}

// Rewrap runs one chunk of pending wrap work and reports whether more
// remains. Wrapped lines shift, so the shadow is discarded.
func (v *View) Rewrap(text rope.Rope, wc WidthMeasurer) bool {
	more := v.lines.RewrapChunk(text, wc, v.visibleInterval(text))
	v.SetDirty(text)
	return more
}

// SetWrapWidth reconfigures soft wrap and invalidates everything.
func (v *View) SetWrapWidth(text rope.Rope, wrap WrapWidth) {
	v.lines.SetWrapWidth(text, wrap)
	v.SetDirty(text)
}

// RenderIfDirty sends an update if the viewport needs one.
func (v *View) RenderIfDirty(text rope.Rope, styleSpans spans.Spans[spans.StyleID]) {
	total := v.lines.VisualLineCount(text)
	plan := NewRenderPlan(total, v.firstLine, v.height)
	v.sendUpdateForPlan(text, plan, styleSpans)
	v.sendScrollTo(text)
}

// RequestLines renders a specific range on behalf of the front-end,
// typically for lines scrolled into view before idle rendering caught
// up.
func (v *View) RequestLines(text rope.Rope, styleSpans spans.Spans[spans.StyleID], first, last int) {
	total := v.lines.VisualLineCount(text)
	plan := NewRenderPlan(total, v.firstLine, v.height)
	plan.RequestLines(first, last)
	v.sendUpdateForPlan(text, plan, styleSpans)
	v.sendScrollTo(text)
}

func (v *View) sendScrollTo(text rope.Rope) {
	if v.scrollTo < 0 {
		return
	}
	line := v.lines.LineOfOffset(text, v.scrollTo)
	start := v.lines.OffsetOfLine(text, line)
	col := utf8.RuneCountInString(text.SliceString(start, v.scrollTo))
	v.client.ScrollTo(v.viewID, line, col)
	v.scrollTo = -1
}

// sendUpdateForPlan walks the shadow against the plan and emits the
// smallest update program that brings the client's line cache up to
// date, building the next shadow as it goes.
func (v *View) sendUpdateForPlan(text rope.Rope, plan RenderPlan, styleSpans spans.Spans[spans.StyleID]) {
	if !v.shadow.NeedsRender(plan) {
		ops := []client.UpdateOp{client.Copy(v.shadow.Height(), 1)}
		v.client.UpdateView(v.viewID, client.Update{
			Ops:         ops,
			Pristine:    v.pristine,
			Annotations: v.renderAnnotations(text),
		})
		return
	}

	var ops []client.UpdateOp
	var b ShadowBuilder
	lineNum := 0 // client cache line cursor
	for _, seg := range v.shadow.IterWithPlan(plan) {
		switch {
		case seg.Tactic == TacticDiscard:
			ops = append(ops, client.Invalidate(seg.N))
			b.AddSpan(seg.N, 0, 0)
		case seg.Validity&(ValidText|ValidStyles) == ValidText|ValidStyles && seg.TheirLine >= 0:
			if lineNum != seg.TheirLine {
				ops = append(ops, client.Skip(seg.TheirLine-lineNum))
				lineNum = seg.TheirLine
			}
			logical := v.lines.LogicalLineOfVisual(text, seg.OurLine)
			if seg.Validity&ValidCursor != 0 {
				ops = append(ops, client.Copy(seg.N, logical+1))
				b.AddSpan(seg.N, seg.OurLine, seg.Validity)
			} else {
				lines := v.encodeLines(text, styleSpans, seg.OurLine, seg.N, true)
				ops = append(ops, client.UpdateLines(lines, logical+1))
				b.AddSpan(seg.N, seg.OurLine, seg.Validity|ValidCursor)
			}
			lineNum += seg.N
		case seg.Tactic == TacticPreserve:
			ops = append(ops, client.Invalidate(seg.N))
			b.AddSpan(seg.N, 0, 0)
		default: // render
			lines := v.encodeLines(text, styleSpans, seg.OurLine, seg.N, false)
			ops = append(ops, client.Insert(lines))
			b.AddSpan(seg.N, seg.OurLine, ValidAll)
		}
	}
	v.shadow = b.Build()
	v.client.UpdateView(v.viewID, client.Update{
		Ops:         ops,
		Pristine:    v.pristine,
		Annotations: v.renderAnnotations(text),
	})
}

func (v *View) renderAnnotations(text rope.Rope) []client.AnnotationSlice {
	iv := delta.Interval{
		Start: v.lines.OffsetOfLine(text, v.firstLine),
		End:   v.lines.OffsetOfLine(text, v.firstLine+v.height+2),
	}
	out := []client.AnnotationSlice{selectionAnnotations(&v.selection, v.lines, text, iv)}
	return append(out, v.annotations.IterRange(v.lines, text, iv)...)
}

func (v *View) encodeLines(text rope.Rope, styleSpans spans.Spans[spans.StyleID], startLine, n int, cursorOnly bool) []client.Line {
	lines := make([]client.Line, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, v.encodeLine(text, styleSpans, startLine+i, cursorOnly))
	}
	return lines
}

// encodeLine builds the payload for one visual line. Cursor offsets
// are codepoint offsets from line start. Style triples are byte runs
// (relative start, length, style id); the relative start is measured
// from the end of the previous triple and may be negative when
// highlights overlap the selection.
func (v *View) encodeLine(text rope.Rope, styleSpans spans.Spans[spans.StyleID], line int, cursorOnly bool) client.Line {
	start := v.lines.OffsetOfLine(text, line)
	pos := v.lines.OffsetOfLine(text, line+1)
	lastPos := text.Len()

	var out client.Line
	if !v.lines.IsSoftBreak(text, line) {
		out.Ln = v.lines.LogicalLineOfVisual(text, line) + 1
	}

	var selTriples []styleRun
	for _, r := range v.selection.RegionsInRange(start, pos) {
		c := r.End
		if v.caretOnLine(text, r, line, start, pos, lastPos) {
			out.Cursors = append(out.Cursors, utf8.RuneCountInString(text.SliceString(start, c)))
		}
		lo, hi := max(r.Min(), start), min(r.Max(), pos)
		if hi > lo {
			selTriples = append(selTriples, styleRun{lo - start, hi - lo, client.StyleSelection})
		}
	}
	if cursorOnly {
		return out
	}

	out.Text = text.SliceString(start, pos)
	runs := selTriples
	styleSpans.Subseq(delta.Interval{Start: start, End: pos}).Iter(func(iv delta.Interval, id spans.StyleID) bool {
		runs = append(runs, styleRun{iv.Start, iv.Len(), int(id)})
		return true
	})
	out.Styles = encodeStyleRuns(runs)
	return out
}

// caretOnLine decides whether a region's active end lands on the
// visual line spanning [start, pos). An end sitting exactly on a
// soft-wrap boundary belongs to the downstream line unless the caret's
// affinity says otherwise; hard breaks ignore affinity.
func (v *View) caretOnLine(text rope.Rope, r SelRegion, line, start, pos, lastPos int) bool {
	c := r.End
	switch {
	case c > start && c < pos:
		return true
	case c == start:
		if r.IsCaret() {
			return r.Affinity == AffinityDownstream || !v.lines.IsSoftBreak(text, line)
		}
		return !r.IsUpstream()
	case c == pos:
		if c == lastPos {
			return true
		}
		if r.IsCaret() {
			return r.Affinity == AffinityUpstream && v.lines.IsSoftBreak(text, line+1)
		}
		return r.IsUpstream()
	}
	return false
}

type styleRun struct {
	start, length, id int
}

// encodeStyleRuns flattens runs into the wire triples, each start
// relative to the end of the previous run.
func encodeStyleRuns(runs []styleRun) []int {
	if len(runs) == 0 {
		return nil
	}
	triples := make([]int, 0, 3*len(runs))
	ix := 0
	for _, r := range runs {
		triples = append(triples, r.start-ix, r.length, r.id)
		ix = r.start + r.length
	}
	return triples
}

// GetOrDefStyleID resolves a style to a client id, telling the
// front-end about it the first time it is seen.
func (v *View) GetOrDefStyleID(style client.Style) int {
	if id := v.styles.Lookup(style); id >= 0 {
		return id
	}
	id := v.styles.Add(style)
	v.client.DefineStyle(id, style)
	return id
}
