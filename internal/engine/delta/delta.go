package delta

import (
	"fmt"
	"strings"

	"github.com/dshills/editcore/internal/engine/rope"
)

// element is one step of a delta: either a copy of [start, end) from
// the base, or an insertion of new text.
type element struct {
	start, end int
	text       rope.Rope
	insert     bool
}

func copyElement(start, end int) element {
	return element{start: start, end: end}
}

func insertElement(text rope.Rope) element {
	return element{text: text, insert: true}
}

func (el element) len() int {
	if el.insert {
		return el.text.Len()
	}
	return el.end - el.start
}

// Delta transforms a rope of length BaseLen into another rope. Copies
// are strictly ascending and non-overlapping; base positions skipped
// between copies are deleted.
type Delta struct {
	els     []element
	baseLen int
}

// Identity returns the delta that leaves a rope of the given length
// unchanged.
func Identity(baseLen int) Delta {
	var b DeltaBuilder
	b.Init(baseLen)
	return b.Build()
}

// SimpleEdit returns a delta replacing iv with text in a rope of length
// baseLen. An empty text is a pure deletion.
func SimpleEdit(iv Interval, text rope.Rope, baseLen int) Delta {
	var b DeltaBuilder
	b.Init(baseLen)
	if text.IsEmpty() {
		b.Delete(iv)
	} else {
		b.Replace(iv, text)
	}
	return b.Build()
}

// BaseLen returns the length of ropes the delta applies to.
func (d Delta) BaseLen() int {
	return d.baseLen
}

// NewLen returns the length of the rope the delta produces.
func (d Delta) NewLen() int {
	n := 0
	for _, el := range d.els {
		n += el.len()
	}
	return n
}

// Apply transforms base. The base length must equal BaseLen.
func (d Delta) Apply(base rope.Rope) rope.Rope {
	if base.Len() != d.baseLen {
		panic(fmt.Sprintf("delta base length %d applied to rope of length %d", d.baseLen, base.Len()))
	}
	var b rope.Builder
	for _, el := range d.els {
		if el.insert {
			b.PushRope(el.text)
		} else {
			b.PushRope(mustSlice(base, el.start, el.end))
		}
	}
	return b.Build()
}

// IsIdentity reports whether applying the delta returns its input
// unchanged.
func (d Delta) IsIdentity() bool {
	if len(d.els) == 1 && !d.els[0].insert {
		return d.els[0].start == 0 && d.els[0].end == d.baseLen
	}
	return len(d.els) == 0 && d.baseLen == 0
}

// AsSimpleInsert returns the inserted rope and its offset when the
// delta is a single insertion with no deletions.
func (d Delta) AsSimpleInsert() (rope.Rope, int, bool) {
	var ins rope.Rope
	offset := -1
	pos := 0
	for _, el := range d.els {
		if el.insert {
			if offset >= 0 {
				return rope.Rope{}, 0, false
			}
			ins = el.text
			offset = pos
		} else {
			if el.start != pos {
				return rope.Rope{}, 0, false
			}
			pos = el.end
		}
	}
	if pos != d.baseLen || offset < 0 {
		return rope.Rope{}, 0, false
	}
	return ins, offset, true
}

// IsSimpleDelete reports whether the delta deletes a single range and
// inserts nothing.
func (d Delta) IsSimpleDelete() bool {
	gaps := 0
	pos := 0
	for _, el := range d.els {
		if el.insert {
			return false
		}
		if el.start != pos {
			gaps++
		}
		pos = el.end
	}
	if pos != d.baseLen {
		gaps++
	}
	return gaps == 1
}

// Summary returns the interval of the base the delta touches and the
// length that interval has after the edit. Untouched prefix and suffix
// copies are excluded.
func (d Delta) Summary() (Interval, int) {
	els := d.els
	start := 0
	if len(els) > 0 && !els[0].insert && els[0].start == 0 {
		start = els[0].end
		els = els[1:]
	}
	end := d.baseLen
	if n := len(els); n > 0 && !els[n-1].insert && els[n-1].end == d.baseLen {
		end = els[n-1].start
		els = els[:n-1]
	}
	newLen := 0
	for _, el := range els {
		newLen += el.len()
	}
	return Interval{Start: start, End: end}, newLen
}

// Factor splits the delta into an insert-only delta and a subset of
// deletions. The subset is over the union string, the result of
// applying the insertions to the base, so that
// deletes.DeleteFrom(ins.Apply(base)) equals d.Apply(base).
func (d Delta) Factor() (InsertDelta, Subset) {
	var ins []element
	var sb SubsetBuilder
	b1, e1 := 0, 0
	shift := 0
	for _, el := range d.els {
		if el.insert {
			if e1 > b1 {
				ins = append(ins, copyElement(b1, e1))
			}
			b1 = e1
			shift += el.text.Len()
			ins = append(ins, el)
		} else {
			sb.AddRange(e1+shift, el.start+shift, 1)
			e1 = el.end
		}
	}
	if b1 < d.baseLen {
		ins = append(ins, copyElement(b1, d.baseLen))
	}
	sb.AddRange(e1+shift, d.baseLen+shift, 1)
	sb.PadToLen(d.baseLen + shift)
	return InsertDelta{Delta{els: ins, baseLen: d.baseLen}}, sb.Build()
}

// Synthesize builds the delta that carries a union string from one
// deletion mask to another. Text present under fromDels but absent
// under toDels is inserted back out of tombstones; text newly deleted
// is dropped. The resulting delta applies to fromDels.DeleteFrom of the
// union string.
func Synthesize(tombstones rope.Rope, fromDels, toDels Subset) Delta {
	baseLen := fromDels.LenAfterDelete()
	var els []element
	x := 0
	oldRanges := fromDels.Ranges(CountZero)
	oldIdx := 0
	tombMapper := fromDels.Mapper(CountNonZero)
	for _, kept := range toDels.Ranges(CountZero) {
		beg := kept.Start
		for beg < kept.End {
			for oldIdx < len(oldRanges) && oldRanges[oldIdx].End <= beg {
				x += oldRanges[oldIdx].End - oldRanges[oldIdx].Start
				oldIdx++
			}
			if oldIdx < len(oldRanges) && oldRanges[oldIdx].Start <= beg {
				// Retained before and after: copy out of the old text.
				end := min(kept.End, oldRanges[oldIdx].End)
				els = append(els, copyElement(x+beg-oldRanges[oldIdx].Start, x+end-oldRanges[oldIdx].Start))
				beg = end
				continue
			}
			// Deleted before, retained after: resurrect from tombstones.
			end := kept.End
			if oldIdx < len(oldRanges) {
				end = min(end, oldRanges[oldIdx].Start)
			}
			tombStart := tombMapper.DocIndexToSubset(beg)
			els = append(els, insertElement(mustSlice(tombstones, tombStart, tombStart+end-beg)))
			beg = end
		}
	}
	return Delta{els: coalesceCopies(els), baseLen: baseLen}
}

// Compose chains d with next, which must apply to d's output. The
// result maps d's base directly to next's output.
func (d Delta) Compose(next Delta) Delta {
	if next.baseLen != d.NewLen() {
		panic(fmt.Sprintf("composed delta base %d does not match output length %d", next.baseLen, d.NewLen()))
	}
	// Positions of d's elements within d's output.
	starts := make([]int, len(d.els))
	pos := 0
	for i, el := range d.els {
		starts[i] = pos
		pos += el.len()
	}
	var els []element
	idx := 0
	for _, el := range next.els {
		if el.insert {
			els = append(els, el)
			continue
		}
		// Map the copied range of d's output back through d.
		for b := el.start; b < el.end; {
			for idx < len(d.els) && starts[idx]+d.els[idx].len() <= b {
				idx++
			}
			src := d.els[idx]
			off := b - starts[idx]
			n := min(el.end-b, src.len()-off)
			if src.insert {
				els = append(els, insertElement(mustSlice(src.text, off, off+n)))
			} else {
				els = append(els, copyElement(src.start+off, src.start+off+n))
			}
			b += n
		}
	}
	return Delta{els: coalesceCopies(els), baseLen: d.baseLen}
}

// coalesceCopies merges adjacent copies with touching ranges so that
// synthesized and composed deltas have a canonical element list.
func coalesceCopies(els []element) []element {
	out := els[:0]
	for _, el := range els {
		if n := len(out); n > 0 && !el.insert && !out[n-1].insert && out[n-1].end == el.start {
			out[n-1].end = el.end
			continue
		}
		out = append(out, el)
	}
	return out
}

func (d Delta) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Delta(base %d:", d.baseLen)
	for _, el := range d.els {
		if el.insert {
			fmt.Fprintf(&b, " ins(%q)", el.text.String())
		} else {
			fmt.Fprintf(&b, " copy[%d,%d)", el.start, el.end)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// InsertDelta is a delta that copies its entire base, only adding text.
// Produced by Factor; the engine rebases these against concurrent
// edits.
type InsertDelta struct {
	Delta
}

// TransformExpand rebases the insertions into the coordinate space
// described by xform, whose retained positions must add up to the
// current base length. Insertions landing where xform inserted text go
// before it, or after it when after is set.
func (d InsertDelta) TransformExpand(xform Subset, after bool) InsertDelta {
	if got := xform.LenAfterDelete(); got != d.baseLen {
		panic(fmt.Sprintf("transform retains %d positions, delta base is %d", got, d.baseLen))
	}
	type posInsert struct {
		pos  int
		text rope.Rope
	}
	var inserts []posInsert
	pos := 0
	for _, el := range d.els {
		if el.insert {
			inserts = append(inserts, posInsert{pos: pos, text: el.text})
		} else {
			pos = el.end
		}
	}
	newLen := xform.Len()
	var els []element
	last := 0
	for _, pi := range inserts {
		np := xform.offsetExpand(pi.pos, after)
		if np > last {
			els = append(els, copyElement(last, np))
		}
		last = np
		els = append(els, insertElement(pi.text))
	}
	if last < newLen {
		els = append(els, copyElement(last, newLen))
	}
	return InsertDelta{Delta{els: els, baseLen: newLen}}
}

// TransformShrink projects the insertions onto the retained positions
// of xform, undoing a TransformExpand by the same subset. No insertion
// may fall inside a deleted run of xform.
func (d InsertDelta) TransformShrink(xform Subset) InsertDelta {
	inserted := d.InsertedSubset()
	shrunk := inserted.TransformShrink(xform.TransformExpand(inserted))
	return fromInsertedSubset(shrunk, d)
}

// InsertedSubset marks, within the delta's output, which positions the
// delta inserted.
func (d InsertDelta) InsertedSubset() Subset {
	var sb SubsetBuilder
	for _, el := range d.els {
		if el.insert {
			sb.PushSegment(el.text.Len(), 1)
		} else {
			sb.PushSegment(el.end-el.start, 0)
		}
	}
	return sb.Build()
}

// fromInsertedSubset rebuilds an InsertDelta whose insertion mask is
// marks, pulling the inserted text in order from src.
func fromInsertedSubset(marks Subset, src InsertDelta) InsertDelta {
	var texts []rope.Rope
	for _, el := range src.els {
		if el.insert {
			texts = append(texts, el.text)
		}
	}
	var els []element
	base, ti := 0, 0
	for _, seg := range marks.segments {
		if seg.Count == 0 {
			els = append(els, copyElement(base, base+seg.Len))
			base += seg.Len
		} else {
			remaining := seg.Len
			for remaining > 0 {
				t := texts[ti]
				ti++
				els = append(els, insertElement(t))
				remaining -= t.Len()
			}
		}
	}
	return InsertDelta{Delta{els: coalesceCopies(els), baseLen: base}}
}
