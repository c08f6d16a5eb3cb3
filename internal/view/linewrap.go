package view

import (
	"sort"

	"github.com/rivo/uniseg"

	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
)

// WrapMode selects how visual lines relate to logical lines.
type WrapMode uint8

const (
	// WrapNone makes visual lines equal logical lines.
	WrapNone WrapMode = iota
	// WrapBytes soft-wraps every Value bytes at codepoint boundaries.
	WrapBytes
	// WrapPixels wraps at the last word boundary that fits in Value
	// pixels, measured through a WidthMeasurer.
	WrapPixels
)

// WrapWidth is the wrapping configuration of a view.
type WrapWidth struct {
	Mode  WrapMode
	Value int
}

// WidthMeasurer resolves rendered text widths for pixel wrapping.
type WidthMeasurer interface {
	MeasureWidth(s string) float64
}

// InvalLines describes how an edit shifted visual lines: InvalCount
// lines starting at StartLine were replaced by NewCount new ones.
type InvalLines struct {
	StartLine  int
	InvalCount int
	NewCount   int
}

// rewrapBudget bounds how many bytes one RewrapChunk call processes
// beyond the visible range, so wrapping a large file stays incremental.
const rewrapBudget = 128 * 1024

// Lines tracks the soft breaks of a view. Wrapping is incremental:
// breaks are computed in chunks and the pending work is remembered, so
// queries are valid for converged regions while the rest catches up.
type Lines struct {
	wrap   WrapWidth
	breaks []int
	work   []delta.Interval
}

// NewLines returns an unwrapped Lines.
func NewLines() *Lines {
	return &Lines{}
}

// WrapWidth returns the current configuration.
func (l *Lines) WrapWidth() WrapWidth {
	return l.wrap
}

// SetWrapWidth changes the configuration and invalidates all breaks.
// The caller is expected to schedule rewrap work afterwards.
func (l *Lines) SetWrapWidth(text rope.Rope, wrap WrapWidth) {
	if wrap == l.wrap {
		return
	}
	l.wrap = wrap
	l.breaks = nil
	l.work = nil
	if wrap.Mode != WrapNone && text.Len() > 0 {
		l.work = []delta.Interval{{Start: 0, End: text.Len()}}
	}
}

// IsConverged reports whether every logical line has been wrapped.
func (l *Lines) IsConverged() bool {
	return len(l.work) == 0
}

// IntervalNeedsWrap reports whether any line touching iv has pending
// wrap work.
func (l *Lines) IntervalNeedsWrap(iv delta.Interval) bool {
	for _, w := range l.work {
		if !w.Intersect(iv).IsEmpty() || w.Start == iv.End || w.End == iv.Start {
			return true
		}
	}
	return false
}

// LineOfOffset returns the visual line containing offset.
func (l *Lines) LineOfOffset(text rope.Rope, offset int) int {
	if offset > text.Len() {
		offset = text.Len()
	}
	line := text.LineOfOffset(offset)
	if l.wrap.Mode == WrapNone {
		return line
	}
	return line + sort.SearchInts(l.breaks, offset+1)
}

// OffsetOfLine returns the byte offset of the start of a visual line.
// Lines past the end map to the text's length.
func (l *Lines) OffsetOfLine(text rope.Rope, line int) int {
	if l.wrap.Mode == WrapNone {
		return text.OffsetOfLine(line)
	}
	if line <= 0 {
		return 0
	}
	if line > text.Measure(rope.Lines)+len(l.breaks) {
		return text.Len()
	}
	// Binary search for the first offset on the line.
	lo, hi := 0, text.Len()
	for lo < hi {
		mid := lo + (hi-lo)/2
		if l.LineOfOffset(text, mid) < line {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// VisualLineCount returns the total number of visual lines.
func (l *Lines) VisualLineCount(text rope.Rope) int {
	return text.Measure(rope.Lines) + len(l.breaks) + 1
}

// IsSoftBreak reports whether the visual line starts at a soft break
// rather than at a logical line start.
func (l *Lines) IsSoftBreak(text rope.Rope, line int) bool {
	if l.wrap.Mode == WrapNone || line <= 0 {
		return false
	}
	offset := l.OffsetOfLine(text, line)
	ix := sort.SearchInts(l.breaks, offset)
	return ix < len(l.breaks) && l.breaks[ix] == offset
}

// LogicalLineOfVisual returns the logical line a visual line belongs
// to.
func (l *Lines) LogicalLineOfVisual(text rope.Rope, line int) int {
	return text.LineOfOffset(l.OffsetOfLine(text, line))
}

// RewrapChunk performs a bounded amount of pending wrap work. The
// visible range jumps the queue and is always finished, whatever the
// budget. Returns true if work remains.
func (l *Lines) RewrapChunk(text rope.Rope, wc WidthMeasurer, visible delta.Interval) bool {
	if l.wrap.Mode == WrapNone {
		l.work = nil
		return false
	}
	remaining := rewrapBudget
	for len(l.work) > 0 && remaining > 0 {
		ix := l.pickWork(visible)
		iv := l.work[ix]
		chunkEnd := iv.End
		if iv.Len() > remaining {
			chunkEnd = iv.Start + remaining
			if vis := iv.Intersect(visible); !vis.IsEmpty() && vis.End > chunkEnd {
				chunkEnd = vis.End
			}
		}
		start := text.OffsetOfLine(text.LineOfOffset(iv.Start))
		end := text.OffsetOfLine(text.LineOfOffset(chunkEnd) + 1)
		l.wrapRange(text, wc, start, end)
		remaining -= end - start
		if end >= iv.End {
			l.work = append(l.work[:ix], l.work[ix+1:]...)
		} else {
			l.work[ix].Start = end
		}
	}
	return len(l.work) > 0
}

// pickWork returns the index of the first work interval touching the
// visible range, or the frontmost interval.
func (l *Lines) pickWork(visible delta.Interval) int {
	for i, w := range l.work {
		if !w.Intersect(visible).IsEmpty() {
			return i
		}
	}
	return 0
}

// AfterEdit patches the breaks through an edit, rewraps the affected
// lines, and reports how the visual lines shifted. oldText is the text
// the delta was applied to.
func (l *Lines) AfterEdit(text, oldText rope.Rope, d delta.Delta, wc WidthMeasurer, visible delta.Interval) InvalLines {
	iv, newLen := d.Summary()

	if l.wrap.Mode == WrapNone {
		startLine := text.LineOfOffset(iv.Start)
		oldCount := oldText.LineOfOffset(iv.End) - startLine + 1
		newCount := text.LineOfOffset(iv.Start+newLen) - startLine + 1
		return InvalLines{StartLine: startLine, InvalCount: oldCount, NewCount: newCount}
	}

	// Count the old visual lines covering the edited logical lines
	// before touching the break list.
	oldStart := oldText.OffsetOfLine(oldText.LineOfOffset(iv.Start))
	oldEnd := oldText.OffsetOfLine(oldText.LineOfOffset(iv.End) + 1)
	oldCount := logicalLinesIn(oldText, oldStart, oldEnd) + l.breaksIn(oldStart, oldEnd)

	// Shift surviving breaks into the new coordinate space; breaks
	// inside the edited lines are recomputed below.
	shift := newLen - iv.Len()
	patched := l.breaks[:0:0]
	for _, b := range l.breaks {
		switch {
		case b <= iv.Start:
			patched = append(patched, b)
		case b <= iv.End:
			// dropped
		default:
			patched = append(patched, b+shift)
		}
	}
	l.breaks = patched

	for i := range l.work {
		l.work[i] = transformInterval(l.work[i], d)
	}

	start := text.OffsetOfLine(text.LineOfOffset(iv.Start))
	end := text.OffsetOfLine(text.LineOfOffset(iv.Start+newLen) + 1)
	startLine := l.LineOfOffset(text, start)
	l.wrapRange(text, wc, start, end)

	newCount := logicalLinesIn(text, start, end) + l.breaksIn(start, end)

	return InvalLines{StartLine: startLine, InvalCount: oldCount, NewCount: newCount}
}

// logicalLinesIn counts the visual lines the whole-line range
// [start, end) contributes, including the trailing empty line when the
// range runs to the end of a newline-terminated text.
func logicalLinesIn(text rope.Rope, start, end int) int {
	if end >= text.Len() {
		return text.LineOfOffset(text.Len()) - text.LineOfOffset(start) + 1
	}
	return text.LineOfOffset(end-1) - text.LineOfOffset(start) + 1
}

func transformInterval(iv delta.Interval, d delta.Delta) delta.Interval {
	tr := delta.NewTransformer(d)
	return delta.Interval{Start: tr.Transform(iv.Start, false), End: tr.Transform(iv.End, true)}
}

// breaksIn counts soft breaks in [start, end).
func (l *Lines) breaksIn(start, end int) int {
	return sort.SearchInts(l.breaks, end) - sort.SearchInts(l.breaks, start)
}

// wrapRange recomputes the soft breaks of [start, end), which must be
// whole logical lines.
func (l *Lines) wrapRange(text rope.Rope, wc WidthMeasurer, start, end int) {
	nb := l.computeBreaks(text, wc, start, end)
	lo := sort.SearchInts(l.breaks, start+1)
	hi := sort.SearchInts(l.breaks, end)
	merged := make([]int, 0, lo+len(nb)+len(l.breaks)-hi)
	merged = append(merged, l.breaks[:lo]...)
	merged = append(merged, nb...)
	merged = append(merged, l.breaks[hi:]...)
	l.breaks = merged
}

func (l *Lines) computeBreaks(text rope.Rope, wc WidthMeasurer, start, end int) []int {
	var out []int
	pos := start
	for pos < end {
		line := text.LineOfOffset(pos)
		lineEnd := text.OffsetOfLine(line + 1)
		contentEnd := lineEnd
		if contentEnd > pos && contentEnd <= text.Len() && contentEnd > 0 {
			if b, ok := text.ByteAt(contentEnd - 1); ok && b == '\n' {
				contentEnd--
			}
		}
		switch l.wrap.Mode {
		case WrapBytes:
			out = appendByteBreaks(out, text, pos, contentEnd, l.wrap.Value)
		case WrapPixels:
			out = appendWidthBreaks(out, text.SliceString(pos, contentEnd), pos, wc, float64(l.wrap.Value))
		}
		pos = lineEnd
	}
	return out
}

// appendByteBreaks emits a break every n bytes, snapped back to a
// codepoint boundary.
func appendByteBreaks(out []int, text rope.Rope, start, end, n int) []int {
	if n <= 0 {
		return out
	}
	last := start
	for {
		candidate := last + n
		if candidate >= end {
			return out
		}
		for candidate > last && !text.IsCodepointBoundary(candidate) {
			candidate--
		}
		if candidate == last {
			// A single codepoint longer than n; step past it.
			candidate = last + n + 1
			for candidate < end && !text.IsCodepointBoundary(candidate) {
				candidate++
			}
			if candidate >= end {
				return out
			}
		}
		out = append(out, candidate)
		last = candidate
	}
}

// appendWidthBreaks wraps one logical line of text at word boundaries,
// breaking inside a word only when it alone exceeds the width.
func appendWidthBreaks(out []int, s string, base int, wc WidthMeasurer, maxWidth float64) []int {
	if wc == nil || maxWidth <= 0 {
		return out
	}
	var width float64
	pos := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		w := wc.MeasureWidth(word)
		if width > 0 && width+w > maxWidth && !isAllSpace(word) {
			out = append(out, base+pos)
			width = 0
		}
		if w > maxWidth {
			out, width = breakLongWord(out, word, base+pos, wc, maxWidth, width)
		} else {
			width += w
		}
		pos += len(word)
	}
	return out
}

// breakLongWord hard-breaks a word wider than the wrap width at
// grapheme granularity.
func breakLongWord(out []int, word string, base int, wc WidthMeasurer, maxWidth, width float64) ([]int, float64) {
	pos := 0
	state := -1
	rest := word
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w := wc.MeasureWidth(cluster)
		if width > 0 && width+w > maxWidth {
			out = append(out, base+pos)
			width = 0
		}
		width += w
		pos += len(cluster)
	}
	return out, width
}

func isAllSpace(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return true
}
