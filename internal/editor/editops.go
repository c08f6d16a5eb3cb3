package editor

import (
	"strconv"
	"strings"

	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
	"github.com/dshills/editcore/internal/view"
)

// surroundPairs are the openers that wrap a selection when typed.
var surroundPairs = map[string]string{
	`"`: `"`,
	"'": "'",
	"{": "}",
	"[": "]",
	"(": ")",
	"<": ">",
}

// InsertChars types chars at every region. Typing a pair opener while
// nothing is a caret surrounds each region instead.
func (e *Editor) InsertChars(sel view.Selection, chars string) {
	if closer, ok := surroundPairs[chars]; ok && e.Autopair && noCaretRegion(sel) {
		e.surround(sel, chars, closer)
		return
	}
	e.thisEditType = EditTypeInsertChars
	e.insert(sel, chars)
}

func noCaretRegion(sel view.Selection) bool {
	if sel.Len() == 0 {
		return false
	}
	for _, r := range sel.Regions() {
		if r.IsCaret() {
			return false
		}
	}
	return true
}

func (e *Editor) insert(sel view.Selection, chars string) {
	text := rope.FromString(chars)
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, r := range sel.Regions() {
		b.Replace(r.Interval(), text)
	}
	e.addDelta(b.Build())
}

func (e *Editor) surround(sel view.Selection, opener, closer string) {
	e.thisEditType = EditTypeSurround
	open := rope.FromString(opener)
	clos := rope.FromString(closer)
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, r := range sel.Regions() {
		b.Replace(delta.Interval{Start: r.Min(), End: r.Min()}, open)
		b.Replace(delta.Interval{Start: r.Max(), End: r.Max()}, clos)
	}
	e.addDelta(b.Build())
}

// InsertNewline breaks the line at every region.
func (e *Editor) InsertNewline(sel view.Selection) {
	e.thisEditType = EditTypeInsertNewline
	e.insert(sel, "\n")
}

// InsertTab inserts a tab at every region, or spaces up to the next
// tab stop when tabs translate to spaces.
func (e *Editor) InsertTab(sel view.Selection) {
	e.thisEditType = EditTypeInsertChars
	if !e.TranslateTabs {
		e.insert(sel, "\t")
		return
	}
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, r := range sel.Regions() {
		col := r.Min() - e.text.OffsetOfLine(e.text.LineOfOffset(r.Min()))
		n := e.TabSize - col%e.TabSize
		b.Replace(r.Interval(), rope.FromString(strings.Repeat(" ", n)))
	}
	e.addDelta(b.Build())
}

// DeleteByMovement removes what each region's movement would cross;
// non-caret regions are deleted as they stand.
func (e *Editor) DeleteByMovement(sel view.Selection, lo view.LineOffset, height int, motion view.Motion, quantity view.Quantity) {
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	lastEnd := 0
	for _, r := range sel.Regions() {
		target := r
		if r.IsCaret() {
			target = view.RegionMovement(motion, quantity, r, lo, height, e.text, true)
		}
		start, end := target.Min(), target.Max()
		// Adjacent movements may cross; keep the deletes disjoint.
		if start < lastEnd {
			start = lastEnd
		}
		if end <= start {
			continue
		}
		b.Delete(delta.Interval{Start: start, End: end})
		lastEnd = end
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeDelete
	e.addDelta(b.Build())
}

// Paste inserts chars at every region. When the clipboard holds
// exactly one newline-terminated line per region, each region gets its
// own line, without the terminator.
func (e *Editor) Paste(sel view.Selection, chars string) {
	e.thisEditType = EditTypeInsertChars
	lines := newlineTerminatedLines(chars)
	if lines == nil || len(lines) != sel.Len() {
		e.insert(sel, chars)
		return
	}
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for i, r := range sel.Regions() {
		b.Replace(r.Interval(), rope.FromString(lines[i]))
	}
	e.addDelta(b.Build())
}

// newlineTerminatedLines splits chars into lines without their
// terminators, or returns nil when chars is not a whole number of
// newline-terminated lines.
func newlineTerminatedLines(chars string) []string {
	if chars == "" || !strings.HasSuffix(chars, "\n") {
		return nil
	}
	return strings.Split(strings.TrimSuffix(chars, "\n"), "\n")
}

// Cut moves the selected text into the kill ring.
func (e *Editor) Cut(sel view.Selection) {
	e.copyToKillRing(sel)
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, r := range sel.Regions() {
		if !r.IsCaret() {
			b.Delete(r.Interval())
		}
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeDelete
	e.addDelta(b.Build())
}

// Copy places the selected text into the kill ring.
func (e *Editor) Copy(sel view.Selection) {
	e.copyToKillRing(sel)
}

func (e *Editor) copyToKillRing(sel view.Selection) {
	var parts []string
	for _, r := range sel.Regions() {
		if !r.IsCaret() {
			parts = append(parts, e.text.SliceString(r.Min(), r.Max()))
		}
	}
	if len(parts) > 0 {
		e.killRing = strings.Join(parts, "\n")
	}
}

// Yank inserts the kill ring at every region.
func (e *Editor) Yank(sel view.Selection) {
	if e.killRing == "" {
		return
	}
	e.thisEditType = EditTypeInsertChars
	e.insert(sel, e.killRing)
}

// tabText is what one indent level inserts.
func (e *Editor) tabText() string {
	if e.TranslateTabs {
		return strings.Repeat(" ", e.TabSize)
	}
	return "\t"
}

// Indent shifts every selected line right by one tab stop.
func (e *Editor) Indent(sel view.Selection) {
	tab := rope.FromString(e.tabText())
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, start := range e.selectedLineStarts(sel) {
		b.Replace(delta.Interval{Start: start, End: start}, tab)
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeIndent
	e.addDelta(b.Build())
}

// Outdent removes one leading tab stop from every selected line.
func (e *Editor) Outdent(sel view.Selection) {
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, start := range e.selectedLineStarts(sel) {
		n := leadingIndentWidth(e.text, start, e.TabSize)
		if n > 0 {
			b.Delete(delta.Interval{Start: start, End: start + n})
		}
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeIndent
	e.addDelta(b.Build())
}

// leadingIndentWidth is how many bytes one outdent removes at a line
// start: a single tab, or up to tabSize spaces.
func leadingIndentWidth(text rope.Rope, start, tabSize int) int {
	if b, ok := text.ByteAt(start); ok && b == '\t' {
		return 1
	}
	n := 0
	for n < tabSize {
		b, ok := text.ByteAt(start + n)
		if !ok || b != ' ' {
			break
		}
		n++
	}
	return n
}

// selectedLineStarts returns the start offset of every logical line
// any region touches, deduplicated and ascending.
func (e *Editor) selectedLineStarts(sel view.Selection) []int {
	var starts []int
	lastLine := -1
	for _, r := range sel.Regions() {
		first := e.text.LineOfOffset(r.Min())
		last := e.text.LineOfOffset(r.Max())
		for line := first; line <= last; line++ {
			if line > lastLine {
				starts = append(starts, e.text.OffsetOfLine(line))
				lastLine = line
			}
		}
	}
	return starts
}

// DuplicateLine copies every selected line in place.
func (e *Editor) DuplicateLine(sel view.Selection) {
	e.Duplicate(sel, view.QuantityLine)
}

// Duplicate copies the unit under each region: whole lines for the
// Line quantity or caret regions, otherwise the region's own text.
func (e *Editor) Duplicate(sel view.Selection, quantity view.Quantity) {
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	lastEnd := -1
	for _, r := range sel.Regions() {
		var iv delta.Interval
		if quantity == view.QuantityLine || r.IsCaret() {
			iv = e.lineRange(r)
		} else {
			iv = r.Interval()
		}
		if iv.Start < lastEnd || iv.IsEmpty() {
			continue
		}
		lastEnd = iv.End
		dup := e.text.SliceString(iv.Start, iv.End)
		if !strings.HasSuffix(dup, "\n") && (quantity == view.QuantityLine || r.IsCaret()) {
			dup += "\n"
		}
		b.Replace(delta.Interval{Start: iv.Start, End: iv.Start}, rope.FromString(dup))
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeOther
	e.addDelta(b.Build())
}

// Replace substitutes the unit under each region with the kill ring.
func (e *Editor) Replace(sel view.Selection, quantity view.Quantity) {
	if e.killRing == "" {
		return
	}
	repl := rope.FromString(e.killRing)
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	lastEnd := -1
	for _, r := range sel.Regions() {
		iv := r.Interval()
		if quantity == view.QuantityLine {
			iv = e.lineRange(r)
		}
		// Carets on one line share a cover; replace it once.
		if iv.Start < lastEnd || (iv.Start == lastEnd && iv.IsEmpty()) {
			continue
		}
		lastEnd = iv.End
		b.Replace(iv, repl)
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeOther
	e.addDelta(b.Build())
}

// lineRange is the whole-line cover of a region, including the final
// newline.
func (e *Editor) lineRange(r view.SelRegion) delta.Interval {
	first := e.text.LineOfOffset(r.Min())
	last := e.text.LineOfOffset(r.Max())
	return delta.Interval{
		Start: e.text.OffsetOfLine(first),
		End:   e.text.OffsetOfLine(last + 1),
	}
}

// Transpose swaps the graphemes around each caret. At a line or
// buffer end the two preceding graphemes swap instead.
func (e *Editor) Transpose(sel view.Selection) {
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	lastEnd := 0
	for _, r := range sel.Regions() {
		if !r.IsCaret() {
			continue
		}
		middle := r.End
		prev := e.text.PrevGraphemeOffset(middle)
		if prev < 0 {
			continue
		}
		next := e.text.NextGraphemeOffset(middle)
		atEnd := next < 0
		if !atEnd {
			if c, ok := e.text.ByteAt(middle); ok && c == '\n' {
				atEnd = true
			}
		}
		if atEnd {
			first := e.text.PrevGraphemeOffset(prev)
			if first < 0 || first < lastEnd {
				continue
			}
			swapped := e.text.SliceString(prev, middle) + e.text.SliceString(first, prev)
			b.Replace(delta.Interval{Start: first, End: middle}, rope.FromString(swapped))
			lastEnd = middle
		} else {
			if prev < lastEnd {
				continue
			}
			swapped := e.text.SliceString(middle, next) + e.text.SliceString(prev, middle)
			b.Replace(delta.Interval{Start: prev, End: next}, rope.FromString(swapped))
			lastEnd = next
		}
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeTranspose
	e.addDelta(b.Build())
}

// ChangeNumber adds amount to the number under each region.
func (e *Editor) ChangeNumber(sel view.Selection, amount int64) {
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, r := range sel.Regions() {
		iv, ok := e.numberAt(r)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(e.text.SliceString(iv.Start, iv.End), 10, 64)
		if err != nil {
			continue
		}
		b.Replace(iv, rope.FromString(strconv.FormatInt(n+amount, 10)))
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeOther
	e.addDelta(b.Build())
}

// numberAt finds the digit run the region touches, with an optional
// leading minus sign.
func (e *Editor) numberAt(r view.SelRegion) (delta.Interval, bool) {
	start, end := r.Min(), r.Max()
	isDigit := func(off int) bool {
		b, ok := e.text.ByteAt(off)
		return ok && b >= '0' && b <= '9'
	}
	for start > 0 && isDigit(start-1) {
		start--
	}
	for end < e.text.Len() && isDigit(end) {
		end++
	}
	if start == end || !isDigit(start) {
		return delta.Interval{}, false
	}
	if start > 0 {
		if b, ok := e.text.ByteAt(start - 1); ok && b == '-' {
			start--
		}
	}
	return delta.Interval{Start: start, End: end}, true
}

// Uppercase folds each non-caret region to upper case.
func (e *Editor) Uppercase(sel view.Selection) {
	e.foldCase(sel, strings.ToUpper)
}

// Lowercase folds each non-caret region to lower case.
func (e *Editor) Lowercase(sel view.Selection) {
	e.foldCase(sel, strings.ToLower)
}

func (e *Editor) foldCase(sel view.Selection, fold func(string) string) {
	var b delta.DeltaBuilder
	b.Init(e.text.Len())
	for _, r := range sel.Regions() {
		if r.IsCaret() {
			continue
		}
		b.Replace(r.Interval(), rope.FromString(fold(e.text.SliceString(r.Min(), r.Max()))))
	}
	if b.IsEmpty() {
		return
	}
	e.thisEditType = EditTypeOther
	e.addDelta(b.Build())
}
