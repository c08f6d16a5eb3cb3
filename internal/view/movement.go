package view

import (
	"strings"

	"github.com/dshills/editcore/internal/engine/rope"
)

// Motion names a direction or target for cursor movement.
type Motion uint8

const (
	MotionNone Motion = iota
	MotionFirst
	MotionLast
	MotionBegin
	MotionEnd
	MotionForward
	MotionBackward
	MotionAbove
	MotionBelow
)

// Quantity scales a motion.
type Quantity uint8

const (
	QuantityCharacter Quantity = iota
	QuantityLine
	QuantityWord
	QuantityPage
	QuantityParagraph
	QuantityDocument
	QuantityBracket
	QuantitySelection
)

// scrollOverlap is the number of lines from the previous page that stay
// visible when paging.
const scrollOverlap = 2

func scrollHeight(height int) int {
	if height-scrollOverlap < 1 {
		return 1
	}
	return height - scrollOverlap
}

// selectionPosition returns the column and line of the active point of
// the region. The active point is the caret end when extending, else
// the edge in the direction of travel.
func selectionPosition(r SelRegion, lo LineOffset, text rope.Rope, moveUp, modify bool) (int, int) {
	active := r.End
	if !modify {
		if moveUp {
			active = r.Min()
		} else {
			active = r.Max()
		}
	}
	var col int
	if r.Horiz != nil {
		col = r.Horiz.Col
	} else {
		_, col = OffsetToLineCol(lo, text, active)
	}
	return col, lo.LineOfOffset(text, active)
}

// verticalMotion moves by lineDelta lines, preserving the horizontal
// position across the move.
func verticalMotion(r SelRegion, lo LineOffset, text rope.Rope, lineDelta int, modify bool) (int, *HorizPos) {
	col, line := selectionPosition(r, lo, text, lineDelta < 0, modify)
	nLines := lo.LineOfOffset(text, text.Len())
	horiz := &HorizPos{Col: col}
	if lineDelta < 0 && -lineDelta > line {
		return 0, horiz
	}
	line += lineDelta
	if line > nLines {
		return text.Len(), horiz
	}
	return LineColToOffset(lo, text, line, col), horiz
}

// verticalMotionExactPos moves to the nearest line in the given
// direction that is long enough to hold the current column, skipping
// shorter lines. Used when adding a selection above or below.
func verticalMotionExactPos(r SelRegion, lo LineOffset, text rope.Rope, moveUp, modify bool) (int, *HorizPos) {
	col, initLine := selectionPosition(r, lo, text, moveUp, modify)
	nLines := lo.LineOfOffset(text, text.Len())
	lineLen := lo.OffsetOfLine(text, initLine+1) - lo.OffsetOfLine(text, initLine)
	if moveUp && initLine == 0 {
		return LineColToOffset(lo, text, initLine, col), &HorizPos{Col: col}
	}
	line := initLine + 1
	if moveUp {
		line = initLine - 1
	}
	// lineLen includes the newline, hence > rather than >=.
	if lineLen < col {
		col = lineLen - 1
	}
	for {
		lineLen = lo.OffsetOfLine(text, line+1) - lo.OffsetOfLine(text, line)
		if lineLen > col {
			break
		}
		if line >= nLines || (line == 0 && moveUp) {
			line = initLine
			break
		}
		if moveUp {
			line--
		} else {
			line++
		}
	}
	return LineColToOffset(lo, text, line, col), &HorizPos{Col: col}
}

func lineIsBlank(text rope.Rope, line int) bool {
	start := text.OffsetOfLine(line)
	end := text.OffsetOfLine(line + 1)
	return strings.TrimSpace(text.SliceString(start, end)) == ""
}

// paragraphStart returns the offset of the first line of the paragraph
// containing offset, or of the previous paragraph when already there.
func paragraphStart(text rope.Rope, offset int) int {
	line := text.LineOfOffset(offset)
	if text.OffsetOfLine(line) == offset && line > 0 {
		line--
	}
	for line > 0 && lineIsBlank(text, line) {
		line--
	}
	for line > 0 && !lineIsBlank(text, line-1) {
		line--
	}
	return text.OffsetOfLine(line)
}

// paragraphEnd returns the offset just past the last line of the
// paragraph containing offset, or of the next paragraph when already
// there.
func paragraphEnd(text rope.Rope, offset int) int {
	nLines := text.Measure(rope.Lines)
	line := text.LineOfOffset(offset)
	for {
		for line < nLines && lineIsBlank(text, line) {
			line++
		}
		for line < nLines && !lineIsBlank(text, line+1) {
			line++
		}
		end := text.Len()
		if line < nLines {
			end = text.OffsetOfLine(line+1) - 1
		}
		if end > offset || line >= nLines {
			return end
		}
		line++
	}
}

// matchBracket finds the partner of the bracket at or just before
// offset. Returns -1 when there is no bracket or no partner.
func matchBracket(text rope.Rope, offset int) int {
	pos := offset
	b, ok := text.ByteAt(pos)
	if !ok || !isBracket(b) {
		if pos == 0 {
			return -1
		}
		pos--
		b, ok = text.ByteAt(pos)
		if !ok || !isBracket(b) {
			return -1
		}
	}
	open, close, forward := bracketPartner(b)
	depth := 0
	if forward {
		for i := pos; i < text.Len(); i++ {
			c, _ := text.ByteAt(i)
			if c == open {
				depth++
			} else if c == close {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	} else {
		for i := pos; i >= 0; i-- {
			c, _ := text.ByteAt(i)
			if c == close {
				depth++
			} else if c == open {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

func isBracket(b byte) bool {
	switch b {
	case '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

// bracketPartner returns the open and close bytes for a bracket and
// whether the search runs forward.
func bracketPartner(b byte) (byte, byte, bool) {
	switch b {
	case '(':
		return '(', ')', true
	case '[':
		return '[', ']', true
	case '{':
		return '{', '}', true
	case ')':
		return '(', ')', false
	case ']':
		return '[', ']', false
	default:
		return '{', '}', false
	}
}

// RegionMovement computes the result of one motion on one region.
// height is the viewport height in lines; when modify is true the
// start of the region is pinned and only the active end moves.
func RegionMovement(m Motion, q Quantity, r SelRegion, lo LineOffset, height int, text rope.Rope, modify bool) SelRegion {
	offset := r.End
	var horiz *HorizPos
	switch q {
	case QuantityWord:
		switch m {
		case MotionBackward:
			offset = NewWordCursor(text, r.End).PrevBoundary()
		case MotionForward:
			offset = NewWordCursor(text, r.End).NextBoundary()
		}
	case QuantityCharacter:
		switch m {
		case MotionBackward:
			if r.IsCaret() || modify {
				if prev := text.PrevGraphemeOffset(r.End); prev >= 0 {
					offset = prev
				} else {
					offset = 0
					horiz = r.Horiz
				}
			} else {
				offset = r.Min()
			}
		case MotionForward:
			if r.IsCaret() || modify {
				if next := text.NextGraphemeOffset(r.End); next >= 0 {
					offset = next
				} else {
					horiz = r.Horiz
				}
			} else {
				offset = r.Max()
			}
		case MotionAbove:
			offset, horiz = verticalMotion(r, lo, text, -1, modify)
		case MotionBelow:
			offset, horiz = verticalMotion(r, lo, text, 1, modify)
		}
	case QuantityLine:
		switch m {
		case MotionFirst:
			offset = lo.OffsetOfLine(text, lo.LineOfOffset(text, r.End))
		case MotionLast:
			line := lo.LineOfOffset(text, r.End)
			offset = text.Len()
			if line < lo.LineOfOffset(text, text.Len()) {
				if prev := text.PrevGraphemeOffset(lo.OffsetOfLine(text, line+1)); prev >= 0 {
					offset = prev
				}
			}
		case MotionBegin:
			c := rope.NewCursor(text, r.End)
			offset = 0
			if prev := c.Prev(rope.Lines); prev >= 0 {
				offset = prev
			}
		case MotionEnd:
			c := rope.NewCursor(text, r.End)
			offset = text.Len()
			if next := c.Next(rope.Lines); next >= 0 {
				// Land before the newline, not after it.
				if prev := text.PrevGraphemeOffset(next); prev >= r.End {
					offset = prev
				}
			}
		}
	case QuantityPage:
		switch m {
		case MotionAbove:
			offset, horiz = verticalMotion(r, lo, text, -scrollHeight(height), modify)
		case MotionBelow:
			offset, horiz = verticalMotion(r, lo, text, scrollHeight(height), modify)
		}
	case QuantityParagraph:
		switch m {
		case MotionBackward:
			offset = paragraphStart(text, r.End)
		case MotionForward:
			offset = paragraphEnd(text, r.End)
		}
	case QuantityDocument:
		switch m {
		case MotionFirst, MotionBackward:
			offset = 0
		case MotionLast, MotionForward:
			offset = text.Len()
		}
	case QuantityBracket:
		if match := matchBracket(text, r.End); match >= 0 {
			offset = match
		}
	case QuantitySelection:
		switch m {
		case MotionAbove:
			offset, horiz = verticalMotionExactPos(r, lo, text, true, modify)
		case MotionBelow:
			offset, horiz = verticalMotionExactPos(r, lo, text, false, modify)
		}
	}
	start := offset
	if modify {
		start = r.Start
	}
	return Region(start, offset).WithHoriz(horiz)
}

// SelectionMovement applies a motion to every region of a selection.
func SelectionMovement(m Motion, q Quantity, s Selection, lo LineOffset, height int, text rope.Rope, modify bool) Selection {
	var sel Selection
	for _, r := range s.Regions() {
		sel.AddRegion(RegionMovement(m, q, r, lo, height, text, modify))
	}
	return sel
}
