package view

import (
	"github.com/dshills/editcore/internal/engine/rope"
)

// LineOffset maps between line numbers and byte offsets. The trivial
// implementation counts hard newlines; a wrapped view counts visual
// lines instead.
type LineOffset interface {
	// OffsetOfLine returns the byte offset of the start of a line.
	// Lines past the end map to the text's length.
	OffsetOfLine(text rope.Rope, line int) int
	// LineOfOffset returns the line containing a byte offset.
	LineOfOffset(text rope.Rope, offset int) int
}

// LogicalLines is the LineOffset over hard newlines only.
type LogicalLines struct{}

func (LogicalLines) OffsetOfLine(text rope.Rope, line int) int {
	return text.OffsetOfLine(line)
}

func (LogicalLines) LineOfOffset(text rope.Rope, offset int) int {
	return text.LineOfOffset(offset)
}

// OffsetToLineCol converts an offset to a line and byte column under
// the given line numbering.
func OffsetToLineCol(lo LineOffset, text rope.Rope, offset int) (int, int) {
	line := lo.LineOfOffset(text, offset)
	return line, offset - lo.OffsetOfLine(text, line)
}

// LineColToOffset converts a line and byte column to an offset,
// snapping to a grapheme boundary and clamping to the line's content.
func LineColToOffset(lo LineOffset, text rope.Rope, line, col int) int {
	offset := lo.OffsetOfLine(text, line) + col
	if offset >= text.Len() {
		offset = text.Len()
		if lo.LineOfOffset(text, offset) <= line {
			return offset
		}
	} else if !text.IsCodepointBoundary(offset) {
		if prev := text.PrevGraphemeOffset(offset + 1); prev >= 0 {
			offset = prev
		}
	}
	// Do not let the column escape onto the next line.
	if next := lo.OffsetOfLine(text, line+1); offset >= next {
		if prev := text.PrevGraphemeOffset(next); prev >= 0 {
			offset = prev
		}
	}
	return offset
}
