// Package client carries the outbound protocol between the editing
// core and a front-end: view update programs, style definitions,
// scroll requests and width measurement.
package client

// ViewID identifies one view of a buffer.
type ViewID uint64

// OpType is the kind of an update operation.
type OpType uint8

const (
	OpInsert OpType = iota
	OpSkip
	OpInvalidate
	OpCopy
	OpUpdate
)

func (op OpType) String() string {
	switch op {
	case OpInsert:
		return "ins"
	case OpSkip:
		return "skip"
	case OpInvalidate:
		return "invalidate"
	case OpCopy:
		return "copy"
	case OpUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Line is the payload for one rendered line. Text is only meaningful
// on Insert ops; Update ops carry new cursors and styles for a line
// the front-end already has. Ln is the 1-based logical line number,
// zero for the continuation lines of a soft-wrapped logical line.
type Line struct {
	Text    string
	Cursors []int
	Styles  []int
	Ln      int
}

// UpdateOp is one instruction of an update program. The front-end
// executes the ops in order against its line cache: Skip drops n old
// lines, Copy carries n old lines over, Invalidate emits n
// placeholder lines, Insert adds new lines, and Update rewrites the
// cursors and styles of n old lines.
//
// FirstLineNumber renumbers the copied or updated lines; it is 1-based
// and zero when absent.
type UpdateOp struct {
	Op              OpType
	N               int
	Lines           []Line
	FirstLineNumber int
}

func Skip(n int) UpdateOp {
	return UpdateOp{Op: OpSkip, N: n}
}

func Invalidate(n int) UpdateOp {
	return UpdateOp{Op: OpInvalidate, N: n}
}

func Copy(n, firstLineNumber int) UpdateOp {
	return UpdateOp{Op: OpCopy, N: n, FirstLineNumber: firstLineNumber}
}

func Insert(lines []Line) UpdateOp {
	return UpdateOp{Op: OpInsert, N: len(lines), Lines: lines}
}

func UpdateLines(lines []Line, firstLineNumber int) UpdateOp {
	return UpdateOp{Op: OpUpdate, N: len(lines), Lines: lines, FirstLineNumber: firstLineNumber}
}

// Update is one rendering delta for a view.
type Update struct {
	Ops         []UpdateOp
	Pristine    bool
	Annotations []AnnotationSlice
}

// AnnotationType distinguishes annotation sets. Selection and find are
// built in; plugins may publish their own types.
type AnnotationType string

const (
	AnnotationSelection AnnotationType = "selection"
	AnnotationFind      AnnotationType = "find"
)

// AnnotationRange locates one annotation by line and column.
type AnnotationRange struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// AnnotationSlice is the visible portion of one annotation set.
// Payloads, when present, holds one entry per range.
type AnnotationSlice struct {
	Type     AnnotationType
	Ranges   []AnnotationRange
	Payloads []string
}
