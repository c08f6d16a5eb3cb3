package rope

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Errors reported by offset validation.
var (
	// ErrInvalidOffset indicates an offset that does not fall on a
	// codepoint boundary.
	ErrInvalidOffset = errors.New("offset not on a codepoint boundary")

	// ErrIntervalOutOfRange indicates an interval extending past the
	// end of the rope.
	ErrIntervalOutOfRange = errors.New("interval out of range")
)

// Rope is an immutable balanced tree of text. Operations return new
// Rope values; the original is never modified. Subtrees are structurally
// shared, so snapshots are cheap and safe for concurrent reads.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeaf("")}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	var b Builder
	b.WriteString(s)
	return b.Build()
}

// FromReader creates a rope by consuming an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Rope{}, err
		}
	}
	return b.Build(), nil
}

// Len returns the total byte length.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{}
	}
	return r.root.summary
}

// Measure returns the metric's count over the whole rope.
func (r Rope) Measure(m Metric) int {
	if r.root == nil {
		return 0
	}
	if v, ok := m.fromSummary(r.root.summary); ok {
		return v
	}
	// Grapheme counts are not cached; walk the leaves.
	total := 0
	it := r.Chunks()
	for it.Next() {
		total += measureLeaf(m, it.Chunk())
	}
	return total
}

// String returns the full text. Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.Len())
	r.root.appendTo(&sb)
	return sb.String()
}

// IsCodepointBoundary reports whether offset falls on a codepoint
// boundary (or either end of the rope).
func (r Rope) IsCodepointBoundary(offset int) bool {
	if offset <= 0 || offset >= r.Len() {
		return offset >= 0 && offset <= r.Len()
	}
	leaf, start := r.root.leafAt(offset)
	return isUTF8Start(leaf[offset-start])
}

// checkBounds validates that [start, end) is a well-formed interval of
// codepoint boundaries within the rope.
func (r Rope) checkBounds(start, end int) error {
	if start < 0 || start > end || end > r.Len() {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrIntervalOutOfRange, start, end, r.Len())
	}
	if !r.IsCodepointBoundary(start) || !r.IsCodepointBoundary(end) {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidOffset, start, end)
	}
	return nil
}

// Slice returns the rope covering [start, end). Fails if either offset
// is out of range or splits a codepoint.
func (r Rope) Slice(start, end int) (Rope, error) {
	if err := r.checkBounds(start, end); err != nil {
		return Rope{}, err
	}
	_, mid := r.Split(start)
	out, _ := mid.Split(end - start)
	return out, nil
}

// SliceString returns the text in [start, end) as a string, clamping the
// interval to the rope's length.
func (r Rope) SliceString(start, end int) string {
	if r.root == nil || start >= end || start >= r.Len() {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	var sb strings.Builder
	sb.Grow(end - start)
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// Edit replaces [start, end) with new text. Fails on non-boundary or
// out-of-range offsets; otherwise it always succeeds.
func (r Rope) Edit(start, end int, text string) (Rope, error) {
	if err := r.checkBounds(start, end); err != nil {
		return Rope{}, err
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(FromString(text)).Concat(right), nil
}

// Insert inserts text at offset, clamping to the rope's length.
func (r Rope) Insert(offset int, text string) Rope {
	if offset < 0 {
		offset = 0
	}
	if offset > r.Len() {
		offset = r.Len()
	}
	out, err := r.Edit(offset, offset, text)
	if err != nil {
		// Offset inside a codepoint; snap back to the previous boundary.
		for offset > 0 && !r.IsCodepointBoundary(offset) {
			offset--
		}
		out, _ = r.Edit(offset, offset, text)
	}
	return out
}

// Delete removes [start, end), clamping to the rope's bounds.
func (r Rope) Delete(start, end int) Rope {
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return r
	}
	out, err := r.Edit(start, end, "")
	if err != nil {
		return r
	}
	return out
}

// Split divides the rope at offset. Left holds [0, offset), right holds
// [offset, len).
func (r Rope) Split(offset int) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}
	l, rt := r.root.split(offset)
	return Rope{root: l}, Rope{root: rt}
}

// Concat concatenates two ropes.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() int {
	return r.Measure(Lines) + 1
}

// LineOfOffset returns the zero-based line containing offset.
func (r Rope) LineOfOffset(offset int) int {
	if r.root == nil || offset <= 0 {
		return 0
	}
	if offset > r.Len() {
		offset = r.Len()
	}
	line := 0
	node := r.root
	for !node.IsLeaf() {
		idx, rel := node.findChild(offset)
		for i := 0; i < idx; i++ {
			line += node.childSummaries[i].Lines
		}
		node = node.children[idx]
		offset = rel
	}
	for i := 0; i < offset && i < len(node.text); i++ {
		if node.text[i] == '\n' {
			line++
		}
	}
	return line
}

// OffsetOfLine returns the byte offset of the start of the zero-based
// line. Lines past the end map to the rope's length.
func (r Rope) OffsetOfLine(line int) int {
	if r.root == nil || line <= 0 {
		return 0
	}
	if line > r.Measure(Lines) {
		return r.Len()
	}
	offset := 0
	remaining := line
	node := r.root
	for !node.IsLeaf() {
		found := false
		for i, sum := range node.childSummaries {
			if sum.Lines >= remaining {
				node = node.children[i]
				found = true
				break
			}
			remaining -= sum.Lines
			offset += sum.Bytes
		}
		if !found {
			return r.Len()
		}
	}
	for i := 0; i < len(node.text); i++ {
		if node.text[i] == '\n' {
			remaining--
			if remaining == 0 {
				return offset + i + 1
			}
		}
	}
	return r.Len()
}

// OffsetToLineCol converts a byte offset to (line, byte column).
func (r Rope) OffsetToLineCol(offset int) (int, int) {
	line := r.LineOfOffset(offset)
	return line, offset - r.OffsetOfLine(line)
}

// LineColToOffset converts (line, byte column) to an offset, clamping
// the column to the line's content (excluding the newline).
func (r Rope) LineColToOffset(line, col int) int {
	start := r.OffsetOfLine(line)
	end := r.Len()
	if line < r.Measure(Lines) {
		end = r.OffsetOfLine(line+1) - 1
	}
	if start+col > end {
		return end
	}
	offset := start + col
	for offset > start && !r.IsCodepointBoundary(offset) {
		offset--
	}
	return offset
}

// NextGraphemeOffset returns the offset just past the grapheme cluster
// at offset, or -1 at the end of the rope.
func (r Rope) NextGraphemeOffset(offset int) int {
	if offset >= r.Len() {
		return -1
	}
	end := offset + maxGraphemeWindow
	if end > r.Len() {
		end = r.Len()
	}
	window := r.SliceString(offset, end)
	next := nextLeafBoundary(Graphemes, window, 0)
	if next < 0 {
		return -1
	}
	return offset + next
}

// PrevGraphemeOffset returns the offset of the start of the grapheme
// cluster before offset, or -1 at the start of the rope.
func (r Rope) PrevGraphemeOffset(offset int) int {
	if offset <= 0 {
		return -1
	}
	start := offset - maxGraphemeWindow
	if start < 0 {
		start = 0
	}
	window := r.SliceString(start, offset)
	prev := prevLeafBoundary(Graphemes, window, len(window))
	if prev < 0 {
		return -1
	}
	return start + prev
}

// maxGraphemeWindow bounds the context examined when stepping a single
// grapheme cluster. Clusters longer than this (pathological ZWJ chains)
// are stepped in pieces.
const maxGraphemeWindow = 256

// ByteAt returns the byte at offset. Returns (0, false) out of range.
func (r Rope) ByteAt(offset int) (byte, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	leaf, start := r.root.leafAt(offset)
	return leaf[offset-start], true
}

// Equals reports whether two ropes hold the same text. Compares
// content, not structure.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	// Leaf boundaries can differ; compare through aligned windows.
	a, b := r.Chunks(), other.Chunks()
	var bufA, bufB string
	for {
		if bufA == "" {
			if !a.Next() {
				return bufB == "" && !b.Next()
			}
			bufA = a.Chunk()
		}
		if bufB == "" {
			if !b.Next() {
				return false
			}
			bufB = b.Chunk()
		}
		n := len(bufA)
		if len(bufB) < n {
			n = len(bufB)
		}
		if bufA[:n] != bufB[:n] {
			return false
		}
		bufA, bufB = bufA[n:], bufB[n:]
	}
}

// Height returns the height of the tree. Useful for balance tests.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return r.root.height + 1
}
