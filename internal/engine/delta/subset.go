package delta

import (
	"fmt"
	"strings"

	"github.com/dshills/editcore/internal/engine/rope"
)

// Segment is one run of a Subset: Len consecutive positions that all
// share the same tombstone depth Count. A count of zero means the
// positions are retained.
type Segment struct {
	Len   int
	Count int
}

// Subset is a run-length encoding over [0, Len()) assigning a tombstone
// depth to every position. It is the deletion mask of the revision
// engine: positions with nonzero count are deleted. Adjacent segments
// always carry distinct counts, so equal subsets have equal encodings.
type Subset struct {
	segments []Segment
}

// NewSubset returns a subset of the given length with every position
// retained.
func NewSubset(length int) Subset {
	var sb SubsetBuilder
	sb.PadToLen(length)
	return sb.Build()
}

// Len returns the total length of the string the subset describes.
func (s Subset) Len() int {
	return s.Count(CountAll)
}

// LenAfterDelete returns the number of retained positions.
func (s Subset) LenAfterDelete() int {
	return s.Count(CountZero)
}

// IsEmpty reports whether no positions are deleted.
func (s Subset) IsEmpty() bool {
	for _, seg := range s.segments {
		if seg.Count > 0 {
			return false
		}
	}
	return true
}

// CountMatcher selects which segments of a subset an operation
// considers.
type CountMatcher uint8

// Matcher values for Count, Ranges, and Mapper.
const (
	CountZero CountMatcher = iota
	CountNonZero
	CountAll
)

func (m CountMatcher) matches(seg Segment) bool {
	switch m {
	case CountZero:
		return seg.Count == 0
	case CountNonZero:
		return seg.Count != 0
	default:
		return true
	}
}

// Count returns the total length of segments the matcher selects.
func (s Subset) Count(m CountMatcher) int {
	n := 0
	for _, seg := range s.segments {
		if m.matches(seg) {
			n += seg.Len
		}
	}
	return n
}

// DeleteFrom removes the deleted positions from r, returning the rope
// of retained text. The rope length must equal s.Len().
func (s Subset) DeleteFrom(r rope.Rope) rope.Rope {
	if r.Len() != s.Len() {
		panic(fmt.Sprintf("subset length %d does not match rope length %d", s.Len(), r.Len()))
	}
	var b rope.Builder
	for _, rg := range s.Ranges(CountZero) {
		b.PushRope(mustSlice(r, rg.Start, rg.End))
	}
	return b.Build()
}

// Union returns a subset deleting everything either input deletes.
// Counts add, so depths from independent revisions stack.
func (s Subset) Union(other Subset) Subset {
	var sb SubsetBuilder
	for _, z := range s.zip(other) {
		sb.PushSegment(z.len, z.aCount+z.bCount)
	}
	return sb.Build()
}

// transform steps through other, which describes an expansion of the
// coordinate space: its zero-count regions must add up to s.Len(). The
// positions other marks were inserted by someone else; they are given
// count zero, or other's count when union is set.
func (s Subset) transform(other Subset, union bool) Subset {
	var sb SubsetBuilder
	segs := s.segments
	cur := Segment{}
	for _, seg := range other.segments {
		if seg.Count == 0 {
			toConsume := seg.Len
			for toConsume > 0 {
				if cur.Len == 0 {
					if len(segs) == 0 {
						panic("transform: subset must cover the zero regions of other")
					}
					cur = segs[0]
					segs = segs[1:]
				}
				n := min(cur.Len, toConsume)
				sb.PushSegment(n, cur.Count)
				toConsume -= n
				cur.Len -= n
			}
		} else {
			count := 0
			if union {
				count = seg.Count
			}
			sb.PushSegment(seg.Len, count)
		}
	}
	if cur.Len != 0 || len(segs) != 0 {
		panic("transform: the zero regions of other must equal the length of the subset")
	}
	return sb.Build()
}

// TransformExpand rebases s into the coordinate space other describes,
// treating other's nonzero regions as insertions of retained text.
func (s Subset) TransformExpand(other Subset) Subset {
	return s.transform(other, false)
}

// TransformUnion is TransformExpand except the inserted regions are
// also marked deleted with other's counts.
func (s Subset) TransformUnion(other Subset) Subset {
	return s.transform(other, true)
}

// TransformShrink projects s onto the retained positions of other,
// undoing a TransformExpand by the same subset.
func (s Subset) TransformShrink(other Subset) Subset {
	var sb SubsetBuilder
	for _, z := range s.zip(other) {
		if z.bCount == 0 {
			sb.PushSegment(z.len, z.aCount)
		}
	}
	return sb.Build()
}

// Subtract lowers s's counts by other's. Every position other deletes
// must be deleted at least as deeply in s.
func (s Subset) Subtract(other Subset) Subset {
	var sb SubsetBuilder
	for _, z := range s.zip(other) {
		if z.aCount < z.bCount {
			panic("subtract: subset must be a superset of other")
		}
		sb.PushSegment(z.len, z.aCount-z.bCount)
	}
	return sb.Build()
}

// Xor toggles deletions: positions deleted in exactly one input come
// out deleted. Both inputs must use counts of zero and one only, which
// holds for the undo masks the engine stores.
func (s Subset) Xor(other Subset) Subset {
	var sb SubsetBuilder
	for _, z := range s.zip(other) {
		sb.PushSegment(z.len, z.aCount^z.bCount)
	}
	return sb.Build()
}

// Complement swaps retained and deleted positions. Nonzero counts
// collapse to zero and zero counts become one.
func (s Subset) Complement() Subset {
	var sb SubsetBuilder
	for _, seg := range s.segments {
		if seg.Count == 0 {
			sb.PushSegment(seg.Len, 1)
		} else {
			sb.PushSegment(seg.Len, 0)
		}
	}
	return sb.Build()
}

// Range is a half-open span produced by Ranges.
type Range struct {
	Start int
	End   int
}

// Ranges returns the maximal runs selected by the matcher, in ascending
// order of their position in the full string.
func (s Subset) Ranges(m CountMatcher) []Range {
	var out []Range
	pos := 0
	for _, seg := range s.segments {
		if m.matches(seg) {
			if n := len(out); n > 0 && out[n-1].End == pos {
				out[n-1].End = pos + seg.Len
			} else {
				out = append(out, Range{Start: pos, End: pos + seg.Len})
			}
		}
		pos += seg.Len
	}
	return out
}

// Equals reports whether both subsets have identical runs.
func (s Subset) Equals(other Subset) bool {
	if len(s.segments) != len(other.segments) {
		return false
	}
	for i, seg := range s.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// String renders retained positions as '-' and deleted ones as '#',
// with deeper counts shown as digits. Used in tests and debug logs.
func (s Subset) String() string {
	var b strings.Builder
	for _, seg := range s.segments {
		var c byte
		switch {
		case seg.Count == 0:
			c = '-'
		case seg.Count == 1:
			c = '#'
		case seg.Count <= 9:
			c = byte('0' + seg.Count)
		default:
			c = '+'
		}
		for i := 0; i < seg.Len; i++ {
			b.WriteByte(c)
		}
	}
	return b.String()
}

type zipSegment struct {
	len    int
	aCount int
	bCount int
}

// zip pairs the runs of two equal-length subsets, splitting segments so
// each output run has a single count from each side.
func (s Subset) zip(other Subset) []zipSegment {
	var out []zipSegment
	a, b := s.segments, other.segments
	var ca, cb Segment
	for {
		if ca.Len == 0 {
			if len(a) == 0 {
				break
			}
			ca, a = a[0], a[1:]
		}
		if cb.Len == 0 {
			if len(b) == 0 {
				break
			}
			cb, b = b[0], b[1:]
		}
		n := min(ca.Len, cb.Len)
		out = append(out, zipSegment{len: n, aCount: ca.Count, bCount: cb.Count})
		ca.Len -= n
		cb.Len -= n
	}
	if ca.Len != 0 || cb.Len != 0 || len(a) != 0 || len(b) != 0 {
		panic("cannot zip subsets of different lengths")
	}
	return out
}

// SubsetBuilder assembles a Subset from runs pushed in ascending order.
// The zero value is ready to use.
type SubsetBuilder struct {
	segments []Segment
	totalLen int
}

// PushSegment appends a run, merging it with the previous run when the
// counts match.
func (sb *SubsetBuilder) PushSegment(length, count int) {
	if length == 0 {
		return
	}
	sb.totalLen += length
	if n := len(sb.segments); n > 0 && sb.segments[n-1].Count == count {
		sb.segments[n-1].Len += length
		return
	}
	sb.segments = append(sb.segments, Segment{Len: length, Count: count})
}

// AddRange marks [start, end) with the given count, filling any gap
// since the last pushed run with count zero. Ranges must not overlap
// and must arrive in ascending order.
func (sb *SubsetBuilder) AddRange(start, end, count int) {
	if start < sb.totalLen {
		panic("AddRange: ranges must be disjoint and ascending")
	}
	sb.PushSegment(start-sb.totalLen, 0)
	sb.PushSegment(end-start, count)
}

// PadToLen extends the subset with retained positions up to length.
func (sb *SubsetBuilder) PadToLen(length int) {
	if length > sb.totalLen {
		sb.PushSegment(length-sb.totalLen, 0)
	}
}

// Build returns the finished subset.
func (sb *SubsetBuilder) Build() Subset {
	return Subset{segments: sb.segments}
}

// Mapper translates offsets in the full string to offsets within the
// matched portion of a subset. Queries must arrive in nondecreasing
// order; the mapper advances through the ranges in a single pass.
type Mapper struct {
	ranges   []Range
	idx      int
	lastIx   int
	cur      Range
	consumed int
}

// Mapper returns a mapper over the runs the matcher selects.
func (s Subset) Mapper(m CountMatcher) *Mapper {
	return &Mapper{ranges: s.Ranges(m)}
}

// DocIndexToSubset maps an offset in the full string to the offset in
// the concatenation of matched runs. Offsets inside unmatched runs snap
// to the start of the next matched run.
func (m *Mapper) DocIndexToSubset(ix int) int {
	if ix < m.lastIx {
		panic(fmt.Sprintf("mapper queries must be nondecreasing: %d after %d", ix, m.lastIx))
	}
	m.lastIx = ix
	for ix >= m.cur.End {
		m.consumed += m.cur.End - m.cur.Start
		if m.idx == len(m.ranges) {
			m.cur = Range{Start: int(^uint(0) >> 1), End: int(^uint(0) >> 1)}
			break
		}
		m.cur = m.ranges[m.idx]
		m.idx++
	}
	if ix >= m.cur.Start {
		return m.consumed + (ix - m.cur.Start)
	}
	return m.consumed
}

// offsetExpand maps an offset in the retained text to the full string,
// placing it before any deleted run at that point, or after when after
// is set.
func (s Subset) offsetExpand(ix int, after bool) int {
	if ix == 0 && !after {
		return 0
	}
	full, retained := 0, 0
	for _, seg := range s.segments {
		if seg.Count == 0 {
			if ix < retained+seg.Len || (!after && ix == retained+seg.Len) {
				return full + (ix - retained)
			}
			retained += seg.Len
		}
		full += seg.Len
	}
	return full
}

func mustSlice(r rope.Rope, start, end int) rope.Rope {
	s, err := r.Slice(start, end)
	if err != nil {
		panic(fmt.Sprintf("slice [%d, %d) of rope with length %d: %v", start, end, r.Len(), err))
	}
	return s
}
