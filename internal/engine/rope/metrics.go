package rope

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// TextSummary holds aggregated metrics for a span of text. Internal
// nodes cache the sum of their children's summaries, which is what makes
// metric-based navigation O(log n).
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes int

	// Chars is the Unicode scalar (codepoint) count.
	Chars int

	// Lines is the number of newline characters.
	Lines int
}

// Add combines two summaries (monoid operation).
func (s TextSummary) Add(other TextSummary) TextSummary {
	return TextSummary{
		Bytes: s.Bytes + other.Bytes,
		Chars: s.Chars + other.Chars,
		Lines: s.Lines + other.Lines,
	}
}

// ComputeSummary calculates metrics for a string.
func ComputeSummary(s string) TextSummary {
	sum := TextSummary{Bytes: len(s)}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUTF8Start(b) {
			sum.Chars++
		}
		if b == '\n' {
			sum.Lines++
		}
	}
	return sum
}

// Metric identifies a measure on text. Metrics are additive and define
// boundary positions that cursors can step between.
type Metric uint8

const (
	// Bytes measures UTF-8 bytes; every byte offset is a boundary.
	Bytes Metric = iota

	// BaseMetric measures Unicode scalars; boundaries are codepoint
	// starts (and the end of text).
	BaseMetric

	// Lines measures newline characters; boundaries sit immediately
	// after each '\n'.
	Lines

	// Graphemes measures extended grapheme clusters per UAX #29.
	Graphemes
)

// String returns the metric's name.
func (m Metric) String() string {
	switch m {
	case Bytes:
		return "bytes"
	case BaseMetric:
		return "base"
	case Lines:
		return "lines"
	case Graphemes:
		return "graphemes"
	default:
		return "unknown"
	}
}

// measureLeaf returns the metric's count over an entire leaf string.
func measureLeaf(m Metric, s string) int {
	switch m {
	case Bytes:
		return len(s)
	case BaseMetric:
		return utf8.RuneCountInString(s)
	case Lines:
		n := 0
		for i := 0; i < len(s); i++ {
			if s[i] == '\n' {
				n++
			}
		}
		return n
	case Graphemes:
		return uniseg.GraphemeClusterCount(s)
	default:
		return 0
	}
}

// fromSummary reads the metric's count out of a precomputed summary.
// Graphemes cannot be read from summaries and report false.
func (m Metric) fromSummary(sum TextSummary) (int, bool) {
	switch m {
	case Bytes:
		return sum.Bytes, true
	case BaseMetric:
		return sum.Chars, true
	case Lines:
		return sum.Lines, true
	default:
		return 0, false
	}
}

// isLeafBoundary reports whether pos is a boundary of the metric within
// the leaf string. pos is in [0, len(s)].
func isLeafBoundary(m Metric, s string, pos int) bool {
	switch m {
	case Bytes:
		return true
	case BaseMetric:
		return pos == len(s) || isUTF8Start(s[pos])
	case Lines:
		return pos > 0 && s[pos-1] == '\n'
	case Graphemes:
		return isGraphemeBoundary(s, pos)
	default:
		return false
	}
}

// nextLeafBoundary returns the next boundary strictly after pos within
// the leaf, or -1 if the leaf has none.
func nextLeafBoundary(m Metric, s string, pos int) int {
	switch m {
	case Bytes:
		if pos < len(s) {
			return pos + 1
		}
		return -1
	case BaseMetric:
		for i := pos + 1; i <= len(s); i++ {
			if i == len(s) || isUTF8Start(s[i]) {
				return i
			}
		}
		return -1
	case Lines:
		for i := pos; i < len(s); i++ {
			if s[i] == '\n' {
				return i + 1
			}
		}
		return -1
	case Graphemes:
		rest := s[pos:]
		if rest == "" {
			return -1
		}
		g := uniseg.NewGraphemes(rest)
		if !g.Next() {
			return -1
		}
		_, to := g.Positions()
		return pos + to
	default:
		return -1
	}
}

// prevLeafBoundary returns the previous boundary strictly before pos
// within the leaf, or -1 if the leaf has none.
func prevLeafBoundary(m Metric, s string, pos int) int {
	switch m {
	case Bytes:
		if pos > 0 {
			return pos - 1
		}
		return -1
	case BaseMetric:
		for i := pos - 1; i >= 0; i-- {
			if isUTF8Start(s[i]) {
				return i
			}
		}
		return -1
	case Lines:
		for i := pos - 1; i > 0; i-- {
			if s[i-1] == '\n' {
				return i
			}
		}
		return -1
	case Graphemes:
		if pos <= 0 {
			return -1
		}
		last := -1
		g := uniseg.NewGraphemes(s)
		for g.Next() {
			from, _ := g.Positions()
			if from >= pos {
				break
			}
			last = from
		}
		return last
	default:
		return -1
	}
}

// canFragment reports whether a unit of the metric may span leaf
// boundaries. A line's content or a grapheme cluster can straddle a
// leaf split; codepoints never do.
func (m Metric) canFragment() bool {
	return m == Lines || m == Graphemes
}

// isGraphemeBoundary reports whether pos is a grapheme cluster boundary
// within s. Both ends of the string count as boundaries.
func isGraphemeBoundary(s string, pos int) bool {
	if pos == 0 || pos == len(s) {
		return true
	}
	if !isUTF8Start(s[pos]) {
		return false
	}
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		from, _ := g.Positions()
		if from == pos {
			return true
		}
		if from > pos {
			return false
		}
	}
	return false
}

// isUTF8Start returns true if the byte begins a UTF-8 sequence.
// Continuation bytes have the form 10xxxxxx.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}
