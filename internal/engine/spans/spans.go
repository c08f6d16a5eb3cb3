// Package spans maintains ordered maps from disjoint text intervals to
// payloads, the structure styling and annotation data is carried in.
// Spans know the length of the text they annotate and follow it through
// edits, either by splicing (Edit) or by rebasing through a delta
// transformer.
package spans

import (
	"fmt"

	"github.com/dshills/editcore/internal/engine/delta"
)

// Span is one annotated interval.
type Span[T any] struct {
	Iv      delta.Interval
	Payload T
}

// Spans maps disjoint ascending intervals over [0, TotalLen()) to
// payloads. The zero value annotates an empty text.
type Spans[T any] struct {
	totalLen int
	spans    []Span[T]
}

// TotalLen returns the length of the annotated text, which bounds every
// interval. It is unrelated to the number of spans.
func (s Spans[T]) TotalLen() int {
	return s.totalLen
}

// Count returns the number of spans.
func (s Spans[T]) Count() int {
	return len(s.spans)
}

// IsEmpty reports whether no spans are present.
func (s Spans[T]) IsEmpty() bool {
	return len(s.spans) == 0
}

// Iter calls fn for each span in ascending order until fn returns
// false.
func (s Spans[T]) Iter(fn func(iv delta.Interval, payload T) bool) {
	for _, sp := range s.spans {
		if !fn(sp.Iv, sp.Payload) {
			return
		}
	}
}

// Subseq returns the spans covering iv, clipped to it and rebased so
// the result's coordinates start at zero.
func (s Spans[T]) Subseq(iv delta.Interval) Spans[T] {
	out := Spans[T]{totalLen: iv.Len()}
	for _, sp := range s.spans {
		clipped := sp.Iv.Intersect(iv)
		if clipped.IsEmpty() {
			continue
		}
		out.spans = append(out.spans, Span[T]{Iv: clipped.TranslateNeg(iv.Start), Payload: sp.Payload})
	}
	return out
}

// Edit replaces the cover of iv with repl, whose coordinates are
// relative to iv.Start, and shifts everything after iv by the length
// difference. Spans straddling the edit boundary are clipped.
func (s Spans[T]) Edit(iv delta.Interval, repl Spans[T]) Spans[T] {
	shift := repl.TotalLen() - iv.Len()
	out := Spans[T]{totalLen: s.totalLen + shift}
	for _, sp := range s.spans {
		if sp.Iv.End <= iv.Start {
			out.spans = append(out.spans, sp)
		} else if sp.Iv.Start < iv.Start {
			out.spans = append(out.spans, Span[T]{
				Iv:      delta.Interval{Start: sp.Iv.Start, End: iv.Start},
				Payload: sp.Payload,
			})
		}
	}
	for _, sp := range repl.spans {
		out.spans = append(out.spans, Span[T]{Iv: sp.Iv.Translate(iv.Start), Payload: sp.Payload})
	}
	for _, sp := range s.spans {
		if sp.Iv.Start >= iv.End {
			out.spans = append(out.spans, Span[T]{Iv: sp.Iv.Translate(shift), Payload: sp.Payload})
		} else if sp.Iv.End > iv.End {
			out.spans = append(out.spans, Span[T]{
				Iv:      delta.Interval{Start: iv.End + shift, End: sp.Iv.End + shift},
				Payload: sp.Payload,
			})
		}
	}
	return out
}

// Transform rebases every span onto the output coordinates of the delta
// behind tr. Span starts bias after concurrent inserts and ends before
// them, so text inserted at a span edge stays outside the span. Spans
// that collapse to zero length are dropped.
func (s Spans[T]) Transform(tr *delta.Transformer, newTotalLen int) Spans[T] {
	out := Spans[T]{totalLen: newTotalLen}
	for _, sp := range s.spans {
		start := tr.Transform(sp.Iv.Start, true)
		end := tr.Transform(sp.Iv.End, false)
		if end <= start {
			continue
		}
		out.spans = append(out.spans, Span[T]{Iv: delta.Interval{Start: start, End: end}, Payload: sp.Payload})
	}
	return out
}

// overlay inserts (iv, payload), clipping any existing cover of iv.
// Later overlays win.
func (s Spans[T]) overlay(iv delta.Interval, payload T) Spans[T] {
	if iv.IsEmpty() {
		return s
	}
	out := Spans[T]{totalLen: s.totalLen}
	inserted := false
	for _, sp := range s.spans {
		if sp.Iv.End <= iv.Start || sp.Iv.Start >= iv.End {
			if !inserted && sp.Iv.Start >= iv.End {
				out.spans = append(out.spans, Span[T]{Iv: iv, Payload: payload})
				inserted = true
			}
			out.spans = append(out.spans, sp)
			continue
		}
		if sp.Iv.Start < iv.Start {
			out.spans = append(out.spans, Span[T]{
				Iv:      delta.Interval{Start: sp.Iv.Start, End: iv.Start},
				Payload: sp.Payload,
			})
		}
		if !inserted {
			out.spans = append(out.spans, Span[T]{Iv: iv, Payload: payload})
			inserted = true
		}
		if sp.Iv.End > iv.End {
			out.spans = append(out.spans, Span[T]{
				Iv:      delta.Interval{Start: iv.End, End: sp.Iv.End},
				Payload: sp.Payload,
			})
		}
	}
	if !inserted {
		out.spans = append(out.spans, Span[T]{Iv: iv, Payload: payload})
	}
	return out
}

// Builder assembles spans added in ascending, non-overlapping order.
type Builder[T any] struct {
	spans    []Span[T]
	totalLen int
}

// NewBuilder returns a builder for spans over a text of the given
// length.
func NewBuilder[T any](totalLen int) *Builder[T] {
	return &Builder[T]{totalLen: totalLen}
}

// Add appends one span. Intervals must ascend and must not exceed the
// total length.
func (b *Builder[T]) Add(iv delta.Interval, payload T) {
	if n := len(b.spans); n > 0 && iv.Start < b.spans[n-1].Iv.End {
		panic(fmt.Sprintf("span %v overlaps previous %v", iv, b.spans[n-1].Iv))
	}
	if iv.End > b.totalLen {
		panic(fmt.Sprintf("span %v exceeds total length %d", iv, b.totalLen))
	}
	if iv.IsEmpty() {
		return
	}
	b.spans = append(b.spans, Span[T]{Iv: iv, Payload: payload})
}

// Build returns the finished spans.
func (b *Builder[T]) Build() Spans[T] {
	return Spans[T]{totalLen: b.totalLen, spans: b.spans}
}
