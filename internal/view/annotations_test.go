package view

import (
	"reflect"
	"testing"

	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
	"github.com/dshills/editcore/internal/engine/spans"
)

func findSpans(t *testing.T, ranges ...delta.Interval) spans.Spans[string] {
	t.Helper()
	total := 0
	for _, iv := range ranges {
		if iv.End > total {
			total = iv.End
		}
	}
	b := spans.NewBuilder[string](total)
	for _, iv := range ranges {
		b.Add(iv, "")
	}
	return b.Build()
}

func TestAnnotationStoreUpdateAndIter(t *testing.T) {
	text := rope.FromString("aaaa\nbbbb\n")
	store := NewAnnotationStore()

	// A find hit over "bbbb": interval [5,9), one relative span.
	store.Update(1, client.AnnotationFind, delta.Interval{Start: 5, End: 9},
		findSpans(t, delta.Interval{Start: 0, End: 4}))

	slices := store.IterRange(LogicalLines{}, text, delta.Interval{Start: 0, End: text.Len()})
	if len(slices) != 1 {
		t.Fatalf("slices = %d, want 1", len(slices))
	}
	if slices[0].Type != client.AnnotationFind {
		t.Errorf("type = %q", slices[0].Type)
	}
	want := []client.AnnotationRange{{StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 4}}
	if !reflect.DeepEqual(slices[0].Ranges, want) {
		t.Errorf("ranges = %v, want %v", slices[0].Ranges, want)
	}
	if slices[0].Payloads != nil {
		t.Errorf("empty payloads should be omitted, got %v", slices[0].Payloads)
	}
}

func TestAnnotationStoreIterClipsToInterval(t *testing.T) {
	text := rope.FromString("aaaa\nbbbb\ncccc\n")
	store := NewAnnotationStore()
	store.Update(1, client.AnnotationFind, delta.Interval{Start: 0, End: 15}, findSpans(t,
		delta.Interval{Start: 1, End: 3},
		delta.Interval{Start: 11, End: 13},
	))

	slices := store.IterRange(LogicalLines{}, text, delta.Interval{Start: 0, End: 5})
	if len(slices) != 1 || len(slices[0].Ranges) != 1 {
		t.Fatalf("slices = %+v, want the first hit only", slices)
	}
	if slices[0].Ranges[0] != (client.AnnotationRange{StartLine: 0, StartCol: 1, EndLine: 0, EndCol: 3}) {
		t.Errorf("range = %v", slices[0].Ranges[0])
	}
}

func TestAnnotationStoreInvalidate(t *testing.T) {
	text := rope.FromString("aaaa\nbbbb\n")
	store := NewAnnotationStore()
	store.Update(1, client.AnnotationFind, delta.Interval{Start: 5, End: 9},
		findSpans(t, delta.Interval{Start: 0, End: 4}))

	// An edit over [4,6) clips the hit back to its surviving tail.
	store.Invalidate(delta.Interval{Start: 4, End: 6})
	slices := store.IterRange(LogicalLines{}, text, delta.Interval{Start: 0, End: text.Len()})
	if len(slices) != 1 || len(slices[0].Ranges) != 1 {
		t.Fatalf("slices = %+v", slices)
	}
	want := client.AnnotationRange{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 4}
	if slices[0].Ranges[0] != want {
		t.Errorf("range = %v, want %v", slices[0].Ranges[0], want)
	}
}

func TestAnnotationStoreClear(t *testing.T) {
	text := rope.FromString("aaaa\n")
	store := NewAnnotationStore()
	store.Update(1, client.AnnotationFind, delta.Interval{Start: 0, End: 4},
		findSpans(t, delta.Interval{Start: 0, End: 4}))
	store.Clear(1)
	if got := store.IterRange(LogicalLines{}, text, delta.Interval{Start: 0, End: 5}); len(got) != 0 {
		t.Errorf("cleared store still yields %v", got)
	}
}

func TestAnnotationStoreReplaceSameType(t *testing.T) {
	text := rope.FromString("aaaa\nbbbb\n")
	store := NewAnnotationStore()
	store.Update(1, client.AnnotationFind, delta.Interval{Start: 0, End: 10},
		findSpans(t, delta.Interval{Start: 0, End: 2}))
	// A second update for the same type replaces the old cover.
	store.Update(1, client.AnnotationFind, delta.Interval{Start: 0, End: 10},
		findSpans(t, delta.Interval{Start: 6, End: 8}))

	slices := store.IterRange(LogicalLines{}, text, delta.Interval{Start: 0, End: text.Len()})
	if len(slices) != 1 || len(slices[0].Ranges) != 1 {
		t.Fatalf("slices = %+v", slices)
	}
	if slices[0].Ranges[0] != (client.AnnotationRange{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 3}) {
		t.Errorf("range = %v", slices[0].Ranges[0])
	}
}
