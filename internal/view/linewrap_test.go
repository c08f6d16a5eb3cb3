package view

import (
	"reflect"
	"testing"

	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
)

// lenMeasurer counts one pixel per byte, which keeps wrap positions
// easy to verify by hand.
type lenMeasurer struct{}

func (lenMeasurer) MeasureWidth(s string) float64 { return float64(len(s)) }

func wrapAll(t *testing.T, l *Lines, text rope.Rope) {
	t.Helper()
	visible := delta.Interval{Start: 0, End: text.Len()}
	for l.RewrapChunk(text, lenMeasurer{}, visible) {
	}
	if !l.IsConverged() {
		t.Fatal("wrap did not converge")
	}
}

func TestWrapNone(t *testing.T) {
	text := rope.FromString("aaa\nbb\nc\n")
	l := NewLines()
	if !l.IsConverged() {
		t.Fatal("no-wrap must always be converged")
	}
	if got := l.VisualLineCount(text); got != 4 {
		t.Errorf("VisualLineCount = %d, want 4", got)
	}
	if got := l.LineOfOffset(text, 5); got != 1 {
		t.Errorf("LineOfOffset(5) = %d, want 1", got)
	}
	if got := l.OffsetOfLine(text, 2); got != 7 {
		t.Errorf("OffsetOfLine(2) = %d, want 7", got)
	}
}

func TestWrapBytes(t *testing.T) {
	text := rope.FromString("abcdefghij\nxyz\n")
	l := NewLines()
	l.SetWrapWidth(text, WrapWidth{Mode: WrapBytes, Value: 4})
	if l.IsConverged() {
		t.Fatal("pending work after SetWrapWidth")
	}
	if !l.IntervalNeedsWrap(delta.Interval{Start: 0, End: 5}) {
		t.Error("unwrapped interval should report needing wrap")
	}
	wrapAll(t, l, text)

	// "abcdefghij" breaks every 4 bytes: abcd | efgh | ij.
	if got := l.VisualLineCount(text); got != 5 {
		t.Fatalf("VisualLineCount = %d, want 5", got)
	}
	offsets := []struct{ offset, line int }{
		{0, 0}, {3, 0}, {4, 1}, {5, 1}, {8, 2}, {10, 2}, {11, 3}, {15, 4},
	}
	for _, c := range offsets {
		if got := l.LineOfOffset(text, c.offset); got != c.line {
			t.Errorf("LineOfOffset(%d) = %d, want %d", c.offset, got, c.line)
		}
	}
	lines := []struct{ line, offset int }{
		{0, 0}, {1, 4}, {2, 8}, {3, 11}, {4, 15},
	}
	for _, c := range lines {
		if got := l.OffsetOfLine(text, c.line); got != c.offset {
			t.Errorf("OffsetOfLine(%d) = %d, want %d", c.line, got, c.offset)
		}
	}
	if !l.IsSoftBreak(text, 1) || !l.IsSoftBreak(text, 2) {
		t.Error("lines 1 and 2 are soft continuations")
	}
	if l.IsSoftBreak(text, 0) || l.IsSoftBreak(text, 3) {
		t.Error("lines 0 and 3 start logical lines")
	}
	if got := l.LogicalLineOfVisual(text, 2); got != 0 {
		t.Errorf("LogicalLineOfVisual(2) = %d, want 0", got)
	}
	if got := l.LogicalLineOfVisual(text, 3); got != 1 {
		t.Errorf("LogicalLineOfVisual(3) = %d, want 1", got)
	}
}

func TestWrapWidthBreaksAtWords(t *testing.T) {
	text := rope.FromString("hello world foo\n")
	l := NewLines()
	l.SetWrapWidth(text, WrapWidth{Mode: WrapPixels, Value: 10})
	wrapAll(t, l, text)

	// "hello " fits; "world " would overflow, so the line breaks
	// before it; "foo" still fits after "world ".
	if got := l.VisualLineCount(text); got != 3 {
		t.Fatalf("VisualLineCount = %d, want 3", got)
	}
	if got := l.OffsetOfLine(text, 1); got != 6 {
		t.Errorf("break at offset %d, want 6", got)
	}
}

func TestAfterEditNoWrap(t *testing.T) {
	oldText := rope.FromString("abc")
	d := delta.SimpleEdit(delta.Interval{Start: 1, End: 1}, rope.FromString("\n"), oldText.Len())
	text := d.Apply(oldText)
	l := NewLines()
	inval := l.AfterEdit(text, oldText, d, nil, delta.Interval{Start: 0, End: text.Len()})
	want := InvalLines{StartLine: 0, InvalCount: 1, NewCount: 2}
	if !reflect.DeepEqual(inval, want) {
		t.Errorf("AfterEdit = %+v, want %+v", inval, want)
	}
}

func TestAfterEditRewraps(t *testing.T) {
	oldText := rope.FromString("abcdefghij\n")
	l := NewLines()
	l.SetWrapWidth(oldText, WrapWidth{Mode: WrapBytes, Value: 4})
	wrapAll(t, l, oldText)
	if got := l.VisualLineCount(oldText); got != 4 {
		t.Fatalf("VisualLineCount = %d, want 4", got)
	}

	d := delta.SimpleEdit(delta.Interval{Start: 0, End: 0}, rope.FromString("XYZAB"), oldText.Len())
	text := d.Apply(oldText)
	inval := l.AfterEdit(text, oldText, d, lenMeasurer{}, delta.Interval{Start: 0, End: text.Len()})
	want := InvalLines{StartLine: 0, InvalCount: 4, NewCount: 5}
	if !reflect.DeepEqual(inval, want) {
		t.Errorf("AfterEdit = %+v, want %+v", inval, want)
	}
	if !l.IsConverged() {
		t.Error("edit within wrapped text should stay converged")
	}
	if got := l.VisualLineCount(text); got != 5 {
		t.Errorf("VisualLineCount = %d, want 5", got)
	}
	// New breaks land on the re-chunked content: XYZA | Babc | defg | hij.
	for line, wantOff := range map[int]int{1: 4, 2: 8, 3: 12} {
		if got := l.OffsetOfLine(text, line); got != wantOff {
			t.Errorf("OffsetOfLine(%d) = %d, want %d", line, got, wantOff)
		}
	}
}

func TestWrapLongWordHardBreaks(t *testing.T) {
	text := rope.FromString("abcdefghijklmno\n")
	l := NewLines()
	l.SetWrapWidth(text, WrapWidth{Mode: WrapPixels, Value: 6})
	wrapAll(t, l, text)

	// One 15-byte word with width 6: grapheme hard breaks at 6 and 12.
	if got := l.VisualLineCount(text); got != 4 {
		t.Fatalf("VisualLineCount = %d, want 4", got)
	}
	if got := l.OffsetOfLine(text, 1); got != 6 {
		t.Errorf("first hard break at %d, want 6", got)
	}
	if got := l.OffsetOfLine(text, 2); got != 12 {
		t.Errorf("second hard break at %d, want 12", got)
	}
}
