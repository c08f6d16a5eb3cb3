package view

import (
	"testing"

	"github.com/dshills/editcore/internal/engine/rope"
)

func TestWordBoundaries(t *testing.T) {
	text := rope.FromString("hello world  foo_bar, baz")
	tests := []struct {
		name string
		pos  int
		prev bool
		want int
	}{
		{"next from start", 0, false, 5},
		{"next over spaces", 5, false, 11},
		{"next at end", 25, false, 25},
		{"prev from end", 25, true, 22},
		{"prev onto punctuation", 22, true, 20},
		{"prev at start", 0, true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewWordCursor(text, tc.pos)
			var got int
			if tc.prev {
				got = c.PrevBoundary()
			} else {
				got = c.NextBoundary()
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
			if c.Pos() != got {
				t.Errorf("cursor left at %d, boundary was %d", c.Pos(), got)
			}
		})
	}
}

func TestWordBoundaryAcrossLines(t *testing.T) {
	text := rope.FromString("foo\nbar")
	if got := NewWordCursor(text, 4).PrevBoundary(); got != 0 {
		t.Errorf("prev boundary across newline: got %d, want 0", got)
	}
}

func TestSelectWord(t *testing.T) {
	text := rope.FromString("hello world  foo_bar, baz")
	tests := []struct {
		pos        int
		start, end int
	}{
		{15, 13, 20}, // middle of foo_bar, underscore included
		{11, 6, 11},  // right edge of world
		{0, 0, 5},    // start of hello
	}
	for _, tc := range tests {
		start, end := NewWordCursor(text, tc.pos).SelectWord()
		if start != tc.start || end != tc.end {
			t.Errorf("SelectWord(%d) = (%d,%d), want (%d,%d)",
				tc.pos, start, end, tc.start, tc.end)
		}
	}
}

func TestRegionMovementChar(t *testing.T) {
	text := rope.FromString("ab\ncd")
	lo := LogicalLines{}

	got := RegionMovement(MotionForward, QuantityCharacter, Caret(0), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(1)})

	// At the end of the text the caret stays put.
	got = RegionMovement(MotionForward, QuantityCharacter, Caret(5), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(5)})

	// Moving left off a selection collapses to its near edge.
	got = RegionMovement(MotionBackward, QuantityCharacter, Region(1, 4), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(1)})

	// With modify the anchor stays pinned.
	got = RegionMovement(MotionForward, QuantityCharacter, Region(2, 4), lo, 10, text, true)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Region(2, 5)})
}

func TestRegionMovementVertical(t *testing.T) {
	text := rope.FromString("abcdef\nxy\nlmnop")
	lo := LogicalLines{}

	// Moving down into a shorter line clamps but remembers the column.
	r := RegionMovement(MotionBelow, QuantityCharacter, Caret(5), lo, 10, text, false)
	if r.End != 9 {
		t.Fatalf("down into short line: got %d, want 9", r.End)
	}
	if r.Horiz == nil || r.Horiz.Col != 5 {
		t.Fatalf("horiz not preserved: %+v", r.Horiz)
	}

	// The next move down restores the remembered column.
	r = RegionMovement(MotionBelow, QuantityCharacter, r, lo, 10, text, false)
	if r.End != 15 {
		t.Errorf("column not restored on long line: got %d, want 15", r.End)
	}

	// Moving up from the first line lands at offset zero.
	r = RegionMovement(MotionAbove, QuantityCharacter, Caret(3), lo, 10, text, false)
	if r.End != 0 {
		t.Errorf("up from line 0: got %d, want 0", r.End)
	}
}

func TestRegionMovementLine(t *testing.T) {
	text := rope.FromString("one two\nthree four\n")
	lo := LogicalLines{}

	got := RegionMovement(MotionFirst, QuantityLine, Caret(10), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(8)})

	got = RegionMovement(MotionLast, QuantityLine, Caret(10), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(18)})

	got = RegionMovement(MotionBegin, QuantityLine, Caret(10), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(8)})

	got = RegionMovement(MotionEnd, QuantityLine, Caret(3), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(7)})

	// End of line is idempotent, it does not hop over the newline.
	got = RegionMovement(MotionEnd, QuantityLine, Caret(7), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(7)})
}

func TestRegionMovementPage(t *testing.T) {
	var b rope.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("aa\n")
	}
	text := b.Build()
	lo := LogicalLines{}

	// Viewport of 10 scrolls by 8 to keep two lines of overlap.
	got := RegionMovement(MotionBelow, QuantityPage, Caret(0), lo, 10, text, false)
	if got.End != 24 {
		t.Errorf("page down: got %d, want 24", got.End)
	}
	got = RegionMovement(MotionAbove, QuantityPage, Caret(24), lo, 10, text, false)
	if got.End != 0 {
		t.Errorf("page up: got %d, want 0", got.End)
	}
	got = RegionMovement(MotionBelow, QuantityPage, Caret(57), lo, 10, text, false)
	if got.End != text.Len() {
		t.Errorf("page down past end: got %d, want %d", got.End, text.Len())
	}
}

func TestRegionMovementDocument(t *testing.T) {
	text := rope.FromString("one\ntwo\nthree")
	lo := LogicalLines{}
	got := RegionMovement(MotionLast, QuantityDocument, Caret(2), lo, 10, text, false)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Caret(text.Len())})
	got = RegionMovement(MotionFirst, QuantityDocument, Caret(7), lo, 10, text, true)
	regionsEqual(t, []SelRegion{got}, []SelRegion{Region(7, 0)})
}

func TestRegionMovementBracket(t *testing.T) {
	text := rope.FromString("a(b[c]d)e")
	lo := LogicalLines{}
	tests := []struct{ pos, want int }{
		{1, 7}, // on the open paren
		{8, 1}, // just after the close paren
		{4, 5}, // inside, matches the bracket before the caret
	}
	for _, tc := range tests {
		got := RegionMovement(MotionNone, QuantityBracket, Caret(tc.pos), lo, 10, text, false)
		if got.End != tc.want {
			t.Errorf("bracket from %d: got %d, want %d", tc.pos, got.End, tc.want)
		}
	}
	// No bracket near the caret leaves the region alone.
	plain := rope.FromString("abc")
	got := RegionMovement(MotionNone, QuantityBracket, Caret(1), lo, 10, plain, false)
	if got.End != 1 {
		t.Errorf("no bracket: moved to %d", got.End)
	}
}

func TestRegionMovementParagraph(t *testing.T) {
	text := rope.FromString("para one line1\npara one line2\n\npara two\n")
	lo := LogicalLines{}
	tests := []struct {
		m    Motion
		pos  int
		want int
	}{
		{MotionForward, 0, 29},
		{MotionForward, 29, 39},
		{MotionBackward, 39, 31},
		{MotionBackward, 31, 0},
	}
	for _, tc := range tests {
		got := RegionMovement(tc.m, QuantityParagraph, Caret(tc.pos), lo, 10, text, false)
		if got.End != tc.want {
			t.Errorf("paragraph %v from %d: got %d, want %d", tc.m, tc.pos, got.End, tc.want)
		}
	}
}

func TestRegionMovementAddSelection(t *testing.T) {
	text := rope.FromString("short\ntiny\na much longer line\n")
	lo := LogicalLines{}

	got := RegionMovement(MotionBelow, QuantitySelection, Caret(4), lo, 10, text, false)
	if got.End != 10 {
		t.Errorf("selection below: got %d, want 10", got.End)
	}

	// Column 10 exists on no line above, so the caret stays.
	start := text.OffsetOfLine(2) + 10
	got = RegionMovement(MotionAbove, QuantitySelection, Caret(start), lo, 10, text, false)
	if got.End != start {
		t.Errorf("selection above with no fitting line: got %d, want %d", got.End, start)
	}
}

func TestSelectionMovement(t *testing.T) {
	text := rope.FromString("aaaa\nbbbb\ncccc\n")
	lo := LogicalLines{}
	var s Selection
	s.AddRegion(Caret(2))
	s.AddRegion(Caret(7))

	moved := SelectionMovement(MotionBelow, QuantityCharacter, s, lo, 10, text, false)
	regionsEqual(t, moved.Regions(), []SelRegion{Caret(7), Caret(12)})

	// Two carets converging on the same offset merge into one.
	var conv Selection
	conv.AddRegion(Caret(0))
	conv.AddRegion(Caret(1))
	moved = SelectionMovement(MotionBackward, QuantityCharacter, conv, lo, 10, text, false)
	regionsEqual(t, moved.Regions(), []SelRegion{Caret(0)})
}
