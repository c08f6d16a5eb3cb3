package view

import (
	"testing"

	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
)

func regionsEqual(t *testing.T, got []SelRegion, want []SelRegion) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d regions, want %d: %v", len(got), len(want), got)
	}
	for i := range got {
		if got[i].Start != want[i].Start || got[i].End != want[i].End {
			t.Errorf("region %d: got (%d,%d), want (%d,%d)",
				i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestAddRegionSorted(t *testing.T) {
	var s Selection
	s.AddRegion(Region(8, 10))
	s.AddRegion(Region(0, 2))
	s.AddRegion(Region(4, 6))
	regionsEqual(t, s.Regions(), []SelRegion{Region(0, 2), Region(4, 6), Region(8, 10)})
}

func TestAddRegionMergesTouching(t *testing.T) {
	var s Selection
	s.AddRegion(Region(0, 3))
	s.AddRegion(Region(5, 7))
	s.AddRegion(Region(3, 5))
	regionsEqual(t, s.Regions(), []SelRegion{Region(0, 7)})
}

func TestAddRegionCaretDedupe(t *testing.T) {
	var s Selection
	s.AddRegion(Caret(4))
	s.AddRegion(Caret(4))
	regionsEqual(t, s.Regions(), []SelRegion{Caret(4)})
}

func TestAddRegionLeavesValueCopiesAlone(t *testing.T) {
	var s Selection
	s.AddRegion(Region(10, 12))
	s.AddRegion(Region(20, 22))
	s.AddRegion(Region(30, 32))
	s.AddRegion(Region(40, 42))
	// Merging shrinks the slice, leaving spare capacity behind it.
	s.AddRegion(Region(21, 31))

	want := append([]SelRegion(nil), s.Regions()...)
	copied := s
	copied.AddRegion(Caret(0))

	regionsEqual(t, s.Regions(), want)
	regionsEqual(t, copied.Regions(),
		[]SelRegion{Caret(0), Region(10, 12), Region(20, 32), Region(40, 42)})
}

func TestDeleteRangeLeavesValueCopiesAlone(t *testing.T) {
	var s Selection
	s.AddRegion(Caret(2))
	s.AddRegion(Caret(6))
	s.AddRegion(Caret(9))

	want := append([]SelRegion(nil), s.Regions()...)
	copied := s
	copied.DeleteRange(2, 2, true)

	regionsEqual(t, s.Regions(), want)
	regionsEqual(t, copied.Regions(), []SelRegion{Caret(6), Caret(9)})
}

func TestAddRegionPreservesDirection(t *testing.T) {
	var s Selection
	// A backward region swallowing a forward one keeps going backward.
	s.AddRegion(Region(2, 4))
	s.AddRegion(Region(8, 3))
	regionsEqual(t, s.Regions(), []SelRegion{Region(2, 8)})
	if got := s.Regions()[0]; got.IsUpstream() {
		t.Errorf("merged region should be forward when either input is")
	}
}

func TestAddRegionInvariant(t *testing.T) {
	// No pair of regions may touch or overlap after arbitrary inserts.
	var s Selection
	inserts := []SelRegion{
		Region(10, 14), Caret(3), Region(2, 5), Region(14, 14),
		Region(20, 18), Caret(5), Region(0, 1), Caret(19),
	}
	for _, r := range inserts {
		s.AddRegion(r)
		rs := s.Regions()
		for i := 1; i < len(rs); i++ {
			if rs[i].Min() <= rs[i-1].Max() {
				t.Fatalf("after inserting %v: regions %v and %v touch", r, rs[i-1], rs[i])
			}
		}
	}
}

func TestRegionsInRange(t *testing.T) {
	var s Selection
	s.AddRegion(Region(0, 2))
	s.AddRegion(Region(4, 6))
	s.AddRegion(Region(8, 10))
	// Closed-span intersection includes regions touching the bounds.
	regionsEqual(t, s.RegionsInRange(2, 4), []SelRegion{Region(0, 2), Region(4, 6)})
	regionsEqual(t, s.RegionsInRange(3, 3), nil)
	regionsEqual(t, s.RegionsInRange(0, 10), s.Regions())
}

func TestDeleteRange(t *testing.T) {
	mk := func() Selection {
		var s Selection
		s.AddRegion(Caret(2))
		s.AddRegion(Caret(5))
		s.AddRegion(Region(7, 9))
		return s
	}
	s := mk()
	s.DeleteRange(4, 8, false)
	regionsEqual(t, s.Regions(), []SelRegion{Caret(2)})

	s = mk()
	s.DeleteRange(4, 6, false)
	regionsEqual(t, s.Regions(), []SelRegion{Caret(2), Region(7, 9)})

	// deleteAdjacent sweeps carets sitting exactly on the edges.
	s = mk()
	s.DeleteRange(2, 4, true)
	regionsEqual(t, s.Regions(), []SelRegion{Caret(5), Region(7, 9)})
}

func TestCollapse(t *testing.T) {
	var s Selection
	s.AddRegion(Region(0, 3))
	s.AddRegion(Region(5, 9))
	s.Collapse()
	regionsEqual(t, s.Regions(), []SelRegion{Caret(3), Caret(9)})
}

func TestApplyDeltaInsertBefore(t *testing.T) {
	// "hello" -> "XXhello", caret at 2 moves to 4.
	d := delta.SimpleEdit(delta.Interval{Start: 0, End: 0}, rope.FromString("XX"), 5)
	s := SelectionFromRegion(Caret(2))
	got := s.ApplyDelta(d, true, DriftDefault)
	regionsEqual(t, got.Regions(), []SelRegion{Caret(4)})
}

func TestApplyDeltaInsertAtCaret(t *testing.T) {
	// Insert at the caret position: after=true lands after the text,
	// after=false stays before it.
	d := delta.SimpleEdit(delta.Interval{Start: 2, End: 2}, rope.FromString("XX"), 5)
	s := SelectionFromRegion(Caret(2))
	regionsEqual(t, s.ApplyDelta(d, true, DriftDefault).Regions(), []SelRegion{Caret(4)})
	regionsEqual(t, s.ApplyDelta(d, false, DriftDefault).Regions(), []SelRegion{Caret(2)})
}

func TestApplyDeltaDeleteCollapses(t *testing.T) {
	// "0123456789" with [2,6) deleted folds a region inside the hole.
	d := delta.SimpleEdit(delta.Interval{Start: 2, End: 6}, rope.New(), 10)
	s := SelectionFromRegion(Region(3, 5))
	regionsEqual(t, s.ApplyDelta(d, true, DriftDefault).Regions(), []SelRegion{Caret(2)})
}

func TestApplyDeltaDrift(t *testing.T) {
	// Insert "XX" exactly at both endpoints of the region [2,4) one at
	// a time; Inside pulls the endpoint toward the region body,
	// Outside pushes it away.
	r := Region(2, 4)
	s := SelectionFromRegion(r)

	atStart := delta.SimpleEdit(delta.Interval{Start: 2, End: 2}, rope.FromString("XX"), 8)
	inside := s.ApplyDelta(atStart, true, DriftInside)
	regionsEqual(t, inside.Regions(), []SelRegion{Region(2, 6)})
	outside := s.ApplyDelta(atStart, true, DriftOutside)
	regionsEqual(t, outside.Regions(), []SelRegion{Region(4, 6)})

	atEnd := delta.SimpleEdit(delta.Interval{Start: 4, End: 4}, rope.FromString("XX"), 8)
	inside = s.ApplyDelta(atEnd, true, DriftInside)
	regionsEqual(t, inside.Regions(), []SelRegion{Region(2, 6)})
	outside = s.ApplyDelta(atEnd, true, DriftOutside)
	regionsEqual(t, outside.Regions(), []SelRegion{Region(2, 4)})
}

func TestApplyDeltaHoriz(t *testing.T) {
	h := &HorizPos{Col: 7}
	s := SelectionFromRegion(Caret(10).WithHoriz(h))

	// An edit elsewhere keeps the remembered column.
	far := delta.SimpleEdit(delta.Interval{Start: 20, End: 20}, rope.FromString("x"), 30)
	got := s.ApplyDelta(far, true, DriftDefault)
	if got.Regions()[0].Horiz == nil {
		t.Errorf("horiz dropped by untouching edit")
	}

	// An edit across the caret clears it.
	near := delta.SimpleEdit(delta.Interval{Start: 9, End: 11}, rope.New(), 30)
	got = s.ApplyDelta(near, true, DriftDefault)
	if got.Regions()[0].Horiz != nil {
		t.Errorf("horiz kept through a touching edit")
	}
}
