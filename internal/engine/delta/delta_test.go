package delta

import (
	"math/rand"
	"testing"

	"github.com/dshills/editcore/internal/engine/rope"
)

func TestSimpleEditApply(t *testing.T) {
	tests := []struct {
		name       string
		base       string
		start, end int
		text       string
		want       string
	}{
		{"insert front", "world", 0, 0, "hello ", "hello world"},
		{"insert back", "hello", 5, 5, "!", "hello!"},
		{"replace", "hello world", 0, 5, "goodbye", "goodbye world"},
		{"delete", "hello world", 5, 11, "", "hello"},
		{"empty base", "", 0, 0, "abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := SimpleEdit(NewInterval(tt.start, tt.end), rope.FromString(tt.text), len(tt.base))
			got := d.Apply(rope.FromString(tt.base)).String()
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if d.NewLen() != len(tt.want) {
				t.Errorf("NewLen() = %d, want %d", d.NewLen(), len(tt.want))
			}
		})
	}
}

func TestIsIdentity(t *testing.T) {
	if !Identity(10).IsIdentity() {
		t.Error("Identity(10) should be the identity")
	}
	if !Identity(0).IsIdentity() {
		t.Error("Identity(0) should be the identity")
	}
	d := SimpleEdit(NewInterval(1, 1), rope.FromString("x"), 5)
	if d.IsIdentity() {
		t.Error("insertion should not be the identity")
	}
}

func TestAsSimpleInsert(t *testing.T) {
	d := SimpleEdit(NewInterval(3, 3), rope.FromString("abc"), 10)
	ins, off, ok := d.AsSimpleInsert()
	if !ok || off != 3 || ins.String() != "abc" {
		t.Errorf("AsSimpleInsert = %q, %d, %v", ins.String(), off, ok)
	}
	if _, _, ok := SimpleEdit(NewInterval(3, 5), rope.FromString("abc"), 10).AsSimpleInsert(); ok {
		t.Error("replacement reported as simple insert")
	}
	if !SimpleEdit(NewInterval(3, 5), rope.Rope{}, 10).IsSimpleDelete() {
		t.Error("deletion not reported as simple delete")
	}
	if SimpleEdit(NewInterval(3, 3), rope.FromString("x"), 10).IsSimpleDelete() {
		t.Error("insertion reported as simple delete")
	}
}

func TestSummary(t *testing.T) {
	d := SimpleEdit(NewInterval(2, 5), rope.FromString("longer"), 10)
	iv, newLen := d.Summary()
	if iv != (Interval{Start: 2, End: 5}) || newLen != 6 {
		t.Errorf("Summary = %v, %d", iv, newLen)
	}
	iv, newLen = Identity(7).Summary()
	if !iv.IsEmpty() || newLen != 0 {
		t.Errorf("identity Summary = %v, %d", iv, newLen)
	}
}

// randomDelta builds a delta with a handful of non-overlapping edits.
func randomDelta(rng *rand.Rand, baseLen int) Delta {
	var b DeltaBuilder
	b.Init(baseLen)
	pos := 0
	for pos < baseLen {
		start := pos + rng.Intn(baseLen-pos+1)
		end := start + rng.Intn(baseLen-start+1)
		if start == end && rng.Intn(2) == 0 {
			pos = end + 1
			continue
		}
		n := rng.Intn(5)
		text := make([]byte, n)
		for i := range text {
			text[i] = byte('a' + rng.Intn(26))
		}
		if n == 0 {
			if start == end {
				pos = end + 1
				continue
			}
			b.Delete(NewInterval(start, end))
		} else {
			b.Replace(NewInterval(start, end), rope.FromString(string(text)))
		}
		pos = end + 1
	}
	return b.Build()
}

func randomBase(rng *rand.Rand, n int) string {
	text := make([]byte, n)
	for i := range text {
		text[i] = byte('A' + rng.Intn(26))
	}
	return string(text)
}

func TestFactorRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		baseLen := rng.Intn(40)
		base := rope.FromString(randomBase(rng, baseLen))
		d := randomDelta(rng, baseLen)
		want := d.Apply(base).String()

		ins, dels := d.Factor()
		union := ins.Apply(base)
		if union.Len() != dels.Len() {
			t.Fatalf("trial %d: union length %d, deletion mask length %d", trial, union.Len(), dels.Len())
		}
		got := dels.DeleteFrom(union).String()
		if got != want {
			t.Fatalf("trial %d: factored application %q, direct %q (delta %v)", trial, got, want, d)
		}
	}
}

func TestCompose(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 200; trial++ {
		baseLen := rng.Intn(30)
		base := rope.FromString(randomBase(rng, baseLen))
		d1 := randomDelta(rng, baseLen)
		mid := d1.Apply(base)
		d2 := randomDelta(rng, mid.Len())
		want := d2.Apply(mid).String()
		got := d1.Compose(d2).Apply(base).String()
		if got != want {
			t.Fatalf("trial %d: composed %q, sequential %q", trial, got, want)
		}
	}
}

func TestSynthesize(t *testing.T) {
	// The union string is "hello world"; the tombstones hold whatever
	// is deleted under each mask.
	union := rope.FromString("hello world")
	fromDels := mkSubset("-----######")
	toDels := mkSubset("######-----")
	text := fromDels.DeleteFrom(union)                    // "hello"
	tombstones := fromDels.Complement().DeleteFrom(union) // " world"

	d := Synthesize(tombstones, fromDels, toDels)
	if d.BaseLen() != text.Len() {
		t.Fatalf("BaseLen = %d, want %d", d.BaseLen(), text.Len())
	}
	got := d.Apply(text).String()
	want := toDels.DeleteFrom(union).String() // "world"
	if got != want {
		t.Errorf("Synthesize applied = %q, want %q", got, want)
	}
}

func TestSynthesizeRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(30) + 1
		union := rope.FromString(randomBase(rng, n))
		var sb1, sb2 SubsetBuilder
		for i := 0; i < n; i++ {
			sb1.PushSegment(1, rng.Intn(2))
			sb2.PushSegment(1, rng.Intn(2))
		}
		fromDels, toDels := sb1.Build(), sb2.Build()
		text := fromDels.DeleteFrom(union)
		tombstones := fromDels.Complement().DeleteFrom(union)

		got := Synthesize(tombstones, fromDels, toDels).Apply(text).String()
		want := toDels.DeleteFrom(union).String()
		if got != want {
			t.Fatalf("trial %d: got %q, want %q (from %v to %v)", trial, got, want, fromDels, toDels)
		}
	}
}

func TestInsertDeltaTransformExpand(t *testing.T) {
	// Base "ac"; we insert "b" at 1. A concurrent edit inserted "XX"
	// at the same point, recorded in the expanded space "aXXc".
	d := SimpleEdit(NewInterval(1, 1), rope.FromString("b"), 2)
	ins, _ := d.Factor()
	xform := mkSubset("-##-")

	before := ins.TransformExpand(xform, false)
	if got := before.Apply(rope.FromString("aXXc")).String(); got != "abXXc" {
		t.Errorf("before bias: %q", got)
	}
	after := ins.TransformExpand(xform, true)
	if got := after.Apply(rope.FromString("aXXc")).String(); got != "aXXbc" {
		t.Errorf("after bias: %q", got)
	}

	// Shrinking by the same subset restores the original.
	shrunk := before.TransformShrink(xform)
	if got := shrunk.Apply(rope.FromString("ac")).String(); got != "abc" {
		t.Errorf("shrink round trip: %q", got)
	}
}

func TestInsertedSubset(t *testing.T) {
	d := SimpleEdit(NewInterval(2, 4), rope.FromString("XYZ"), 6)
	ins, _ := d.Factor()
	if got := ins.InsertedSubset().String(); got != "--###----" {
		t.Errorf("InsertedSubset = %q", got)
	}
}

func TestTransformerOffsets(t *testing.T) {
	// "abcdef" with "XX" inserted at 2 and "de" (3..5) deleted.
	var b DeltaBuilder
	b.Init(6)
	b.Replace(NewInterval(2, 2), rope.FromString("XX"))
	b.Delete(NewInterval(3, 5))
	d := b.Build() // "abXXcf"
	tr := NewTransformer(d)

	tests := []struct {
		ix    int
		after bool
		want  int
	}{
		{0, false, 0},
		{0, true, 0},
		{1, false, 1},
		{2, false, 2}, // before the insertion
		{2, true, 4},  // after the insertion
		{3, false, 5},
		{4, false, 5}, // inside the deletion collapses
		{5, false, 5},
		{6, false, 6},
	}
	for _, tt := range tests {
		if got := tr.Transform(tt.ix, tt.after); got != tt.want {
			t.Errorf("Transform(%d, %v) = %d, want %d", tt.ix, tt.after, got, tt.want)
		}
	}

	if !tr.IntervalUntouched(0, 2) {
		t.Error("prefix copy should be untouched")
	}
	if tr.IntervalUntouched(1, 4) {
		t.Error("interval spanning the insertion should be touched")
	}
}
