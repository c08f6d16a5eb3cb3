package delta

import (
	"testing"

	"github.com/dshills/editcore/internal/engine/rope"
)

// mkSubset builds a subset from a picture string where '-' is retained
// and any digit is a deleted run of that depth ('#' is depth one).
func mkSubset(picture string) Subset {
	var sb SubsetBuilder
	for i := 0; i < len(picture); i++ {
		switch c := picture[i]; {
		case c == '-':
			sb.PushSegment(1, 0)
		case c == '#':
			sb.PushSegment(1, 1)
		default:
			sb.PushSegment(1, int(c-'0'))
		}
	}
	return sb.Build()
}

func TestSubsetDeleteFrom(t *testing.T) {
	tests := []struct {
		text    string
		picture string
		want    string
	}{
		{"hello world", "-----------", "hello world"},
		{"hello world", "#####------", " world"},
		{"hello world", "-----#-----", "helloworld"},
		{"hello world", "###########", ""},
		{"hello world", "#-#-#-#-#-#", "el ol"},
	}
	for _, tt := range tests {
		s := mkSubset(tt.picture)
		got := s.DeleteFrom(rope.FromString(tt.text)).String()
		if got != tt.want {
			t.Errorf("DeleteFrom(%q, %q) = %q, want %q", tt.text, tt.picture, got, tt.want)
		}
	}
}

func TestSubsetUnionSubtract(t *testing.T) {
	a := mkSubset("##---##--")
	b := mkSubset("--##---#-")
	u := a.Union(b)
	if got := u.String(); got != "####-###-" {
		t.Errorf("Union = %q", got)
	}
	if got := u.Subtract(b).String(); got != a.String() {
		t.Errorf("Subtract did not invert Union: %q", got)
	}
}

func TestSubsetXorComplement(t *testing.T) {
	a := mkSubset("##--#")
	b := mkSubset("-#-##")
	if got := a.Xor(b).String(); got != "#--#-" {
		t.Errorf("Xor = %q", got)
	}
	if got := a.Complement().String(); got != "--##-" {
		t.Errorf("Complement = %q", got)
	}
}

func TestSubsetTransformExpandShrink(t *testing.T) {
	// s lives in a 6 character string; other says 4 characters were
	// inserted around it.
	s := mkSubset("--##--")
	other := mkSubset("##------##")
	expanded := s.TransformExpand(other)
	if got := expanded.String(); got != "----##----" {
		t.Errorf("TransformExpand = %q", got)
	}
	if got := expanded.TransformShrink(other).String(); got != s.String() {
		t.Errorf("TransformShrink did not invert TransformExpand: %q", got)
	}
	union := s.TransformUnion(other)
	if got := union.String(); got != "##--##--##" {
		t.Errorf("TransformUnion = %q", got)
	}
}

func TestSubsetRangesAndMapper(t *testing.T) {
	s := mkSubset("--##-#--")
	wantKept := []Range{{0, 2}, {4, 5}, {6, 8}}
	got := s.Ranges(CountZero)
	if len(got) != len(wantKept) {
		t.Fatalf("Ranges(CountZero) = %v, want %v", got, wantKept)
	}
	for i := range got {
		if got[i] != wantKept[i] {
			t.Fatalf("Ranges(CountZero) = %v, want %v", got, wantKept)
		}
	}

	m := s.Mapper(CountNonZero)
	// Deleted positions are 2, 3, and 5; they map to 0, 1, 2 in the
	// deleted-only string. Retained positions snap forward.
	wants := []struct{ doc, sub int }{{0, 0}, {2, 0}, {3, 1}, {4, 2}, {5, 2}, {7, 3}}
	for _, w := range wants {
		if got := m.DocIndexToSubset(w.doc); got != w.sub {
			t.Errorf("DocIndexToSubset(%d) = %d, want %d", w.doc, got, w.sub)
		}
	}
}

func TestSubsetCount(t *testing.T) {
	s := mkSubset("--2#---")
	if got := s.Len(); got != 7 {
		t.Errorf("Len = %d", got)
	}
	if got := s.LenAfterDelete(); got != 5 {
		t.Errorf("LenAfterDelete = %d", got)
	}
	if s.IsEmpty() {
		t.Error("IsEmpty on non-empty subset")
	}
	if !NewSubset(10).IsEmpty() {
		t.Error("NewSubset should be empty")
	}
}
