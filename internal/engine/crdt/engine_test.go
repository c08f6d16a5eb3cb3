package crdt

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
)

func mustEdit(t *testing.T, e *Engine, priority int, group uint64, start, end int, text string) {
	t.Helper()
	d := delta.SimpleEdit(delta.NewInterval(start, end), rope.FromString(text), e.Head().Len())
	if err := e.EditRev(priority, group, e.HeadToken(), d); err != nil {
		t.Fatalf("EditRev: %v", err)
	}
}

func TestEngineBasicEdits(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "hello world")
	if got := e.Head().String(); got != "hello world" {
		t.Fatalf("head = %q", got)
	}
	mustEdit(t, e, 1, 2, 5, 5, ",")
	mustEdit(t, e, 1, 3, 6, 11, " there")
	if got := e.Head().String(); got != "hello, there" {
		t.Fatalf("head = %q", got)
	}
	if e.RevCount() != 4 {
		t.Errorf("RevCount = %d", e.RevCount())
	}
	if e.MaxUndoGroupID() != 3 {
		t.Errorf("MaxUndoGroupID = %d", e.MaxUndoGroupID())
	}
}

func TestEngineNewFromRope(t *testing.T) {
	e := NewFromRope(rope.FromString("initial text"))
	if got := e.Head().String(); got != "initial text" {
		t.Fatalf("head = %q", got)
	}
}

func TestEngineMissingRevision(t *testing.T) {
	e := New()
	d := delta.SimpleEdit(delta.NewInterval(0, 0), rope.FromString("x"), 0)
	err := e.EditRev(1, 1, RevToken(0xdead), d)
	if !errors.Is(err, ErrMissingRevision) {
		t.Fatalf("err = %v, want ErrMissingRevision", err)
	}
}

func TestEngineGetRev(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "abc")
	tok := e.HeadToken()
	mustEdit(t, e, 1, 2, 1, 2, "XYZ")
	if got := e.Head().String(); got != "aXYZc" {
		t.Fatalf("head = %q", got)
	}
	old, ok := e.GetRev(tok)
	if !ok || old.String() != "abc" {
		t.Errorf("GetRev = %q, %v", old.String(), ok)
	}
	if _, ok := e.GetRev(RevToken(0xdead)); ok {
		t.Error("GetRev of unknown token should report absence")
	}
}

func TestEngineEditAgainstStaleRev(t *testing.T) {
	// An edit expressed against an old revision rebases over the edits
	// that landed since.
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "abcdef")
	stale := e.HeadToken()
	mustEdit(t, e, 1, 2, 0, 0, ">>")
	// Delete "cd" as seen in "abcdef".
	d := delta.SimpleEdit(delta.NewInterval(2, 4), rope.Rope{}, 6)
	if err := e.EditRev(1, 3, stale, d); err != nil {
		t.Fatalf("EditRev: %v", err)
	}
	if got := e.Head().String(); got != ">>abef" {
		t.Errorf("head = %q", got)
	}
}

func TestEngineTryDeltaRevHead(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "one two three")
	tok := e.HeadToken()
	old := e.Head()
	mustEdit(t, e, 1, 2, 4, 7, "2")
	mustEdit(t, e, 1, 3, 0, 3, "1")

	d, err := e.TryDeltaRevHead(tok)
	if err != nil {
		t.Fatalf("TryDeltaRevHead: %v", err)
	}
	if got := d.Apply(old).String(); got != e.Head().String() {
		t.Errorf("delta carries %q, head is %q", got, e.Head().String())
	}
	if _, err := e.TryDeltaRevHead(RevToken(0xdead)); !errors.Is(err, ErrMissingRevision) {
		t.Errorf("err = %v, want ErrMissingRevision", err)
	}
}

func TestEngineUndoRedo(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "hello")
	mustEdit(t, e, 1, 2, 5, 5, " world")
	if got := e.Head().String(); got != "hello world" {
		t.Fatalf("head = %q", got)
	}

	e.Undo(NewGroupSet(2))
	if got := e.Head().String(); got != "hello" {
		t.Errorf("after undo: %q", got)
	}
	e.Undo(NewGroupSet(1, 2))
	if got := e.Head().String(); got != "" {
		t.Errorf("after undoing both: %q", got)
	}
	e.Undo(NewGroupSet())
	if got := e.Head().String(); got != "hello world" {
		t.Errorf("after redo: %q", got)
	}
}

func TestEngineUndoInvolution(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "base ")
	mustEdit(t, e, 1, 2, 5, 5, "mid ")
	mustEdit(t, e, 1, 3, 9, 9, "tail")
	head := e.Head().String()

	e.Undo(NewGroupSet(2))
	e.Undo(NewGroupSet(2))
	// Toggling the same set twice must return to the same content even
	// though the history grew.
	if got := e.Head().String(); got != head {
		t.Errorf("double undo: %q, want %q", got, head)
	}
}

func TestEngineUndoWithDeletes(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "abcdef")
	mustEdit(t, e, 1, 2, 2, 4, "")
	if got := e.Head().String(); got != "abef" {
		t.Fatalf("head = %q", got)
	}
	e.Undo(NewGroupSet(2))
	if got := e.Head().String(); got != "abcdef" {
		t.Errorf("undo of delete: %q", got)
	}
	e.Undo(NewGroupSet())
	if got := e.Head().String(); got != "abef" {
		t.Errorf("redo of delete: %q", got)
	}
}

// TestEngineEditWhileUndone exercises an edit arriving in a group that
// is currently undone: its inserts are hidden immediately.
func TestEngineEditWhileUndone(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "abc")
	e.Undo(NewGroupSet(1))
	if got := e.Head().String(); got != "" {
		t.Fatalf("after undo: %q", got)
	}
	d := delta.SimpleEdit(delta.NewInterval(0, 0), rope.FromString("x"), 0)
	if err := e.EditRev(1, 1, e.HeadToken(), d); err != nil {
		t.Fatalf("EditRev: %v", err)
	}
	if got := e.Head().String(); got != "" {
		t.Errorf("edit in undone group should stay hidden: %q", got)
	}
	e.Undo(NewGroupSet())
	if got := e.Head().String(); got != "abcx" && got != "xabc" {
		t.Errorf("after redo: %q", got)
	}
}

func TestEngineIsEquivalentRevision(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "abc")
	r1 := e.HeadRevID()
	e.Undo(NewGroupSet(2)) // no-op toggle of a group with no edits
	r2 := e.HeadRevID()
	if !e.IsEquivalentRevision(r1, r2) {
		t.Error("no-op undo should leave an equivalent revision")
	}
	mustEdit(t, e, 1, 3, 0, 0, "x")
	r3 := e.HeadRevID()
	if e.IsEquivalentRevision(r1, r3) {
		t.Error("edit should produce a non-equivalent revision")
	}
}

func twoEngines() (*Engine, *Engine) {
	a := New()
	a.SetSessionID(SessionID{High: 10, Low: 0})
	b := New()
	b.SetSessionID(SessionID{High: 20, Low: 0})
	return a, b
}

func TestMergeSessionGuard(t *testing.T) {
	a, b := New(), New()
	if err := a.Merge(b); !errors.Is(err, ErrMismatchedSession) {
		t.Fatalf("merging same-session engines: err = %v", err)
	}
}

func TestMergeConcurrentInserts(t *testing.T) {
	a, b := twoEngines()

	// Both insert at offset 0 against the same empty base.
	mustEdit(t, a, 3, 1, 0, 0, "X")
	mustEdit(t, b, 1, 1, 0, 0, "Y")

	if err := a.Merge(b); err != nil {
		t.Fatalf("a.Merge(b): %v", err)
	}
	if err := b.Merge(a); err != nil {
		t.Fatalf("b.Merge(a): %v", err)
	}
	if a.Head().String() != b.Head().String() {
		t.Fatalf("diverged: a=%q b=%q", a.Head().String(), b.Head().String())
	}
	// Higher priority sorts first.
	if got := a.Head().String(); got != "XY" {
		t.Errorf("merged head = %q, want %q", got, "XY")
	}
}

func TestMergeSharedPrefix(t *testing.T) {
	a, b := twoEngines()
	mustEdit(t, a, 1, 1, 0, 0, "common base ")
	if err := b.Merge(a); err != nil {
		t.Fatalf("seeding b: %v", err)
	}
	if got := b.Head().String(); got != "common base " {
		t.Fatalf("b head = %q", got)
	}

	mustEdit(t, a, 2, 2, 12, 12, "from-a")
	mustEdit(t, b, 1, 2, 0, 0, "b> ")

	if err := a.Merge(b); err != nil {
		t.Fatalf("a.Merge(b): %v", err)
	}
	if err := b.Merge(a); err != nil {
		t.Fatalf("b.Merge(a): %v", err)
	}
	if a.Head().String() != b.Head().String() {
		t.Fatalf("diverged: a=%q b=%q", a.Head().String(), b.Head().String())
	}
	if got := a.Head().String(); got != "b> common base from-a" {
		t.Errorf("merged head = %q", got)
	}
}

func TestMergeConvergenceRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 40; trial++ {
		a, b := twoEngines()
		mustEdit(t, a, 1, 1, 0, 0, "the quick brown fox")
		if err := b.Merge(a); err != nil {
			t.Fatal(err)
		}

		group := uint64(2)
		for i := 0; i < 4; i++ {
			for _, e := range []*Engine{a, b} {
				n := e.Head().Len()
				start := rng.Intn(n + 1)
				end := start + rng.Intn(n-start+1)
				var text string
				if rng.Intn(2) == 0 {
					text = string(rune('a' + rng.Intn(26)))
				}
				d := delta.SimpleEdit(delta.NewInterval(start, end), rope.FromString(text), n)
				if err := e.EditRev(rng.Intn(3), group, e.HeadToken(), d); err != nil {
					t.Fatal(err)
				}
				group++
			}
		}

		if err := a.Merge(b); err != nil {
			t.Fatal(err)
		}
		if err := b.Merge(a); err != nil {
			t.Fatal(err)
		}
		if a.Head().String() != b.Head().String() {
			t.Fatalf("trial %d diverged: a=%q b=%q", trial, a.Head().String(), b.Head().String())
		}
	}
}

func TestGC(t *testing.T) {
	e := New()
	mustEdit(t, e, 1, 1, 0, 0, "abcdef")
	mustEdit(t, e, 1, 2, 2, 4, "") // delete "cd"
	mustEdit(t, e, 1, 3, 4, 4, "!")
	head := e.Head().String()
	revsBefore := e.RevCount()

	e.GC(NewGroupSet(1, 2))
	if got := e.Head().String(); got != head {
		t.Errorf("GC changed head: %q, want %q", got, head)
	}
	if e.RevCount() >= revsBefore {
		t.Errorf("GC kept %d of %d revisions", e.RevCount(), revsBefore)
	}

	// Collected history can no longer satisfy old tokens, but new edits
	// against head still work.
	mustEdit(t, e, 1, 4, 0, 0, "+")
	if got := e.Head().String(); got != "+"+head {
		t.Errorf("post-GC edit: %q", got)
	}
}

func TestSessionIDUniqueness(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == b {
		t.Error("two fresh session ids collided")
	}
}

func TestRevTokenStability(t *testing.T) {
	id := RevID{Session: SessionID{High: 42, Low: 7}, Num: 3}
	if id.Token() != id.Token() {
		t.Error("token not deterministic")
	}
	other := RevID{Session: SessionID{High: 42, Low: 7}, Num: 4}
	if id.Token() == other.Token() {
		t.Error("distinct ids share a token")
	}
}
