package crdt

import (
	"errors"
	"fmt"

	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
)

// Errors reported by engine operations.
var (
	// ErrMissingRevision means a rev token was GC'd or never existed.
	// The caller should re-sync against the head revision.
	ErrMissingRevision = errors.New("revision not found")

	// ErrMismatchedSession means two engines with the same session id
	// attempted to merge.
	ErrMismatchedSession = errors.New("engines share a session id")

	// ErrMalformedDelta means a delta's base length does not match the
	// text of the revision it claims to apply to.
	ErrMalformedDelta = errors.New("delta base length mismatch")
)

// Engine holds the full CRDT history of one buffer. All methods must be
// called from the owning core goroutine; the engine itself does no
// locking.
type Engine struct {
	session          SessionID
	revIDCount       uint32
	text             rope.Rope
	tombstones       rope.Rope
	deletesFromUnion delta.Subset
	undoneGroups     GroupSet
	revs             []Revision
}

// New returns an engine with empty text and a single placeholder
// revision.
func New() *Engine {
	dfu := delta.NewSubset(0)
	return &Engine{
		session:    defaultSession,
		revIDCount: 1,
		revs: []Revision{{
			id:       RevID{Session: defaultSession, Num: 0},
			contents: undoContents{toggledGroups: NewGroupSet(), deletesBitxor: dfu},
		}},
		deletesFromUnion: dfu,
		undoneGroups:     NewGroupSet(),
	}
}

// NewFromRope returns an engine whose history starts with the given
// contents as revision one.
func NewFromRope(initial rope.Rope) *Engine {
	e := New()
	if !initial.IsEmpty() {
		d := delta.SimpleEdit(delta.NewInterval(0, 0), initial, 0)
		if err := e.EditRev(0, 0, e.HeadToken(), d); err != nil {
			panic(fmt.Sprintf("edit against fresh engine failed: %v", err))
		}
	}
	return e
}

// SetSessionID assigns the engine's session identity. It must be called
// exactly once, before any edit, on engines that will merge; reusing an
// id across engines corrupts merges.
func (e *Engine) SetSessionID(id SessionID) {
	e.session = id
}

// SessionID returns the engine's session identity.
func (e *Engine) SessionID() SessionID {
	return e.session
}

// Head returns the current text.
func (e *Engine) Head() rope.Rope {
	return e.text
}

// HeadRevID returns the id of the most recent revision.
func (e *Engine) HeadRevID() RevID {
	return e.revs[len(e.revs)-1].id
}

// HeadToken returns the token of the most recent revision.
func (e *Engine) HeadToken() RevToken {
	return e.HeadRevID().Token()
}

// RevCount returns the number of retained revisions.
func (e *Engine) RevCount() int {
	return len(e.revs)
}

// MaxUndoGroupID returns the highest undo group id in the history.
func (e *Engine) MaxUndoGroupID() uint64 {
	return e.revs[len(e.revs)-1].maxUndoSoFar
}

func (e *Engine) nextRevID() RevID {
	return RevID{Session: e.session, Num: e.revIDCount}
}

func (e *Engine) findRevToken(token RevToken) int {
	for i := len(e.revs) - 1; i >= 0; i-- {
		if e.revs[i].id.Token() == token {
			return i
		}
	}
	return -1
}

func (e *Engine) findRev(id RevID) int {
	for i := len(e.revs) - 1; i >= 0; i-- {
		if e.revs[i].id == id {
			return i
		}
	}
	return -1
}

// deletesFromUnionBeforeIndex reconstructs the deletes-from-union mask
// as it was before the revision at revIndex, by inverting each later
// revision's effect starting from the present.
func (e *Engine) deletesFromUnionBeforeIndex(revIndex int, invertUndos bool) delta.Subset {
	dfu := e.deletesFromUnion
	undone := e.undoneGroups
	for i := len(e.revs) - 1; i >= revIndex; i-- {
		switch c := e.revs[i].contents.(type) {
		case editContents:
			if undone.Contains(c.undoGroup) {
				// Undone inserts are shrunk out; nothing to un-delete.
				dfu = dfu.TransformShrink(c.inserts)
			} else {
				dfu = dfu.Subtract(c.deletes).TransformShrink(c.inserts)
			}
		case undoContents:
			if invertUndos {
				undone = undone.symmetricDifference(c.toggledGroups)
				dfu = dfu.Xor(c.deletesBitxor)
			}
		}
	}
	return dfu
}

// deletesFromUnionForIndex is the mask as of the revision at revIndex,
// in that revision's union coordinates.
func (e *Engine) deletesFromUnionForIndex(revIndex int) delta.Subset {
	return e.deletesFromUnionBeforeIndex(revIndex+1, true)
}

// deletesFromCurUnionForIndex returns the mask to delete from the
// current union string to obtain the content at revIndex. Everything
// inserted after that revision is masked as well.
func (e *Engine) deletesFromCurUnionForIndex(revIndex int) delta.Subset {
	dfu := e.deletesFromUnionForIndex(revIndex)
	for _, r := range e.revs[revIndex+1:] {
		if c, ok := r.contents.(editContents); ok && !c.inserts.IsEmpty() {
			dfu = dfu.TransformUnion(c.inserts)
		}
	}
	return dfu
}

func (e *Engine) revContentForIndex(revIndex int) rope.Rope {
	oldDFU := e.deletesFromCurUnionForIndex(revIndex)
	d := delta.Synthesize(e.tombstones, e.deletesFromUnion, oldDFU)
	return d.Apply(e.text)
}

// GetRev returns the text as of the revision named by token, or false
// when the token is unknown.
func (e *Engine) GetRev(token RevToken) (rope.Rope, bool) {
	ix := e.findRevToken(token)
	if ix < 0 {
		return rope.Rope{}, false
	}
	return e.revContentForIndex(ix), true
}

// IsEquivalentRevision reports whether two revisions have identical
// content, even if they are distinct history entries.
func (e *Engine) IsEquivalentRevision(a, b RevID) bool {
	ai, bi := e.findRev(a), e.findRev(b)
	if ai < 0 || bi < 0 {
		return false
	}
	return e.deletesFromCurUnionForIndex(ai).Equals(e.deletesFromCurUnionForIndex(bi))
}

// EditRev applies a delta expressed against the revision named by
// baseToken. The delta is rebased over every newer revision; ties in
// priority are broken toward the later session so peers converge.
func (e *Engine) EditRev(priority int, undoGroup uint64, baseToken RevToken, d delta.Delta) error {
	rev, newText, newTombstones, newDFU, err := e.mkNewRev(priority, undoGroup, baseToken, d)
	if err != nil {
		return err
	}
	e.revIDCount++
	e.revs = append(e.revs, rev)
	e.text = newText
	e.tombstones = newTombstones
	e.deletesFromUnion = newDFU
	return nil
}

func (e *Engine) mkNewRev(priority int, undoGroup uint64, baseToken RevToken, d delta.Delta) (Revision, rope.Rope, rope.Rope, delta.Subset, error) {
	ix := e.findRevToken(baseToken)
	if ix < 0 {
		return Revision{}, rope.Rope{}, rope.Rope{}, delta.Subset{}, fmt.Errorf("%w: token %x", ErrMissingRevision, uint64(baseToken))
	}

	insDelta, unionDeletes := d.Factor()

	// Deletions come out of Factor in the coordinates of the base text
	// with the new inserts applied; drop the inserts to get base
	// coordinates before rebasing.
	deletes := unionDeletes.TransformShrink(insDelta.InsertedSubset())

	deletesAtRev := e.deletesFromUnionForIndex(ix)
	if insDelta.BaseLen() != deletesAtRev.LenAfterDelete() {
		return Revision{}, rope.Rope{}, rope.Rope{}, delta.Subset{},
			fmt.Errorf("%w: delta base %d, revision text %d", ErrMalformedDelta, insDelta.BaseLen(), deletesAtRev.LenAfterDelete())
	}

	// Rebase onto the union string as of the base revision.
	unionInsDelta := insDelta.TransformExpand(deletesAtRev, true)
	newDeletes := deletes.TransformExpand(deletesAtRev)

	// Rebase past every revision newer than the base.
	newFull := fullPriority{priority: priority, session: e.session}
	for _, r := range e.revs[ix+1:] {
		c, ok := r.contents.(editContents)
		if !ok || c.inserts.IsEmpty() {
			continue
		}
		full := fullPriority{priority: c.priority, session: r.id.Session}
		after := !newFull.sortsBefore(full)
		unionInsDelta = unionInsDelta.TransformExpand(c.inserts, after)
		newDeletes = newDeletes.TransformExpand(c.inserts)
	}

	// Move the deletions after our own inserts.
	newInserts := unionInsDelta.InsertedSubset()
	if !newInserts.IsEmpty() {
		newDeletes = newDeletes.TransformExpand(newInserts)
	}

	// Splice the inserted text into the visible text, then move newly
	// deleted runs over to the tombstones.
	textInsDelta := unionInsDelta.TransformShrink(e.deletesFromUnion)
	textWithInserts := textInsDelta.Apply(e.text)
	rebasedDFU := e.deletesFromUnion.TransformExpand(newInserts)

	toDelete := newDeletes
	if e.undoneGroups.Contains(undoGroup) {
		// An edit in a currently undone group hides its own inserts.
		toDelete = newInserts
	}
	newDFU := rebasedDFU.Union(toDelete)

	newText, newTombstones := shuffle(textWithInserts, e.tombstones, rebasedDFU, newDFU)

	head := e.revs[len(e.revs)-1]
	rev := Revision{
		id:           e.nextRevID(),
		maxUndoSoFar: max(undoGroup, head.maxUndoSoFar),
		contents: editContents{
			priority:  priority,
			undoGroup: undoGroup,
			inserts:   newInserts,
			deletes:   newDeletes,
		},
	}
	return rev, newText, newTombstones, newDFU, nil
}

// TryDeltaRevHead returns the delta carrying the text at baseToken to
// the current head.
func (e *Engine) TryDeltaRevHead(baseToken RevToken) (delta.Delta, error) {
	ix := e.findRevToken(baseToken)
	if ix < 0 {
		return delta.Delta{}, fmt.Errorf("%w: token %x", ErrMissingRevision, uint64(baseToken))
	}
	prevFromUnion := e.deletesFromCurUnionForIndex(ix)
	oldTombstones := shuffleTombstones(e.text, e.tombstones, e.deletesFromUnion, prevFromUnion)
	return delta.Synthesize(oldTombstones, prevFromUnion, e.deletesFromUnion), nil
}

// Undo makes groups the complete set of undone groups, toggling any
// that differ from the current set, and appends one Undo revision.
func (e *Engine) Undo(groups GroupSet) {
	rev, newDFU := e.computeUndo(groups)
	newText, newTombstones := shuffle(e.text, e.tombstones, e.deletesFromUnion, newDFU)
	e.text = newText
	e.tombstones = newTombstones
	e.deletesFromUnion = newDFU
	e.undoneGroups = groups.Clone()
	e.revs = append(e.revs, rev)
	e.revIDCount++
}

func (e *Engine) computeUndo(groups GroupSet) (Revision, delta.Subset) {
	toggled := e.undoneGroups.symmetricDifference(groups)
	first := e.findFirstUndoCandidateIndex(toggled)

	// Replay the mask from just before the first affected revision,
	// with the new undone set in force.
	dfu := e.deletesFromUnionBeforeIndex(first, false)
	for _, r := range e.revs[first:] {
		c, ok := r.contents.(editContents)
		if !ok {
			continue
		}
		if groups.Contains(c.undoGroup) {
			if !c.inserts.IsEmpty() {
				dfu = dfu.TransformUnion(c.inserts)
			}
		} else {
			if !c.inserts.IsEmpty() {
				dfu = dfu.TransformExpand(c.inserts)
			}
			if !c.deletes.IsEmpty() {
				dfu = dfu.Union(c.deletes)
			}
		}
	}

	rev := Revision{
		id:           e.nextRevID(),
		maxUndoSoFar: e.revs[len(e.revs)-1].maxUndoSoFar,
		contents: undoContents{
			toggledGroups: toggled,
			deletesBitxor: e.deletesFromUnion.Xor(dfu),
		},
	}
	return rev, dfu
}

// findFirstUndoCandidateIndex returns the index of the first revision
// that could contain a toggled group, bounded by maxUndoSoFar.
func (e *Engine) findFirstUndoCandidateIndex(toggled GroupSet) int {
	if len(toggled) == 0 {
		return len(e.revs)
	}
	lowest := ^uint64(0)
	for g := range toggled {
		if g < lowest {
			lowest = g
		}
	}
	for i := len(e.revs) - 1; i >= 0; i-- {
		if e.revs[i].maxUndoSoFar < lowest {
			return i + 1
		}
	}
	return 0
}

// shuffle recomputes text and tombstones after the deletion mask moved
// from oldDFU to newDFU over the same union string.
func shuffle(text, tombstones rope.Rope, oldDFU, newDFU delta.Subset) (rope.Rope, rope.Rope) {
	delDelta := delta.Synthesize(tombstones, oldDFU, newDFU)
	newText := delDelta.Apply(text)
	return newText, shuffleTombstones(text, tombstones, oldDFU, newDFU)
}

// shuffleTombstones is shuffle for the hidden half: complementing the
// masks makes the same synthesis move text into the tombstones.
func shuffleTombstones(text, tombstones rope.Rope, oldDFU, newDFU delta.Subset) rope.Rope {
	moveDelta := delta.Synthesize(text, oldDFU.Complement(), newDFU.Complement())
	return moveDelta.Apply(tombstones)
}
