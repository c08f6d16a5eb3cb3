// Package editor owns a buffer's revision history and implements the
// editing commands on top of it: undo grouping, typing and deletion,
// clipboard, and the bookkeeping that feeds views and plugins.
package editor

import (
	"fmt"

	"github.com/dshills/editcore/internal/engine/crdt"
	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
	"github.com/dshills/editcore/internal/engine/spans"
	"github.com/dshills/editcore/internal/view"
)

// maxUndos caps how many undo groups stay live; older groups are
// evicted for garbage collection and cannot be redone.
const maxUndos = 300

// editPriority orders locally produced edits against merged remote
// ones.
const editPriority = 0x10000

// Editor is one open buffer.
type Editor struct {
	engine *crdt.Engine
	text   rope.Rope

	lastEditType EditType
	thisEditType EditType
	// forceUndoGroup joins the next edit to the current group
	// regardless of its type.
	forceUndoGroup bool

	undoGroupID uint64
	// liveUndos are the groups that can still be toggled; curUndo
	// points one past the last group currently applied.
	liveUndos []uint64
	curUndo   int
	undos     crdt.GroupSet
	gcUndos   crdt.GroupSet

	// lastRevToken is the head as of the last commit handed to views.
	lastRevToken crdt.RevToken

	// revsInFlight counts deltas plugins have not yet acknowledged;
	// GC is deferred while nonzero.
	revsInFlight int

	pristineRev crdt.RevID

	killRing string

	layers *spans.Layers

	// Tab settings, normally fed from config.
	TabSize       int
	TranslateTabs bool
	// Autopair enables surround-on-type for pair openers.
	Autopair bool
}

// New returns an editor over the given initial text.
func New(initial string) *Editor {
	engine := crdt.NewFromRope(rope.FromString(initial))
	text := engine.Head()
	return &Editor{
		engine:       engine,
		text:         text,
		undoGroupID:  1,
		undos:        crdt.NewGroupSet(),
		gcUndos:      crdt.NewGroupSet(),
		lastRevToken: engine.HeadToken(),
		pristineRev:  engine.HeadRevID(),
		layers:       spans.NewLayers(text.Len()),
		TabSize:      4,
		Autopair:     true,
	}
}

// SetSessionID forwards the collaboration session id to the engine;
// it must be set before the first edit on a buffer meant to merge.
func (e *Editor) SetSessionID(id crdt.SessionID) {
	e.engine.SetSessionID(id)
}

// Engine exposes the revision engine for merge and plugin paths.
func (e *Editor) Engine() *crdt.Engine { return e.engine }

// Text is the current head text.
func (e *Editor) Text() rope.Rope { return e.text }

// Layers is the buffer's style span layers.
func (e *Editor) Layers() *spans.Layers { return e.layers }

// StyleSpans returns the merged style cover used for rendering.
func (e *Editor) StyleSpans() spans.Spans[spans.StyleID] {
	return e.layers.GetMerged()
}

// KillRing returns the last cut or copied text.
func (e *Editor) KillRing() string { return e.killRing }

// SetForceUndoGroup makes following edits join the current undo group
// until cleared, whatever their type.
func (e *Editor) SetForceUndoGroup(force bool) { e.forceUndoGroup = force }

// IsPristine reports whether the head matches the last saved state.
func (e *Editor) IsPristine() bool {
	return e.engine.IsEquivalentRevision(e.pristineRev, e.engine.HeadRevID())
}

// SetPristine marks the current head as the saved state.
func (e *Editor) SetPristine() {
	e.pristineRev = e.engine.HeadRevID()
}

// calculateUndoGroup returns the undo group for the next edit,
// allocating a new one when the edit type breaks the current group.
func (e *Editor) calculateUndoGroup() uint64 {
	hasUndos := e.curUndo > 0
	unbroken := !e.thisEditType.BreaksUndoGroup(e.lastEditType)
	if hasUndos && (e.forceUndoGroup || unbroken) {
		return e.liveUndos[e.curUndo-1]
	}

	group := e.undoGroupID
	e.undoGroupID++
	// Groups beyond the redo point become unreachable. They stay in
	// the undone set until GC so they are not resurrected by a later
	// undo toggle.
	for _, g := range e.liveUndos[e.curUndo:] {
		e.gcUndos[g] = struct{}{}
	}
	e.liveUndos = append(e.liveUndos[:e.curUndo], group)
	if len(e.liveUndos) <= maxUndos {
		e.curUndo++
	} else {
		evicted := e.liveUndos[0]
		e.liveUndos = e.liveUndos[1:]
		e.gcUndos[evicted] = struct{}{}
	}
	return group
}

// addDelta commits one edit delta against the head.
func (e *Editor) addDelta(d delta.Delta) {
	head := e.engine.HeadToken()
	group := e.calculateUndoGroup()
	e.lastEditType = e.thisEditType
	if err := e.engine.EditRev(editPriority, group, head, d); err != nil {
		// The delta was built against the head we just read; a
		// mismatch is a bug, not an input error.
		panic(fmt.Sprintf("editor: head edit rejected: %v", err))
	}
	e.text = e.engine.Head()
	e.collectGarbage()
}

// CommitDelta returns the delta from the last committed state to the
// head, with the text it applies to and the selection drift for it.
// ok is false when the head has not moved.
func (e *Editor) CommitDelta() (d delta.Delta, lastText rope.Rope, drift view.InsertDrift, ok bool) {
	if e.engine.HeadToken() == e.lastRevToken {
		return delta.Delta{}, rope.Rope{}, view.DriftDefault, false
	}
	d, err := e.engine.TryDeltaRevHead(e.lastRevToken)
	if err != nil {
		panic(fmt.Sprintf("editor: committed revision lost: %v", err))
	}
	lastText, found := e.engine.GetRev(e.lastRevToken)
	if !found {
		panic("editor: committed revision text lost")
	}
	switch e.thisEditType {
	case EditTypeTranspose:
		drift = view.DriftInside
	case EditTypeSurround:
		drift = view.DriftOutside
	default:
		drift = view.DriftDefault
	}
	e.lastRevToken = e.engine.HeadToken()
	e.layers.UpdateAll(d)
	return d, lastText, drift, true
}

// Undo reverts the most recent live undo group.
func (e *Editor) Undo() {
	if e.curUndo == 0 {
		return
	}
	e.curUndo--
	e.undos[e.liveUndos[e.curUndo]] = struct{}{}
	e.thisEditType = EditTypeUndo
	e.lastEditType = EditTypeUndo
	e.engine.Undo(e.undos.Clone())
	e.text = e.engine.Head()
}

// Redo re-applies the most recently undone group.
func (e *Editor) Redo() {
	if e.curUndo >= len(e.liveUndos) {
		return
	}
	delete(e.undos, e.liveUndos[e.curUndo])
	e.curUndo++
	e.thisEditType = EditTypeRedo
	e.lastEditType = EditTypeRedo
	e.engine.Undo(e.undos.Clone())
	e.text = e.engine.Head()
}

// IncRevsInFlight notes a delta handed to a plugin and not yet
// acknowledged.
func (e *Editor) IncRevsInFlight() {
	e.revsInFlight++
}

// DecRevsInFlight acknowledges one in-flight delta and garbage
// collects once none remain. Decrementing past zero is a caller bug.
func (e *Editor) DecRevsInFlight() {
	if e.revsInFlight == 0 {
		panic("editor: revs_in_flight underflow")
	}
	e.revsInFlight--
	e.collectGarbage()
}

// collectGarbage discards dead undo groups when no plugin still holds
// a revision reference.
func (e *Editor) collectGarbage() {
	if e.revsInFlight > 0 || len(e.gcUndos) == 0 {
		return
	}
	e.engine.GC(e.gcUndos.Clone())
	for g := range e.gcUndos {
		delete(e.undos, g)
	}
	e.gcUndos = crdt.NewGroupSet()
}

// Reload replaces the buffer with new content, expressed as a minimal
// line diff so selections and annotations survive where possible.
func (e *Editor) Reload(text rope.Rope) {
	d := crdt.LineHashDiff(e.text, text)
	if d.IsIdentity() {
		return
	}
	e.thisEditType = EditTypeOther
	e.addDelta(d)
	e.SetPristine()
}
