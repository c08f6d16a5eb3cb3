package crdt

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/dshills/editcore/internal/engine/delta"
)

// SessionID identifies one engine instance for the lifetime of a
// collaborative session. Two engines that will merge must never share a
// session id.
type SessionID struct {
	High uint64
	Low  uint32
}

// NewSessionID returns a random session id.
func NewSessionID() SessionID {
	id := uuid.New()
	return SessionID{
		High: binary.BigEndian.Uint64(id[0:8]),
		Low:  binary.BigEndian.Uint32(id[8:12]),
	}
}

// defaultSession is the id of engines that never had SetSessionID
// called. Such engines must not merge with each other.
var defaultSession = SessionID{High: 1, Low: 0}

// RevID names one revision: the session that created it plus a counter
// local to that session. Ids from one session are totally ordered by
// Num.
type RevID struct {
	Session SessionID
	Num     uint32
}

// RevToken is a 64-bit content hash of a RevID, the form in which
// revisions are handed to plugins and clients.
type RevToken uint64

// Token returns the hash handle for the id.
func (id RevID) Token() RevToken {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], id.Session.High)
	binary.LittleEndian.PutUint32(buf[8:12], id.Session.Low)
	binary.LittleEndian.PutUint32(buf[12:16], id.Num)
	h := fnv.New64a()
	h.Write(buf[:16])
	return RevToken(h.Sum64())
}

// fullPriority breaks priority ties between sessions so that
// concurrent edits linearize identically on every peer.
type fullPriority struct {
	priority int
	session  SessionID
}

// sortsBefore reports whether an edit with this priority linearizes
// ahead of one with other: higher priority first, ties broken by
// session id. Edits from the same session never tie; the later
// revision sorts after.
func (p fullPriority) sortsBefore(other fullPriority) bool {
	if p.priority != other.priority {
		return p.priority > other.priority
	}
	if p.session.High != other.session.High {
		return p.session.High < other.session.High
	}
	return p.session.Low < other.session.Low
}

// GroupSet is a set of undo group ids.
type GroupSet map[uint64]struct{}

// NewGroupSet builds a set from the given ids.
func NewGroupSet(ids ...uint64) GroupSet {
	gs := make(GroupSet, len(ids))
	for _, id := range ids {
		gs[id] = struct{}{}
	}
	return gs
}

// Contains reports membership.
func (gs GroupSet) Contains(id uint64) bool {
	_, ok := gs[id]
	return ok
}

// Clone returns an independent copy.
func (gs GroupSet) Clone() GroupSet {
	out := make(GroupSet, len(gs))
	for id := range gs {
		out[id] = struct{}{}
	}
	return out
}

// symmetricDifference returns ids in exactly one of the sets.
func (gs GroupSet) symmetricDifference(other GroupSet) GroupSet {
	out := make(GroupSet)
	for id := range gs {
		if !other.Contains(id) {
			out[id] = struct{}{}
		}
	}
	for id := range other {
		if !gs.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// revContents is the payload of a revision: a concrete edit or an undo
// toggle.
type revContents interface {
	isRevContents()
}

// editContents records characters contributed and tombstoned by one
// edit. Both subsets are expressed against the union string as of this
// revision.
type editContents struct {
	priority  int
	undoGroup uint64
	inserts   delta.Subset
	deletes   delta.Subset
}

// undoContents flips the undone state of a set of groups.
// deletesBitxor is the mask to XOR onto deletes-from-union to effect
// the toggle.
type undoContents struct {
	toggledGroups GroupSet
	deletesBitxor delta.Subset
}

func (editContents) isRevContents() {}
func (undoContents) isRevContents() {}

// Revision is one entry of the engine history.
type Revision struct {
	id RevID

	// maxUndoSoFar is the highest undo group id seen up to and
	// including this revision, used to bound undo searches.
	maxUndoSoFar uint64

	contents revContents
}

// ID returns the revision id.
func (r Revision) ID() RevID {
	return r.id
}
