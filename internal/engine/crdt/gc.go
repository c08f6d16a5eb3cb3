package crdt

import "github.com/dshills/editcore/internal/engine/delta"

// GC permanently discards the contribution of the given undo groups:
// their tombstoned characters leave the union string and revisions
// consisting only of dead groups are dropped. The caller must ensure no
// plugin edit is in flight and must never undo a collected group again.
// The head text is unchanged.
func (e *Engine) GC(gcGroups GroupSet) {
	gcDels := e.emptySubsetBeforeFirstRev()
	retain := e.revs[len(e.revs)-1].id

	// First pass: accumulate the union positions owned by dead groups.
	for _, r := range e.revs {
		c, ok := r.contents.(editContents)
		if !ok {
			continue
		}
		if r.id != retain && gcGroups.Contains(c.undoGroup) {
			if e.undoneGroups.Contains(c.undoGroup) {
				if !c.inserts.IsEmpty() {
					gcDels = gcDels.TransformUnion(c.inserts)
				}
			} else {
				if !c.inserts.IsEmpty() {
					gcDels = gcDels.TransformExpand(c.inserts)
				}
				if !c.deletes.IsEmpty() {
					gcDels = gcDels.Union(c.deletes)
				}
			}
		} else if !c.inserts.IsEmpty() {
			gcDels = gcDels.TransformExpand(c.inserts)
		}
	}

	if !gcDels.IsEmpty() {
		notInTombstones := e.deletesFromUnion.Complement()
		delsFromTombstones := gcDels.TransformShrink(notInTombstones)
		e.tombstones = delsFromTombstones.DeleteFrom(e.tombstones)
		e.deletesFromUnion = e.deletesFromUnion.TransformShrink(gcDels)
	}

	// Second pass, newest first: shrink surviving revisions out of the
	// collected coordinates and drop dead ones.
	old := e.revs
	e.revs = make([]Revision, 0, len(old))
	for i := len(old) - 1; i >= 0; i-- {
		r := old[i]
		switch c := r.contents.(type) {
		case editContents:
			var shrunkGCDels delta.Subset
			hasShrunk := false
			if !c.inserts.IsEmpty() {
				shrunkGCDels = gcDels.TransformShrink(c.inserts)
				hasShrunk = true
			}
			if !gcGroups.Contains(c.undoGroup) || r.id == retain {
				inserts, deletes := c.inserts, c.deletes
				if !gcDels.IsEmpty() {
					inserts = inserts.TransformShrink(gcDels)
					deletes = deletes.TransformShrink(gcDels)
				}
				e.revs = append(e.revs, Revision{
					id:           r.id,
					maxUndoSoFar: r.maxUndoSoFar,
					contents: editContents{
						priority:  c.priority,
						undoGroup: c.undoGroup,
						inserts:   inserts,
						deletes:   deletes,
					},
				})
			}
			if hasShrunk {
				gcDels = shrunkGCDels
			}
		case undoContents:
			// After GC the record of which undos produced the current
			// state is lost for collected groups.
			kept := make(GroupSet)
			for g := range c.toggledGroups {
				if !gcGroups.Contains(g) {
					kept[g] = struct{}{}
				}
			}
			if len(kept) == 0 {
				continue
			}
			bitxor := c.deletesBitxor
			if !gcDels.IsEmpty() {
				bitxor = bitxor.TransformShrink(gcDels)
			}
			e.revs = append(e.revs, Revision{
				id:           r.id,
				maxUndoSoFar: r.maxUndoSoFar,
				contents:     undoContents{toggledGroups: kept, deletesBitxor: bitxor},
			})
		}
	}
	reverse(e.revs)
}

// emptySubsetBeforeFirstRev returns an empty subset sized for the union
// string as it was before the first retained revision.
func (e *Engine) emptySubsetBeforeFirstRev() delta.Subset {
	first := e.revs[0]
	var n int
	switch c := first.contents.(type) {
	case editContents:
		// The length before the first edit excludes its inserts.
		n = c.inserts.Count(delta.CountZero)
	case undoContents:
		n = c.deletesBitxor.Count(delta.CountAll)
	}
	return delta.NewSubset(n)
}
