package crdt

import (
	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
)

// Merge incorporates the history of a peer engine. The two histories
// must share their initial revision; post-fork peer revisions are
// rebased past local post-fork revisions using the deterministic
// priority order, so both sides converge to identical head text after
// merging each other.
func (e *Engine) Merge(other *Engine) error {
	if e.session == other.session {
		return ErrMismatchedSession
	}
	baseIndex := findBaseIndex(e.revs, other.revs)
	common := findCommon(e.revs[baseIndex:], other.revs[baseIndex:])

	aNew := rearrange(e.revs[baseIndex:], common, e.deletesFromUnion.Len())
	bNew := rearrange(other.revs[baseIndex:], common, other.deletesFromUnion.Len())

	bDeltas := computeDeltas(bNew, other.text, other.tombstones, other.deletesFromUnion)
	expandBy := computeTransforms(aNew)

	newText, newTombstones, newDFU, newRevs := rebase(
		expandBy, bDeltas, e.text, e.tombstones, e.deletesFromUnion, e.MaxUndoGroupID())

	e.text = newText
	e.tombstones = newTombstones
	e.deletesFromUnion = newDFU
	e.revs = append(e.revs, newRevs...)
	return nil
}

// findBaseIndex locates the end of the prefix both histories are known
// to share. The initial placeholder revision is always common.
func findBaseIndex(a, b []Revision) int {
	if len(a) == 0 || len(b) == 0 || a[0].id != b[0].id {
		panic("merged engines must share their initial revision")
	}
	return 1
}

func findCommon(a, b []Revision) map[RevID]struct{} {
	bIDs := make(map[RevID]struct{}, len(b))
	for _, r := range b {
		bIDs[r.id] = struct{}{}
	}
	common := make(map[RevID]struct{})
	for _, r := range a {
		if _, ok := bIDs[r.id]; ok {
			common[r.id] = struct{}{}
		}
	}
	return common
}

// rearrange filters revs down to those not in base, each fast-forwarded
// over the common revisions that followed it, so the survivors apply in
// order directly after the common prefix.
func rearrange(revs []Revision, base map[RevID]struct{}, headLen int) []Revision {
	// Characters added by common revisions after the current point.
	s := delta.NewSubset(headLen)

	out := make([]Revision, 0, len(revs)-len(base))
	for i := len(revs) - 1; i >= 0; i-- {
		r := revs[i]
		c, ok := r.contents.(editContents)
		if !ok {
			panic("merging histories with undo revisions is not supported")
		}
		if _, isBase := base[r.id]; isBase {
			s = c.inserts.TransformUnion(s)
			continue
		}
		inserts := c.inserts.TransformExpand(s)
		deletes := c.deletes.TransformExpand(s)
		// Keep earlier non-common revisions from being transformed
		// past this one.
		s = s.TransformShrink(inserts)
		out = append(out, Revision{
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
	reverse(out)
	return out
}

// deltaOp is one peer revision converted back into an insert delta over
// the text as of the previous peer revision.
type deltaOp struct {
	id        RevID
	priority  int
	undoGroup uint64
	inserts   delta.InsertDelta
	deletes   delta.Subset
}

// computeDeltas recovers, for each revision, the concrete inserted text
// from the peer's union string.
func computeDeltas(revs []Revision, text, tombstones rope.Rope, dfu delta.Subset) []deltaOp {
	out := make([]deltaOp, 0, len(revs))
	curAllInserts := delta.NewSubset(dfu.Len())
	for i := len(revs) - 1; i >= 0; i-- {
		r := revs[i]
		c := r.contents.(editContents)
		olderAllInserts := c.inserts.TransformUnion(curAllInserts)
		tombstonesHere := shuffleTombstones(text, tombstones, dfu, olderAllInserts)
		d := delta.Synthesize(tombstonesHere, olderAllInserts, curAllInserts)
		ins, _ := d.Factor()
		out = append(out, deltaOp{
			id:        r.id,
			priority:  c.priority,
			undoGroup: c.undoGroup,
			inserts:   ins,
			deletes:   c.deletes,
		})
		curAllInserts = olderAllInserts
	}
	reverseOps(out)
	return out
}

// computeTransforms collapses the local post-fork revisions into runs
// of equal priority, each with the union of that run's inserts.
func computeTransforms(revs []Revision) []prioritySubset {
	var out []prioritySubset
	havePrev := false
	prevPriority := 0
	for _, r := range revs {
		c, ok := r.contents.(editContents)
		if !ok || c.inserts.IsEmpty() {
			continue
		}
		if havePrev && c.priority == prevPriority {
			last := &out[len(out)-1]
			last.inserts = last.inserts.TransformUnion(c.inserts)
		} else {
			havePrev = true
			prevPriority = c.priority
			out = append(out, prioritySubset{
				full:    fullPriority{priority: c.priority, session: r.id.Session},
				inserts: c.inserts,
			})
		}
	}
	return out
}

type prioritySubset struct {
	full    fullPriority
	inserts delta.Subset
}

// rebase threads each peer op past the local post-fork inserts,
// biasing by full priority, and materializes the resulting revisions on
// top of the local head.
func rebase(expandBy []prioritySubset, ops []deltaOp, text, tombstones rope.Rope, dfu delta.Subset, maxUndoSoFar uint64) (rope.Rope, rope.Rope, delta.Subset, []Revision) {
	out := make([]Revision, 0, len(ops))
	for _, op := range ops {
		full := fullPriority{priority: op.priority, session: op.id.Session}
		inserts := op.inserts
		deletes := op.deletes
		next := make([]prioritySubset, 0, len(expandBy))
		for _, tr := range expandBy {
			after := !full.sortsBefore(tr.full)
			inserts = inserts.TransformExpand(tr.inserts, after)
			inserted := inserts.InsertedSubset()
			trInserts := tr.inserts.TransformExpand(inserted)
			deletes = deletes.TransformExpand(trInserts)
			next = append(next, prioritySubset{full: tr.full, inserts: trInserts})
		}
		expandBy = next

		textInserts := inserts.TransformShrink(dfu)
		textWithInserts := textInserts.Apply(text)
		inserted := inserts.InsertedSubset()

		expandedDFU := dfu.TransformExpand(inserted)
		newDFU := expandedDFU.Union(deletes)
		newText, newTombstones := shuffle(textWithInserts, tombstones, expandedDFU, newDFU)

		text = newText
		tombstones = newTombstones
		dfu = newDFU

		maxUndoSoFar = max(maxUndoSoFar, op.undoGroup)
		out = append(out, Revision{
			id:           op.id,
			maxUndoSoFar: maxUndoSoFar,
			contents: editContents{
				priority:  op.priority,
				undoGroup: op.undoGroup,
				inserts:   inserted,
				deletes:   deletes,
			},
		})
	}
	return text, tombstones, dfu, out
}

func reverse(revs []Revision) {
	for i, j := 0, len(revs)-1; i < j; i, j = i+1, j-1 {
		revs[i], revs[j] = revs[j], revs[i]
	}
}

func reverseOps(ops []deltaOp) {
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
}
