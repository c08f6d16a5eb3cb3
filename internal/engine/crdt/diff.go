package crdt

import (
	"hash/fnv"

	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
)

// LineHashDiff computes a delta carrying base to target by hashing
// whole lines and aligning matching runs. It is used on reload, where
// the two texts usually share most of their lines; unmatched stretches
// are replaced wholesale.
func LineHashDiff(base, target rope.Rope) delta.Delta {
	baseLines := lineSpans(base)
	targetLines := lineSpans(target)

	// Index base lines by content hash, in order.
	index := make(map[uint64][]int, len(baseLines))
	for i, ln := range baseLines {
		h := hashLine(base, ln)
		index[h] = append(index[h], i)
	}

	// Greedy monotone alignment: each target line takes the first
	// unconsumed base line with the same hash.
	match := make([]int, len(targetLines))
	cursor := 0
	for ti, ln := range targetLines {
		match[ti] = -1
		h := hashLine(target, ln)
		for _, bi := range index[h] {
			if bi >= cursor && lineEqual(base, baseLines[bi], target, ln) {
				match[ti] = bi
				cursor = bi + 1
				break
			}
		}
	}

	var b delta.DeltaBuilder
	b.Init(base.Len())
	basePos, targetPos := 0, 0
	for ti := 0; ti < len(targetLines); ti++ {
		bi := match[ti]
		if bi < 0 {
			continue
		}
		// Replace the unmatched stretch before this line.
		if baseLines[bi].Start > basePos || targetLines[ti].Start > targetPos {
			repl, _ := target.Slice(targetPos, targetLines[ti].Start)
			b.Replace(delta.NewInterval(basePos, baseLines[bi].Start), repl)
		}
		basePos = baseLines[bi].End
		targetPos = targetLines[ti].End
	}
	if basePos < base.Len() || targetPos < target.Len() {
		repl, _ := target.Slice(targetPos, target.Len())
		b.Replace(delta.NewInterval(basePos, base.Len()), repl)
	}
	return b.Build()
}

type lineSpan struct {
	Start int
	End   int
}

// lineSpans returns the byte range of every line including its
// terminating newline. A trailing newline does not produce a final
// empty span.
func lineSpans(r rope.Rope) []lineSpan {
	var out []lineSpan
	start := 0
	it := r.Chunks()
	pos := 0
	for it.Next() {
		chunk := it.Chunk()
		for i := 0; i < len(chunk); i++ {
			if chunk[i] == '\n' {
				out = append(out, lineSpan{Start: start, End: pos + i + 1})
				start = pos + i + 1
			}
		}
		pos += len(chunk)
	}
	if start < r.Len() {
		out = append(out, lineSpan{Start: start, End: r.Len()})
	}
	return out
}

func hashLine(r rope.Rope, ln lineSpan) uint64 {
	h := fnv.New64a()
	h.Write([]byte(r.SliceString(ln.Start, ln.End)))
	return h.Sum64()
}

func lineEqual(a rope.Rope, la lineSpan, b rope.Rope, lb lineSpan) bool {
	if la.End-la.Start != lb.End-lb.Start {
		return false
	}
	return a.SliceString(la.Start, la.End) == b.SliceString(lb.Start, lb.End)
}
