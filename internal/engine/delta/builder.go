package delta

import (
	"fmt"

	"github.com/dshills/editcore/internal/engine/rope"
)

// DeltaBuilder assembles a delta from replace and delete operations
// given in ascending, non-overlapping base order.
type DeltaBuilder struct {
	els        []element
	baseLen    int
	lastOffset int
}

// Init prepares the builder for a base of the given length. It must be
// called before the first edit.
func (b *DeltaBuilder) Init(baseLen int) {
	b.els = nil
	b.baseLen = baseLen
	b.lastOffset = 0
}

// Delete removes the interval from the base.
func (b *DeltaBuilder) Delete(iv Interval) {
	if iv.Start < b.lastOffset {
		panic(fmt.Sprintf("delta builder: interval %v before offset %d", iv, b.lastOffset))
	}
	if iv.End > b.baseLen {
		panic(fmt.Sprintf("delta builder: interval %v exceeds base length %d", iv, b.baseLen))
	}
	if iv.Start > b.lastOffset {
		b.els = append(b.els, copyElement(b.lastOffset, iv.Start))
	}
	b.lastOffset = iv.End
}

// Replace substitutes text for the interval. An empty interval is a
// pure insertion at its position.
func (b *DeltaBuilder) Replace(iv Interval, text rope.Rope) {
	if !text.IsEmpty() {
		if iv.Start < b.lastOffset {
			panic(fmt.Sprintf("delta builder: interval %v before offset %d", iv, b.lastOffset))
		}
		if iv.Start > b.lastOffset {
			b.els = append(b.els, copyElement(b.lastOffset, iv.Start))
		}
		b.lastOffset = iv.Start
		b.els = append(b.els, insertElement(text))
	}
	b.Delete(iv)
}

// IsEmpty reports whether no edits have been recorded.
func (b *DeltaBuilder) IsEmpty() bool {
	return b.lastOffset == 0 && len(b.els) == 0
}

// Build returns the finished delta, copying any untouched suffix.
func (b *DeltaBuilder) Build() Delta {
	if b.lastOffset < b.baseLen {
		b.els = append(b.els, copyElement(b.lastOffset, b.baseLen))
	}
	return Delta{els: b.els, baseLen: b.baseLen}
}
