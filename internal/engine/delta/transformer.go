package delta

// Transformer rebases byte offsets through a delta. Selections, span
// annotations, and stale plugin edits all use it to survive a change to
// the text they were computed against.
type Transformer struct {
	delta Delta
}

// NewTransformer returns a transformer over d.
func NewTransformer(d Delta) *Transformer {
	return &Transformer{delta: d}
}

// Transform maps an offset in the delta's base to the corresponding
// offset in its output. Offsets inside deleted text collapse to the
// deletion point. When text was inserted exactly at the offset, the
// result lands before it, or after it when after is set.
func (t *Transformer) Transform(ix int, after bool) int {
	if ix == 0 && !after {
		return 0
	}
	result := 0
	for _, el := range t.delta.els {
		if el.insert {
			result += el.text.Len()
			continue
		}
		if ix <= el.start {
			return result
		}
		if ix < el.end || (ix == el.end && !after) {
			return result + ix - el.start
		}
		result += el.end - el.start
	}
	return result
}

// IntervalUntouched reports whether the delta neither deletes nor
// inserts anywhere that would disturb [start, end): the interval lies
// within a single copied run.
func (t *Transformer) IntervalUntouched(start, end int) bool {
	lastWasInsert := true
	for _, el := range t.delta.els {
		if el.insert {
			lastWasInsert = true
			continue
		}
		if end <= el.end {
			if lastWasInsert {
				return start >= el.start
			}
			return start > el.start
		}
		lastWasInsert = false
	}
	return false
}
