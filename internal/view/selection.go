// Package view holds everything between the buffer and the screen:
// selections and movement, incremental line wrapping, the line cache
// shadow that tracks what the front end has, and the View type that
// turns edits into minimal render programs.
package view

import (
	"sort"

	"github.com/dshills/editcore/internal/engine/delta"
)

// Affinity resolves which visual line a caret sitting exactly on a wrap
// boundary belongs to.
type Affinity uint8

// Affinity values.
const (
	AffinityDownstream Affinity = iota
	AffinityUpstream
)

// InsertDrift biases a selection region when text is inserted exactly
// at one of its endpoints.
type InsertDrift uint8

// Drift policies.
const (
	// DriftDefault biases by the direction of the region.
	DriftDefault InsertDrift = iota
	// DriftInside keeps the endpoints inside the inserted text.
	DriftInside
	// DriftOutside keeps the endpoints outside the inserted text.
	DriftOutside
)

// SelRegion is one selection region. Start is the active end (where the
// cursor is drawn may be before or after End); a region with Start ==
// End is a caret.
type SelRegion struct {
	// Start is the stationary end of the selection.
	Start int
	// End is the moving end, where the caret is.
	End int
	// Horiz remembers the horizontal position for vertical movement;
	// nil when it has not been measured.
	Horiz *HorizPos
	// Affinity picks the visual line for carets on wrap boundaries.
	Affinity Affinity
}

// HorizPos is a remembered horizontal position in wrap-measure units.
type HorizPos struct {
	Col int
}

// Caret returns a caret region at offset.
func Caret(offset int) SelRegion {
	return SelRegion{Start: offset, End: offset}
}

// Region returns a region from start to end.
func Region(start, end int) SelRegion {
	return SelRegion{Start: start, End: end}
}

// WithHoriz returns a copy carrying the given horizontal position.
func (r SelRegion) WithHoriz(h *HorizPos) SelRegion {
	r.Horiz = h
	return r
}

// WithAffinity returns a copy carrying the given affinity.
func (r SelRegion) WithAffinity(a Affinity) SelRegion {
	r.Affinity = a
	return r
}

// Min returns the lesser endpoint.
func (r SelRegion) Min() int {
	return min(r.Start, r.End)
}

// Max returns the greater endpoint.
func (r SelRegion) Max() int {
	return max(r.Start, r.End)
}

// IsCaret reports whether the region is empty.
func (r SelRegion) IsCaret() bool {
	return r.Start == r.End
}

// IsUpstream reports whether the active end precedes the stationary
// end.
func (r SelRegion) IsUpstream() bool {
	return r.End < r.Start
}

// Interval returns the covered range.
func (r SelRegion) Interval() delta.Interval {
	return delta.Interval{Start: r.Min(), End: r.Max()}
}

// shouldMerge reports whether r must merge with the next region.
// Regions never touch or overlap, so touching counts. Two identical
// carets touch and collapse into one.
func (r SelRegion) shouldMerge(next SelRegion) bool {
	return next.Min() <= r.Max()
}

func (r SelRegion) mergeWith(other SelRegion) SelRegion {
	isForward := r.End >= r.Start || other.End >= other.Start
	newMin := min(r.Min(), other.Min())
	newMax := max(r.Max(), other.Max())
	if isForward {
		return SelRegion{Start: newMin, End: newMax}
	}
	return SelRegion{Start: newMax, End: newMin}
}

// Selection is a non-empty ascending list of non-touching regions.
type Selection struct {
	regions []SelRegion
}

// NewSelection returns a selection with a caret at offset zero.
func NewSelection() Selection {
	return Selection{regions: []SelRegion{Caret(0)}}
}

// SelectionFromRegion returns a selection holding exactly r.
func SelectionFromRegion(r SelRegion) Selection {
	return Selection{regions: []SelRegion{r}}
}

// Regions returns the regions in ascending order. Callers must not
// modify the slice.
func (s Selection) Regions() []SelRegion {
	return s.regions
}

// Len returns the number of regions.
func (s Selection) Len() int {
	return len(s.regions)
}

// Clear removes all regions. The selection is invalid until a region is
// added.
func (s *Selection) Clear() {
	s.regions = s.regions[:0]
}

// AddRegion inserts r, merging any regions it overlaps or touches.
func (s *Selection) AddRegion(r SelRegion) {
	ix := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].Min() >= r.Min()
	})
	if ix > 0 && s.regions[ix-1].shouldMerge(r) {
		ix--
	}
	endIx := ix
	for endIx < len(s.regions) && r.shouldMerge(s.regions[endIx]) {
		r = r.mergeWith(s.regions[endIx])
		endIx++
	}
	if ix > 0 && s.regions[ix-1].shouldMerge(r) {
		// The merge may have grown r backward into its predecessor.
		r = r.mergeWith(s.regions[ix-1])
		ix--
	}
	// Value copies of a Selection share the backing array, so the
	// splice must not write into it.
	out := make([]SelRegion, 0, ix+1+len(s.regions)-endIx)
	out = append(out, s.regions[:ix]...)
	out = append(out, r)
	out = append(out, s.regions[endIx:]...)
	s.regions = out
}

// RegionsInRange returns the regions whose closed span intersects
// [start, end], including carets sitting exactly on the boundaries.
func (s Selection) RegionsInRange(start, end int) []SelRegion {
	first := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].Max() >= start
	})
	last := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].Min() > end
	})
	return s.regions[first:last]
}

// DeleteRange removes regions lying inside [start, end), optionally
// deleting carets sitting exactly on the edges.
func (s *Selection) DeleteRange(start, end int, deleteAdjacent bool) {
	out := make([]SelRegion, 0, len(s.regions))
	for _, r := range s.regions {
		inside := r.Min() < end && r.Max() > start
		touching := r.Min() <= end && r.Max() >= start
		if inside || (touching && deleteAdjacent && r.IsCaret()) {
			continue
		}
		out = append(out, r)
	}
	s.regions = out
}

// Collapse reduces every region to a caret at its active end and merges
// duplicates.
func (s *Selection) Collapse() {
	old := s.regions
	s.regions = nil
	for _, r := range old {
		s.AddRegion(Caret(r.End).WithAffinity(r.Affinity))
	}
}

// ApplyDelta maps the selection through an edit. after picks the bias
// for endpoints that coincide with an insertion under DriftDefault;
// DriftInside and DriftOutside force both endpoints in or out.
func (s Selection) ApplyDelta(d delta.Delta, after bool, drift InsertDrift) Selection {
	tr := delta.NewTransformer(d)
	var out Selection
	for _, r := range s.regions {
		var newReg SelRegion
		switch {
		case drift == DriftInside && !r.IsCaret():
			newReg = Region(tr.Transform(r.Start, r.IsUpstream()), tr.Transform(r.End, !r.IsUpstream()))
		case drift == DriftOutside && !r.IsCaret():
			newReg = Region(tr.Transform(r.Start, !r.IsUpstream()), tr.Transform(r.End, r.IsUpstream()))
		default:
			newReg = Region(tr.Transform(r.Start, after), tr.Transform(r.End, after))
		}
		var horiz *HorizPos
		if r.Horiz != nil && tr.IntervalUntouched(r.Min(), r.Max()) {
			horiz = r.Horiz
		}
		newReg.Affinity = r.Affinity
		out.AddRegion(newReg.WithHoriz(horiz))
	}
	return out
}
