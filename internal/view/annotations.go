package view

import (
	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/engine/delta"
	"github.com/dshills/editcore/internal/engine/rope"
	"github.com/dshills/editcore/internal/engine/spans"
)

// Annotations is one plugin's ranges of a single type, with an
// optional payload per range.
type Annotations struct {
	Items spans.Spans[string]
	Type  client.AnnotationType
}

// Update splices new annotations over interval, replacing whatever the
// plugin had there before.
func (a *Annotations) Update(interval delta.Interval, items spans.Spans[string]) {
	a.Items = a.Items.Edit(interval, items)
}

// AnnotationStore tracks annotations per plugin. Selections are not
// stored here; the view synthesizes a selection slice at render time.
type AnnotationStore struct {
	store map[spans.PluginID][]Annotations
}

func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{store: make(map[spans.PluginID][]Annotations)}
}

// Invalidate drops annotation spans covered by an edited interval.
// Plugins re-send annotations for the edited region at the revision
// they next catch up to.
func (s *AnnotationStore) Invalidate(interval delta.Interval) {
	empty := spans.NewBuilder[string](interval.Len()).Build()
	for plugin, anns := range s.store {
		for i := range anns {
			anns[i].Update(interval, empty)
		}
		s.store[plugin] = anns
	}
}

// Update replaces the plugin's annotations of the given type over
// interval. Item coordinates are relative to interval's start. A
// plugin may supply several annotation types; each is tracked
// separately.
func (s *AnnotationStore) Update(plugin spans.PluginID, typ client.AnnotationType, interval delta.Interval, items spans.Spans[string]) {
	anns := s.store[plugin]
	for i := range anns {
		if anns[i].Type == typ {
			anns[i].Update(interval, items)
			s.store[plugin] = anns
			return
		}
	}
	base := spans.NewBuilder[string](interval.End).Build()
	s.store[plugin] = append(anns, Annotations{Items: base.Edit(interval, items), Type: typ})
}

// Clear removes all annotations from a plugin, typically on shutdown.
func (s *AnnotationStore) Clear(plugin spans.PluginID) {
	delete(s.store, plugin)
}

// IterRange collects annotation slices intersecting interval, with
// positions converted to (line, col) pairs. Zero-length annotations at
// the interval edges are kept.
func (s *AnnotationStore) IterRange(lo LineOffset, text rope.Rope, interval delta.Interval) []client.AnnotationSlice {
	var out []client.AnnotationSlice
	for _, anns := range s.store {
		for _, a := range anns {
			var ranges []client.AnnotationRange
			var payloads []string
			hasPayload := false
			a.Items.Iter(func(iv delta.Interval, payload string) bool {
				if iv.Start > interval.End || iv.End < interval.Start {
					return true
				}
				startLine, startCol := OffsetToLineCol(lo, text, iv.Start)
				endLine, endCol := OffsetToLineCol(lo, text, iv.End)
				ranges = append(ranges, client.AnnotationRange{
					StartLine: startLine,
					StartCol:  startCol,
					EndLine:   endLine,
					EndCol:    endCol,
				})
				payloads = append(payloads, payload)
				if payload != "" {
					hasPayload = true
				}
				return true
			})
			if len(ranges) == 0 {
				continue
			}
			slice := client.AnnotationSlice{Type: a.Type, Ranges: ranges}
			if hasPayload {
				slice.Payloads = payloads
			}
			out = append(out, slice)
		}
	}
	return out
}

// selectionAnnotations renders the selection as an annotation slice so
// front-ends draw carets and highlights from the same channel as
// plugin annotations.
func selectionAnnotations(sel *Selection, lo LineOffset, text rope.Rope, interval delta.Interval) client.AnnotationSlice {
	var ranges []client.AnnotationRange
	for _, r := range sel.RegionsInRange(interval.Start, interval.End) {
		startLine, startCol := OffsetToLineCol(lo, text, r.Min())
		endLine, endCol := OffsetToLineCol(lo, text, r.Max())
		ranges = append(ranges, client.AnnotationRange{
			StartLine: startLine,
			StartCol:  startCol,
			EndLine:   endLine,
			EndCol:    endCol,
		})
	}
	return client.AnnotationSlice{Type: client.AnnotationSelection, Ranges: ranges}
}
