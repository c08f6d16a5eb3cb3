package spans

import (
	"sort"

	"github.com/dshills/editcore/internal/engine/delta"
)

// PluginID identifies the plugin that produced a layer of style spans.
type PluginID int

// StyleID refers to a style definition held by the client. Zero is
// reserved for the selection style.
type StyleID int

// Layers holds one Spans[StyleID] per plugin plus a lazily rebuilt
// merged view the renderer consumes.
type Layers struct {
	layers map[PluginID]Spans[StyleID]
	merged Spans[StyleID]
	dirty  bool
	len    int
}

// NewLayers returns layers over a text of the given length.
func NewLayers(totalLen int) *Layers {
	return &Layers{
		layers: make(map[PluginID]Spans[StyleID]),
		merged: Spans[StyleID]{totalLen: totalLen},
		len:    totalLen,
	}
}

// UpdateLayer replaces plugin's coverage of iv with the given spans,
// whose coordinates are relative to iv.Start.
func (l *Layers) UpdateLayer(plugin PluginID, iv delta.Interval, sp Spans[StyleID]) {
	layer, ok := l.layers[plugin]
	if !ok {
		layer = Spans[StyleID]{totalLen: l.len}
	}
	// Splice without shifting: the layer covers the same text before
	// and after, only the annotations over iv change.
	if sp.TotalLen() != iv.Len() {
		sp.totalLen = iv.Len()
	}
	l.layers[plugin] = layer.Edit(iv, sp)
	l.dirty = true
}

// RemoveLayer drops a plugin's spans entirely.
func (l *Layers) RemoveLayer(plugin PluginID) {
	delete(l.layers, plugin)
	l.dirty = true
}

// UpdateAll rebases every layer through the delta after an edit.
func (l *Layers) UpdateAll(d delta.Delta) {
	tr := delta.NewTransformer(d)
	newLen := d.NewLen()
	for id, layer := range l.layers {
		l.layers[id] = layer.Transform(tr, newLen)
	}
	l.len = newLen
	l.dirty = true
}

// GetMerged returns the overlay of all layers. Within one plugin later
// updates already won; between plugins the lower id wins where spans
// overlap.
func (l *Layers) GetMerged() Spans[StyleID] {
	if !l.dirty {
		return l.merged
	}
	ids := make([]PluginID, 0, len(l.layers))
	for id := range l.layers {
		ids = append(ids, id)
	}
	// Paint high ids first so low ids overwrite them.
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	merged := Spans[StyleID]{totalLen: l.len}
	for _, id := range ids {
		l.layers[id].Iter(func(iv delta.Interval, style StyleID) bool {
			merged = merged.overlay(iv, style)
			return true
		})
	}
	l.merged = merged
	l.dirty = false
	return merged
}
