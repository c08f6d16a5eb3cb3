package plugin

import (
	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/engine/spans"
)

// Highlighter drives one Lua host against a buffer. Run it again
// whenever the buffer settles; stale results are rebased or dropped by
// the bridge.
type Highlighter struct {
	ID             spans.PluginID
	AnnotationType client.AnnotationType
	Host           *LuaHost
	Bridge         *Bridge
}

// Run computes spans and annotations for the head revision and feeds
// them back through the bridge.
func (h *Highlighter) Run() error {
	h.Bridge.StartEdit()
	defer h.Bridge.FinishEdit()

	text, rev := h.Bridge.Head()
	src := text.String()

	batch, err := h.Host.Highlight(src)
	if err != nil {
		return err
	}
	if batch != nil {
		h.Bridge.UpdateSpans(h.ID, 0, text.Len(), batch, rev)
	}

	anns, err := h.Host.Annotate(src)
	if err != nil {
		return err
	}
	if anns != nil {
		h.Bridge.UpdateAnnotations(h.ID, h.AnnotationType, 0, text.Len(), anns, rev)
	}
	return nil
}
