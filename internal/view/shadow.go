package view

// Validity bits for shadow spans. A line is only copyable when all
// three aspects the client caches are still current.
const (
	ValidText   uint8 = 1
	ValidStyles uint8 = 2
	ValidCursor uint8 = 4
	ValidAll          = ValidText | ValidStyles | ValidCursor
)

// ShadowSpan covers N consecutive document lines. StartLine is where
// the rendered form of the first line lives in the client's cache;
// it is meaningless when Validity is zero.
type ShadowSpan struct {
	N         int
	StartLine int
	Validity  uint8
}

// LineCacheShadow is the core's model of the client's line cache. It
// is consulted when rendering to decide which lines can be skipped,
// copied or must be re-encoded.
type LineCacheShadow struct {
	spans []ShadowSpan
	dirty bool
}

// NewShadow returns a shadow for a client that has nothing cached yet.
func NewShadow(height int) *LineCacheShadow {
	s := &LineCacheShadow{dirty: true}
	if height > 0 {
		s.spans = []ShadowSpan{{N: height}}
	}
	return s
}

// Height returns the number of document lines the shadow covers.
func (s *LineCacheShadow) Height() int {
	h := 0
	for _, sp := range s.spans {
		h += sp.N
	}
	return h
}

// Spans returns the raw spans, for tests.
func (s *LineCacheShadow) Spans() []ShadowSpan {
	return s.spans
}

// Dirty reports whether the shadow changed since the last render.
func (s *LineCacheShadow) Dirty() bool {
	return s.dirty
}

// ShadowBuilder assembles a shadow span by span, coalescing adjacent
// spans with equal validity and contiguous cache lines.
type ShadowBuilder struct {
	spans []ShadowSpan
}

func (b *ShadowBuilder) AddSpan(n, startLine int, validity uint8) {
	if n <= 0 {
		return
	}
	if len(b.spans) > 0 {
		last := &b.spans[len(b.spans)-1]
		if last.Validity == validity && (validity == 0 || last.StartLine+last.N == startLine) {
			last.N += n
			return
		}
	}
	b.spans = append(b.spans, ShadowSpan{N: n, StartLine: startLine, Validity: validity})
}

// Build returns the assembled shadow, marked clean.
func (b *ShadowBuilder) Build() *LineCacheShadow {
	return &LineCacheShadow{spans: b.spans}
}

// copyRange re-adds the shadow lines [from, to) to a builder.
func copyRange(b *ShadowBuilder, spans []ShadowSpan, from, to int) {
	line := 0
	for _, sp := range spans {
		lo, hi := max(line, from), min(line+sp.N, to)
		if hi > lo {
			b.AddSpan(hi-lo, sp.StartLine+(lo-line), sp.Validity)
		}
		line += sp.N
	}
}

// Edit replaces document lines [start, end) with newCount wholly
// invalid lines. Lines after the edit keep their cache positions.
func (s *LineCacheShadow) Edit(start, end, newCount int) {
	var b ShadowBuilder
	copyRange(&b, s.spans, 0, start)
	b.AddSpan(newCount, 0, 0)
	copyRange(&b, s.spans, end, s.Height())
	s.spans = b.spans
	s.dirty = true
}

// PartialInvalidate clears validity bits for lines [start, end),
// splitting spans as needed.
func (s *LineCacheShadow) PartialInvalidate(start, end int, bits uint8) {
	needed := false
	line := 0
	for _, sp := range s.spans {
		if line < end && line+sp.N > start && sp.Validity&bits != 0 {
			needed = true
			break
		}
		line += sp.N
	}
	if !needed {
		return
	}
	var b ShadowBuilder
	line = 0
	for _, sp := range s.spans {
		lo, hi := max(line, start), min(line+sp.N, end)
		if hi <= lo {
			b.AddSpan(sp.N, sp.StartLine, sp.Validity)
		} else {
			if lo > line {
				b.AddSpan(lo-line, sp.StartLine, sp.Validity)
			}
			b.AddSpan(hi-lo, sp.StartLine+(lo-line), sp.Validity&^bits)
			if line+sp.N > hi {
				b.AddSpan(line+sp.N-hi, sp.StartLine+(hi-line), sp.Validity)
			}
		}
		line += sp.N
	}
	s.spans = b.spans
	s.dirty = true
}

// RenderTactic is what the renderer should do with a stretch of lines.
type RenderTactic uint8

const (
	// TacticDiscard drops the lines from the client cache.
	TacticDiscard RenderTactic = iota
	// TacticPreserve keeps cached lines but does not render new ones.
	TacticPreserve
	// TacticRender brings the lines fully up to date.
	TacticRender
)

type planSpan struct {
	n      int
	tactic RenderTactic
}

// RenderPlan divides the document's lines into render tactics around a
// viewport.
type RenderPlan struct {
	spans []planSpan
}

// preserveExtent is how many lines around the viewport keep their
// cached contents so small scrolls do not re-render.
const preserveExtent = 1000

// NewRenderPlan builds the plan for a viewport of height lines
// starting at firstLine, in a document of totalHeight visual lines.
func NewRenderPlan(totalHeight, firstLine, height int) RenderPlan {
	var p RenderPlan
	last := 0
	discardEnd := firstLine - preserveExtent
	if discardEnd > 0 {
		p.push(discardEnd, TacticDiscard)
		last = discardEnd
	}
	if firstLine > last {
		p.push(min(firstLine, totalHeight)-last, TacticPreserve)
		last = min(firstLine, totalHeight)
	}
	renderEnd := min(firstLine+height, totalHeight)
	if renderEnd > last {
		p.push(renderEnd-last, TacticRender)
		last = renderEnd
	}
	preserveEnd := min(renderEnd+preserveExtent, totalHeight)
	if preserveEnd > last {
		p.push(preserveEnd-last, TacticPreserve)
		last = preserveEnd
	}
	if totalHeight > last {
		p.push(totalHeight-last, TacticDiscard)
	}
	return p
}

func (p *RenderPlan) push(n int, tactic RenderTactic) {
	if n > 0 {
		p.spans = append(p.spans, planSpan{n, tactic})
	}
}

// RequestLines upgrades lines [start, end) to the Render tactic, used
// when the client asks for lines outside the viewport.
func (p *RenderPlan) RequestLines(start, end int) {
	var out []planSpan
	line := 0
	for _, sp := range p.spans {
		lo, hi := max(line, start), min(line+sp.n, end)
		if hi <= lo || sp.tactic == TacticRender {
			out = appendPlan(out, sp.n, sp.tactic)
		} else {
			out = appendPlan(out, lo-line, sp.tactic)
			out = appendPlan(out, hi-lo, TacticRender)
			out = appendPlan(out, line+sp.n-hi, sp.tactic)
		}
		line += sp.n
	}
	p.spans = out
}

func appendPlan(spans []planSpan, n int, tactic RenderTactic) []planSpan {
	if n <= 0 {
		return spans
	}
	if len(spans) > 0 && spans[len(spans)-1].tactic == tactic {
		spans[len(spans)-1].n += n
		return spans
	}
	return append(spans, planSpan{n, tactic})
}

// PlanSegment is a stretch of lines with one tactic and one validity.
// TheirLine is the position in the client cache, -1 when the lines are
// not cached.
type PlanSegment struct {
	OurLine   int
	TheirLine int
	N         int
	Validity  uint8
	Tactic    RenderTactic
}

// IterWithPlan splits the plan against the shadow, yielding segments
// the renderer turns directly into update operations.
func (s *LineCacheShadow) IterWithPlan(plan RenderPlan) []PlanSegment {
	var out []PlanSegment
	line := 0
	si, soff := 0, 0
	for _, ps := range plan.spans {
		rem := ps.n
		for rem > 0 {
			n := rem
			var validity uint8
			theirLine := -1
			if si < len(s.spans) {
				sp := s.spans[si]
				n = min(rem, sp.N-soff)
				validity = sp.Validity
				if validity != 0 {
					theirLine = sp.StartLine + soff
				}
			}
			out = append(out, PlanSegment{
				OurLine:   line,
				TheirLine: theirLine,
				N:         n,
				Validity:  validity,
				Tactic:    ps.tactic,
			})
			line += n
			rem -= n
			if si < len(s.spans) {
				soff += n
				if soff == s.spans[si].N {
					si++
					soff = 0
				}
			}
		}
	}
	return out
}

// NeedsRender reports whether executing the plan would change what the
// client displays.
func (s *LineCacheShadow) NeedsRender(plan RenderPlan) bool {
	if s.dirty {
		return true
	}
	for _, seg := range s.IterWithPlan(plan) {
		if seg.Tactic == TacticRender && seg.Validity != ValidAll {
			return true
		}
	}
	return false
}
