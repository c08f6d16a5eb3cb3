package rope

import "strings"

// Builder incrementally constructs a rope from appended text. It is
// cheaper than repeated Concat calls because leaves are laid out once,
// bottom-up.
type Builder struct {
	leaves  []*Node
	pending strings.Builder
}

// WriteString appends text to the builder.
func (b *Builder) WriteString(s string) {
	b.pending.WriteString(s)
	for b.pending.Len() >= 2*MaxLeafSize {
		text := b.pending.String()
		splitAt := findLeafBoundary(text, MaxLeafSize)
		b.leaves = append(b.leaves, newLeaf(text[:splitAt]))
		b.pending.Reset()
		b.pending.WriteString(text[splitAt:])
	}
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	return len(p), nil
}

// PushRope appends an existing rope's content.
func (b *Builder) PushRope(r Rope) {
	// Flushing pending text first keeps leaf order correct.
	b.WriteString(r.String())
}

// Build constructs the final rope. The builder may be reused afterward.
func (b *Builder) Build() Rope {
	text := b.pending.String()
	b.pending.Reset()
	leaves := b.leaves
	b.leaves = nil
	for len(text) > MaxLeafSize {
		splitAt := findLeafBoundary(text, MaxLeafSize)
		leaves = append(leaves, newLeaf(text[:splitAt]))
		text = text[splitAt:]
	}
	if len(text) > 0 || len(leaves) == 0 {
		leaves = append(leaves, newLeaf(text))
	}

	// Build the tree bottom-up with full fanout.
	nodes := leaves
	for len(nodes) > 1 {
		parents := make([]*Node, 0, (len(nodes)+MaxChildren-1)/MaxChildren)
		for i := 0; i < len(nodes); i += MaxChildren {
			end := i + MaxChildren
			if end > len(nodes) {
				end = len(nodes)
			}
			parents = append(parents, newInternal(nodes[i:end]))
		}
		nodes = parents
	}
	return Rope{root: nodes[0]}
}
