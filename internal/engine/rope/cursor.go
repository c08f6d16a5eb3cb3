package rope

// Cursor enables efficient traversal of a rope by metric boundaries.
// It caches the leaf containing the current position; local movement
// stays within the leaf and only re-descends when crossing into a
// neighboring one.
type Cursor struct {
	rope      Rope
	pos       int
	leaf      string
	leafStart int
	leafOK    bool
}

// NewCursor creates a cursor at the given byte offset, clamped to the
// rope's bounds.
func NewCursor(r Rope, offset int) *Cursor {
	c := &Cursor{rope: r}
	c.SetPos(offset)
	return c
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// SetPos moves the cursor to the given byte offset, clamped to the
// rope's bounds.
func (c *Cursor) SetPos(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > c.rope.Len() {
		offset = c.rope.Len()
	}
	c.pos = offset
	if c.leafOK && offset >= c.leafStart && offset < c.leafStart+len(c.leaf) {
		return
	}
	c.descend()
}

// descend refreshes the cached leaf for the current position.
func (c *Cursor) descend() {
	if c.rope.root == nil || c.rope.Len() == 0 {
		c.leaf, c.leafStart, c.leafOK = "", 0, false
		return
	}
	offset := c.pos
	if offset == c.rope.Len() {
		offset--
	}
	c.leaf, c.leafStart = c.rope.root.leafAt(offset)
	c.leafOK = true
}

// Leaf returns the text of the leaf containing the cursor and the
// cursor's offset within it. Returns ("", 0, false) on an empty rope.
func (c *Cursor) Leaf() (string, int, bool) {
	if !c.leafOK {
		return "", 0, false
	}
	return c.leaf, c.pos - c.leafStart, true
}

// IsBoundary reports whether the current position is a boundary of the
// metric. Position 0 and the end of the rope are boundaries of every
// metric except Lines, where the end counts only after a newline.
func (c *Cursor) IsBoundary(m Metric) bool {
	if c.pos == 0 {
		return true
	}
	if !c.leafOK {
		return true
	}
	rel := c.pos - c.leafStart
	if rel == 0 && m.canFragment() {
		// The boundary decision depends on bytes in the previous leaf.
		prevLeaf, prevStart := c.rope.root.leafAt(c.pos - 1)
		return isLeafBoundary(m, prevLeaf, c.pos-prevStart)
	}
	return isLeafBoundary(m, c.leaf, rel)
}

// Next advances to the next boundary of the metric, returning the new
// offset or -1 when no boundary remains.
func (c *Cursor) Next(m Metric) int {
	if m == Graphemes {
		next := c.rope.NextGraphemeOffset(c.pos)
		if next >= 0 {
			c.SetPos(next)
		}
		return next
	}
	for c.leafOK {
		rel := c.pos - c.leafStart
		if next := nextLeafBoundary(m, c.leaf, rel); next >= 0 {
			c.pos = c.leafStart + next
			if c.pos-c.leafStart >= len(c.leaf) && c.pos < c.rope.Len() {
				c.descend()
			}
			return c.pos
		}
		end := c.leafStart + len(c.leaf)
		if end >= c.rope.Len() {
			// Bytes and BaseMetric have a boundary at the rope's end.
			if m != Lines && c.pos < c.rope.Len() {
				c.pos = c.rope.Len()
				return c.pos
			}
			return -1
		}
		c.pos = end
		c.descend()
	}
	return -1
}

// Prev moves to the previous boundary of the metric, returning the new
// offset or -1 when none exists before the current position.
func (c *Cursor) Prev(m Metric) int {
	if m == Graphemes {
		prev := c.rope.PrevGraphemeOffset(c.pos)
		if prev >= 0 {
			c.SetPos(prev)
		}
		return prev
	}
	for {
		if c.pos == 0 {
			return -1
		}
		if !c.leafOK {
			return -1
		}
		rel := c.pos - c.leafStart
		if prev := prevLeafBoundary(m, c.leaf, rel); prev >= 0 {
			c.pos = c.leafStart + prev
			return c.pos
		}
		if c.leafStart == 0 {
			if m != Lines {
				c.pos = 0
				return 0
			}
			return -1
		}
		c.pos = c.leafStart
		c.leaf, c.leafStart = c.rope.root.leafAt(c.pos - 1)
		// Leaf start itself may be the boundary we are after.
		if isLeafBoundary(m, c.leaf, c.pos-c.leafStart) {
			return c.pos
		}
	}
}

// AtEnd returns true if the cursor is at the end of the rope.
func (c *Cursor) AtEnd() bool {
	return c.pos >= c.rope.Len()
}

// AtStart returns true if the cursor is at the start of the rope.
func (c *Cursor) AtStart() bool {
	return c.pos == 0
}

// CountBoundaries returns how many boundaries of the metric occur in
// (0, pos]. For summary-backed metrics this is O(log n).
func (c *Cursor) CountBoundaries(m Metric) int {
	if _, ok := m.fromSummary(TextSummary{}); ok {
		// Summary-backed metrics: descend, accumulating child sums.
		count := 0
		node := c.rope.root
		offset := c.pos
		for node != nil && !node.IsLeaf() {
			idx, rel := node.findChild(offset)
			for i := 0; i < idx; i++ {
				v, _ := m.fromSummary(node.childSummaries[i])
				count += v
			}
			node = node.children[idx]
			offset = rel
		}
		if node != nil {
			count += measureLeaf(m, node.text[:offset])
		}
		return count
	}
	// Grapheme boundaries are counted by walking.
	sub := c.rope.SliceString(0, c.pos)
	return measureLeaf(m, sub)
}
