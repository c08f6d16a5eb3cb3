package rope

// ChunkIter iterates over the rope's leaves in order.
type ChunkIter struct {
	stack []*Node
	cur   string
}

// Chunks returns an iterator over the rope's text chunks.
func (r Rope) Chunks() *ChunkIter {
	it := &ChunkIter{}
	if r.root != nil && r.root.Len() > 0 {
		it.stack = append(it.stack, r.root)
	}
	return it
}

// Next advances to the next chunk. Returns false when exhausted.
func (it *ChunkIter) Next() bool {
	for len(it.stack) > 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		if n.IsLeaf() {
			it.cur = n.text
			return true
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			it.stack = append(it.stack, n.children[i])
		}
	}
	it.cur = ""
	return false
}

// Chunk returns the current chunk's text.
func (it *ChunkIter) Chunk() string {
	return it.cur
}

// LineIter iterates over logical lines, excluding the trailing newline
// of each. A rope ending in a newline yields a final empty line.
type LineIter struct {
	rope Rope
	pos  int
	cur  string
	done bool
}

// Lines returns an iterator over the rope's logical lines starting at
// the given line number.
func (r Rope) Lines(fromLine int) *LineIter {
	return &LineIter{rope: r, pos: r.OffsetOfLine(fromLine)}
}

// Next advances to the next line. Returns false when exhausted.
func (it *LineIter) Next() bool {
	if it.done {
		return false
	}
	c := NewCursor(it.rope, it.pos)
	end := c.Next(Lines)
	if end < 0 {
		it.cur = it.rope.SliceString(it.pos, it.rope.Len())
		it.pos = it.rope.Len()
		it.done = true
		return true
	}
	// A trailing newline still yields one final empty line, so done is
	// only set when the cursor finds no further newline.
	it.cur = it.rope.SliceString(it.pos, end-1)
	it.pos = end
	return true
}

// Line returns the current line's text without its newline.
func (it *LineIter) Line() string {
	return it.cur
}
