package rope

import "strings"

// Tree structure constants.
const (
	// MinChildren is the minimum children per internal node (except root).
	MinChildren = 4

	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MinLeafSize is the minimum bytes per leaf (except the last leaf
	// of a build, or a rope smaller than one leaf).
	MinLeafSize = 511

	// MaxLeafSize is the maximum bytes per leaf before splitting.
	MaxLeafSize = 1024
)

// Node is a node in the rope tree. Leaf nodes (height 0) hold a bounded
// UTF-8 string; internal nodes hold child references with cached
// per-child summaries. Nodes are immutable after construction and may be
// shared between ropes.
type Node struct {
	height  int
	summary TextSummary

	// Internal node fields (height > 0).
	children       []*Node
	childSummaries []TextSummary

	// Leaf node field (height == 0).
	text string
}

func newLeaf(s string) *Node {
	return &Node{text: s, summary: ComputeSummary(s)}
}

func newInternal(children []*Node) *Node {
	if len(children) == 0 {
		return newLeaf("")
	}
	summaries := make([]TextSummary, len(children))
	var total TextSummary
	for i, child := range children {
		summaries[i] = child.summary
		total = total.Add(child.summary)
	}
	return &Node{
		height:         children[0].height + 1,
		summary:        total,
		children:       children,
		childSummaries: summaries,
	}
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Len returns the byte length of text in this subtree.
func (n *Node) Len() int {
	return n.summary.Bytes
}

func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		sb.WriteString(n.text)
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends the text in [start, end) to the builder.
func (n *Node) appendRange(sb *strings.Builder, start, end int) {
	if start >= end {
		return
	}
	if n.IsLeaf() {
		if end > len(n.text) {
			end = len(n.text)
		}
		sb.WriteString(n.text[start:end])
		return
	}
	offset := 0
	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		childEnd := offset + childLen
		if childEnd > start && offset < end {
			cs, ce := 0, childLen
			if start > offset {
				cs = start - offset
			}
			if end < childEnd {
				ce = end - offset
			}
			child.appendRange(sb, cs, ce)
		}
		if childEnd >= end {
			break
		}
		offset = childEnd
	}
}

// findChild returns the index of the child containing offset and the
// offset relative to that child's start. An offset equal to the subtree
// length lands in the last child.
func (n *Node) findChild(offset int) (int, int) {
	acc := 0
	for i, sum := range n.childSummaries {
		if acc+sum.Bytes > offset {
			return i, offset - acc
		}
		acc += sum.Bytes
	}
	last := len(n.children) - 1
	return last, offset - (n.summary.Bytes - n.childSummaries[last].Bytes)
}

// leafAt descends to the leaf containing offset. Returns the leaf's
// string and the byte offset of the leaf's start within the subtree.
func (n *Node) leafAt(offset int) (string, int) {
	start := 0
	for !n.IsLeaf() {
		idx, rel := n.findChild(offset)
		start += offset - rel
		offset = rel
		n = n.children[idx]
	}
	return n.text, start
}

// split divides the subtree at the given byte offset.
func (n *Node) split(offset int) (*Node, *Node) {
	if offset <= 0 {
		return newLeaf(""), n
	}
	if offset >= n.Len() {
		return n, newLeaf("")
	}
	if n.IsLeaf() {
		return newLeaf(n.text[:offset]), newLeaf(n.text[offset:])
	}

	var left, right []*Node
	acc := 0
	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		switch {
		case acc+childLen <= offset:
			left = append(left, child)
		case acc >= offset:
			right = append(right, child)
		default:
			l, r := child.split(offset - acc)
			if l.Len() > 0 {
				left = append(left, l)
			}
			if r.Len() > 0 {
				right = append(right, r)
			}
		}
		acc += childLen
	}
	return buildFromNodes(left), buildFromNodes(right)
}

// buildFromNodes creates a balanced tree over nodes of mixed heights.
func buildFromNodes(nodes []*Node) *Node {
	switch len(nodes) {
	case 0:
		return newLeaf("")
	case 1:
		return nodes[0]
	}
	root := nodes[0]
	for _, n := range nodes[1:] {
		root = concat(root, n)
	}
	return root
}

// concat joins two subtrees, rebalancing so that the result's height is
// at most one greater than the taller input.
func concat(left, right *Node) *Node {
	if left == nil || left.Len() == 0 {
		if right == nil {
			return newLeaf("")
		}
		return right
	}
	if right == nil || right.Len() == 0 {
		return left
	}

	switch {
	case left.height < right.height:
		merged := concat(left, right.children[0])
		if merged.height == right.height-1 {
			return mergeChildren([]*Node{merged}, right.children[1:])
		}
		return mergeChildren(merged.children, right.children[1:])
	case left.height > right.height:
		merged := concat(left.children[len(left.children)-1], right)
		if merged.height == left.height-1 {
			return mergeChildren(left.children[:len(left.children)-1], []*Node{merged})
		}
		return mergeChildren(left.children[:len(left.children)-1], merged.children)
	default:
		if left.IsLeaf() {
			return concatLeaves(left, right)
		}
		return mergeChildren(left.children, right.children)
	}
}

// concatLeaves joins two leaves, keeping leaves within size bounds.
func concatLeaves(left, right *Node) *Node {
	combined := left.text + right.text
	if len(combined) <= MaxLeafSize {
		return newLeaf(combined)
	}
	splitAt := findLeafBoundary(combined, len(combined)/2)
	return newInternal([]*Node{newLeaf(combined[:splitAt]), newLeaf(combined[splitAt:])})
}

// mergeChildren builds a node over two runs of equal-height children,
// splitting into two siblings under a new root if the fanout overflows.
func mergeChildren(a, b []*Node) *Node {
	total := len(a) + len(b)
	all := make([]*Node, 0, total)
	all = append(all, a...)
	all = append(all, b...)
	if total <= MaxChildren {
		return newInternal(all)
	}
	half := (total + 1) / 2
	return newInternal([]*Node{newInternal(all[:half]), newInternal(all[half:])})
}

// findLeafBoundary finds a codepoint boundary near target, preferring a
// split just after a newline so lines tend to stay inside one leaf.
func findLeafBoundary(s string, target int) int {
	if target <= 0 {
		return 0
	}
	if target >= len(s) {
		return len(s)
	}
	lo, hi := target-32, target+32
	if lo < 1 {
		lo = 1
	}
	if hi > len(s) {
		hi = len(s)
	}
	for i := target; i < hi; i++ {
		if s[i-1] == '\n' {
			return i
		}
	}
	for i := target - 1; i >= lo; i-- {
		if s[i-1] == '\n' {
			return i
		}
	}
	pos := target
	for pos < len(s) && !isUTF8Start(s[pos]) {
		pos++
	}
	return pos
}
