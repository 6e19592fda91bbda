package dom

// Tree is a parsed markup blob: an ordered list of top-level nodes.
type Tree struct {
	Children []*Node `json:"children"`
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	c := &Tree{Children: make([]*Node, len(t.Children))}
	for i, n := range t.Children {
		c.Children[i] = n.Clone()
	}
	return c
}

// Len returns the number of top-level nodes.
func (t *Tree) Len() int { return len(t.Children) }

// Node returns the node at p, or nil if p does not resolve.
func (t *Tree) Node(p Path) *Node {
	if len(p) == 0 {
		return nil
	}
	list := t.Children
	var n *Node
	for _, i := range p {
		if i < 0 || i >= len(list) {
			return nil
		}
		n = list[i]
		list = n.Children
	}
	return n
}

// Valid reports whether p resolves to a node.
func (t *Tree) Valid(p Path) bool { return t.Node(p) != nil }

// siblings returns a pointer to the slice holding the node at p.
func (t *Tree) siblings(p Path) (*[]*Node, int, bool) {
	if len(p) == 0 {
		return nil, 0, false
	}
	list := &t.Children
	if parent := p.Parent(); len(parent) > 0 {
		pn := t.Node(parent)
		if pn == nil {
			return nil, 0, false
		}
		list = &pn.Children
	}
	i := p.Last()
	if i < 0 || i >= len(*list) {
		return nil, 0, false
	}
	return list, i, true
}

// Append adds nodes after the last top-level node and returns their paths.
func (t *Tree) Append(nodes ...*Node) []Path {
	paths := make([]Path, 0, len(nodes))
	for _, n := range nodes {
		t.Children = append(t.Children, n)
		paths = append(paths, Path{len(t.Children) - 1})
	}
	return paths
}

// Remove detaches the node at p and returns it.
func (t *Tree) Remove(p Path) (*Node, bool) {
	list, i, ok := t.siblings(p)
	if !ok {
		return nil, false
	}
	n := (*list)[i]
	*list = append((*list)[:i], (*list)[i+1:]...)
	return n, true
}

// insertAt places n at index i among the children of parent.
func (t *Tree) insertAt(parent Path, i int, n *Node) bool {
	list := &t.Children
	if len(parent) > 0 {
		pn := t.Node(parent)
		if pn == nil {
			return false
		}
		list = &pn.Children
	}
	if i < 0 || i > len(*list) {
		return false
	}
	*list = append(*list, nil)
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = n
	return true
}

// InsertAfter places n immediately after the node at p and returns n's path.
func (t *Tree) InsertAfter(p Path, n *Node) (Path, bool) {
	if !t.Valid(p) {
		return nil, false
	}
	at := p.Last() + 1
	if !t.insertAt(p.Parent(), at, n) {
		return nil, false
	}
	return p.WithLast(at), true
}

// Replace swaps the node at p for the given nodes, which may be empty.
func (t *Tree) Replace(p Path, nodes ...*Node) bool {
	list, i, ok := t.siblings(p)
	if !ok {
		return false
	}
	rest := append([]*Node{}, (*list)[i+1:]...)
	*list = append(append((*list)[:i], nodes...), rest...)
	return true
}

// ElementSibling returns the path of the nearest element sibling before (dir < 0)
// or after (dir > 0) the node at p. Text and comment siblings are skipped.
func (t *Tree) ElementSibling(p Path, dir int) (Path, bool) {
	list, i, ok := t.siblings(p)
	if !ok || dir == 0 {
		return nil, false
	}
	step := 1
	if dir < 0 {
		step = -1
	}
	for j := i + step; j >= 0 && j < len(*list); j += step {
		if (*list)[j].Type == ElementNode {
			return p.WithLast(j), true
		}
	}
	return nil, false
}

// MoveSibling moves the node at p past its nearest element sibling in direction dir
// and returns the node's new path. It reports false at either boundary.
func (t *Tree) MoveSibling(p Path, dir int) (Path, bool) {
	target, ok := t.ElementSibling(p, dir)
	if !ok {
		return nil, false
	}
	n, _ := t.Remove(p)
	// After removing p, a following sibling shifts left by one, so inserting
	// at target's old index lands directly after it.
	j := target.Last()
	t.insertAt(p.Parent(), j, n)
	return p.WithLast(j), true
}

// Closest returns the path of the node at p or its nearest ancestor matching pred.
func (t *Tree) Closest(p Path, pred func(*Node) bool) (Path, bool) {
	if !t.Valid(p) {
		return nil, false
	}
	for q := p; len(q) > 0; q = q.Parent() {
		if pred(t.Node(q)) {
			return q.Clone(), true
		}
	}
	return nil, false
}

// Find returns the first path under root (exclusive) matching pred, in document order.
// An empty root searches the whole tree.
func (t *Tree) Find(root Path, pred func(*Node) bool) (Path, bool) {
	var found Path
	t.walkFrom(root, func(p Path, n *Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = p
			return false
		}
		return true
	})
	return found, found != nil
}

// Walk visits every node in document order. Returning false from fn skips
// the node's children.
func (t *Tree) Walk(fn func(p Path, n *Node) bool) {
	t.walkFrom(nil, fn)
}

func (t *Tree) walkFrom(root Path, fn func(p Path, n *Node) bool) {
	var visit func(p Path, list []*Node)
	visit = func(p Path, list []*Node) {
		for i, n := range list {
			cp := p.Child(i)
			if fn(cp, n) {
				visit(cp, n.Children)
			}
		}
	}
	if len(root) == 0 {
		visit(nil, t.Children)
		return
	}
	if n := t.Node(root); n != nil {
		visit(root, n.Children)
	}
}

// IsBlank reports whether the tree has no elements and no visible text.
func (t *Tree) IsBlank() bool {
	for _, n := range t.Children {
		switch n.Type {
		case ElementNode:
			return false
		case TextNode:
			for _, r := range n.Text {
				if r != ' ' && r != '\n' && r != '\t' && r != '\r' && r != '\f' {
					return false
				}
			}
		}
	}
	return true
}
