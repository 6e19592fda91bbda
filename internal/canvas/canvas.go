// Package canvas holds the editable tree of the page being built and the
// current selection within it.
package canvas

import (
	"github.com/hpungsan/lapak/internal/blocks"
	"github.com/hpungsan/lapak/internal/dom"
)

// EmptyState is shown in place of an empty page. It never enters the markup blob
// and carries no block marker, so it cannot be selected or exported.
const EmptyState = `<div class="canvas-empty"><h3>Start building your page</h3>` +
	`<p>Click a block in the palette to add it here.</p></div>`

// Canvas owns the tree of the current page. The selection is a path into that
// tree and is cleared whenever the tree is replaced.
type Canvas struct {
	tree      *dom.Tree
	selection dom.Path
}

// New returns a canvas holding the given markup blob.
func New(blob string) (*Canvas, error) {
	c := &Canvas{}
	if err := c.Load(blob); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the content wholesale and clears the selection.
func (c *Canvas) Load(blob string) error {
	t, err := dom.Parse(blob)
	if err != nil {
		return err
	}
	c.tree = t
	c.selection = nil
	return nil
}

// Tree exposes the underlying tree for mutation by the inspector.
func (c *Canvas) Tree() *dom.Tree { return c.tree }

// Drop appends the fragment for blockID to the end of the page.
// Unknown ids are ignored and report false.
func (c *Canvas) Drop(blockID string) (dom.Path, bool) {
	fragment, ok := blocks.Generate(blockID)
	if !ok {
		return nil, false
	}
	nodes, err := dom.ParseNodes(fragment)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	paths := c.tree.Append(nodes...)
	return paths[0], true
}

// Click selects the block enclosing p. A path outside every block, or one that
// does not resolve, clears the selection.
func (c *Canvas) Click(p dom.Path) (dom.Path, bool) {
	root, ok := c.tree.Closest(p, blocks.IsBlockRoot)
	if !ok {
		c.selection = nil
		return nil, false
	}
	c.selection = root
	return root.Clone(), true
}

// Focus selects the element at p itself, for editing nested content. A text
// node resolves to its parent element. Invalid paths clear the selection.
func (c *Canvas) Focus(p dom.Path) (dom.Path, bool) {
	target, ok := c.tree.Closest(p, func(n *dom.Node) bool { return n.IsElement() })
	if !ok {
		c.selection = nil
		return nil, false
	}
	c.selection = target
	return target.Clone(), true
}

// Select sets the selection directly. It is used by the inspector to follow an
// element it moved; invalid paths clear the selection.
func (c *Canvas) Select(p dom.Path) {
	if n := c.tree.Node(p); n != nil && n.IsElement() {
		c.selection = p.Clone()
		return
	}
	c.selection = nil
}

// ClearSelection drops the selection.
func (c *Canvas) ClearSelection() { c.selection = nil }

// Selection returns the selected path, or nil.
func (c *Canvas) Selection() dom.Path { return c.selection.Clone() }

// Selected returns the selected node, or nil.
func (c *Canvas) Selected() *dom.Node {
	if c.selection == nil {
		return nil
	}
	return c.tree.Node(c.selection)
}

// Serialize renders the tree into the page's markup blob.
func (c *Canvas) Serialize() string { return dom.Render(c.tree) }

// IsEmpty reports whether the page has nothing to show.
func (c *Canvas) IsEmpty() bool { return c.tree.IsBlank() }

// View is what the editor displays: the blob, or EmptyState for an empty page.
func (c *Canvas) View() string {
	if c.IsEmpty() {
		return EmptyState
	}
	return c.Serialize()
}

// Block is a top-level block on the canvas.
type Block struct {
	Index int    `json:"index"`
	ID    string `json:"block_id"`
	Path  string `json:"path"`
	Label string `json:"label,omitempty"`
}

// Blocks lists the block roots at the top level, in order.
func (c *Canvas) Blocks() []Block {
	var out []Block
	for i, n := range c.tree.Children {
		if !blocks.IsBlockRoot(n) {
			continue
		}
		b := Block{Index: len(out), ID: blocks.BlockID(n), Path: dom.Path{i}.String()}
		if tpl, ok := blocks.Lookup(b.ID); ok {
			b.Label = tpl.Label
		}
		out = append(out, b)
	}
	return out
}
