package canvas

import (
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/lapak/internal/blocks"
	"github.com/hpungsan/lapak/internal/dom"
)

const outlineTextMax = 60

// OutlineNode is an element of the page as shown to tools that address
// elements by path.
type OutlineNode struct {
	Path     string        `json:"path"`
	Tag      string        `json:"tag"`
	BlockID  string        `json:"block_id,omitempty"`
	Action   string        `json:"action,omitempty"`
	Role     string        `json:"role,omitempty"`
	Text     string        `json:"text,omitempty"`
	Selected bool          `json:"selected,omitempty"`
	Children []OutlineNode `json:"children,omitempty"`
}

// Outline returns the element tree of the page. maxDepth limits nesting
// below the top level; 0 means unlimited.
func (c *Canvas) Outline(maxDepth int) []OutlineNode {
	return c.outline(nil, c.tree.Children, maxDepth, 0)
}

func (c *Canvas) outline(parent dom.Path, list []*dom.Node, maxDepth, depth int) []OutlineNode {
	var out []OutlineNode
	for i, n := range list {
		if !n.IsElement() {
			continue
		}
		p := parent.Child(i)
		o := OutlineNode{
			Path:     p.String(),
			Tag:      n.Tag,
			Text:     ownText(n),
			Selected: c.selection != nil && c.selection.Equal(p),
		}
		o.BlockID, _ = n.Attr(blocks.BlockAttr)
		o.Action, _ = n.Attr(blocks.ActionAttr)
		o.Role, _ = n.Attr(blocks.RoleAttr)
		if maxDepth == 0 || depth < maxDepth {
			o.Children = c.outline(p, n.Children, maxDepth, depth+1)
		}
		out = append(out, o)
	}
	return out
}

// ownText is the element's direct text, collapsed and truncated.
func ownText(n *dom.Node) string {
	var parts []string
	for _, c := range n.Children {
		if c.Type == dom.TextNode {
			if s := strings.Join(strings.Fields(c.Text), " "); s != "" {
				parts = append(parts, s)
			}
		}
	}
	s := strings.Join(parts, " ")
	if utf8.RuneCountInString(s) > outlineTextMax {
		r := []rune(s)
		s = string(r[:outlineTextMax]) + "…"
	}
	return s
}
