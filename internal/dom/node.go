// Package dom is the explicit, serializable element tree that pages are edited through.
//
// A page's markup blob is parsed into a Tree, mutated by index paths, and rendered
// back into a blob. Nodes hold no parent pointers; a Path is the only way to
// address a node, so replacing a Tree can never leave a dangling reference.
package dom

import (
	"fmt"
	"strings"
)

// NodeType distinguishes elements from character data.
type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
)

var nodeTypeNames = map[NodeType]string{
	ElementNode: "element",
	TextNode:    "text",
	CommentNode: "comment",
}

// String returns the lowercase name of the node type.
func (t NodeType) String() string {
	if s, ok := nodeTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// MarshalText encodes the type by name so snapshots stay readable.
func (t NodeType) MarshalText() ([]byte, error) {
	s, ok := nodeTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown node type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText is the inverse of MarshalText.
func (t *NodeType) UnmarshalText(b []byte) error {
	for k, v := range nodeTypeNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown node type %q", string(b))
}

// Attr is one attribute. Attributes keep their source order.
type Attr struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// Node is an element, text or comment node.
// Text holds the character data of text and comment nodes.
type Node struct {
	Type      NodeType `json:"type"`
	Tag       string   `json:"tag,omitempty"`
	Namespace string   `json:"ns,omitempty"`
	Attrs     []Attr   `json:"attrs,omitempty"`
	Children  []*Node  `json:"children,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// NewElement returns an element with the given tag and attributes in order.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs}
}

// NewText returns a text node.
func NewText(s string) *Node {
	return &Node{Type: TextNode, Text: s}
}

// IsElement reports whether n is an element, optionally with one of the given tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if strings.EqualFold(n.Tag, t) {
			return true
		}
	}
	return false
}

// Attr returns the value of key and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether key is present.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// SetAttr updates key in place or appends it.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes key and reports whether it was present.
func (n *Node) RemoveAttr(key string) bool {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:      n.Type,
		Tag:       n.Tag,
		Namespace: n.Namespace,
		Text:      n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// TextContent concatenates every descendant text node, like the DOM property.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode:
		return n.Text
	case CommentNode:
		return ""
	}
	var b strings.Builder
	var walk func(*Node)
	walk = func(x *Node) {
		for _, c := range x.Children {
			switch c.Type {
			case TextNode:
				b.WriteString(c.Text)
			case ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// SetTextContent replaces all children with a single text node.
// An empty string leaves the element without children.
func (n *Node) SetTextContent(s string) {
	if n.Type != ElementNode {
		n.Text = s
		return
	}
	n.Children = nil
	if s != "" {
		n.Children = []*Node{NewText(s)}
	}
}

// FirstTextChild returns the first direct text child, or nil.
func (n *Node) FirstTextChild() *Node {
	for _, c := range n.Children {
		if c.Type == TextNode {
			return c
		}
	}
	return nil
}

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// IsVoid reports whether n is an HTML element that cannot hold children.
func (n *Node) IsVoid() bool {
	return n.Type == ElementNode && n.Namespace == "" && voidTags[strings.ToLower(n.Tag)]
}
