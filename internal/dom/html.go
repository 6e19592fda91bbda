package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements whose whitespace-only text is content rather than formatting.
var preserveSpace = map[string]bool{
	"pre":      true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// Phrasing elements. Whitespace between two of these is a visible space.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "br": true,
	"button": true, "cite": true, "code": true, "data": true, "del": true,
	"dfn": true, "em": true, "i": true, "img": true, "input": true, "ins": true,
	"kbd": true, "label": true, "mark": true, "output": true, "picture": true,
	"q": true, "s": true, "samp": true, "select": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "svg": true,
	"textarea": true, "time": true, "u": true, "var": true, "wbr": true,
}

// Parse reads a markup blob as an HTML fragment in <body> context.
//
// Whitespace-only text is dropped at the edges of a container and next to
// block elements. Between two inline siblings it collapses to one space.
// Render(Parse(x)) is stable after the first round trip. Doctype nodes are ignored.
func Parse(blob string) (*Tree, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(blob), body)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	t := &Tree{Children: fromHTMLSiblings(nodes, false)}
	if t.Children == nil {
		t.Children = []*Node{}
	}
	return t, nil
}

// MustParse is Parse for static markup known to be well formed.
func MustParse(blob string) *Tree {
	t, err := Parse(blob)
	if err != nil {
		panic(err)
	}
	return t
}

func fromHTMLSiblings(nodes []*html.Node, keepSpace bool) []*Node {
	var out []*Node
	for i, n := range nodes {
		if n.Type == html.TextNode && !keepSpace && strings.TrimSpace(n.Data) == "" {
			if inlineNeighbor(nodes, i, -1) && inlineNeighbor(nodes, i, 1) {
				out = append(out, &Node{Type: TextNode, Text: " "})
			}
			continue
		}
		if c := fromHTML(n, keepSpace); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// inlineNeighbor reports whether the nearest non-comment sibling of nodes[i]
// in direction dir is inline content. There is none at a container edge.
func inlineNeighbor(nodes []*html.Node, i, dir int) bool {
	for j := i + dir; j >= 0 && j < len(nodes); j += dir {
		switch n := nodes[j]; n.Type {
		case html.CommentNode:
			continue
		case html.TextNode:
			return strings.TrimSpace(n.Data) != ""
		case html.ElementNode:
			return inlineTags[n.Data]
		default:
			return false
		}
	}
	return false
}

func fromHTML(n *html.Node, keepSpace bool) *Node {
	switch n.Type {
	case html.TextNode:
		return &Node{Type: TextNode, Text: n.Data}
	case html.CommentNode:
		return &Node{Type: CommentNode, Text: n.Data}
	case html.ElementNode:
		out := &Node{Type: ElementNode, Tag: n.Data, Namespace: n.Namespace}
		if len(n.Attr) > 0 {
			out.Attrs = make([]Attr, 0, len(n.Attr))
			for _, a := range n.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + a.Key
				}
				out.Attrs = append(out.Attrs, Attr{Key: key, Val: a.Val})
			}
		}
		var kids []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, c)
		}
		if len(kids) > 0 {
			out.Children = fromHTMLSiblings(kids, keepSpace || preserveSpace[n.Data])
		}
		return out
	default:
		return nil
	}
}

func toHTML(n *Node) *html.Node {
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.Text}
	}
	out := &html.Node{
		Type:      html.ElementNode,
		Data:      n.Tag,
		DataAtom:  atom.Lookup([]byte(n.Tag)),
		Namespace: n.Namespace,
	}
	for _, a := range n.Attrs {
		out.Attr = append(out.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children {
		out.AppendChild(toHTML(c))
	}
	return out
}

// Render serializes the tree back into a markup blob.
func Render(t *Tree) string {
	var b strings.Builder
	for _, n := range t.Children {
		// html.Render only fails on void elements with children, which Parse never builds.
		_ = html.Render(&b, toHTML(n))
	}
	return b.String()
}

// ParseNodes parses a fragment and returns its top-level nodes.
func ParseNodes(fragment string) ([]*Node, error) {
	t, err := Parse(fragment)
	if err != nil {
		return nil, err
	}
	return t.Children, nil
}
