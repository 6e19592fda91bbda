package blocks

import (
	"github.com/hpungsan/lapak/internal/dom"
)

// MarkerKind names which contract attribute a Marker came from.
type MarkerKind string

const (
	MarkerBlock  MarkerKind = "block"
	MarkerAction MarkerKind = "action"
	MarkerRole   MarkerKind = "role"
)

// Marker is one contract attribute found in a tree.
type Marker struct {
	Kind  MarkerKind `json:"kind"`
	Value string     `json:"value"`
	Path  string     `json:"path"`
}

// IsBlockRoot reports whether n carries the block boundary marker.
func IsBlockRoot(n *dom.Node) bool {
	return n.IsElement() && n.HasAttr(BlockAttr)
}

// BlockID returns the template id of a block root.
func BlockID(n *dom.Node) string {
	v, _ := n.Attr(BlockAttr)
	return v
}

// Markers lists every block, action and role attribute in document order.
// For one element the order is block, action, role.
func Markers(t *dom.Tree) []Marker {
	var out []Marker
	t.Walk(func(p dom.Path, n *dom.Node) bool {
		if !n.IsElement() {
			return false
		}
		for _, k := range []struct {
			attr string
			kind MarkerKind
		}{{BlockAttr, MarkerBlock}, {ActionAttr, MarkerAction}, {RoleAttr, MarkerRole}} {
			if v, ok := n.Attr(k.attr); ok {
				out = append(out, Marker{Kind: k.kind, Value: v, Path: p.String()})
			}
		}
		return true
	})
	return out
}

// Signature is Markers without paths, for comparing structure across edits.
func Signature(t *dom.Tree) []string {
	ms := Markers(t)
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m.Kind) + "=" + m.Value
	}
	return out
}
