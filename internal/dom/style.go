package dom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Declarations parses the element's inline style attribute.
// A missing or unparsable attribute yields no declarations.
func (n *Node) Declarations() []*css.Declaration {
	raw, ok := n.Attr("style")
	if !ok {
		return nil
	}
	decls, _ := parseInlineStrict(raw)
	return decls
}

// parseInlineStrict reports whether the attribute could be parsed at all.
func parseInlineStrict(raw string) ([]*css.Declaration, bool) {
	// The declaration parser rejects empty declarations and requires the
	// last one to be terminated.
	var segs []string
	for _, seg := range strings.Split(raw, ";") {
		if strings.TrimSpace(seg) != "" {
			segs = append(segs, seg)
		}
	}
	if len(segs) == 0 {
		return nil, true
	}
	decls, err := parser.ParseDeclarations(strings.Join(segs, ";") + ";")
	if err != nil {
		return nil, false
	}
	return decls, true
}

// Style returns the inline value of a CSS property.
func (n *Node) Style(prop string) (string, bool) {
	prop = strings.ToLower(prop)
	var val string
	var found bool
	for _, d := range n.Declarations() {
		if strings.ToLower(d.Property) == prop {
			val, found = d.Value, true
		}
	}
	return val, found
}

// SetStyle sets one inline CSS property, keeping the others in order.
// An empty value removes the property; the style attribute is dropped when empty.
func (n *Node) SetStyle(prop, value string) {
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.TrimSpace(value)

	raw, _ := n.Attr("style")
	current, ok := parseInlineStrict(raw)
	if !ok {
		// Leave markup we cannot parse alone and let the new value win by cascade order.
		if value != "" {
			n.SetAttr("style", strings.TrimRight(strings.TrimSpace(raw), ";")+"; "+prop+": "+value+";")
		}
		return
	}

	var out []*css.Declaration
	replaced := false
	for _, d := range current {
		if strings.ToLower(d.Property) != prop {
			out = append(out, d)
			continue
		}
		if replaced || value == "" {
			continue
		}
		out = append(out, &css.Declaration{Property: prop, Value: value})
		replaced = true
	}
	if !replaced && value != "" {
		out = append(out, &css.Declaration{Property: prop, Value: value})
	}

	if len(out) == 0 {
		n.RemoveAttr("style")
		return
	}
	parts := make([]string, len(out))
	for i, d := range out {
		parts[i] = d.String()
	}
	n.SetAttr("style", strings.Join(parts, " "))
}
