// Package inspector applies property-panel edits to the selected element and
// writes the resulting markup back to the owning page after every change.
package inspector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpungsan/lapak/internal/canvas"
	"github.com/hpungsan/lapak/internal/dom"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// PageSink receives the full markup blob of a page after each applied edit.
type PageSink interface {
	ReplaceHTML(pageID, html string) error
}

// Bridge binds a canvas to the page it was loaded from.
type Bridge struct {
	canvas *canvas.Canvas
	sink   PageSink
	pageID string
}

// New returns a bridge that commits edits on c to pageID through sink.
func New(c *canvas.Canvas, sink PageSink, pageID string) *Bridge {
	return &Bridge{canvas: c, sink: sink, pageID: pageID}
}

// Canvas returns the bridged canvas.
func (b *Bridge) Canvas() *canvas.Canvas { return b.canvas }

// apply runs fn against the selection. Without a selection it reports false and
// does nothing. When fn reports a change, the canvas is serialized into the page.
func (b *Bridge) apply(fn func(t *dom.Tree, p dom.Path, n *dom.Node) (bool, error)) (bool, error) {
	p := b.canvas.Selection()
	n := b.canvas.Selected()
	if p == nil || n == nil {
		return false, nil
	}
	changed, err := fn(b.canvas.Tree(), p, n)
	if err != nil || !changed {
		return false, err
	}
	if err := b.commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Bridge) commit() error {
	if b.sink == nil {
		return nil
	}
	return b.sink.ReplaceHTML(b.pageID, b.canvas.Serialize())
}

// SetText replaces the first direct text child of the selection. When the
// element has no text child, its whole content is overwritten, discarding
// any child elements.
func (b *Bridge) SetText(value string) (bool, error) {
	return b.apply(func(_ *dom.Tree, _ dom.Path, n *dom.Node) (bool, error) {
		if n.IsVoid() {
			return false, errors.NewInvalidRequest(fmt.Sprintf("<%s> cannot hold text", n.Tag))
		}
		if tn := n.FirstTextChild(); tn != nil {
			tn.Text = value
			return true, nil
		}
		n.SetTextContent(value)
		return true, nil
	})
}

// SetLink points the selection at url.
//
// An anchor that is the selection, an ancestor of it, or its first descendant
// anchor is updated in place; otherwise the selection is wrapped in a new
// anchor and the selection follows the wrapped element. An empty url on a
// selected anchor unwraps it, keeping only its first child.
func (b *Bridge) SetLink(url string) (bool, error) {
	url = strings.TrimSpace(url)
	if url != "" {
		if err := validateURL(url); err != nil {
			return false, err
		}
	}
	var follow dom.Path
	applied, err := b.apply(func(t *dom.Tree, p dom.Path, n *dom.Node) (bool, error) {
		if url == "" {
			if !n.IsElement("a") {
				return false, nil
			}
			var first []*dom.Node
			if len(n.Children) > 0 {
				first = n.Children[:1]
			}
			t.Replace(p, first...)
			if len(first) > 0 && first[0].IsElement() {
				follow = p
			}
			return true, nil
		}

		if ap, ok := t.Closest(p, func(x *dom.Node) bool { return x.IsElement("a") }); ok {
			t.Node(ap).SetAttr("href", url)
			follow = p
			return true, nil
		}
		if ap, ok := t.Find(p, func(x *dom.Node) bool { return x.IsElement("a") }); ok {
			t.Node(ap).SetAttr("href", url)
			follow = p
			return true, nil
		}

		anchor := dom.NewElement("a", dom.Attr{Key: "href", Val: url})
		anchor.Children = []*dom.Node{n}
		t.Replace(p, anchor)
		follow = p.Child(0)
		return true, nil
	})
	if applied {
		b.canvas.Select(follow)
	}
	return applied, err
}

var unsafeScheme = regexp.MustCompile(`(?i)^\s*(javascript|vbscript|data):`)

func validateURL(url string) error {
	if unsafeScheme.MatchString(url) {
		return errors.NewInvalidRequest("link url scheme is not allowed")
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// TextAlign values accepted by SetTextAlign.
var TextAlign = []string{"left", "center", "right", "justify"}

// SetColor sets the inline text color. value must be a hex color.
func (b *Bridge) SetColor(value string) (bool, error) {
	return b.setHex("color", value)
}

// SetBackground sets the inline background color. value must be a hex color.
func (b *Bridge) SetBackground(value string) (bool, error) {
	return b.setHex("background-color", value)
}

func (b *Bridge) setHex(prop, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if !hexColor.MatchString(value) {
		return false, errors.NewInvalidRequest(fmt.Sprintf("%s must be a hex color like #1a2b3c, got %q", prop, value))
	}
	return b.setStyle(prop, strings.ToLower(value))
}

// SetPadding sets the inline padding in whole pixels.
func (b *Bridge) SetPadding(px int) (bool, error) {
	return b.setPixels("padding", px)
}

// SetMargin sets the inline margin in whole pixels.
func (b *Bridge) SetMargin(px int) (bool, error) {
	return b.setPixels("margin", px)
}

func (b *Bridge) setPixels(prop string, px int) (bool, error) {
	if px < 0 {
		return false, errors.NewInvalidRequest(fmt.Sprintf("%s must be zero or more pixels", prop))
	}
	return b.setStyle(prop, strconv.Itoa(px)+"px")
}

// SetTextAlign sets the inline text alignment.
func (b *Bridge) SetTextAlign(value string) (bool, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range TextAlign {
		if a == value {
			return b.setStyle("text-align", value)
		}
	}
	return false, errors.NewInvalidRequest(fmt.Sprintf("text align must be one of %s", strings.Join(TextAlign, ", ")))
}

func (b *Bridge) setStyle(prop, value string) (bool, error) {
	return b.apply(func(_ *dom.Tree, _ dom.Path, n *dom.Node) (bool, error) {
		n.SetStyle(prop, value)
		return true, nil
	})
}

// Delete removes the selection from the page and clears it.
func (b *Bridge) Delete() (bool, error) {
	applied, err := b.apply(func(t *dom.Tree, p dom.Path, _ *dom.Node) (bool, error) {
		_, ok := t.Remove(p)
		return ok, nil
	})
	if applied {
		b.canvas.ClearSelection()
	}
	return applied, err
}

// Duplicate inserts a deep copy right after the selection. The original stays selected.
func (b *Bridge) Duplicate() (bool, error) {
	return b.apply(func(t *dom.Tree, p dom.Path, n *dom.Node) (bool, error) {
		_, ok := t.InsertAfter(p, n.Clone())
		return ok, nil
	})
}

// MoveUp swaps the selection with its previous element sibling.
func (b *Bridge) MoveUp() (bool, error) { return b.move(-1) }

// MoveDown swaps the selection with its next element sibling.
func (b *Bridge) MoveDown() (bool, error) { return b.move(1) }

func (b *Bridge) move(dir int) (bool, error) {
	var moved dom.Path
	applied, err := b.apply(func(t *dom.Tree, p dom.Path, _ *dom.Node) (bool, error) {
		np, ok := t.MoveSibling(p, dir)
		moved = np
		return ok, nil
	})
	if applied {
		b.canvas.Select(moved)
	}
	return applied, err
}

// DragAttr carries the element identity published when a drag starts.
const DragAttr = "data-drag-id"

// MakeDraggable marks the selection as natively draggable. The element's id
// is recorded for drop targets to read. Without one, an existing drag id is
// kept or a new one is minted, so the identity survives moves.
func (b *Bridge) MakeDraggable() (bool, error) {
	return b.apply(func(_ *dom.Tree, _ dom.Path, n *dom.Node) (bool, error) {
		ident, _ := n.Attr("id")
		if ident == "" {
			ident, _ = n.Attr(DragAttr)
		}
		if ident == "" {
			ident = workspace.NewID("drag")
		}
		n.SetAttr("draggable", "true")
		n.SetAttr(DragAttr, ident)
		n.SetStyle("cursor", "move")
		return true, nil
	})
}
