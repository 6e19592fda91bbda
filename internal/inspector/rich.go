package inspector

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/lapak/internal/dom"
	"github.com/hpungsan/lapak/internal/errors"
)

var richTextPolicy = newRichTextPolicy()

func newRichTextPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// SetMarkdown replaces the selection's content with rendered markdown.
// Output is sanitized before it enters the page. A single paragraph is
// unwrapped so headings and buttons keep their own element.
func (b *Bridge) SetMarkdown(md string) (bool, error) {
	nodes, err := renderMarkdown(md)
	if err != nil {
		return false, err
	}
	return b.apply(func(_ *dom.Tree, _ dom.Path, n *dom.Node) (bool, error) {
		if n.IsVoid() {
			return false, errors.NewInvalidRequest(fmt.Sprintf("<%s> cannot hold rich text", n.Tag))
		}
		n.Children = nodes
		return true, nil
	})
}

func renderMarkdown(md string) ([]*dom.Node, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid markdown: %v", err))
	}
	nodes, err := dom.ParseNodes(richTextPolicy.Sanitize(buf.String()))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if len(nodes) == 1 && nodes[0].IsElement("p") {
		return nodes[0].Children, nil
	}
	return nodes, nil
}

// Image is a media item bound into an <img>.
type Image struct {
	ID      string
	Name    string
	DataURI string
}

// MediaAttr records which media item an image was bound from.
const MediaAttr = "data-media-id"

// BindImage points the selected image, or the first image inside the
// selection, at img. It reports false when there is no image to bind.
func (b *Bridge) BindImage(img Image) (bool, error) {
	if img.DataURI == "" {
		return false, errors.NewInvalidRequest("media has no image data")
	}
	return b.apply(func(t *dom.Tree, p dom.Path, n *dom.Node) (bool, error) {
		target := n
		if !n.IsElement("img") {
			ip, ok := t.Find(p, func(x *dom.Node) bool { return x.IsElement("img") })
			if !ok {
				return false, nil
			}
			target = t.Node(ip)
		}
		target.SetAttr("src", img.DataURI)
		if img.Name != "" {
			target.SetAttr("alt", img.Name)
		}
		target.SetAttr(MediaAttr, img.ID)
		return true, nil
	})
}
