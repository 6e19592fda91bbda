package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lapak/internal/blocks"
	"github.com/hpungsan/lapak/internal/dom"
)

func newCanvas(t *testing.T, blob string) *Canvas {
	t.Helper()
	c, err := New(blob)
	require.NoError(t, err)
	return c
}

func TestDrop_AppendsInOrder(t *testing.T) {
	c := newCanvas(t, "")

	p, ok := c.Drop("hero")
	require.True(t, ok)
	assert.Equal(t, dom.Path{0}, p)

	p, ok = c.Drop("product")
	require.True(t, ok)
	assert.Equal(t, dom.Path{1}, p)

	got := c.Blocks()
	require.Len(t, got, 2)
	assert.Equal(t, "hero", got[0].ID)
	assert.Equal(t, "product", got[1].ID)
	assert.Equal(t, "Product", got[1].Label)
}

func TestDrop_UnknownIDIgnored(t *testing.T) {
	c := newCanvas(t, "")
	c.Drop("hero")
	before := c.Serialize()

	_, ok := c.Drop("does-not-exist")
	assert.False(t, ok)
	assert.Equal(t, before, c.Serialize())
}

func TestClick_ResolvesBlockRoot(t *testing.T) {
	c := newCanvas(t, `<section data-block-id="hero"><div><h1>Hi</h1></div></section><p>loose</p>`)

	p, ok := c.Click(dom.Path{0, 0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, dom.Path{0}, p)
	assert.Equal(t, dom.Path{0}, c.Selection())
	assert.Equal(t, "section", c.Selected().Tag)

	_, ok = c.Click(dom.Path{1, 0})
	assert.False(t, ok)
	assert.Nil(t, c.Selection(), "clicking outside a block clears the selection")
}

func TestClick_InvalidPathClears(t *testing.T) {
	c := newCanvas(t, `<div data-block-id="hero"></div>`)
	c.Click(dom.Path{0})

	_, ok := c.Click(dom.Path{9})
	assert.False(t, ok)
	assert.Nil(t, c.Selected())
}

func TestFocus_SelectsInnermostElement(t *testing.T) {
	c := newCanvas(t, `<section data-block-id="hero"><h1>Hi <em>there</em></h1></section>`)

	p, ok := c.Focus(dom.Path{0, 0, 1})
	require.True(t, ok)
	assert.Equal(t, dom.Path{0, 0, 1}, p)

	// A text node resolves to its element.
	p, ok = c.Focus(dom.Path{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, dom.Path{0, 0}, p)
}

func TestReselect_DoesNotChangeBlob(t *testing.T) {
	c := newCanvas(t, "")
	c.Drop("pricing")
	blob := c.Serialize()

	c.Click(dom.Path{0, 1})
	c.Click(dom.Path{0, 1})
	assert.Equal(t, blob, c.Serialize())
}

func TestLoad_ClearsSelection(t *testing.T) {
	c := newCanvas(t, `<div data-block-id="hero"></div>`)
	c.Click(dom.Path{0})
	require.NotNil(t, c.Selection())

	require.NoError(t, c.Load(`<div data-block-id="footer"></div>`))
	assert.Nil(t, c.Selection())
}

func TestView_EmptyState(t *testing.T) {
	c := newCanvas(t, "  ")
	assert.True(t, c.IsEmpty())
	assert.Equal(t, EmptyState, c.View())
	assert.Equal(t, "", c.Serialize(), "placeholder never enters the blob")
	assert.NotContains(t, EmptyState, blocks.BlockAttr)
	assert.Contains(t, EmptyState, "Click a block in the palette")

	c.Drop("footer")
	assert.False(t, c.IsEmpty())
	assert.Equal(t, c.Serialize(), c.View())
}

func TestRoundTrip_PreservesContract(t *testing.T) {
	c := newCanvas(t, "")
	for _, tpl := range blocks.All() {
		_, ok := c.Drop(tpl.ID)
		require.True(t, ok)
	}
	want := blocks.Signature(c.Tree())

	fresh := newCanvas(t, c.Serialize())
	assert.Equal(t, want, blocks.Signature(fresh.Tree()))
	assert.Equal(t, c.Serialize(), fresh.Serialize())
}

func TestOutline(t *testing.T) {
	c := newCanvas(t, `<div data-block-id="product"><h3 data-role="product">Tea</h3><button data-action="buy-wa">Buy</button></div>`)
	c.Click(dom.Path{0, 1})

	out := c.Outline(0)
	require.Len(t, out, 1)
	assert.Equal(t, "product", out[0].BlockID)
	assert.True(t, out[0].Selected)
	require.Len(t, out[0].Children, 2)
	assert.Equal(t, "0.0", out[0].Children[0].Path)
	assert.Equal(t, "product", out[0].Children[0].Role)
	assert.Equal(t, "Tea", out[0].Children[0].Text)
	assert.Equal(t, "buy-wa", out[0].Children[1].Action)

	shallow := c.Outline(1)
	assert.Len(t, shallow[0].Children, 2)
	assert.Empty(t, shallow[0].Children[0].Children)
}
