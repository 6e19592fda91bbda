package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lapak/internal/errors"
)

func TestEdit_TextFocus(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "product"})
	require.NoError(t, err)
	outline, err := Outline(ctx, database, cfg, OutlineInput{})
	require.NoError(t, err)
	titlePath := findPath(t, outline.Elements, byRole("product"))

	out, err := Edit(ctx, database, cfg, EditInput{Path: titlePath, Op: "text", Value: "Kopi Gayo"})
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Equal(t, titlePath, out.Target)
	require.Equal(t, titlePath, out.Selection)

	page, err := GetPage(ctx, database, cfg, PageInput{})
	require.NoError(t, err)
	require.Contains(t, page.HTML, `<h3 data-role="product">Kopi Gayo</h3>`)
}

func TestEdit_ClickSelectsBlock(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	for _, id := range []string{"navbar", "product"} {
		_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: id})
		require.NoError(t, err)
	}
	outline, err := Outline(ctx, database, cfg, OutlineInput{})
	require.NoError(t, err)
	pricePath := findPath(t, outline.Elements, byRole("price"))

	out, err := Edit(ctx, database, cfg, EditInput{Path: pricePath, Mode: EditModeClick, Op: "delete"})
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Equal(t, "1", out.Target)
	require.Empty(t, out.Selection, "delete clears the selection")
	require.Len(t, out.Blocks, 1)
	require.Equal(t, "navbar", out.Blocks[0].ID)
}

func TestEdit_DuplicateAndMove(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	for _, id := range []string{"hero", "footer"} {
		_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: id})
		require.NoError(t, err)
	}

	out, err := Edit(ctx, database, cfg, EditInput{Path: "0", Op: "duplicate"})
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Equal(t, "0", out.Selection)
	require.Len(t, out.Blocks, 3)

	out, err = Edit(ctx, database, cfg, EditInput{Path: "2", Op: "move_up"})
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Equal(t, "1", out.Selection)
	require.Equal(t, []string{"hero", "footer", "hero"},
		[]string{out.Blocks[0].ID, out.Blocks[1].ID, out.Blocks[2].ID})

	out, err = Edit(ctx, database, cfg, EditInput{Path: "2", Op: "move_down"})
	require.NoError(t, err)
	require.False(t, out.Applied, "last block cannot move down")
}

func TestEdit_NoSelection(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "hero"})
	require.NoError(t, err)
	before, err := GetPage(ctx, database, cfg, PageInput{})
	require.NoError(t, err)

	out, err := Edit(ctx, database, cfg, EditInput{Path: "7.3", Op: "text", Value: "x"})
	require.NoError(t, err)
	require.False(t, out.Applied)
	require.Empty(t, out.Target)

	after, err := GetPage(ctx, database, cfg, PageInput{})
	require.NoError(t, err)
	require.Equal(t, before.HTML, after.HTML)
}

func TestEdit_InvalidInput(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "hero"})
	require.NoError(t, err)
	before, err := GetPage(ctx, database, cfg, PageInput{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input EditInput
		code  errors.ErrorCode
	}{
		{"unknown op", EditInput{Path: "0", Op: "rotate"}, errors.ErrInvalidRequest},
		{"bad path", EditInput{Path: "a.b", Op: "delete"}, errors.ErrInvalidRequest},
		{"bad mode", EditInput{Path: "0", Mode: "hover", Op: "delete"}, errors.ErrInvalidRequest},
		{"bad color", EditInput{Path: "0", Op: "color", Value: "red"}, errors.ErrInvalidRequest},
		{"unknown media", EditInput{Path: "0", Op: "image", Value: "media_missing"}, errors.ErrNotFound},
		{"unknown page", EditInput{PageID: "nope", Path: "0", Op: "delete"}, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Edit(ctx, database, cfg, tt.input)
			requireCode(t, err, tt.code)
		})
	}

	after, err := GetPage(ctx, database, cfg, PageInput{})
	require.NoError(t, err)
	require.Equal(t, before.HTML, after.HTML, "rejected edits leave the page untouched")
}

func TestEdit_Style(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "hero"})
	require.NoError(t, err)

	for _, e := range []EditInput{
		{Path: "0", Op: "background", Value: "#112233"},
		{Path: "0", Op: "padding", Value: "24"},
	} {
		out, err := Edit(ctx, database, cfg, e)
		require.NoError(t, err)
		require.True(t, out.Applied, e.Op)
	}

	page, err := GetPage(ctx, database, cfg, PageInput{})
	require.NoError(t, err)
	require.Contains(t, page.HTML, "background-color: #112233")
	require.Contains(t, page.HTML, "padding: 24px")
}

func TestEdit_BindImage(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "product"})
	require.NoError(t, err)
	added, err := AddMedia(ctx, database, cfg, AddMediaInput{DataURI: "data:image/png;base64,iVBORw0KGgo=", Name: "Kopi"})
	require.NoError(t, err)

	out, err := Edit(ctx, database, cfg, EditInput{Path: "0", Op: "image", Value: added.Media.ID})
	require.NoError(t, err)
	require.True(t, out.Applied)

	page, err := GetPage(ctx, database, cfg, PageInput{})
	require.NoError(t, err)
	require.Contains(t, page.HTML, `src="data:image/png;base64,iVBORw0KGgo="`)
	require.Contains(t, page.HTML, `data-media-id="`+added.Media.ID+`"`)
	require.Contains(t, page.HTML, `alt="Kopi"`)
}
