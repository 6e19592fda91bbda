package workspace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lapak/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore(0)

	pages := s.Pages()
	require.Len(t, pages, 1)
	assert.Equal(t, Page{ID: "home", Name: "Beranda"}, pages[0])
	assert.Equal(t, "home", s.CurrentID())

	set := s.Settings()
	assert.Equal(t, "Page Builder", set.BrandName)
	assert.Equal(t, ThemeDark, set.Theme)
	assert.Equal(t, LangID, set.Lang)
	assert.Equal(t, DefaultMessageTemplate, set.WATemplate)
}

func TestAddPage_EmptyAndActive(t *testing.T) {
	s := NewStore(0)

	p := s.AddPage("  Promo ")
	assert.True(t, strings.HasPrefix(p.ID, "page_"))
	assert.Equal(t, "Promo", p.Name)
	assert.Empty(t, p.HTML)
	assert.Equal(t, p.ID, s.CurrentID())

	q := s.AddPage("")
	assert.Equal(t, NewPageName, q.Name)
	assert.NotEqual(t, p.ID, q.ID)
	assert.Len(t, s.Pages(), 3)
}

func TestDuplicatePage_CopiesNameAndContent(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.ReplaceHTML("home", `<div data-block-id="hero"></div>`))
	other := s.AddPage("Other")

	dup, err := s.DuplicatePage("home")
	require.NoError(t, err)
	assert.Equal(t, "Beranda (Copy)", dup.Name)
	assert.Equal(t, `<div data-block-id="hero"></div>`, dup.HTML)
	assert.Equal(t, dup.ID, s.CurrentID())

	ids := []string{}
	for _, p := range s.Pages() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"home", dup.ID, other.ID}, ids, "copy sits right after its source")

	_, err = s.DuplicatePage("nope")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSelectRenameDelete(t *testing.T) {
	s := NewStore(0)
	p := s.AddPage("Two")

	require.NoError(t, s.Select("home"))
	assert.Equal(t, "home", s.CurrentID())
	assert.True(t, errors.Is(s.Select("missing"), errors.ErrNotFound))

	require.NoError(t, s.Rename(p.ID, "Deux"))
	got, _ := s.Page(p.ID)
	assert.Equal(t, "Deux", got.Name)
	assert.True(t, errors.Is(s.Rename(p.ID, " "), errors.ErrInvalidRequest))

	require.NoError(t, s.DeletePage("home"))
	assert.Equal(t, p.ID, s.CurrentID(), "deleting the active page activates a neighbour")
	assert.True(t, errors.Is(s.DeletePage(p.ID), errors.ErrInvalidRequest), "last page stays")
}

func TestResolve(t *testing.T) {
	s := NewStore(0)
	p, err := s.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "home", p.ID)

	_, err = s.Resolve("x")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestReplaceHTML(t *testing.T) {
	s := NewStore(10)

	require.NoError(t, s.ReplaceHTML("home", "<p>ok</p>"))
	assert.Equal(t, "<p>ok</p>", s.Current().HTML)

	err := s.ReplaceHTML("home", "<p>too long</p>")
	assert.True(t, errors.Is(err, errors.ErrPageTooLarge))
	assert.Equal(t, "<p>ok</p>", s.Current().HTML)

	assert.True(t, errors.Is(s.ReplaceHTML("x", ""), errors.ErrNotFound))
}

func TestUpdateSettings(t *testing.T) {
	s := NewStore(0)

	got, err := s.UpdateSettings(SettingsPatch{
		BrandName: strPtr(" Toko Kopi "),
		WANumber:  strPtr("+62 812-3456-7890"),
		Theme:     strPtr("LIGHT"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Toko Kopi", got.BrandName)
	assert.Equal(t, ThemeLight, got.Theme)
	assert.Equal(t, DefaultMessageTemplate, got.WATemplate, "untouched fields survive")

	_, err = s.UpdateSettings(SettingsPatch{Lang: strPtr("fr")})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Equal(t, LangID, s.Settings().Lang)

	_, err = s.UpdateSettings(SettingsPatch{QRISImage: strPtr("media_missing")})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestMedia(t *testing.T) {
	s := NewStore(0)

	for _, uri := range []string{
		"https://example.com/a.png",
		"data:text/html,<script>alert(1)</script>",
		"data:,hello",
		"data:image/",
	} {
		_, err := s.AddMedia("x", uri)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "uri %q", uri)
	}
	assert.Empty(t, s.MediaList())
	assert.True(t, IsImageDataURI("DATA:Image/PNG;base64,AAAA"))

	m, err := s.AddMedia("QR", "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.ID, "media_"))

	_, err = s.UpdateSettings(SettingsPatch{QRISImage: strPtr(m.ID)})
	require.NoError(t, err)

	got, ok := s.Media(m.ID)
	assert.True(t, ok)
	assert.Equal(t, "QR", got.Name)

	require.NoError(t, s.DeleteMedia(m.ID))
	assert.Empty(t, s.MediaList())
	assert.Empty(t, s.Settings().QRISImage, "dangling reference cleared")
	assert.True(t, errors.Is(s.DeleteMedia(m.ID), errors.ErrNotFound))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.ReplaceHTML("home", `<div data-block-id="hero"></div>`))
	s.AddPage("Promo")
	m, _ := s.AddMedia("QR", "data:image/png;base64,AAAA")
	_, err := s.UpdateSettings(SettingsPatch{QRISImage: strPtr(m.ID)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Snapshot().Encode(&buf))

	snap, err := DecodeSnapshot(&buf, 0)
	require.NoError(t, err)

	restored, err := FromSnapshot(snap, 0)
	require.NoError(t, err)
	assert.Equal(t, s.Pages(), restored.Pages())
	assert.Equal(t, s.CurrentID(), restored.CurrentID())
	assert.Equal(t, s.Settings(), restored.Settings())
	assert.Equal(t, s.MediaList(), restored.MediaList())
}

func TestDecodeSnapshot_Rejects(t *testing.T) {
	valid := func() string {
		var buf bytes.Buffer
		_ = NewStore(0).Snapshot().Encode(&buf)
		return buf.String()
	}()

	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not json", "{nope"},
		{"array", "[]"},
		{"no header", `{"schema_version":"1","current_page_id":"home","pages":[{"id":"home","name":"x","html":""}],"settings":{"workspace":"default","theme":"dark","lang":"id"}}`},
		{"bad version", strings.Replace(valid, `"schema_version": "1"`, `"schema_version": "9"`, 1)},
		{"unknown field", strings.Replace(valid, `"pages"`, `"products": [], "pages"`, 1)},
		{"dangling current", strings.Replace(valid, `"current_page_id": "home"`, `"current_page_id": "gone"`, 1)},
		{"bad theme", strings.Replace(valid, `"theme": "dark"`, `"theme": "neon"`, 1)},
		{"trailing", valid + "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSnapshot(strings.NewReader(tt.doc), 0)
			assert.True(t, errors.Is(err, errors.ErrImportRejected), "got %v", err)
		})
	}
}

func TestRestore_RejectedLeavesStoreUntouched(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.ReplaceHTML("home", "<p>keep</p>"))

	bad := s.Snapshot()
	bad.Pages = append(bad.Pages, Page{ID: "home", Name: "dup"})

	err := s.Restore(bad)
	assert.True(t, errors.Is(err, errors.ErrImportRejected))
	assert.Len(t, s.Pages(), 1)
	assert.Equal(t, "<p>keep</p>", s.Current().HTML)
}

func TestRestore_RejectsNonImageMedia(t *testing.T) {
	s := NewStore(0)

	bad := s.Snapshot()
	bad.Media = append(bad.Media, Media{ID: "media_x", Name: "x", DataURI: "data:text/html,<b>x</b>"})

	err := s.Restore(bad)
	assert.True(t, errors.Is(err, errors.ErrImportRejected))
	assert.Empty(t, s.MediaList())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "toko kopi", Normalize("  Toko \t Kopi "))
	assert.Equal(t, "default", Normalize("DEFAULT"))
}

func TestNewNamedStore(t *testing.T) {
	s := NewNamedStore("  Toko Kopi ", 0)
	assert.Equal(t, "Toko Kopi", s.Name())
	assert.Equal(t, HomePageID, s.CurrentID())

	assert.Equal(t, "default", NewNamedStore(" ", 0).Name())
}
