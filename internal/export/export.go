// Package export builds the standalone HTML document for a page.
package export

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/hpungsan/lapak/internal/checkout"
	"github.com/hpungsan/lapak/internal/dom"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/format"
	"github.com/hpungsan/lapak/internal/workspace"
)

// RootID is the id of the container holding the page markup.
const RootID = "lapak-root"

// QRISModalID is the id of the shared QRIS dialog created by the script.
const QRISModalID = "lapak-qris-modal"

//go:embed assets/page.html.tmpl assets/lapak.css assets/checkout.js
var assets embed.FS

var (
	pageTmpl = template.Must(template.ParseFS(assets, "assets/page.html.tmpl"))
	styles   = mustRead("assets/lapak.css")
	script   = mustRead("assets/checkout.js")
)

func mustRead(name string) string {
	b, err := assets.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// MediaLookup resolves media ids referenced by settings.
type MediaLookup interface {
	Media(id string) (workspace.Media, bool)
}

// Input is everything an exported document depends on.
type Input struct {
	PageID   string
	Title    string
	HTML     string
	Settings workspace.Settings
	Media    MediaLookup
}

type pageData struct {
	Lang    string
	Theme   string
	Title   string
	Favicon template.URL
	CSS     template.CSS
	Body    template.HTML
	Config  checkout.Config
	Script  template.JS
}

// Build renders the page blob into a self-contained document with inline
// styles and the checkout script. It returns NO_CONTENT when the blob has no
// visible content. Build is deterministic for a given input.
func Build(in Input) (string, error) {
	if strings.TrimSpace(in.HTML) == "" {
		return "", errors.NewNoContent(in.PageID)
	}
	if t, err := dom.Parse(in.HTML); err == nil && t.IsBlank() {
		return "", errors.NewNoContent(in.PageID)
	}

	s := in.Settings
	data := pageData{
		Lang:    s.Lang,
		Theme:   s.Theme,
		Title:   title(in.Title, s.BrandName),
		Favicon: template.URL(lookup(in.Media, s.Favicon)),
		CSS:     template.CSS(styles),
		Body:    template.HTML(in.HTML),
		Config:  Config(s, in.Media),
		Script:  template.JS(script),
	}
	if data.Lang == "" {
		data.Lang = workspace.LangID
	}
	if data.Theme == "" {
		data.Theme = workspace.ThemeDark
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", errors.NewInternal(err)
	}
	return buf.String(), nil
}

// Config is the checkout configuration embedded in an exported page.
func Config(s workspace.Settings, media MediaLookup) checkout.Config {
	tmpl := s.WATemplate
	if strings.TrimSpace(tmpl) == "" {
		tmpl = workspace.DefaultMessageTemplate
	}
	return checkout.Config{
		Phone:     format.Digits(s.WANumber),
		Template:  tmpl,
		BankInfo:  s.BankInfo,
		QRISID:    s.QRISID,
		QRISImage: lookup(media, s.QRISImage),
		Lang:      s.Lang,
		Text:      checkout.NoticesFor(s.Lang),
	}
}

func lookup(media MediaLookup, id string) string {
	if media == nil || id == "" {
		return ""
	}
	m, ok := media.Media(id)
	if !ok || !workspace.IsImageDataURI(m.DataURI) {
		return ""
	}
	return m.DataURI
}

func title(page, brand string) string {
	page, brand = strings.TrimSpace(page), strings.TrimSpace(brand)
	switch {
	case page == "":
		return brand
	case brand == "" || page == brand:
		return page
	default:
		return page + " | " + brand
	}
}
