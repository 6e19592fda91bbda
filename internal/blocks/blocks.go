// Package blocks is the catalog of insertable page blocks and the attribute
// contract they carry into exported pages.
package blocks

import (
	"bytes"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/hpungsan/lapak/internal/format"
)

// Attribute names shared by the canvas, inspector and exported checkout script.
const (
	// BlockAttr marks a block's root element; its value is the template id.
	BlockAttr = "data-block-id"
	// ActionAttr marks an element that triggers checkout or contact at runtime.
	ActionAttr = "data-action"
	// RoleAttr marks an element the runtime reads data from.
	RoleAttr = "data-role"
	// BlockClass is added to every block root for styling.
	BlockClass = "block-element"
)

// Action is a value of ActionAttr.
type Action string

const (
	ActionBuyWhatsApp Action = "buy-wa"
	ActionBuyTransfer Action = "buy-transfer"
	ActionBuyQRIS     Action = "buy-qris"
	ActionContactWA   Action = "contact-wa"
)

// Actions lists every action in a stable order.
var Actions = []Action{ActionBuyWhatsApp, ActionBuyTransfer, ActionBuyQRIS, ActionContactWA}

// Valid reports whether a is part of the vocabulary.
func (a Action) Valid() bool {
	for _, x := range Actions {
		if a == x {
			return true
		}
	}
	return false
}

// Role is a value of RoleAttr.
type Role string

const (
	// RoleItem scopes one purchasable unit inside a block holding several.
	RoleItem    Role = "item"
	RoleProduct Role = "product"
	RolePrice   Role = "price"
	RoleQty     Role = "qty"
	RoleName    Role = "name"
	RolePhone   Role = "phone"
	RoleMessage Role = "message"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleItem, RoleProduct, RolePrice, RoleQty, RoleName, RolePhone, RoleMessage}

// Valid reports whether r is part of the vocabulary.
func (r Role) Valid() bool {
	for _, x := range Roles {
		if r == x {
			return true
		}
	}
	return false
}

// Template describes one palette entry.
type Template struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Palette categories.
const (
	CategoryLayout   = "Layout"
	CategoryContent  = "Content"
	CategoryCommerce = "E-Commerce"
	CategoryForms    = "Forms"
)

var catalog = []Template{
	{ID: "navbar", Label: "Navbar", Category: CategoryLayout, Description: "Navigation header"},
	{ID: "hero", Label: "Hero Section", Category: CategoryLayout, Description: "Main landing section"},
	{ID: "footer", Label: "Footer", Category: CategoryLayout, Description: "Page footer"},
	{ID: "features", Label: "Features", Category: CategoryContent, Description: "Feature showcase"},
	{ID: "gallery", Label: "Gallery", Category: CategoryContent, Description: "Image gallery"},
	{ID: "testimonials", Label: "Testimonials", Category: CategoryContent, Description: "Customer reviews"},
	{ID: "product", Label: "Product", Category: CategoryCommerce, Description: "Single product showcase"},
	{ID: "product-grid", Label: "Product Grid", Category: CategoryCommerce, Description: "Multiple products"},
	{ID: "pricing", Label: "Pricing", Category: CategoryCommerce, Description: "Pricing tables"},
	{ID: "contact", Label: "Contact Form", Category: CategoryForms, Description: "Contact via WhatsApp"},
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var fragments = template.Must(template.New("blocks").Funcs(template.FuncMap{
	"placeholder": Placeholder,
	"seq":         seq,
}).ParseFS(templateFS, "templates/*.tmpl"))

type gridProduct struct {
	Name, Blurb, Price string
}

type plan struct {
	Name, Price string
	Perks       []string
	Popular     bool
}

// fragmentData feeds the repeated sections of the commerce blocks.
var fragmentData = struct {
	Products []gridProduct
	Plans    []plan
}{
	Products: []gridProduct{
		{Name: "Product 1", Blurb: "Great product description", Price: format.Rupiah(99000)},
		{Name: "Product 2", Blurb: "Another great product", Price: format.Rupiah(149000)},
		{Name: "Product 3", Blurb: "Premium quality item", Price: format.Rupiah(199000)},
	},
	Plans: []plan{
		{Name: "Basic", Price: format.Rupiah(29000), Perks: []string{"5 Projects", "10GB Storage", "Email Support"}},
		{Name: "Pro", Price: format.Rupiah(59000), Perks: []string{"50 Projects", "100GB Storage", "Priority Support"}, Popular: true},
		{Name: "Enterprise", Price: format.Rupiah(99000), Perks: []string{"Unlimited Projects", "1TB Storage", "24/7 Support"}},
	},
}

// All returns the catalog in palette order.
func All() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the template registered under id.
func Lookup(id string) (Template, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Categories returns the palette categories in display order.
func Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range catalog {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// Generate returns the markup fragment for id. Unknown ids report false.
func Generate(id string) (string, bool) {
	if _, ok := Lookup(id); !ok {
		return "", false
	}
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, id, fragmentData); err != nil {
		// Templates are static and covered by tests.
		panic(fmt.Sprintf("block %s: %v", id, err))
	}
	return strings.TrimSpace(buf.String()), true
}

// Placeholder returns an inline SVG data URI used as stand-in artwork.
func Placeholder(w, h int, label string) string {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+
		`<defs><linearGradient id="g" x1="0" x2="1">`+
		`<stop offset="0%%" stop-color="hsl(225 30%% 12%%)"/>`+
		`<stop offset="100%%" stop-color="hsl(225 25%% 18%%)"/>`+
		`</linearGradient></defs>`+
		`<rect width="100%%" height="100%%" fill="url(#g)"/>`+
		`<text x="50%%" y="50%%" dominant-baseline="middle" text-anchor="middle" `+
		`fill="hsl(225 50%% 95%%)" font-family="Inter,system-ui,Arial" font-size="20">%s</text>`+
		`</svg>`, w, h, escapeSVGText(label))
	return "data:image/svg+xml;utf8," + url.PathEscape(svg)
}

func escapeSVGText(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func seq(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
