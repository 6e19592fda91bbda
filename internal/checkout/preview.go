package checkout

import (
	"fmt"
	"strings"

	"github.com/hpungsan/lapak/internal/blocks"
	"github.com/hpungsan/lapak/internal/dom"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/format"
)

// Request simulates one click on an action element.
type Request struct {
	// Path addresses the action element, or a block or item containing one.
	Path dom.Path
	// Qty overrides the quantity field when > 0.
	Qty int64
	// Fields overrides contact inputs by role (name, phone, message).
	Fields map[string]string
}

// Result is what the embedded script would do for the click.
// Exactly one of Link and Notice is set unless a modal is shown.
type Result struct {
	Action    string `json:"action"`
	Product   string `json:"product,omitempty"`
	Price     int64  `json:"price,omitempty"`
	Qty       int64  `json:"qty,omitempty"`
	Total     int64  `json:"total,omitempty"`
	TotalText string `json:"total_text,omitempty"`
	Message   string `json:"message,omitempty"`
	Link      string `json:"link,omitempty"`
	Notice    string `json:"notice,omitempty"`
	Modal     *Modal `json:"modal,omitempty"`
}

// Modal is the shared QRIS dialog.
type Modal struct {
	Title    string `json:"title"`
	Image    bool   `json:"image"`
	Merchant string `json:"merchant,omitempty"`
	Notice   string `json:"notice,omitempty"`
}

// Preview resolves the action at req.Path and computes its outcome with cfg.
func Preview(t *dom.Tree, req Request, cfg Config) (*Result, error) {
	ap, err := findAction(t, req.Path)
	if err != nil {
		return nil, err
	}
	actionNode := t.Node(ap)
	action, _ := actionNode.Attr(blocks.ActionAttr)
	scope := scopeOf(t, ap)
	text := cfg.Text
	if text == (Notices{}) {
		text = NoticesFor(cfg.Lang)
	}

	res := &Result{Action: action}
	switch blocks.Action(action) {
	case blocks.ActionBuyWhatsApp, blocks.ActionBuyTransfer, blocks.ActionBuyQRIS:
		res.Product = strings.TrimSpace(valueOf(t, scope, blocks.RoleProduct))
		if res.Product == "" {
			res.Product = text.DefaultProduct
		}
		res.Price = ParseAmount(valueOf(t, scope, blocks.RolePrice))
		res.Qty = ParseQty(valueOf(t, scope, blocks.RoleQty))
		if req.Qty > 0 {
			res.Qty = req.Qty
		}
		res.Total = Total(res.Price, res.Qty)
		res.TotalText = format.Rupiah(res.Total)
	}

	switch blocks.Action(action) {
	case blocks.ActionBuyWhatsApp:
		res.Message = ComposeMessage(cfg.Template, res.Product, res.Qty, res.Total)
		res.Link, res.Notice = linkOrNotice(cfg.Phone, res.Message, text)
	case blocks.ActionBuyTransfer:
		info := strings.TrimSpace(cfg.BankInfo)
		if info == "" {
			info = text.NoBank
		}
		res.Notice = text.Total + ": " + res.TotalText + "\n\n" + info
	case blocks.ActionBuyQRIS:
		m := &Modal{Title: text.QRISTitle, Image: cfg.QRISImage != ""}
		if cfg.QRISID != "" {
			m.Merchant = text.Merchant + ": " + cfg.QRISID
		}
		if !m.Image {
			m.Notice = text.NoQRIS
		}
		res.Modal = m
	case blocks.ActionContactWA:
		field := func(r blocks.Role) string {
			if v, ok := req.Fields[string(r)]; ok {
				return v
			}
			return valueOf(t, scope, r)
		}
		res.Message = ContactMessage(text, field(blocks.RoleName), field(blocks.RolePhone), field(blocks.RoleMessage))
		res.Link, res.Notice = linkOrNotice(cfg.Phone, res.Message, text)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown action %q", action))
	}
	return res, nil
}

func linkOrNotice(phone, message string, text Notices) (string, string) {
	link, err := WhatsAppLink(phone, message)
	if err != nil {
		return "", text.NoPhone
	}
	return link, ""
}

// findAction returns p when it is an action element, else the first action inside p.
func findAction(t *dom.Tree, p dom.Path) (dom.Path, error) {
	n := t.Node(p)
	if n == nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("path %q does not resolve to a node", p.String()))
	}
	if n.HasAttr(blocks.ActionAttr) {
		return p, nil
	}
	ap, ok := t.Find(p, func(x *dom.Node) bool { return x.IsElement() && x.HasAttr(blocks.ActionAttr) })
	if !ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("no %s element at or inside %q", blocks.ActionAttr, p.String()))
	}
	return ap, nil
}

// scopeOf is the nearest item, else the nearest block root, else the top-level node.
func scopeOf(t *dom.Tree, p dom.Path) dom.Path {
	if sp, ok := t.Closest(p, func(n *dom.Node) bool {
		v, _ := n.Attr(blocks.RoleAttr)
		return v == string(blocks.RoleItem)
	}); ok {
		return sp
	}
	if sp, ok := t.Closest(p, blocks.IsBlockRoot); ok {
		return sp
	}
	return p[:1]
}

// valueOf reads the first element with role inside scope: a form field's value,
// else its text.
func valueOf(t *dom.Tree, scope dom.Path, role blocks.Role) string {
	p, ok := t.Find(scope, func(n *dom.Node) bool {
		v, _ := n.Attr(blocks.RoleAttr)
		return n.IsElement() && v == string(role)
	})
	if !ok {
		return ""
	}
	n := t.Node(p)
	if n.IsElement("input", "select") {
		v, _ := n.Attr("value")
		return v
	}
	return n.TextContent()
}
