// Package checkout mirrors the arithmetic and message composition of the
// checkout script embedded in exported pages, so behaviour can be previewed
// and tested without a browser.
package checkout

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/format"
)

// Placeholders substituted into the order message template.
const (
	PlaceholderProduct = "{{product}}"
	PlaceholderQty     = "{{qty}}"
	PlaceholderTotal   = "{{total}}"
)

// WhatsAppBase is the deep link prefix.
const WhatsAppBase = "https://wa.me/"

// Config is the checkout configuration baked into an exported page.
// The JSON form is what the embedded script reads.
type Config struct {
	Phone     string  `json:"phone"`
	Template  string  `json:"template"`
	BankInfo  string  `json:"bankInfo"`
	QRISID    string  `json:"qrisId"`
	QRISImage string  `json:"qrisImage"`
	Lang      string  `json:"lang"`
	Text      Notices `json:"text"`
}

// ParseAmount reads a price shown as text, keeping digits only: "Rp150.000" is 150000.
// Amounts too large for int64 saturate at math.MaxInt64.
func ParseAmount(text string) int64 {
	d := format.Digits(text)
	if d == "" {
		return 0
	}
	// d is all digits, so the only possible failure is ErrRange.
	n, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// ParseQty reads a quantity field. Anything below 1 counts as 1.
func ParseQty(text string) int64 {
	if n := ParseAmount(text); n >= 1 {
		return n
	}
	return 1
}

// Total is price times quantity, saturating at math.MaxInt64.
// Both operands come from ParseAmount and ParseQty and are never negative.
func Total(price, qty int64) int64 {
	if qty > 0 && price > math.MaxInt64/qty {
		return math.MaxInt64
	}
	return price * qty
}

// ComposeMessage fills the order template.
func ComposeMessage(tmpl, product string, qty, total int64) string {
	return strings.NewReplacer(
		PlaceholderProduct, product,
		PlaceholderQty, strconv.FormatInt(qty, 10),
		PlaceholderTotal, format.Rupiah(total),
	).Replace(tmpl)
}

// ContactMessage is the fixed-format message sent from a contact block.
func ContactMessage(n Notices, name, phone, message string) string {
	return n.ContactName + ": " + strings.TrimSpace(name) + "\n" +
		n.ContactPhone + ": " + strings.TrimSpace(phone) + "\n" +
		n.ContactMessage + ": " + strings.TrimSpace(message)
}

// WhatsAppLink builds the chat deep link. Non-digits are stripped from phone;
// an empty result means no number is configured.
func WhatsAppLink(phone, message string) (string, error) {
	digits := format.Digits(phone)
	if digits == "" {
		return "", errors.NewInvalidRequest("whatsapp number is not configured")
	}
	return WhatsAppBase + digits + "?text=" + EncodeURIComponent(message), nil
}

var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s the way browsers do for a URI component.
func EncodeURIComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}
