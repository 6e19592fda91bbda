package checkout

// Notices are the user-facing strings of the checkout script.
type Notices struct {
	NoPhone        string `json:"noPhone"`
	NoBank         string `json:"noBank"`
	NoQRIS         string `json:"noQris"`
	Total          string `json:"total"`
	QRISTitle      string `json:"qrisTitle"`
	Merchant       string `json:"merchant"`
	Close          string `json:"close"`
	DefaultProduct string `json:"defaultProduct"`
	ContactName    string `json:"contactName"`
	ContactPhone   string `json:"contactPhone"`
	ContactMessage string `json:"contactMessage"`
}

var notices = map[string]Notices{
	"id": {
		NoPhone:        "Nomor WhatsApp belum diatur.",
		NoBank:         "Info transfer bank belum diatur.",
		NoQRIS:         "QRIS belum diatur.",
		Total:          "Total",
		QRISTitle:      "Bayar dengan QRIS",
		Merchant:       "ID Merchant",
		Close:          "Tutup",
		DefaultProduct: "produk",
		ContactName:    "Nama",
		ContactPhone:   "No. HP",
		ContactMessage: "Pesan",
	},
	"en": {
		NoPhone:        "WhatsApp number is not configured.",
		NoBank:         "Bank transfer info is not configured.",
		NoQRIS:         "QRIS is not configured.",
		Total:          "Total",
		QRISTitle:      "Pay with QRIS",
		Merchant:       "Merchant ID",
		Close:          "Close",
		DefaultProduct: "product",
		ContactName:    "Name",
		ContactPhone:   "Phone",
		ContactMessage: "Message",
	},
}

// NoticesFor returns the strings for lang, falling back to Indonesian.
func NoticesFor(lang string) Notices {
	if n, ok := notices[lang]; ok {
		return n
	}
	return notices["id"]
}
