// Package format renders money the way Indonesian storefronts display it.
package format

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Rupiah formats an integer amount as "Rp300.000", grouping thousands with ".".
// Every int64 formats exactly, math.MinInt64 included.
func Rupiah(amount int64) string {
	s := strings.ReplaceAll(humanize.Comma(amount), ",", ".")
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return "-Rp" + rest
	}
	return "Rp" + s
}

// Digits strips every non-digit rune from s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
