package core

import (
	"regexp"
	"strconv"
	"strings"
)

// The wire format for machine-extractable offers: a rupee symbol, a 4-5
// digit integer and the literal unit phrase "per quintal". Text that omits
// this pattern carries no offer.
var priceRe = regexp.MustCompile(`(?i)₹\s*(\d{4,5})\s*per\s*quintal`)

// priceCleaner strips decorative punctuation that generated text tends to
// wrap around amounts: thousands separators, markdown emphasis and
// typographic dashes.
var priceCleaner = strings.NewReplacer(",", "", "**", "", "—", "", "–", "")

// ExtractPrice pulls a per-quintal price out of free-form text. The second
// return value is false when no offer is present; that is a normal outcome,
// not an error.
func ExtractPrice(text string) (int, bool) {
	cleaned := priceCleaner.Replace(strings.TrimSpace(text))
	m := priceRe.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, false
	}
	price, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return price, true
}

// ExtractPricePtr is ExtractPrice with pointer-shaped absence, for
// transcript records.
func ExtractPricePtr(text string) *int {
	if p, ok := ExtractPrice(text); ok {
		return IntPtr(p)
	}
	return nil
}
