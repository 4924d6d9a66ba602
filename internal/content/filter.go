package content

import (
	"math"
	"strings"
	"time"
)

// FilterDocuments derives the visible projection of a list from a free-text
// search term and a category selection. Pure: the input slice is never
// mutated and order is preserved. An empty term matches everything; an empty
// category means "no category filter" (there is deliberately no way to filter
// for uncategorized documents).
func FilterDocuments(list []Document, searchTerm, category string) []Document {
	lowered := strings.ToLower(searchTerm)
	out := make([]Document, 0, len(list))
	for _, d := range list {
		if lowered != "" && !d.MatchesSearch(lowered) {
			continue
		}
		if category != "" && d.DocumentCategory() != category {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Categories returns the distinct non-empty categories of the list in
// first-seen order, for building the filter chips on the promotions page.
func Categories(list []Document) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range list {
		c := d.DocumentCategory()
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ActivePromotions keeps promotions whose validity window has not passed.
// One valid until exactly now is still active.
func ActivePromotions(list []*Promotion, now time.Time) []*Promotion {
	out := make([]*Promotion, 0, len(list))
	for _, p := range list {
		if p.Active(now) {
			out = append(out, p)
		}
	}
	return out
}

// CalculateDiscount returns the display discount percentage, rounded.
// A zero original price yields 0: no sale is implied and the division must
// not happen.
func CalculateDiscount(original, current float64) int {
	if original == 0 {
		return 0
	}
	return int(math.Round((original - current) / original * 100))
}

// DaysRemaining is the ceiling of the time left until validUntil in whole
// days. Non-positive means expired; display that as such, never as a
// negative count.
func DaysRemaining(validUntil, now time.Time) int {
	return int(math.Ceil(validUntil.Sub(now).Hours() / 24))
}

// WhatsAppLink builds the outbound deep link for a promotion. The product
// name is embedded as free text, as-is: no escaping contract exists for the
// link and special characters pass through.
func WhatsAppLink(phone, productName string) string {
	return "https://wa.me/" + phone + "?text=Olá! Gostaria de saber mais sobre a promoção: " + productName
}
