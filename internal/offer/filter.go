package offer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName lowercases a product name and strips accents so that filter text
// matches the feed's Portuguese descriptions regardless of diacritics.
func FoldName(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Filter is an explicit multi-select narrowing applied before the analysis
// core. Empty slices mean "no restriction" for that dimension.
type Filter struct {
	ProductKeys  []string
	Marketplaces []string
	SellerIDs    []string
	Names        []string
	Brands       []string
	NameText     string // free-text, accent-insensitive substring match
}

// Apply returns the offers matching every populated dimension, preserving
// input order. Input order matters downstream: grouping tie-breaks keep the
// first-encountered offer.
func (f Filter) Apply(offers []Offer) []Offer {
	keySet := toSet(f.ProductKeys)
	mktSet := toSet(f.Marketplaces)
	sellerSet := toSet(f.SellerIDs)
	nameSet := toSet(f.Names)
	brandSet := toSet(f.Brands)
	text := FoldName(f.NameText)

	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if keySet != nil && !keySet[o.ProductKey] {
			continue
		}
		if mktSet != nil && !mktSet[o.Marketplace] {
			continue
		}
		if sellerSet != nil && !sellerSet[o.SellerID] {
			continue
		}
		if nameSet != nil && !nameSet[o.Name] {
			continue
		}
		if brandSet != nil && (o.Brand == nil || !brandSet[*o.Brand]) {
			continue
		}
		if text != "" && !strings.Contains(FoldName(o.Name), text) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// IsZero reports whether the filter narrows anything at all.
func (f Filter) IsZero() bool {
	return len(f.ProductKeys) == 0 && len(f.Marketplaces) == 0 && len(f.SellerIDs) == 0 &&
		len(f.Names) == 0 && len(f.Brands) == 0 && f.NameText == ""
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
