package offer

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PlaceholderImage is returned by display-layer helpers when no offer in a
// group carries a usable image.
const PlaceholderImage = "https://placehold.co/100x100.png"

// allowedImageHosts is the fixed allow-list of marketplace image CDNs.
// Anything else renders as the placeholder downstream.
var allowedImageHosts = map[string]bool{
	"placehold.co":                     true,
	"epocacosmeticos.vteximg.com.br":   true,
	"a-static.mlcdn.com.br":            true,
	"m.media-amazon.com":               true,
	"res.cloudinary.com":               true,
}

// Normalize converts a raw feed record into a canonical Offer. The second
// return value is false when the record must be excluded: a price that does
// not parse to a finite non-negative number, or a record with no product
// identity at all.
func Normalize(raw RawOffer) (Offer, bool) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw.FinalPrice), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return Offer{}, false
	}

	productKey := strings.TrimSpace(raw.EAN)
	if productKey == "" {
		productKey = strings.TrimSpace(raw.SKU)
	}
	if productKey == "" {
		return Offer{}, false
	}

	o := Offer{
		ProductKey:  productKey,
		SKU:         raw.SKU,
		Name:        raw.Description,
		Marketplace: raw.Marketplace,
		SellerID:    raw.SellerID,
		SellerName:  raw.SellerName,
		Price:       price,
	}

	if b := strings.TrimSpace(raw.Brand); b != "" {
		o.Brand = &b
	}
	if u := ValidHTTPURL(raw.URL); u != "" {
		o.URL = &u
	}
	if img := ValidImageURL(raw.ImageURL); img != "" {
		o.ImageURL = &img
	}
	if fp, err := strconv.ParseFloat(strings.TrimSpace(raw.FloorPrice), 64); err == nil && !math.IsNaN(fp) && !math.IsInf(fp, 0) && fp >= 0 {
		o.FloorPrice = &fp
	}
	if n, err := strconv.Atoi(strings.TrimSpace(raw.ChangeCount)); err == nil {
		o.ChangeCount = n
	}
	o.LastUpdated = parseTimestamp(raw.ObservedAt)

	return o, true
}

// NormalizeAll maps a feed payload to canonical offers, dropping rejects, and
// backfills missing URLs from the URL-lookup records keyed by
// productKey+marketplace.
func NormalizeAll(raws []RawOffer, urls []URLRecord) []Offer {
	urlByKey := make(map[string]string, len(urls))
	for _, r := range urls {
		if r.EAN == "" || r.Marketplace == "" {
			continue
		}
		if u := ValidHTTPURL(r.URL); u != "" {
			urlByKey[r.EAN+"\x00"+r.Marketplace] = u
		}
	}

	offers := make([]Offer, 0, len(raws))
	for _, raw := range raws {
		o, ok := Normalize(raw)
		if !ok {
			continue
		}
		if o.URL == nil {
			if u, ok := urlByKey[o.ProductKey+"\x00"+o.Marketplace]; ok {
				o.URL = &u
			}
		}
		offers = append(offers, o)
	}
	return offers
}

// ValidHTTPURL returns the input when it parses as an absolute http/https
// URL, or "" otherwise.
func ValidHTTPURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return s
}

// ValidImageURL validates an image URL against the CDN allow-list.
// Protocol-relative inputs ("//host/...") are rewritten to https first;
// anything that fails to parse, uses another scheme, or points at an
// unlisted host returns "".
func ValidImageURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}
	if ValidHTTPURL(s) == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || !allowedImageHosts[u.Hostname()] {
		return ""
	}
	return s
}

// parseTimestamp accepts the feed's timestamp variants; a zero time means
// the observation instant is unknown. Freshness is display-only, so a parse
// failure never rejects the record.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
