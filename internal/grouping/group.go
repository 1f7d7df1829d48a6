// Package grouping partitions offer collections by product identity and
// reduces each group to its minimum-price representative.
package grouping

import (
	"sort"

	"github.com/pricetrack/buybox-service/internal/offer"
)

// KeyFunc derives the grouping key for an offer. An empty key excludes the
// offer from the grouping pass.
type KeyFunc func(offer.Offer) string

const keySep = "\x00"

// ByProduct groups across everything: the global lowest price per product.
func ByProduct(o offer.Offer) string {
	return o.ProductKey
}

// ByProductMarketplace yields the lowest price per product per marketplace.
func ByProductMarketplace(o offer.Offer) string {
	if o.ProductKey == "" || o.Marketplace == "" {
		return ""
	}
	return o.ProductKey + keySep + o.Marketplace
}

// ByProductSellerMarketplace yields one entry per seller-offer combination,
// still collapsing duplicate listings of the same seller in the same
// marketplace to the cheapest one.
func ByProductSellerMarketplace(o offer.Offer) string {
	if o.ProductKey == "" || o.Marketplace == "" {
		return ""
	}
	return o.ProductKey + keySep + o.SellerID + keySep + o.Marketplace
}

// MinByKey reduces offers to the lowest-price offer per key. Exact price ties
// keep the first offer encountered in input order; callers therefore control
// determinism through input ordering.
func MinByKey(offers []offer.Offer, key KeyFunc) map[string]offer.Offer {
	out := make(map[string]offer.Offer)
	for _, o := range offers {
		k := key(o)
		if k == "" {
			continue
		}
		best, seen := out[k]
		if !seen || o.Price < best.Price {
			out[k] = o
		}
	}
	return out
}

// Partition splits offers into per-product buckets, preserving input order
// within each bucket. Offers without a product key are excluded.
func Partition(offers []offer.Offer) map[string][]offer.Offer {
	out := make(map[string][]offer.Offer)
	for _, o := range offers {
		if o.ProductKey == "" {
			continue
		}
		out[o.ProductKey] = append(out[o.ProductKey], o)
	}
	return out
}

// imagePriority is the ordered marketplace fallback list for representative
// images. Marketplace-supplied images have inconsistent availability; a fixed
// priority keeps the chosen image stable between recomputations.
var imagePriority = []string{"Beleza na Web", "Época Cosméticos", "Magazine Luiza", "Amazon"}

// RepresentativeImage picks the display image for a set of offers sharing a
// product key: first valid image from the priority marketplaces in order,
// then any valid image, then the placeholder sentinel.
func RepresentativeImage(offers []offer.Offer) string {
	for _, marketplace := range imagePriority {
		for _, o := range offers {
			if o.Marketplace == marketplace && o.ImageURL != nil {
				return *o.ImageURL
			}
		}
	}
	for _, o := range offers {
		if o.ImageURL != nil {
			return *o.ImageURL
		}
	}
	return offer.PlaceholderImage
}

// ProductGroup holds the per-product view: representative display fields and
// the cheapest offer per marketplace.
type ProductGroup struct {
	ProductKey string                 `json:"productKey"`
	Name       string                 `json:"name"`
	Brand      *string                `json:"brand"`
	Image      string                 `json:"image"`
	Offers     map[string]offer.Offer `json:"offers"` // marketplace -> cheapest offer
}

// ProductGroups builds the per-product, per-marketplace grouping view.
func ProductGroups(offers []offer.Offer) map[string]*ProductGroup {
	buckets := Partition(offers)
	out := make(map[string]*ProductGroup, len(buckets))
	for key, group := range buckets {
		pg := &ProductGroup{
			ProductKey: key,
			Name:       group[0].Name,
			Brand:      group[0].Brand,
			Image:      RepresentativeImage(group),
			Offers:     make(map[string]offer.Offer),
		}
		for _, o := range group {
			if o.Marketplace == "" {
				continue
			}
			best, seen := pg.Offers[o.Marketplace]
			if !seen || o.Price < best.Price {
				pg.Offers[o.Marketplace] = o
			}
		}
		out[key] = pg
	}
	return out
}

// SellerGroup is the per-seller view: for each of the seller's products, the
// cheapest offer per marketplace.
type SellerGroup struct {
	SellerID     string                             `json:"sellerId"`
	SellerName   string                             `json:"sellerName"`
	Marketplaces []string                           `json:"marketplaces"`
	Products     map[string]map[string]offer.Offer `json:"products"` // productKey -> marketplace -> cheapest offer
}

// SellerMatrix groups offers per seller, per product, per marketplace,
// keeping the cheapest listing in each cell. Sellers without a stable
// sellerId are excluded.
func SellerMatrix(offers []offer.Offer) []*SellerGroup {
	byID := make(map[string]*SellerGroup)
	for _, o := range offers {
		if o.SellerID == "" || o.ProductKey == "" {
			continue
		}
		sg, ok := byID[o.SellerID]
		if !ok {
			sg = &SellerGroup{
				SellerID:   o.SellerID,
				SellerName: o.SellerName,
				Products:   make(map[string]map[string]offer.Offer),
			}
			byID[o.SellerID] = sg
		}
		if o.Marketplace != "" && !contains(sg.Marketplaces, o.Marketplace) {
			sg.Marketplaces = append(sg.Marketplaces, o.Marketplace)
		}
		cells, ok := sg.Products[o.ProductKey]
		if !ok {
			cells = make(map[string]offer.Offer)
			sg.Products[o.ProductKey] = cells
		}
		best, seen := cells[o.Marketplace]
		if !seen || o.Price < best.Price {
			cells[o.Marketplace] = o
		}
	}

	out := make([]*SellerGroup, 0, len(byID))
	for _, sg := range byID {
		out = append(out, sg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SellerName < out[j].SellerName })
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
