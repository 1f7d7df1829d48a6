package buybox

import (
	"sort"

	"github.com/pricetrack/buybox-service/internal/grouping"
	"github.com/pricetrack/buybox-service/internal/offer"
)

// Winner is one row of the global buybox list: the single cheapest offer for
// a product across every seller and marketplace, plus the size of the field
// it beat.
type Winner struct {
	ProductKey  string      `json:"productKey"`
	Name        string      `json:"name"`
	Brand       *string     `json:"brand"`
	Image       string      `json:"image"`
	Competitors int         `json:"competitors"` // total offers for the product
	Offer       offer.Offer `json:"offer"`
	// Status distinguishes listed products from reference no-shows when a
	// reference set is supplied; without one it is always the zero value.
	Status Status `json:"status,omitempty"`
}

// ListWinners iterates every product regardless of reference participation
// and reports its global cheapest offer, sorted by product name. When
// referenceSellers is non-empty, rows the reference set does not list are
// marked StatusNoOffer.
func ListWinners(offers []offer.Offer, referenceSellers map[string]bool) []Winner {
	buckets := grouping.Partition(offers)

	out := make([]Winner, 0, len(buckets))
	for key, group := range buckets {
		w := Winner{
			ProductKey:  key,
			Name:        group[0].Name,
			Brand:       group[0].Brand,
			Image:       grouping.RepresentativeImage(group),
			Competitors: len(group),
			Offer:       minPrice(group),
		}
		if len(referenceSellers) > 0 && !hasReferenceOffer(group, referenceSellers) {
			w.Status = StatusNoOffer
		}
		out = append(out, w)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ProductKey < out[j].ProductKey
	})
	return out
}

func hasReferenceOffer(group []offer.Offer, referenceSellers map[string]bool) bool {
	for _, o := range group {
		if referenceSellers[o.SellerID] {
			return true
		}
	}
	return false
}
