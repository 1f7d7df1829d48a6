// Package buybox classifies a reference seller set's competitive position
// per (product, marketplace) pair: who holds the lowest price, by how much,
// and where.
package buybox

import (
	"sort"

	"github.com/pricetrack/buybox-service/internal/grouping"
	"github.com/pricetrack/buybox-service/internal/offer"
)

// Status is the competitive state of one (product, marketplace) pair.
type Status string

const (
	// StatusWinningAlone: the reference seller holds the lowest price and no
	// competitor lists the product in that marketplace at all.
	StatusWinningAlone Status = "winning_alone"
	// StatusWinning: the reference seller holds the lowest price with at
	// least one competitor present.
	StatusWinning Status = "winning"
	// StatusLosing: a non-reference seller holds the lowest price.
	StatusLosing Status = "losing"
	// StatusNoOffer is used only by the global list mode for products the
	// reference set does not list; the filtered evaluator never emits it.
	StatusNoOffer Status = "no_offer"
)

// Result is the evaluation of one product within one marketplace for a given
// reference seller set.
type Result struct {
	ProductKey string  `json:"productKey"`
	Name       string  `json:"name"`
	Brand      *string `json:"brand"`
	Image      string  `json:"image"`
	Status     Status  `json:"status"`

	// ReferenceOffer is the pooled reference sellers' best offer in this
	// marketplace. Always set for emitted results.
	ReferenceOffer offer.Offer `json:"referenceOffer"`
	// WinningOffer is the lowest-price offer among all sellers.
	WinningOffer offer.Offer `json:"winningOffer"`
	// NextCompetitor is the lowest-price competitor offer, set when
	// status=winning.
	NextCompetitor *offer.Offer `json:"nextCompetitor,omitempty"`

	// PriceGap is reference minus winner when losing (positive) and
	// reference minus next competitor when winning (zero or negative).
	PriceGap float64 `json:"priceGap"`
}

// Evaluate classifies every (product, marketplace) pair in which at least one
// reference-seller offer exists. referenceSellers is the pooled reference
// identity set; marketplaceFilter optionally narrows the input (nil or empty
// means all marketplaces). Degenerate inputs produce an empty result set,
// never an error.
func Evaluate(offers []offer.Offer, referenceSellers map[string]bool, marketplaceFilter map[string]bool) []Result {
	if len(referenceSellers) == 0 {
		return nil
	}
	if len(marketplaceFilter) > 0 {
		narrowed := make([]offer.Offer, 0, len(offers))
		for _, o := range offers {
			if marketplaceFilter[o.Marketplace] {
				narrowed = append(narrowed, o)
			}
		}
		offers = narrowed
	}

	buckets := grouping.Partition(offers)
	var results []Result
	for _, key := range orderedProductKeys(offers) {
		results = append(results, evaluateProduct(buckets[key], referenceSellers)...)
	}
	return results
}

// evaluateProduct emits one Result per marketplace in which the reference
// set has an offer for this product.
func evaluateProduct(group []offer.Offer, referenceSellers map[string]bool) []Result {
	var refOffers []offer.Offer
	for _, o := range group {
		if referenceSellers[o.SellerID] {
			refOffers = append(refOffers, o)
		}
	}
	if len(refOffers) == 0 {
		return nil
	}

	// Pooled reference best offer per marketplace; reference sellers compete
	// as a group against the market, not individually.
	refBest := grouping.MinByKey(refOffers, func(o offer.Offer) string { return o.Marketplace })
	image := grouping.RepresentativeImage(group)

	var results []Result
	for _, marketplace := range orderedMarketplaces(refOffers) {
		ref, ok := refBest[marketplace]
		if !ok {
			continue
		}

		var all, competitors []offer.Offer
		for _, o := range group {
			if o.Marketplace != marketplace {
				continue
			}
			all = append(all, o)
			if !referenceSellers[o.SellerID] {
				competitors = append(competitors, o)
			}
		}
		if len(all) == 0 {
			continue
		}

		res := Result{
			ProductKey:     ref.ProductKey,
			Name:           group[0].Name,
			Brand:          group[0].Brand,
			Image:          image,
			ReferenceOffer: ref,
		}

		winner := minPrice(all)
		// On an exact price tie between reference and competitor the
		// reference side wins: losing by 0.00 is noise, not signal.
		if referenceSellers[winner.SellerID] || winner.Price == ref.Price {
			res.WinningOffer = ref
			if len(competitors) == 0 {
				res.Status = StatusWinningAlone
			} else {
				res.Status = StatusWinning
				next := minPrice(competitors)
				res.NextCompetitor = &next
				res.PriceGap = ref.Price - next.Price
			}
		} else {
			res.Status = StatusLosing
			res.WinningOffer = winner
			res.PriceGap = ref.Price - winner.Price
		}

		results = append(results, res)
	}
	return results
}

// minPrice returns the lowest-price offer, first-encountered on ties.
func minPrice(offers []offer.Offer) offer.Offer {
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Price < best.Price {
			best = o
		}
	}
	return best
}

// SplitByOutcome partitions results the way consumers render them: wins
// sorted by product name, losses sorted by gap descending (worst first).
func SplitByOutcome(results []Result) (winning, losing []Result) {
	for _, r := range results {
		switch r.Status {
		case StatusWinning, StatusWinningAlone:
			winning = append(winning, r)
		case StatusLosing:
			losing = append(losing, r)
		}
	}
	sort.SliceStable(winning, func(i, j int) bool { return winning[i].Name < winning[j].Name })
	sort.SliceStable(losing, func(i, j int) bool { return losing[i].PriceGap > losing[j].PriceGap })
	return winning, losing
}

// orderedProductKeys returns product keys in first-appearance order so that
// repeated runs over the same input emit identical result ordering.
func orderedProductKeys(offers []offer.Offer) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, o := range offers {
		if o.ProductKey == "" || seen[o.ProductKey] {
			continue
		}
		seen[o.ProductKey] = true
		keys = append(keys, o.ProductKey)
	}
	return keys
}

func orderedMarketplaces(offers []offer.Offer) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range offers {
		if o.Marketplace == "" || seen[o.Marketplace] {
			continue
		}
		seen[o.Marketplace] = true
		out = append(out, o.Marketplace)
	}
	return out
}
