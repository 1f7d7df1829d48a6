// Package stats derives summary metrics from buybox evaluations and from the
// raw offer collection: win/loss counts, per-marketplace distributions,
// potential-gain projections, and top winning sellers.
package stats

import (
	"math"
	"sort"

	"github.com/pricetrack/buybox-service/internal/buybox"
	"github.com/pricetrack/buybox-service/internal/grouping"
	"github.com/pricetrack/buybox-service/internal/offer"
)

// gainScenarios are the fixed unit-volume multipliers used to illustrate
// revenue sensitivity of the aggregate captured gap.
var gainScenarios = []int{10, 50, 100}

// Stats summarizes one evaluation pass.
type Stats struct {
	TotalOffered int `json:"totalOffered"` // distinct (product, marketplace) pairs evaluated
	WinningCount int `json:"winningCount"`
	LosingCount  int `json:"losingCount"`

	// WinsByMarketplace counts wins keyed by the reference offer's
	// marketplace.
	WinsByMarketplace map[string]int `json:"winsByMarketplace"`
	// LossesByMarketplace counts losses keyed by the winning competitor's
	// marketplace: it answers where the market beat us, not where we listed.
	LossesByMarketplace map[string]int `json:"lossesByMarketplace"`

	// PotentialGain is the sum of margin headroom (absolute negative gaps)
	// over winning results.
	PotentialGain float64 `json:"potentialGain"`
	// GainProjection multiplies PotentialGain by fixed volume scenarios.
	GainProjection []GainScenario `json:"gainProjection"`
}

// GainScenario is one point of the revenue-sensitivity projection.
type GainScenario struct {
	Units  int     `json:"units"`
	Amount float64 `json:"amount"`
}

// Build computes aggregate statistics from an evaluation result set. An
// empty input yields zero-valued stats, not an error.
func Build(results []buybox.Result) Stats {
	s := Stats{
		WinsByMarketplace:   make(map[string]int),
		LossesByMarketplace: make(map[string]int),
	}

	for _, r := range results {
		s.TotalOffered++
		switch r.Status {
		case buybox.StatusWinning, buybox.StatusWinningAlone:
			s.WinningCount++
			s.WinsByMarketplace[r.ReferenceOffer.Marketplace]++
			if r.PriceGap < 0 {
				s.PotentialGain += -r.PriceGap
			}
		case buybox.StatusLosing:
			s.LosingCount++
			s.LossesByMarketplace[r.WinningOffer.Marketplace]++
		}
	}

	s.GainProjection = make([]GainScenario, 0, len(gainScenarios))
	for _, units := range gainScenarios {
		s.GainProjection = append(s.GainProjection, GainScenario{
			Units:  units,
			Amount: s.PotentialGain * float64(units),
		})
	}
	return s
}

// SellerWins is one row of the top-sellers leaderboard.
type SellerWins struct {
	SellerID   string `json:"sellerId"`
	SellerName string `json:"sellerName"`
	Wins       int    `json:"wins"`
}

// TopSellers tallies, over the entire unfiltered dataset, which seller holds
// the single cheapest offer per product, and returns the top n. This is a
// global pass independent of any reference-seller selection.
func TopSellers(offers []offer.Offer, n int) []SellerWins {
	cheapest := grouping.MinByKey(offers, grouping.ByProduct)

	counts := make(map[string]*SellerWins)
	for _, o := range cheapest {
		if o.SellerID == "" {
			continue
		}
		row, ok := counts[o.SellerID]
		if !ok {
			row = &SellerWins{SellerID: o.SellerID, SellerName: o.SellerName}
			counts[o.SellerID] = row
		}
		row.Wins++
	}

	out := make([]SellerWins, 0, len(counts))
	for _, row := range counts {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].SellerName < out[j].SellerName
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MarketplaceSummary aggregates price statistics for one marketplace.
type MarketplaceSummary struct {
	Marketplace string       `json:"marketplace"`
	OfferCount  int          `json:"offerCount"`
	MinPrice    float64      `json:"minPrice"`
	MaxPrice    float64      `json:"maxPrice"`
	AvgPrice    float64      `json:"avgPrice"`
	Cheapest    *offer.Offer `json:"cheapest,omitempty"`
	Priciest    *offer.Offer `json:"priciest,omitempty"`
}

// SummarizeMarketplaces builds min/max/avg price stats per marketplace,
// sorted by average ascending.
func SummarizeMarketplaces(offers []offer.Offer) []MarketplaceSummary {
	byMkt := make(map[string]*MarketplaceSummary)
	sums := make(map[string]float64)

	for i := range offers {
		o := offers[i]
		if o.Marketplace == "" {
			continue
		}
		s, ok := byMkt[o.Marketplace]
		if !ok {
			s = &MarketplaceSummary{
				Marketplace: o.Marketplace,
				MinPrice:    math.Inf(1),
				MaxPrice:    math.Inf(-1),
			}
			byMkt[o.Marketplace] = s
		}
		s.OfferCount++
		sums[o.Marketplace] += o.Price
		if o.Price < s.MinPrice {
			s.MinPrice = o.Price
			cheapest := o
			s.Cheapest = &cheapest
		}
		if o.Price > s.MaxPrice {
			s.MaxPrice = o.Price
			priciest := o
			s.Priciest = &priciest
		}
	}

	out := make([]MarketplaceSummary, 0, len(byMkt))
	for _, s := range byMkt {
		s.AvgPrice = sums[s.Marketplace] / float64(s.OfferCount)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgPrice != out[j].AvgPrice {
			return out[i].AvgPrice < out[j].AvgPrice
		}
		return out[i].Marketplace < out[j].Marketplace
	})
	return out
}

// Comparison positions one marketplace against the cheapest competitor price
// elsewhere, per shared product.
type Comparison struct {
	Marketplace        string `json:"marketplace"`
	TotalProducts      int    `json:"totalProducts"`      // products listed on the target marketplace
	SharedProducts     int    `json:"sharedProducts"`     // also listed elsewhere
	CheaperCount       int    `json:"cheaperCount"`       // target beats the best price elsewhere
	MoreExpensiveCount int    `json:"moreExpensiveCount"` // target loses to the best price elsewhere
}

// CompareMarketplace counts, for each product the target marketplace lists,
// whether its best price beats or loses to the best price on any other
// marketplace. Equal prices count as neither.
func CompareMarketplace(offers []offer.Offer, marketplace string) Comparison {
	cmp := Comparison{Marketplace: marketplace}

	targetBest := make(map[string]float64)
	otherBest := make(map[string]float64)
	for _, o := range offers {
		if o.ProductKey == "" {
			continue
		}
		dest := otherBest
		if o.Marketplace == marketplace {
			dest = targetBest
		}
		if best, ok := dest[o.ProductKey]; !ok || o.Price < best {
			dest[o.ProductKey] = o.Price
		}
	}

	cmp.TotalProducts = len(targetBest)
	for key, price := range targetBest {
		elsewhere, ok := otherBest[key]
		if !ok {
			continue
		}
		cmp.SharedProducts++
		switch {
		case price < elsewhere:
			cmp.CheaperCount++
		case price > elsewhere:
			cmp.MoreExpensiveCount++
		}
	}
	return cmp
}

// Extremes holds the global cheapest and most expensive product lists, after
// per-product dedupe to the lowest price.
type Extremes struct {
	Cheapest      []offer.Offer `json:"cheapest"`
	MostExpensive []offer.Offer `json:"mostExpensive"`
}

// PriceExtremes dedupes every product to its lowest-priced offer and returns
// the n cheapest and n most expensive, cheapest ascending and most expensive
// descending.
func PriceExtremes(offers []offer.Offer, n int) Extremes {
	cheapestByProduct := grouping.MinByKey(offers, grouping.ByProduct)

	unique := make([]offer.Offer, 0, len(cheapestByProduct))
	for _, o := range cheapestByProduct {
		unique = append(unique, o)
	}
	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Price != unique[j].Price {
			return unique[i].Price < unique[j].Price
		}
		return unique[i].ProductKey < unique[j].ProductKey
	})

	ex := Extremes{}
	if len(unique) == 0 {
		return ex
	}
	if n > len(unique) {
		n = len(unique)
	}
	ex.Cheapest = append([]offer.Offer(nil), unique[:n]...)

	top := append([]offer.Offer(nil), unique[len(unique)-n:]...)
	for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
		top[i], top[j] = top[j], top[i]
	}
	ex.MostExpensive = top
	return ex
}
