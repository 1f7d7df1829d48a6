package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricetrack/buybox-service/internal/buybox"
	"github.com/pricetrack/buybox-service/internal/offer"
)

func mkOffer(product, marketplace, seller string, price float64) offer.Offer {
	return offer.Offer{
		ProductKey:  product,
		Name:        "Product " + product,
		Marketplace: marketplace,
		SellerID:    seller,
		SellerName:  "Seller " + seller,
		Price:       price,
	}
}

func winResult(product, refMkt string, gap float64) buybox.Result {
	ref := mkOffer(product, refMkt, "ours", 10)
	return buybox.Result{
		ProductKey:     product,
		Status:         buybox.StatusWinning,
		ReferenceOffer: ref,
		WinningOffer:   ref,
		PriceGap:       gap,
	}
}

func lossResult(product, refMkt, winnerMkt string, gap float64) buybox.Result {
	return buybox.Result{
		ProductKey:     product,
		Status:         buybox.StatusLosing,
		ReferenceOffer: mkOffer(product, refMkt, "ours", 12),
		WinningOffer:   mkOffer(product, winnerMkt, "rival", 9),
		PriceGap:       gap,
	}
}

func TestBuildCountsAndAttribution(t *testing.T) {
	results := []buybox.Result{
		winResult("111", "Amazon", -2),
		winResult("222", "Amazon", -0.5),
		lossResult("333", "Amazon", "Magazine Luiza", 3),
		lossResult("444", "Magazine Luiza", "Amazon", 1.5),
	}

	s := Build(results)

	assert.Equal(t, 4, s.TotalOffered)
	assert.Equal(t, 2, s.WinningCount)
	assert.Equal(t, 2, s.LosingCount)
	assert.Equal(t, map[string]int{"Amazon": 2}, s.WinsByMarketplace)
	// losses keyed by the winner's marketplace, not ours
	assert.Equal(t, map[string]int{"Magazine Luiza": 1, "Amazon": 1}, s.LossesByMarketplace)
	assert.InDelta(t, 2.5, s.PotentialGain, 1e-9)
}

func TestBuildGainProjection(t *testing.T) {
	results := []buybox.Result{
		winResult("111", "Amazon", -2),
		winResult("222", "Amazon", -1),
	}

	s := Build(results)

	require.Len(t, s.GainProjection, 3)
	assert.Equal(t, GainScenario{Units: 10, Amount: 30}, s.GainProjection[0])
	assert.Equal(t, GainScenario{Units: 50, Amount: 150}, s.GainProjection[1])
	assert.Equal(t, GainScenario{Units: 100, Amount: 300}, s.GainProjection[2])
}

func TestBuildWinningAloneNoGap(t *testing.T) {
	ref := mkOffer("111", "Amazon", "ours", 10)
	s := Build([]buybox.Result{{
		ProductKey:     "111",
		Status:         buybox.StatusWinningAlone,
		ReferenceOffer: ref,
		WinningOffer:   ref,
		PriceGap:       0,
	}})

	assert.Equal(t, 1, s.WinningCount)
	assert.Zero(t, s.PotentialGain)
}

func TestBuildEmpty(t *testing.T) {
	s := Build(nil)

	assert.Zero(t, s.TotalOffered)
	assert.Empty(t, s.WinsByMarketplace)
	assert.Empty(t, s.LossesByMarketplace)
	require.Len(t, s.GainProjection, 3)
	assert.Zero(t, s.GainProjection[2].Amount)
}

func TestTopSellers(t *testing.T) {
	offers := []offer.Offer{
		// seller A wins products 1 and 2, seller B wins product 3
		mkOffer("1", "Amazon", "A", 10),
		mkOffer("1", "Amazon", "B", 12),
		mkOffer("2", "Amazon", "A", 8),
		mkOffer("3", "Amazon", "B", 5),
		mkOffer("3", "Magazine Luiza", "C", 6),
	}

	top := TopSellers(offers, 5)

	require.Len(t, top, 2)
	assert.Equal(t, SellerWins{SellerID: "A", SellerName: "Seller A", Wins: 2}, top[0])
	assert.Equal(t, SellerWins{SellerID: "B", SellerName: "Seller B", Wins: 1}, top[1])
}

func TestTopSellersLimitAndTies(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("1", "Amazon", "B", 10),
		mkOffer("2", "Amazon", "A", 10),
		mkOffer("3", "Amazon", "C", 10),
	}

	top := TopSellers(offers, 2)

	require.Len(t, top, 2)
	// equal win counts order by seller name
	assert.Equal(t, "A", top[0].SellerID)
	assert.Equal(t, "B", top[1].SellerID)
}

func TestSummarizeMarketplaces(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("1", "Amazon", "A", 10),
		mkOffer("2", "Amazon", "B", 20),
		mkOffer("1", "Magazine Luiza", "C", 12),
	}

	summaries := SummarizeMarketplaces(offers)

	require.Len(t, summaries, 2)

	// sorted by average ascending: Magazine Luiza (12) before Amazon (15)
	ml := summaries[0]
	assert.Equal(t, "Magazine Luiza", ml.Marketplace)
	assert.Equal(t, 1, ml.OfferCount)
	assert.Equal(t, 12.0, ml.MinPrice)
	assert.Equal(t, 12.0, ml.MaxPrice)

	amz := summaries[1]
	assert.Equal(t, "Amazon", amz.Marketplace)
	assert.Equal(t, 2, amz.OfferCount)
	assert.Equal(t, 10.0, amz.MinPrice)
	assert.Equal(t, 20.0, amz.MaxPrice)
	assert.InDelta(t, 15.0, amz.AvgPrice, 1e-9)
	require.NotNil(t, amz.Cheapest)
	assert.Equal(t, "A", amz.Cheapest.SellerID)
	require.NotNil(t, amz.Priciest)
	assert.Equal(t, "B", amz.Priciest.SellerID)
}

func TestCompareMarketplace(t *testing.T) {
	offers := []offer.Offer{
		// product 1: target cheaper
		mkOffer("1", "Amazon", "A", 10),
		mkOffer("1", "Magazine Luiza", "B", 12),
		// product 2: target more expensive
		mkOffer("2", "Amazon", "A", 20),
		mkOffer("2", "Magazine Luiza", "B", 15),
		// product 3: price tie, counts as neither
		mkOffer("3", "Amazon", "A", 5),
		mkOffer("3", "Magazine Luiza", "B", 5),
		// product 4: target only, not shared
		mkOffer("4", "Amazon", "A", 7),
	}

	cmp := CompareMarketplace(offers, "Amazon")

	assert.Equal(t, 4, cmp.TotalProducts)
	assert.Equal(t, 3, cmp.SharedProducts)
	assert.Equal(t, 1, cmp.CheaperCount)
	assert.Equal(t, 1, cmp.MoreExpensiveCount)
}

func TestCompareMarketplaceUsesBestPrices(t *testing.T) {
	offers := []offer.Offer{
		// target has two listings; its best (9) beats the best elsewhere (10)
		mkOffer("1", "Amazon", "A", 14),
		mkOffer("1", "Amazon", "B", 9),
		mkOffer("1", "Magazine Luiza", "C", 10),
		mkOffer("1", "Magazine Luiza", "D", 25),
	}

	cmp := CompareMarketplace(offers, "Amazon")

	assert.Equal(t, 1, cmp.CheaperCount)
	assert.Zero(t, cmp.MoreExpensiveCount)
}

func TestPriceExtremes(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("1", "Amazon", "A", 10),
		mkOffer("1", "Magazine Luiza", "B", 8), // dedupes product 1 to 8
		mkOffer("2", "Amazon", "A", 50),
		mkOffer("3", "Amazon", "A", 30),
	}

	ex := PriceExtremes(offers, 2)

	require.Len(t, ex.Cheapest, 2)
	assert.Equal(t, 8.0, ex.Cheapest[0].Price)
	assert.Equal(t, 30.0, ex.Cheapest[1].Price)

	require.Len(t, ex.MostExpensive, 2)
	assert.Equal(t, 50.0, ex.MostExpensive[0].Price)
	assert.Equal(t, 30.0, ex.MostExpensive[1].Price)
}

func TestPriceExtremesSmallInput(t *testing.T) {
	ex := PriceExtremes([]offer.Offer{mkOffer("1", "Amazon", "A", 10)}, 10)

	require.Len(t, ex.Cheapest, 1)
	require.Len(t, ex.MostExpensive, 1)

	assert.Empty(t, PriceExtremes(nil, 10).Cheapest)
}
