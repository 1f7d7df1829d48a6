package buybox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricetrack/buybox-service/internal/offer"
)

func set(ids ...string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func mkOffer(product, marketplace, seller string, price float64) offer.Offer {
	return offer.Offer{
		ProductKey:  product,
		Name:        "Produto " + product,
		Marketplace: marketplace,
		SellerID:    seller,
		SellerName:  seller,
		Price:       price,
	}
}

func TestEvaluateSimpleWin(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "ref", 10),
		mkOffer("A", "X", "comp", 12),
	}

	results := Evaluate(offers, set("ref"), nil)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, StatusWinning, r.Status)
	assert.Equal(t, "ref", r.WinningOffer.SellerID)
	require.NotNil(t, r.NextCompetitor)
	assert.Equal(t, "comp", r.NextCompetitor.SellerID)
	assert.InDelta(t, -2.0, r.PriceGap, 1e-9)
}

func TestEvaluateSimpleLoss(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "ref", 15),
		mkOffer("A", "X", "comp", 12),
	}

	results := Evaluate(offers, set("ref"), nil)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, StatusLosing, r.Status)
	assert.Equal(t, "comp", r.WinningOffer.SellerID)
	assert.Nil(t, r.NextCompetitor)
	assert.InDelta(t, 3.0, r.PriceGap, 1e-9)
}

func TestEvaluateWinningAlone(t *testing.T) {
	offers := []offer.Offer{mkOffer("A", "X", "ref", 10)}

	results := Evaluate(offers, set("ref"), nil)
	require.Len(t, results, 1)
	assert.Equal(t, StatusWinningAlone, results[0].Status)
	assert.Nil(t, results[0].NextCompetitor)
	assert.Zero(t, results[0].PriceGap)
}

func TestEvaluateTieGoesToReference(t *testing.T) {
	// Competitor encountered first at the same price: reference still wins.
	offers := []offer.Offer{
		mkOffer("A", "X", "comp", 10),
		mkOffer("A", "X", "ref", 10),
	}

	results := Evaluate(offers, set("ref"), nil)
	require.Len(t, results, 1)
	assert.Equal(t, StatusWinning, results[0].Status)
	assert.Equal(t, "ref", results[0].WinningOffer.SellerID)
	assert.InDelta(t, 0.0, results[0].PriceGap, 1e-9)
}

func TestEvaluateSkipsProductsWithoutReferenceOffer(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "comp", 10),
		mkOffer("B", "X", "ref", 20),
	}

	results := Evaluate(offers, set("ref"), nil)
	require.Len(t, results, 1)
	assert.Equal(t, "B", results[0].ProductKey)
}

func TestEvaluateEmitsOneResultPerReferenceMarketplace(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "ref", 10),
		mkOffer("A", "X", "comp", 9),
		mkOffer("A", "Y", "ref", 11),
		mkOffer("A", "Z", "comp", 5), // no reference offer in Z: not emitted
	}

	results := Evaluate(offers, set("ref"), nil)
	require.Len(t, results, 2)

	statuses := map[string]Status{}
	for _, r := range results {
		statuses[r.ReferenceOffer.Marketplace] = r.Status
	}
	assert.Equal(t, StatusLosing, statuses["X"])
	assert.Equal(t, StatusWinningAlone, statuses["Y"])
}

func TestEvaluatePoolsReferenceSellers(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "ref1", 14),
		mkOffer("A", "X", "ref2", 10),
		mkOffer("A", "X", "comp", 12),
	}

	results := Evaluate(offers, set("ref1", "ref2"), nil)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, StatusWinning, r.Status)
	// The pooled reference offer is the cheapest across both sellers.
	assert.Equal(t, "ref2", r.ReferenceOffer.SellerID)
	assert.InDelta(t, -2.0, r.PriceGap, 1e-9)
}

func TestEvaluateMarketplaceFilter(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "ref", 10),
		mkOffer("A", "Y", "ref", 11),
	}

	results := Evaluate(offers, set("ref"), set("Y"))
	require.Len(t, results, 1)
	assert.Equal(t, "Y", results[0].ReferenceOffer.Marketplace)
}

func TestEvaluateDegenerateInputs(t *testing.T) {
	assert.Empty(t, Evaluate(nil, set("ref"), nil))
	assert.Empty(t, Evaluate([]offer.Offer{mkOffer("A", "X", "s", 1)}, nil, nil))
}

func TestEvaluateIdempotent(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "ref", 10),
		mkOffer("A", "X", "comp", 10),
		mkOffer("B", "Y", "comp", 5),
		mkOffer("B", "Y", "ref", 5.5),
	}

	first := Evaluate(offers, set("ref"), nil)
	second := Evaluate(offers, set("ref"), nil)
	assert.Equal(t, first, second)
}

func TestSplitByOutcome(t *testing.T) {
	results := []Result{
		{Name: "B", Status: StatusWinning, PriceGap: -1},
		{Name: "A", Status: StatusWinningAlone},
		{Name: "C", Status: StatusLosing, PriceGap: 2},
		{Name: "D", Status: StatusLosing, PriceGap: 7},
	}

	winning, losing := SplitByOutcome(results)
	require.Len(t, winning, 2)
	require.Len(t, losing, 2)
	assert.Equal(t, "A", winning[0].Name)
	// Losses ordered worst-gap first.
	assert.Equal(t, "D", losing[0].Name)
}

func TestListWinners(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "s1", 10),
		mkOffer("A", "Y", "s2", 8),
		mkOffer("B", "X", "s3", 30),
	}

	winners := ListWinners(offers, nil)
	require.Len(t, winners, 2)
	assert.Equal(t, "s2", winners[0].Offer.SellerID)
	assert.Equal(t, 2, winners[0].Competitors)
	assert.Empty(t, winners[0].Status)
}

func TestListWinnersMarksNoOffer(t *testing.T) {
	offers := []offer.Offer{
		mkOffer("A", "X", "ref", 10),
		mkOffer("B", "X", "comp", 5),
	}

	winners := ListWinners(offers, set("ref"))
	require.Len(t, winners, 2)
	byKey := map[string]Winner{}
	for _, w := range winners {
		byKey[w.ProductKey] = w
	}
	assert.Empty(t, byKey["A"].Status)
	assert.Equal(t, StatusNoOffer, byKey["B"].Status)
}
