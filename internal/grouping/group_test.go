package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricetrack/buybox-service/internal/offer"
)

func strptr(s string) *string { return &s }

func TestMinByKeyKeepsLowestPrice(t *testing.T) {
	offers := []offer.Offer{
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "s1", Price: 12.50},
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "s2", Price: 10.00},
		{ProductKey: "A", Marketplace: "Magalu", SellerID: "s1", Price: 9.90},
		{ProductKey: "B", Marketplace: "Amazon", SellerID: "s1", Price: 50.00},
	}

	byProduct := MinByKey(offers, ByProduct)
	require.Len(t, byProduct, 2)
	assert.Equal(t, 9.90, byProduct["A"].Price)

	byMkt := MinByKey(offers, ByProductMarketplace)
	require.Len(t, byMkt, 3)
	assert.Equal(t, "s2", byMkt["A\x00Amazon"].SellerID)
}

func TestMinByKeyTieKeepsFirstEncountered(t *testing.T) {
	offers := []offer.Offer{
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "first", Price: 10.00},
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "second", Price: 10.00},
	}

	got := MinByKey(offers, ByProduct)
	assert.Equal(t, "first", got["A"].SellerID)

	// Reversed input keeps the other offer: tie-breaking is input-order
	// dependent on purpose, so callers must fix the input order.
	reversed := []offer.Offer{offers[1], offers[0]}
	got = MinByKey(reversed, ByProduct)
	assert.Equal(t, "second", got["A"].SellerID)
}

func TestMinByKeyCollapsesDuplicateSellerListings(t *testing.T) {
	offers := []offer.Offer{
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "s1", Price: 12.00},
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "s1", Price: 11.00},
	}
	got := MinByKey(offers, ByProductSellerMarketplace)
	require.Len(t, got, 1)
	assert.Equal(t, 11.00, got["A\x00s1\x00Amazon"].Price)
}

func TestMinByKeySkipsOffersWithoutGroupableKey(t *testing.T) {
	offers := []offer.Offer{
		{ProductKey: "", Marketplace: "Amazon", Price: 1.00},
		{ProductKey: "A", Marketplace: "", Price: 2.00},
	}
	assert.Empty(t, MinByKey(offers, ByProductMarketplace))
}

func TestRepresentativeImagePriority(t *testing.T) {
	offers := []offer.Offer{
		{ProductKey: "A", Marketplace: "Amazon", ImageURL: strptr("https://m.media-amazon.com/a.jpg")},
		{ProductKey: "A", Marketplace: "Época Cosméticos", ImageURL: strptr("https://epocacosmeticos.vteximg.com.br/e.jpg")},
	}
	// Época outranks Amazon in the priority list regardless of input order.
	assert.Equal(t, "https://epocacosmeticos.vteximg.com.br/e.jpg", RepresentativeImage(offers))
}

func TestRepresentativeImageFallbacks(t *testing.T) {
	withAny := []offer.Offer{
		{ProductKey: "A", Marketplace: "Submarino", ImageURL: strptr("https://res.cloudinary.com/x.jpg")},
	}
	assert.Equal(t, "https://res.cloudinary.com/x.jpg", RepresentativeImage(withAny))

	none := []offer.Offer{{ProductKey: "A", Marketplace: "Submarino"}}
	assert.Equal(t, offer.PlaceholderImage, RepresentativeImage(none))
}

func TestProductGroups(t *testing.T) {
	offers := []offer.Offer{
		{ProductKey: "A", Name: "Produto A", Marketplace: "Amazon", SellerID: "s1", Price: 12.00},
		{ProductKey: "A", Name: "Produto A", Marketplace: "Amazon", SellerID: "s2", Price: 10.00},
		{ProductKey: "A", Name: "Produto A", Marketplace: "Magalu", SellerID: "s3", Price: 15.00},
	}

	groups := ProductGroups(offers)
	require.Len(t, groups, 1)
	pg := groups["A"]
	assert.Equal(t, "Produto A", pg.Name)
	require.Len(t, pg.Offers, 2)
	assert.Equal(t, "s2", pg.Offers["Amazon"].SellerID)
	assert.Equal(t, 15.00, pg.Offers["Magalu"].Price)
}

func TestSellerMatrix(t *testing.T) {
	offers := []offer.Offer{
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "s1", SellerName: "Zeta", Price: 10.00},
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "s1", SellerName: "Zeta", Price: 9.00},
		{ProductKey: "A", Marketplace: "Magalu", SellerID: "s2", SellerName: "Alfa", Price: 8.00},
		{ProductKey: "B", Marketplace: "Amazon", SellerID: "", SellerName: "anon", Price: 1.00},
	}

	matrix := SellerMatrix(offers)
	require.Len(t, matrix, 2)
	// Sorted by display name.
	assert.Equal(t, "Alfa", matrix[0].SellerName)
	assert.Equal(t, "Zeta", matrix[1].SellerName)
	assert.Equal(t, 9.00, matrix[1].Products["A"]["Amazon"].Price)
	assert.Equal(t, []string{"Amazon"}, matrix[1].Marketplaces)
}
