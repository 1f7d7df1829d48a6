package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRejectsUnparseablePrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
	}{
		{"empty", ""},
		{"text", "abc"},
		{"negative", "-1.50"},
		{"infinity", "+Inf"},
		{"nan", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Normalize(RawOffer{EAN: "7891234567895", Marketplace: "Amazon", FinalPrice: tt.price})
			assert.False(t, ok)
		})
	}
}

func TestNormalizeRejectsMissingProductIdentity(t *testing.T) {
	_, ok := Normalize(RawOffer{FinalPrice: "10.00", Marketplace: "Amazon"})
	assert.False(t, ok)
}

func TestNormalizeFallsBackToSKU(t *testing.T) {
	o, ok := Normalize(RawOffer{SKU: "SKU-123", FinalPrice: "10.00", Marketplace: "Amazon"})
	require.True(t, ok)
	assert.Equal(t, "SKU-123", o.ProductKey)
}

func TestNormalizeFields(t *testing.T) {
	raw := RawOffer{
		SKU:         "SKU-1",
		EAN:         "7891234567895",
		Description: "Perfume Florata 75ml",
		Brand:       "O Boticário",
		Marketplace: "Amazon",
		SellerName:  "Loja XYZ",
		SellerID:    "xyz-001",
		FinalPrice:  "129.90",
		FloorPrice:  "99.90",
		URL:         "https://example.com/p/1",
		ImageURL:    "https://m.media-amazon.com/images/I/a.jpg",
		ObservedAt:  "2024-05-01T10:30:00",
		ChangeCount: "4",
	}

	o, ok := Normalize(raw)
	require.True(t, ok)
	assert.Equal(t, "7891234567895", o.ProductKey)
	assert.Equal(t, 129.90, o.Price)
	require.NotNil(t, o.FloorPrice)
	assert.Equal(t, 99.90, *o.FloorPrice)
	require.NotNil(t, o.Brand)
	assert.Equal(t, "O Boticário", *o.Brand)
	require.NotNil(t, o.URL)
	require.NotNil(t, o.ImageURL)
	assert.Equal(t, 4, o.ChangeCount)
	assert.Equal(t, 2024, o.LastUpdated.Year())
}

func TestValidHTTPURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"https", "https://example.com/x", "https://example.com/x"},
		{"http", "http://example.com", "http://example.com"},
		{"ftp", "ftp://example.com", ""},
		{"relative", "/products/1", ""},
		{"garbage", "://nope", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidHTTPURL(tt.input))
		})
	}
}

func TestValidImageURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"allowed host", "https://m.media-amazon.com/i.jpg", "https://m.media-amazon.com/i.jpg"},
		{"unlisted host", "https://evil.example.com/i.jpg", ""},
		{"protocol relative rewritten", "//res.cloudinary.com/i.jpg", "https://res.cloudinary.com/i.jpg"},
		{"protocol relative unlisted", "//evil.example.com/i.jpg", ""},
		{"wrong scheme", "ftp://m.media-amazon.com/i.jpg", ""},
		{"unparseable", "://x", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidImageURL(tt.input))
		})
	}
}

func TestNormalizeAllBackfillsURLs(t *testing.T) {
	raws := []RawOffer{
		{EAN: "A", Marketplace: "Amazon", FinalPrice: "10.00"},
		{EAN: "B", Marketplace: "Amazon", FinalPrice: "12.00", URL: "https://example.com/b"},
		{EAN: "C", Marketplace: "Amazon", FinalPrice: "bogus"},
	}
	urls := []URLRecord{
		{EAN: "A", Marketplace: "Amazon", URL: "https://example.com/a"},
		{EAN: "A", Marketplace: "Magalu", URL: "https://example.com/other"},
		{EAN: "B", Marketplace: "Amazon", URL: "https://example.com/ignored"},
	}

	offers := NormalizeAll(raws, urls)
	require.Len(t, offers, 2)

	require.NotNil(t, offers[0].URL)
	assert.Equal(t, "https://example.com/a", *offers[0].URL)
	// Offers that already carry a URL are not overwritten by the lookup.
	assert.Equal(t, "https://example.com/b", *offers[1].URL)
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, "epoca cosmeticos", FoldName("Época Cosméticos"))
	assert.Equal(t, "perfume", FoldName("PERFUME"))
}

func TestFilterApply(t *testing.T) {
	offers := []Offer{
		{ProductKey: "A", Marketplace: "Amazon", SellerID: "s1", Name: "Creme Hidratação"},
		{ProductKey: "B", Marketplace: "Magalu", SellerID: "s2", Name: "Shampoo"},
		{ProductKey: "C", Marketplace: "Amazon", SellerID: "s1", Name: "Sabonete"},
	}

	got := Filter{Marketplaces: []string{"Amazon"}}.Apply(offers)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ProductKey)

	got = Filter{NameText: "hidratacao"}.Apply(offers)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ProductKey)

	got = Filter{}.Apply(offers)
	assert.Len(t, got, 3)
}
