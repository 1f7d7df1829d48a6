// Package offer defines the canonical Offer record and the parse boundary
// that converts raw upstream feed records into it. No other package accepts
// raw feed data.
package offer

import "time"

// RawOffer is one record as returned by the upstream feed. Prices arrive as
// strings and URLs are unvalidated; Normalize is the only way to turn this
// into an Offer.
type RawOffer struct {
	SKU         string `json:"sku"`
	EAN         string `json:"ean"`
	Description string `json:"descricao"`
	Brand       string `json:"marca"`
	Marketplace string `json:"marketplace"`
	SellerName  string `json:"loja"`
	SellerID    string `json:"key_loja"`
	FinalPrice  string `json:"preco_final"`
	FloorPrice  string `json:"preco_pricing"`
	URL         string `json:"url"`
	ImageURL    string `json:"imagem"`
	ObservedAt  string `json:"data_hora"`
	ChangeCount string `json:"change_price"`
}

// Offer is one seller's listed price for one product on one marketplace at
// one point in time.
type Offer struct {
	ProductKey  string     `json:"productKey"` // EAN, falling back to SKU
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Brand       *string    `json:"brand"`
	Marketplace string     `json:"marketplace"`
	SellerID    string     `json:"sellerId"` // authoritative seller identity
	SellerName  string     `json:"sellerName"`
	Price       float64    `json:"price"`
	FloorPrice  *float64   `json:"floorPrice"` // seller-defined minimum, nil when unset
	URL         *string    `json:"url"`
	ImageURL    *string    `json:"imageUrl"`
	LastUpdated time.Time  `json:"lastUpdated"`
	ChangeCount int        `json:"changeCount"`
}

// URLRecord is one entry from the secondary URL-lookup endpoint, used to
// backfill offers whose feed record carried no usable URL.
type URLRecord struct {
	EAN         string `json:"ean"`
	Marketplace string `json:"marketplace"`
	URL         string `json:"url"`
	Active      bool   `json:"active"`
}

// PriceChange records one observed price movement for an offer key.
type PriceChange struct {
	ID          int64     `json:"id"`
	ProductKey  string    `json:"productKey"`
	Name        string    `json:"name"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	Marketplace string    `json:"marketplace"`
	OldPrice    float64   `json:"oldPrice"`
	NewPrice    float64   `json:"newPrice"`
	ObservedAt  time.Time `json:"observedAt"`
}

// Key identifies one (product, seller, marketplace) listing.
type Key struct {
	ProductKey  string
	SellerID    string
	Marketplace string
}

// ListingKey returns the composite identity of this offer's listing.
func (o Offer) ListingKey() Key {
	return Key{ProductKey: o.ProductKey, SellerID: o.SellerID, Marketplace: o.Marketplace}
}
