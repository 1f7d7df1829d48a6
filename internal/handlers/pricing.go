package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricetrack/buybox-service/internal/offer"
	"github.com/pricetrack/buybox-service/internal/pricing"
	"github.com/pricetrack/buybox-service/internal/sink"
)

// SuggestRequest represents a price suggestion request
type SuggestRequest struct {
	FloorPrice          *float64 `json:"floorPrice,omitempty"`
	BestCompetitorPrice *float64 `json:"bestCompetitorPrice,omitempty"`
}

// Suggest handles price suggestion computation
// POST /internal/pricing/suggest
func Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, pricing.Suggest(req.FloorPrice, req.BestCompetitorPrice))
}

// PricingUpdateRequest represents a floor/buybox price update
type PricingUpdateRequest struct {
	ProductKey  string   `json:"ean" binding:"required"`
	SellerID    string   `json:"key_loja" binding:"required"`
	Marketplace string   `json:"marketplace" binding:"required"`
	FloorPrice  *float64 `json:"preco_pricing,omitempty"`
	BuyboxPrice *float64 `json:"preco_buybox,omitempty"`
}

// PricingUpdateResponse reports the outcome of an optimistic price update
type PricingUpdateResponse struct {
	Applied  *float64 `json:"applied"`
	Previous *float64 `json:"previous,omitempty"`
}

// UpdatePricing handles optimistic floor-price updates forwarded upstream
// PATCH /internal/pricing
func UpdatePricing(c *gin.Context) {
	var req PricingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FloorPrice != nil && *req.FloorPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "floor price must not be negative"})
		return
	}

	key := offer.Key{
		ProductKey:  req.ProductKey,
		SellerID:    req.SellerID,
		Marketplace: req.Marketplace,
	}
	result := updater.SetFloorPrice(c.Request.Context(), key, req.FloorPrice, req.BuyboxPrice)
	if !result.Ok() {
		metrics.RecordSinkError("pricing")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream pricing update failed"})
		return
	}

	c.JSON(http.StatusOK, PricingUpdateResponse{
		Applied:  result.Applied,
		Previous: result.Previous,
	})
}

// ActivationRequest represents a URL activation toggle
type ActivationRequest struct {
	ProductKey  string `json:"ean" binding:"required"`
	Marketplace string `json:"marketplace" binding:"required"`
	Active      *bool  `json:"active" binding:"required"`
}

// ToggleActivation handles optimistic URL activation toggles
// PATCH /internal/urls/activation
func ToggleActivation(c *gin.Context) {
	var req ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previous, matched := snapshot.SetURLActive(req.ProductKey, req.Marketplace, *req.Active)
	if !matched {
		c.JSON(http.StatusNotFound, gin.H{"error": "url record not found"})
		return
	}

	if err := activationSink.ToggleActivation(c.Request.Context(), []sink.ActivationToggle{sinkToggle(req)}); err != nil {
		// Roll back the local toggle so state mirrors upstream.
		snapshot.SetURLActive(req.ProductKey, req.Marketplace, previous)
		metrics.RecordSinkError("activation")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream activation update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": *req.Active, "previous": previous})
}

func sinkToggle(req ActivationRequest) sink.ActivationToggle {
	return sink.ActivationToggle{
		ProductKey:  req.ProductKey,
		Marketplace: req.Marketplace,
		Active:      *req.Active,
	}
}
