package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricetrack/buybox-service/internal/database"
	"github.com/pricetrack/buybox-service/internal/stats"
)

// MarketplaceStats handles the per-marketplace price summary
// GET /internal/stats/marketplaces
func MarketplaceStats(c *gin.Context) {
	loaded, _ := snapshot.Loaded()
	if !loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no offer data loaded"})
		return
	}

	start := time.Now()
	summaries := stats.SummarizeMarketplaces(snapshot.Offers())
	metrics.RecordEvaluation("stats", time.Since(start))

	c.JSON(http.StatusOK, gin.H{"marketplaces": summaries})
}

// CompareStats handles the target-marketplace comparison
// GET /internal/stats/compare?marketplace=X
func CompareStats(c *gin.Context) {
	marketplace := c.Query("marketplace")
	if marketplace == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "marketplace parameter is required"})
		return
	}

	loaded, _ := snapshot.Loaded()
	if !loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no offer data loaded"})
		return
	}

	c.JSON(http.StatusOK, stats.CompareMarketplace(snapshot.Offers(), marketplace))
}

// ExtremeStats handles the cheapest / most expensive top-N listing
// GET /internal/stats/extremes?limit=10
func ExtremeStats(c *gin.Context) {
	loaded, _ := snapshot.Loaded()
	if !loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no offer data loaded"})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, stats.PriceExtremes(snapshot.Offers(), limit))
}

// PriceChanges handles the paged price-change history
// GET /internal/price-changes
func PriceChanges(c *gin.Context) {
	if listChanges == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price change history not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := listChanges(c.Request.Context(), database.PriceChangeFilter{
		ProductKey:  c.Query("product_key"),
		Marketplace: c.Query("marketplace"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query price changes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": rows, "count": len(rows)})
}

// TriggerRefresh handles a forced feed refresh
// POST /internal/refresh
func TriggerRefresh(c *gin.Context) {
	count, err := refresher.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "feed refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": count})
}
