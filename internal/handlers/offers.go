package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pricetrack/buybox-service/internal/offer"
)

// OffersResponse represents the filtered offer listing
type OffersResponse struct {
	Offers []offer.Offer `json:"offers"`
	Total  int           `json:"total"`
}

// ListOffers handles the canonical offer listing with optional filters
// GET /internal/offers
func ListOffers(c *gin.Context) {
	loaded, _ := snapshot.Loaded()
	if !loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no offer data loaded"})
		return
	}

	filter := offer.Filter{
		ProductKeys:  splitParam(c.Query("product_key")),
		Marketplaces: splitParam(c.Query("marketplace")),
		SellerIDs:    splitParam(c.Query("seller_id")),
		Names:        splitParam(c.Query("name")),
		Brands:       splitParam(c.Query("brand")),
		NameText:     c.Query("q"),
	}

	offers := filter.Apply(snapshot.Offers())
	c.JSON(http.StatusOK, OffersResponse{Offers: offers, Total: len(offers)})
}

// URLsResponse represents the URL management listing
type URLsResponse struct {
	URLs  []offer.URLRecord `json:"urls"`
	Total int               `json:"total"`
}

// ListURLs handles the URL management listing
// GET /internal/urls
func ListURLs(c *gin.Context) {
	urls := snapshot.URLs()

	if mkt := c.Query("marketplace"); mkt != "" {
		filtered := urls[:0]
		for _, u := range urls {
			if u.Marketplace == mkt {
				filtered = append(filtered, u)
			}
		}
		urls = filtered
	}
	if active := c.Query("active"); active != "" {
		want := active == "true"
		filtered := urls[:0]
		for _, u := range urls {
			if u.Active == want {
				filtered = append(filtered, u)
			}
		}
		urls = filtered
	}

	c.JSON(http.StatusOK, URLsResponse{URLs: urls, Total: len(urls)})
}

// splitParam parses a comma-separated query parameter into a slice,
// returning nil for an empty parameter.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
