package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricetrack/buybox-service/internal/buybox"
	"github.com/pricetrack/buybox-service/internal/export"
	"github.com/pricetrack/buybox-service/internal/stats"
)

// EvaluateRequest represents a buybox evaluation request
type EvaluateRequest struct {
	Sellers      []string `json:"sellers" binding:"required,min=1"`
	Marketplaces []string `json:"marketplaces,omitempty"`
}

// EvaluateResponse represents the evaluation result set with aggregates
type EvaluateResponse struct {
	Results    []buybox.Result    `json:"results"`
	Winning    []buybox.Result    `json:"winning"`
	Losing     []buybox.Result    `json:"losing"`
	Stats      stats.Stats        `json:"stats"`
	TopSellers []stats.SellerWins `json:"topSellers"`
}

// Evaluate handles buybox evaluation for a set of reference sellers
// POST /internal/buybox/evaluate
func Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loaded, _ := snapshot.Loaded()
	if !loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no offer data loaded"})
		return
	}

	start := time.Now()
	offers := snapshot.Offers()
	results := buybox.Evaluate(offers, toSet(req.Sellers), toSet(req.Marketplaces))
	winning, losing := buybox.SplitByOutcome(results)
	metrics.RecordEvaluation("evaluate", time.Since(start))

	c.JSON(http.StatusOK, EvaluateResponse{
		Results:    results,
		Winning:    winning,
		Losing:     losing,
		Stats:      stats.Build(results),
		TopSellers: stats.TopSellers(offers, 5),
	})
}

// WinnersResponse represents the global winners listing
type WinnersResponse struct {
	Winners []buybox.Winner `json:"winners"`
	Total   int             `json:"total"`
}

// ListWinners handles the global cheapest-per-product listing
// GET /internal/buybox
func ListWinners(c *gin.Context) {
	loaded, _ := snapshot.Loaded()
	if !loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no offer data loaded"})
		return
	}

	start := time.Now()
	winners := buybox.ListWinners(snapshot.Offers(), toSet(splitParam(c.Query("sellers"))))
	metrics.RecordEvaluation("winners", time.Since(start))

	c.JSON(http.StatusOK, WinnersResponse{Winners: winners, Total: len(winners)})
}

// Export handles the xlsx download of an evaluation result set
// GET /internal/buybox/export?sellers=a,b&status=winning|losing
func Export(c *gin.Context) {
	sellers := splitParam(c.Query("sellers"))
	if len(sellers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sellers parameter is required"})
		return
	}

	loaded, _ := snapshot.Loaded()
	if !loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no offer data loaded"})
		return
	}

	start := time.Now()
	results := buybox.Evaluate(snapshot.Offers(), toSet(sellers), toSet(splitParam(c.Query("marketplaces"))))
	winning, losing := buybox.SplitByOutcome(results)

	switch c.Query("status") {
	case "winning":
		results = winning
	case "losing":
		results = losing
	case "":
		results = append(winning, losing...)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be winning or losing"})
		return
	}

	data, err := export.Workbook(results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	metrics.RecordEvaluation("export", time.Since(start))

	filename := fmt.Sprintf("buybox-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
