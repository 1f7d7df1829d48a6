package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pricetrack/buybox-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string     `json:"status"`
	Database   string     `json:"database"`
	Snapshot   string     `json:"snapshot"`
	LoadedAt   *time.Time `json:"loadedAt,omitempty"`
	OfferCount int        `json:"offerCount"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	// Check database connection
	if database.Pool() != nil {
		err := database.Status(c.Request.Context())
		if err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	if snapshot != nil {
		if loaded, at := snapshot.Loaded(); loaded {
			response.Snapshot = "loaded"
			response.LoadedAt = &at
			response.OfferCount = len(snapshot.Offers())
		} else {
			response.Snapshot = "empty"
		}
	}

	c.JSON(http.StatusOK, response)
}
