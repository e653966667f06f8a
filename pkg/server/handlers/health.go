package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/sitegraph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	graph sitegraph.Graph
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(g sitegraph.Graph) *HealthHandler {
	return &HealthHandler{graph: g}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "sitegraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready - confirms the store answers reads.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ready",
		"service":   "sitegraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.graph == nil {
		response["status"] = "not_ready"
		response["error"] = "graph client not initialized"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	start := time.Now()
	if _, err := h.graph.Stats(c.Request.Context()); err != nil {
		response["status"] = "not_ready"
		response["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response["database"] = gin.H{
		"status":   "healthy",
		"duration": time.Since(start).String(),
	}

	c.JSON(http.StatusOK, response)
}
