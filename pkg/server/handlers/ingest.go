package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/sitegraph"
	"github.com/soundprediction/sitegraph/pkg/server/dto"
)

// IngestHandler handles data ingestion requests
type IngestHandler struct {
	graph  sitegraph.Graph
	logger *slog.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(g sitegraph.Graph, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{graph: g, logger: logger}
}

// AddItems handles POST /ingest/items. Bodies produced by flaky upstream
// extractors are run through a JSON repair pass before being rejected.
func (h *IngestHandler) AddItems(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error()})
		return
	}

	var req dto.IngestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(body))
		if rerr != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "invalid_request", Message: err.Error()})
			return
		}
		if err := json.Unmarshal([]byte(repaired), &req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "invalid_request", Message: err.Error()})
			return
		}
		h.logger.Warn("Repaired malformed ingest payload", "bytes", len(body))
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error()})
		return
	}

	stats, err := h.graph.Ingest(c.Request.Context(), req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "ingest_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Ingested %d items", len(req.Items)),
		Stats:   stats,
	})
}

// ClearData handles DELETE /ingest/clear
func (h *IngestHandler) ClearData(c *gin.Context) {
	if err := h.graph.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "clear_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}
