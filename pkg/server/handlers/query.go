package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/sitegraph"
	"github.com/soundprediction/sitegraph/pkg/server/dto"
	"github.com/soundprediction/sitegraph/pkg/types"
)

// QueryHandler handles graph query requests
type QueryHandler struct {
	graph sitegraph.Graph
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(g sitegraph.Graph) *QueryHandler {
	return &QueryHandler{graph: g}
}

// ListFacilities handles GET /facilities
func (h *QueryHandler) ListFacilities(c *gin.Context) {
	var q dto.FacilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error()})
		return
	}
	facilities, err := h.graph.ListFacilities(c.Request.Context(), sitegraph.FacilityFilter{
		Division: q.Division,
		State:    q.State,
		Status:   q.Status,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: facilities})
}

// ListExpansions handles GET /expansions
func (h *QueryHandler) ListExpansions(c *gin.Context) {
	var q dto.ExpansionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := types.ValidateDate(q.DateFrom); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: "date_from: " + err.Error()})
		return
	}
	if err := types.ValidateDate(q.DateTo); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: "date_to: " + err.Error()})
		return
	}

	expansions, err := h.graph.ListExpansions(c.Request.Context(), sitegraph.ExpansionFilter{
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: expansions})
}

// ListJobs handles GET /jobs
func (h *QueryHandler) ListJobs(c *gin.Context) {
	var q dto.JobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error()})
		return
	}

	jobs, err := h.graph.ListJobs(c.Request.Context(), q.FactoryOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: jobs})
}

// Stats handles GET /stats
func (h *QueryHandler) Stats(c *gin.Context) {
	stats, err := h.graph.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: stats})
}
