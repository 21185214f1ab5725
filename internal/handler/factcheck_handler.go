package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"verilens/internal/service"
)

// FactCheckHandler handles fact-check lookup endpoints.
type FactCheckHandler struct {
	factCheckService service.FactCheckService
}

// NewFactCheckHandler creates a new FactCheckHandler.
func NewFactCheckHandler(factCheckService service.FactCheckService) *FactCheckHandler {
	return &FactCheckHandler{factCheckService: factCheckService}
}

// Search handles GET /api/v1/factcheck/search
func (h *FactCheckHandler) Search(c *gin.Context) {
	text := c.Query("text")
	sourceURL := c.Query("source_url")
	maxResults, _ := strconv.Atoi(c.DefaultQuery("max_results", "0"))

	checks, err := h.factCheckService.Search(c.Request.Context(), text, sourceURL, maxResults)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, checks)
}

// Stats handles GET /api/v1/factcheck/stats
func (h *FactCheckHandler) Stats(c *gin.Context) {
	stats, err := h.factCheckService.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}
