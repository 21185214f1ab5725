package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"verilens/internal/service"
)

// ContentHandler handles whole-page analysis endpoints.
type ContentHandler struct {
	contentService service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

type analyzeContentRequest struct {
	URL string `json:"url" binding:"required"`
}

// AnalyzeContent handles POST /api/v1/content/analyze
func (h *ContentHandler) AnalyzeContent(c *gin.Context) {
	var req analyzeContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "url is required")
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "url must be an absolute http(s) URL")
		return
	}

	page := h.contentService.AnalyzeURL(c.Request.Context(), req.URL)
	RespondOK(c, page)
}
