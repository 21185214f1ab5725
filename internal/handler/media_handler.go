package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"verilens/internal/domain"
	"verilens/internal/service"
)

// MediaHandler handles single-media verification endpoints.
type MediaHandler struct {
	contentService service.ContentService
	maxBytes       int64
}

// NewMediaHandler creates a new MediaHandler. maxSizeMB bounds uploads.
func NewMediaHandler(contentService service.ContentService, maxSizeMB int64) *MediaHandler {
	if maxSizeMB <= 0 {
		maxSizeMB = 50
	}
	return &MediaHandler{contentService: contentService, maxBytes: maxSizeMB << 20}
}

// VerifyImage handles POST /api/v1/media/verify/image
func (h *MediaHandler) VerifyImage(c *gin.Context) {
	data, contentType, ok := h.readUpload(c)
	if !ok {
		return
	}
	if !domain.AllowedImageTypes[contentType] {
		RespondError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
			"unsupported image type; allowed: jpeg, png, gif, webp")
		return
	}

	caption := c.PostForm("caption")
	reverseSearch := boolForm(c, "reverse_search", true)

	result, err := h.contentService.AnalyzeImage(c.Request.Context(), data, caption, reverseSearch)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// VerifyVideo handles POST /api/v1/media/verify/video
func (h *MediaHandler) VerifyVideo(c *gin.Context) {
	data, contentType, ok := h.readUpload(c)
	if !ok {
		return
	}
	if !domain.AllowedVideoTypes[contentType] {
		RespondError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
			"unsupported video type; allowed: mp4, webm, quicktime")
		return
	}

	analyzeFrames := boolForm(c, "analyze_frames", true)

	result, err := h.contentService.AnalyzeVideo(c.Request.Context(), data, analyzeFrames)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// readUpload pulls the multipart "file" field, enforcing the size limit.
func (h *MediaHandler) readUpload(c *gin.Context) (data []byte, contentType string, ok bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return nil, "", false
	}

	data, err = io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "READ_FAILED", "reading upload failed")
		return nil, "", false
	}
	if int64(len(data)) > h.maxBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return nil, "", false
	}

	return data, header.Header.Get("Content-Type"), true
}

func boolForm(c *gin.Context, field string, fallback bool) bool {
	raw := c.PostForm(field)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
