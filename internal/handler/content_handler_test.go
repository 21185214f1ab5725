package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"verilens/internal/domain"
	"verilens/internal/handler"
	"verilens/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(h gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h(c)
	return w
}

func TestContentHandler_AnalyzeContent_Success(t *testing.T) {
	mockSvc := new(mocks.MockContentService)
	h := handler.NewContentHandler(mockSvc)

	expected := &domain.PageAnalysis{
		TruthScore: 0.82,
		Confidence: 0.7,
		Analysis:   map[string]interface{}{"text": map[string]interface{}{"score": 0.8}},
		Warnings:   []string{},
	}
	mockSvc.On("AnalyzeURL", mock.Anything, "https://example.com/story").Return(expected)

	w := postJSON(h.AnalyzeContent, "/api/v1/content/analyze", `{"url":"https://example.com/story"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.InDelta(t, 0.82, data["truth_score"], 1e-9)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_AnalyzeContent_MissingURL(t *testing.T) {
	h := handler.NewContentHandler(new(mocks.MockContentService))

	w := postJSON(h.AnalyzeContent, "/api/v1/content/analyze", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestContentHandler_AnalyzeContent_RejectsNonHTTP(t *testing.T) {
	h := handler.NewContentHandler(new(mocks.MockContentService))

	w := postJSON(h.AnalyzeContent, "/api/v1/content/analyze", `{"url":"ftp://example.com/x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentHandler_AnalyzeContent_DegradedResultStillOK(t *testing.T) {
	mockSvc := new(mocks.MockContentService)
	h := handler.NewContentHandler(mockSvc)

	degraded := &domain.PageAnalysis{Error: "fetching the resource failed", Analysis: map[string]interface{}{}}
	mockSvc.On("AnalyzeURL", mock.Anything, "https://down.example.com").Return(degraded)

	w := postJSON(h.AnalyzeContent, "/api/v1/content/analyze", `{"url":"https://down.example.com"}`)

	// Partial/degraded analysis is a successful response with the error inside.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["error"])
}
