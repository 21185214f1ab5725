package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// CacheInspector exposes the evidence cache's size for readiness reporting.
type CacheInspector interface {
	Len() int
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db    *sqlx.DB
	cache CacheInspector
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(db *sqlx.DB, cache CacheInspector) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}

	body := gin.H{"status": "ok"}
	if h.cache != nil {
		body["cache_entries"] = h.cache.Len()
	}
	c.JSON(http.StatusOK, body)
}
