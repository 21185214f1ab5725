package router

import (
	"github.com/gin-gonic/gin"

	"verilens/internal/handler"
	"verilens/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	contentH *handler.ContentHandler,
	mediaH *handler.MediaHandler,
	factCheckH *handler.FactCheckHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	content := v1.Group("/content")
	content.POST("/analyze", contentH.AnalyzeContent)

	media := v1.Group("/media")
	media.POST("/verify/image", mediaH.VerifyImage)
	media.POST("/verify/video", mediaH.VerifyVideo)

	factcheck := v1.Group("/factcheck")
	factcheck.GET("/search", factCheckH.Search)
	factcheck.GET("/stats", factCheckH.Stats)

	return r
}
