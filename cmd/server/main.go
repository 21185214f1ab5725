package main

import (
	"fmt"
	"log"
	"time"

	"verilens/internal/cache"
	"verilens/internal/config"
	"verilens/internal/fetch"
	"verilens/internal/forensics"
	"verilens/internal/genai"
	_ "verilens/internal/genai/gemini"
	_ "verilens/internal/genai/openai"
	"verilens/internal/handler"
	"verilens/internal/port"
	"verilens/internal/repository/postgres"
	"verilens/internal/reverse"
	"verilens/internal/reverse/bing"
	"verilens/internal/reverse/googlevision"
	"verilens/internal/router"
	"verilens/internal/service"
	"verilens/internal/video"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories and the evidence cache
	factCheckRepo := postgres.NewFactCheckRepo(db)
	evidenceCache := cache.NewFileCache(cfg.Cache.FilePath)
	defer func() {
		if err := evidenceCache.Flush(); err != nil {
			log.Printf("main: final cache flush failed: %v", err)
		}
	}()

	// Initialize the generative text model. A missing API key is fatal.
	model, err := genai.NewModel(cfg.GenAI.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize text model: %w", err)
	}

	// Initialize reverse-search engines
	var engines []port.SearchEngine
	if cfg.Reverse.GoogleAPIKey != "" {
		engines = append(engines, googlevision.NewClient(&cfg.Reverse))
	}
	if cfg.Reverse.BingAPIKey != "" {
		engines = append(engines, bing.NewClient(&cfg.Reverse))
	}
	searcher := reverse.NewSearcher(cfg.Reverse.RatePerSecond, engines...)

	// Initialize analyzers
	imageAnalyzer := forensics.NewAnalyzer()
	extractor := video.NewFFmpegExtractor(&cfg.Video)

	var faces port.FaceAnalyzer = video.NoFaceAnalyzer{}
	if cfg.Video.FaceAPIEndpoint != "" {
		faces, err = video.NewHTTPFaceAnalyzer(&cfg.Video)
		if err != nil {
			return fmt.Errorf("failed to initialize face analyzer: %w", err)
		}
	}
	var deepfake port.DeepfakeDetector = video.HeuristicDeepfakeDetector{}
	if cfg.Video.DeepfakeEndpoint != "" {
		deepfake, err = video.NewHTTPDeepfakeDetector(&cfg.Video)
		if err != nil {
			return fmt.Errorf("failed to initialize deepfake detector: %w", err)
		}
	}
	videoAnalyzer := video.NewAnalyzer(extractor, faces, deepfake, cfg.Video.FrameInterval)

	// Initialize services
	contentSvc := service.NewContentService(
		fetch.NewHTTPFetcher(),
		imageAnalyzer,
		videoAnalyzer,
		searcher,
		model,
		evidenceCache,
		factCheckRepo,
		service.ContentConfig{
			MaxUnitsPerPage: cfg.Analyzer.MaxImagesPerPage,
			UnitTimeout:     time.Duration(cfg.Analyzer.UnitTimeoutSecs) * time.Second,
			Concurrency:     cfg.Analyzer.Concurrency,
		},
	)
	factCheckSvc := service.NewFactCheckService(factCheckRepo)

	// Initialize handlers
	contentH := handler.NewContentHandler(contentSvc)
	mediaH := handler.NewMediaHandler(contentSvc, cfg.Analyzer.MaxMediaSizeMB)
	factCheckH := handler.NewFactCheckHandler(factCheckSvc)
	healthH := handler.NewHealthHandler(db, evidenceCache)

	// Setup router
	r := router.Setup(contentH, mediaH, factCheckH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
