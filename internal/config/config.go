package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Log      LogConfig
	Cache    CacheConfig
	Analyzer AnalyzerConfig
	GenAI    GenAIConfig
	Reverse  ReverseConfig
	Video    VideoConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the fact-check store.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheConfig holds evidence cache settings.
type CacheConfig struct {
	FilePath string `mapstructure:"file_path"`
}

// AnalyzerConfig holds orchestrator settings for page analysis.
type AnalyzerConfig struct {
	MaxImagesPerPage int   `mapstructure:"max_images_per_page"`
	UnitTimeoutSecs  int   `mapstructure:"unit_timeout_secs"`
	Concurrency      int   `mapstructure:"concurrency"`
	MaxMediaSizeMB   int64 `mapstructure:"max_media_size_mb"`
}

// GenAIProviderConfig holds settings for a single generative model provider.
type GenAIProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GenAIConfig holds generative text model settings.
type GenAIConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ProviderConfig returns the generative model provider config.
func (g *GenAIConfig) ProviderConfig() *GenAIProviderConfig {
	return &GenAIProviderConfig{
		Provider:     g.Provider,
		APIKey:       g.APIKey,
		DefaultModel: g.DefaultModel,
		TimeoutSecs:  g.TimeoutSecs,
	}
}

// ReverseConfig holds reverse-image-search engine settings.
type ReverseConfig struct {
	GoogleAPIKey   string  `mapstructure:"google_api_key"`
	GoogleEndpoint string  `mapstructure:"google_endpoint"`
	BingAPIKey     string  `mapstructure:"bing_api_key"`
	BingEndpoint   string  `mapstructure:"bing_endpoint"`
	MaxResults     int     `mapstructure:"max_results"`
	RatePerSecond  float64 `mapstructure:"rate_per_second"`
	TimeoutSecs    int     `mapstructure:"timeout_secs"`
}

// VideoConfig holds video decoding and frame analysis settings.
type VideoConfig struct {
	FFmpegPath       string `mapstructure:"ffmpeg_path"`
	FFprobePath      string `mapstructure:"ffprobe_path"`
	FrameInterval    int    `mapstructure:"frame_interval"`
	MaxSampledFrames int    `mapstructure:"max_sampled_frames"`
	FaceAPIEndpoint  string `mapstructure:"face_api_endpoint"`
	DeepfakeEndpoint string `mapstructure:"deepfake_endpoint"`
	TimeoutSecs      int    `mapstructure:"timeout_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the VERILENS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VERILENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "verilens")
	v.SetDefault("db.password", "verilens_secret")
	v.SetDefault("db.name", "verilens_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Cache defaults
	v.SetDefault("cache.file_path", "cache/analysis_cache.json")

	// Analyzer defaults
	v.SetDefault("analyzer.max_images_per_page", 3)
	v.SetDefault("analyzer.unit_timeout_secs", 100)
	v.SetDefault("analyzer.concurrency", 3)
	v.SetDefault("analyzer.max_media_size_mb", 50)

	// GenAI defaults
	v.SetDefault("genai.provider", "gemini")
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.default_model", "gemini-2.0-flash")
	v.SetDefault("genai.timeout_secs", 60)

	// Reverse search defaults
	v.SetDefault("reverse.google_api_key", "")
	v.SetDefault("reverse.google_endpoint", "")
	v.SetDefault("reverse.bing_api_key", "")
	v.SetDefault("reverse.bing_endpoint", "")
	v.SetDefault("reverse.max_results", 10)
	v.SetDefault("reverse.rate_per_second", 1.0)
	v.SetDefault("reverse.timeout_secs", 30)

	// Video defaults
	v.SetDefault("video.ffmpeg_path", "ffmpeg")
	v.SetDefault("video.ffprobe_path", "ffprobe")
	v.SetDefault("video.frame_interval", 10)
	v.SetDefault("video.max_sampled_frames", 30)
	v.SetDefault("video.face_api_endpoint", "")
	v.SetDefault("video.deepfake_endpoint", "")
	v.SetDefault("video.timeout_secs", 120)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "VERILENS_SERVER_PORT",
		"server.read_timeout":         "VERILENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "VERILENS_SERVER_WRITE_TIMEOUT",
		"server.environment":          "VERILENS_SERVER_ENVIRONMENT",
		"db.host":                     "VERILENS_DB_HOST",
		"db.port":                     "VERILENS_DB_PORT",
		"db.user":                     "VERILENS_DB_USER",
		"db.password":                 "VERILENS_DB_PASSWORD",
		"db.name":                     "VERILENS_DB_NAME",
		"db.sslmode":                  "VERILENS_DB_SSLMODE",
		"db.max_open":                 "VERILENS_DB_MAX_OPEN",
		"db.max_idle":                 "VERILENS_DB_MAX_IDLE",
		"log.level":                   "VERILENS_LOG_LEVEL",
		"log.format":                  "VERILENS_LOG_FORMAT",
		"cache.file_path":             "VERILENS_CACHE_FILE_PATH",
		"analyzer.max_images_per_page": "VERILENS_ANALYZER_MAX_IMAGES_PER_PAGE",
		"analyzer.unit_timeout_secs":   "VERILENS_ANALYZER_UNIT_TIMEOUT_SECS",
		"analyzer.concurrency":         "VERILENS_ANALYZER_CONCURRENCY",
		"analyzer.max_media_size_mb":   "VERILENS_ANALYZER_MAX_MEDIA_SIZE_MB",
		"genai.provider":              "VERILENS_GENAI_PROVIDER",
		"genai.api_key":               "VERILENS_GENAI_API_KEY",
		"genai.default_model":         "VERILENS_GENAI_DEFAULT_MODEL",
		"genai.timeout_secs":          "VERILENS_GENAI_TIMEOUT_SECS",
		"reverse.google_api_key":      "VERILENS_REVERSE_GOOGLE_API_KEY",
		"reverse.google_endpoint":     "VERILENS_REVERSE_GOOGLE_ENDPOINT",
		"reverse.bing_api_key":        "VERILENS_REVERSE_BING_API_KEY",
		"reverse.bing_endpoint":       "VERILENS_REVERSE_BING_ENDPOINT",
		"reverse.max_results":         "VERILENS_REVERSE_MAX_RESULTS",
		"reverse.rate_per_second":     "VERILENS_REVERSE_RATE_PER_SECOND",
		"reverse.timeout_secs":        "VERILENS_REVERSE_TIMEOUT_SECS",
		"video.ffmpeg_path":           "VERILENS_VIDEO_FFMPEG_PATH",
		"video.ffprobe_path":          "VERILENS_VIDEO_FFPROBE_PATH",
		"video.frame_interval":        "VERILENS_VIDEO_FRAME_INTERVAL",
		"video.max_sampled_frames":    "VERILENS_VIDEO_MAX_SAMPLED_FRAMES",
		"video.face_api_endpoint":     "VERILENS_VIDEO_FACE_API_ENDPOINT",
		"video.deepfake_endpoint":     "VERILENS_VIDEO_DEEPFAKE_ENDPOINT",
		"video.timeout_secs":          "VERILENS_VIDEO_TIMEOUT_SECS",
		"cors.allowed_origins":        "VERILENS_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if VERILENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("VERILENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Cache = CacheConfig{
		FilePath: v.GetString("cache.file_path"),
	}
	cfg.Analyzer = AnalyzerConfig{
		MaxImagesPerPage: v.GetInt("analyzer.max_images_per_page"),
		UnitTimeoutSecs:  v.GetInt("analyzer.unit_timeout_secs"),
		Concurrency:      v.GetInt("analyzer.concurrency"),
		MaxMediaSizeMB:   v.GetInt64("analyzer.max_media_size_mb"),
	}
	cfg.GenAI = GenAIConfig{
		Provider:     v.GetString("genai.provider"),
		APIKey:       v.GetString("genai.api_key"),
		DefaultModel: v.GetString("genai.default_model"),
		TimeoutSecs:  v.GetInt("genai.timeout_secs"),
	}
	cfg.Reverse = ReverseConfig{
		GoogleAPIKey:   v.GetString("reverse.google_api_key"),
		GoogleEndpoint: v.GetString("reverse.google_endpoint"),
		BingAPIKey:     v.GetString("reverse.bing_api_key"),
		BingEndpoint:   v.GetString("reverse.bing_endpoint"),
		MaxResults:     v.GetInt("reverse.max_results"),
		RatePerSecond:  v.GetFloat64("reverse.rate_per_second"),
		TimeoutSecs:    v.GetInt("reverse.timeout_secs"),
	}
	cfg.Video = VideoConfig{
		FFmpegPath:       v.GetString("video.ffmpeg_path"),
		FFprobePath:      v.GetString("video.ffprobe_path"),
		FrameInterval:    v.GetInt("video.frame_interval"),
		MaxSampledFrames: v.GetInt("video.max_sampled_frames"),
		FaceAPIEndpoint:  v.GetString("video.face_api_endpoint"),
		DeepfakeEndpoint: v.GetString("video.deepfake_endpoint"),
		TimeoutSecs:      v.GetInt("video.timeout_secs"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
