package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrFetchFailed          = errors.New("failed to fetch URL")
	ErrAnalysisTimeout      = errors.New("analysis exceeded time budget")
	ErrEngineUnavailable    = errors.New("search engine unavailable")
	ErrModelNotConfigured   = errors.New("generative model API key is not configured")
	ErrDecodeFailed         = errors.New("media decode failed")
)
