package service

import (
	"context"
	"fmt"
	"strings"

	"verilens/internal/domain"
	"verilens/internal/port"
)

const (
	defaultFactCheckResults = 10
	maxFactCheckResults     = 50
)

// FactCheckService exposes lookups over the fact-check store.
type FactCheckService interface {
	Search(ctx context.Context, text, sourceURL string, maxResults int) ([]domain.FactCheck, error)
	Stats(ctx context.Context) (*domain.FactCheckStats, error)
}

type factCheckService struct {
	repo port.FactCheckRepository
}

// NewFactCheckService creates a new FactCheckService implementation.
func NewFactCheckService(repo port.FactCheckRepository) FactCheckService {
	return &factCheckService{repo: repo}
}

func (s *factCheckService) Search(ctx context.Context, text, sourceURL string, maxResults int) ([]domain.FactCheck, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is required", domain.ErrInvalidInput)
	}
	if maxResults <= 0 {
		maxResults = defaultFactCheckResults
	}
	if maxResults > maxFactCheckResults {
		maxResults = maxFactCheckResults
	}
	return s.repo.Search(ctx, text, sourceURL, maxResults)
}

func (s *factCheckService) Stats(ctx context.Context) (*domain.FactCheckStats, error) {
	return s.repo.Stats(ctx)
}
