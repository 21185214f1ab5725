package port

import (
	"context"

	"verilens/internal/domain"
)

// FactCheckRepository is the relational store of prior fact-check claims.
type FactCheckRepository interface {
	Search(ctx context.Context, text string, sourceURL string, maxResults int) ([]domain.FactCheck, error)
	Stats(ctx context.Context) (*domain.FactCheckStats, error)
}
