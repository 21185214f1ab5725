package port

import (
	"context"

	"verilens/internal/domain"
)

// SearchEngine is one reverse-image-search backend. A failure (missing
// credentials, non-200 response, transport error) is returned as an error and
// must never affect sibling engines.
type SearchEngine interface {
	Name() string
	Search(ctx context.Context, imageBytes []byte) ([]domain.Match, error)
}
