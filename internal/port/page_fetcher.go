package port

import "context"

// FetchResult carries a fetched page or resource.
type FetchResult struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// PageFetcher abstracts the network fetch of pages and media resources.
// Implementations must return an error for non-2xx responses.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}
