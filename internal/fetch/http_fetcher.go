package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"verilens/internal/domain"
	"verilens/internal/port"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "VeriLens/1.0 (+content analysis)"
	maxBodyBytes     = 64 << 20 // 64 MiB
)

// HTTPFetcher retrieves pages and media over plain HTTP(S).
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
}

// NewHTTPFetcherWithClient is used by tests to inject a custom client.
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: defaultUserAgent}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*port.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetchFailed, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %v", domain.ErrFetchFailed, url, err)
	}

	return &port.FetchResult{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
