package googlevision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"verilens/internal/config"
	"verilens/internal/domain"
)

const apiBaseURL = "https://vision.googleapis.com/v1/images:annotate"

// Client implements port.SearchEngine using the Google Vision web-detection
// API.
type Client struct {
	apiKey     string
	endpoint   string
	maxResults int
	client     *http.Client
}

// NewClient creates a Google Vision search client.
func NewClient(cfg *config.ReverseConfig) *Client {
	endpoint := cfg.GoogleEndpoint
	if endpoint == "" {
		endpoint = apiBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults == 0 {
		maxResults = 10
	}
	return &Client{
		apiKey:     cfg.GoogleAPIKey,
		endpoint:   endpoint,
		maxResults: maxResults,
		client:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "google" }

// Search submits the image for web detection and maps web entities and
// matching pages to corroboration matches.
func (c *Client) Search(ctx context.Context, imageBytes []byte) ([]domain.Match, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: google vision API key not configured", domain.ErrEngineUnavailable)
	}

	reqBody := map[string]interface{}{
		"requests": []map[string]interface{}{
			{
				"image": map[string]interface{}{
					"content": base64.StdEncoding.EncodeToString(imageBytes),
				},
				"features": []map[string]interface{}{
					{"type": "WEB_DETECTION", "maxResults": c.maxResults},
				},
			},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling vision API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody)
}

// visionResponse models the subset of the annotate response we consume.
type visionResponse struct {
	Responses []struct {
		WebDetection struct {
			WebEntities []struct {
				Description string  `json:"description"`
				Score       float64 `json:"score"`
			} `json:"webEntities"`
			PagesWithMatchingImages []struct {
				URL       string  `json:"url"`
				PageTitle string  `json:"pageTitle"`
				Score     float64 `json:"score"`
			} `json:"pagesWithMatchingImages"`
		} `json:"webDetection"`
	} `json:"responses"`
}

func parseResponse(body []byte) ([]domain.Match, error) {
	var resp visionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding vision response: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, nil
	}

	detection := resp.Responses[0].WebDetection
	matches := make([]domain.Match, 0, len(detection.PagesWithMatchingImages)+len(detection.WebEntities))
	for _, page := range detection.PagesWithMatchingImages {
		matches = append(matches, domain.Match{URL: page.URL, Title: page.PageTitle, Score: page.Score})
	}
	for _, entity := range detection.WebEntities {
		matches = append(matches, domain.Match{Title: entity.Description, Score: entity.Score})
	}
	return matches, nil
}
