package bing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"verilens/internal/config"
	"verilens/internal/domain"
)

const apiBaseURL = "https://api.bing.microsoft.com/v7.0/images/visualsearch"

// Client implements port.SearchEngine using the Bing Visual Search API.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient creates a Bing visual search client.
func NewClient(cfg *config.ReverseConfig) *Client {
	endpoint := cfg.BingEndpoint
	if endpoint == "" {
		endpoint = apiBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   cfg.BingAPIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "bing" }

// Search submits the image as multipart form data and maps "PagesIncluding"
// actions to corroboration matches.
func (c *Client) Search(ctx context.Context, imageBytes []byte) ([]domain.Match, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: bing visual search API key not configured", domain.ErrEngineUnavailable)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "image")
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(imageBytes); err != nil {
		return nil, fmt.Errorf("writing image bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling bing API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bing API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody)
}

// bingResponse models the subset of the visual search response we consume.
type bingResponse struct {
	Tags []struct {
		Actions []struct {
			ActionType string `json:"actionType"`
			Data       struct {
				Value []struct {
					HostPageURL string  `json:"hostPageUrl"`
					Name        string  `json:"name"`
					Score       float64 `json:"score"`
				} `json:"value"`
			} `json:"data"`
		} `json:"actions"`
	} `json:"tags"`
}

func parseResponse(body []byte) ([]domain.Match, error) {
	var resp bingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding bing response: %w", err)
	}

	var matches []domain.Match
	for _, tag := range resp.Tags {
		for _, action := range tag.Actions {
			if action.ActionType != "PagesIncluding" && action.ActionType != "VisualSearch" {
				continue
			}
			for _, v := range action.Data.Value {
				matches = append(matches, domain.Match{URL: v.HostPageURL, Title: v.Name, Score: v.Score})
			}
		}
	}
	return matches, nil
}
