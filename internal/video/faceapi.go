package video

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

// HTTPFaceAnalyzer implements port.FaceAnalyzer against a DeepFace-style
// attribute extraction service.
type HTTPFaceAnalyzer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPFaceAnalyzer creates a face analyzer client for the configured
// endpoint.
func NewHTTPFaceAnalyzer(cfg *config.VideoConfig) (*HTTPFaceAnalyzer, error) {
	if cfg.FaceAPIEndpoint == "" {
		return nil, fmt.Errorf("face analyzer endpoint not configured")
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HTTPFaceAnalyzer{
		endpoint: cfg.FaceAPIEndpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// AnalyzeFaces submits a frame and returns one attribute tuple per detected
// face. An empty result means no faces were found.
func (a *HTTPFaceAnalyzer) AnalyzeFaces(ctx context.Context, frameJPEG []byte) ([]domain.FaceAttributes, error) {
	reqBody := map[string]interface{}{
		"img":     "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frameJPEG),
		"actions": []string{"age", "gender", "race", "emotion"},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling face API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Results []struct {
			Age             int    `json:"age"`
			DominantGender  string `json:"dominant_gender"`
			DominantRace    string `json:"dominant_race"`
			DominantEmotion string `json:"dominant_emotion"`
		} `json:"results"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding face API response: %w", err)
	}

	faces := make([]domain.FaceAttributes, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		faces = append(faces, domain.FaceAttributes{
			Age:       r.Age,
			Gender:    r.DominantGender,
			Ethnicity: r.DominantRace,
			Emotion:   r.DominantEmotion,
		})
	}
	return faces, nil
}

// NoFaceAnalyzer is the degraded-mode analyzer used when no face API is
// configured: it detects nothing, so frame checks pass with the default
// confidence.
type NoFaceAnalyzer struct{}

func (NoFaceAnalyzer) AnalyzeFaces(ctx context.Context, frameJPEG []byte) ([]domain.FaceAttributes, error) {
	return nil, nil
}
