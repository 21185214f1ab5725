package openai

import (
	"context"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"verilens/internal/config"
	"verilens/internal/domain"
	"verilens/internal/genai"
	"verilens/internal/port"
)

func init() {
	genai.RegisterProvider("openai", func(cfg *config.GenAIProviderConfig) (port.TextModel, error) {
		return NewModel(cfg)
	})
}

// Model implements port.TextModel using the OpenAI chat completion API.
type Model struct {
	client *goopenai.Client
	model  string
}

// NewModel creates an OpenAI-based text model. An empty API key is a fatal
// construction error.
func NewModel(cfg *config.GenAIProviderConfig) (*Model, error) {
	return newModel(cfg, "")
}

// NewModelWithBaseURL creates a model pointing at a custom base URL (for testing).
func NewModelWithBaseURL(cfg *config.GenAIProviderConfig, baseURL string) (*Model, error) {
	return newModel(cfg, baseURL)
}

func newModel(cfg *config.GenAIProviderConfig, baseURL string) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", domain.ErrModelNotConfigured)
	}
	model := cfg.DefaultModel
	if model == "" {
		model = goopenai.GPT3Dot5Turbo
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if cfg.TimeoutSecs > 0 {
		clientCfg.HTTPClient.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}

	return &Model{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Generate submits a text prompt and returns the model's free-form response.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: m.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
