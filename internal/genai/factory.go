package genai

import (
	"fmt"

	"verilens/internal/config"
	"verilens/internal/port"
)

// ProviderFactory is a function that creates a TextModel from a provider config.
type ProviderFactory func(cfg *config.GenAIProviderConfig) (port.TextModel, error)

// registry of model provider factories, populated by init() in each provider
// package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a model provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewModel creates a TextModel from a provider config using the registered
// factory. A provider constructed without credentials fails here, at startup.
func NewModel(cfg *config.GenAIProviderConfig) (port.TextModel, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown genai provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
