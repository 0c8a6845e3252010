// Package ai talks to external text-completion services.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Completer returns a completion for a single prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider names.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderNone       = "none"
)

// Config selects and configures a provider.
type Config struct {
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	OpenRouterKey   string
	OpenRouterModel string
}

// New builds the configured completer. It returns nil, nil when AI replies are disabled.
func New(ctx context.Context, cfg Config) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderNone, "":
		return nil, nil
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOpenRouter:
		o, err := NewOpenRouter(OpenRouterConfig{
			APIKey: cfg.OpenRouterKey,
			Model:  cfg.OpenRouterModel,
		}, &http.Client{Timeout: 60 * time.Second})
		if err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
