package providers

import (
	"context"
	"fmt"

	"hemascan/internal/config"
	"hemascan/internal/providers/gemini"
)

// HealthChecker is implemented by providers that can verify their credentials
// with a cheap live request.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BuildChain instantiates the provider chain from configuration, preserving
// the configured priority order.
func BuildChain(cfg *config.Config) ([]Provider, error) {
	chain := make([]Provider, 0, len(cfg.Providers.Order))
	for _, name := range cfg.Providers.Order {
		settings, ok := cfg.ProviderSettings(name)
		if !ok {
			return nil, fmt.Errorf("build provider chain: unknown provider %q", name)
		}
		switch name {
		case config.ProviderGemini:
			chain = append(chain, gemini.NewProvider(settings))
		case config.ProviderGroq:
			chain = append(chain, NewGroqProvider(settings))
		case config.ProviderHuggingFace:
			chain = append(chain, NewHuggingFaceProvider(settings))
		default:
			return nil, fmt.Errorf("build provider chain: unknown provider %q", name)
		}
	}
	return chain, nil
}
