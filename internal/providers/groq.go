package providers

import (
	"context"
	"fmt"
	"strings"

	"hemascan/internal/config"
	"hemascan/internal/providers/chatvision"
	"hemascan/internal/scan"
)

// GroqProvider runs analysis on Groq's OpenAI-compatible chat endpoint.
type GroqProvider struct {
	client *chatvision.Client
	apiKey string
}

// NewGroqProvider constructs the Groq provider from its configuration block.
func NewGroqProvider(settings config.Provider, opts ...chatvision.Option) *GroqProvider {
	return &GroqProvider{
		client: chatvision.NewClient(chatvision.Config{
			APIKey:         settings.APIKey,
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			TimeoutSeconds: settings.TimeoutSeconds,
		}, opts...),
		apiKey: strings.TrimSpace(settings.APIKey),
	}
}

func (p *GroqProvider) Name() string { return config.ProviderGroq }

func (p *GroqProvider) Available() bool { return p.apiKey != "" }

func (p *GroqProvider) Analyze(ctx context.Context, prompt string, images []scan.Image) (string, error) {
	payload, err := p.client.CompleteVision(ctx, prompt, imagePayloads(images))
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	return payload, nil
}

// HealthCheck verifies the API key and model respond.
func (p *GroqProvider) HealthCheck(ctx context.Context) error {
	if err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("groq: %w", err)
	}
	return nil
}
