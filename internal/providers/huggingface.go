package providers

import (
	"context"
	"fmt"
	"strings"

	"hemascan/internal/config"
	"hemascan/internal/providers/chatvision"
	"hemascan/internal/scan"
)

// HuggingFaceProvider runs analysis through the Hugging Face inference router,
// which exposes the same OpenAI-compatible chat surface as Groq.
type HuggingFaceProvider struct {
	client *chatvision.Client
	apiKey string
}

// NewHuggingFaceProvider constructs the Hugging Face provider from its
// configuration block.
func NewHuggingFaceProvider(settings config.Provider, opts ...chatvision.Option) *HuggingFaceProvider {
	return &HuggingFaceProvider{
		client: chatvision.NewClient(chatvision.Config{
			APIKey:         settings.APIKey,
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			TimeoutSeconds: settings.TimeoutSeconds,
		}, opts...),
		apiKey: strings.TrimSpace(settings.APIKey),
	}
}

func (p *HuggingFaceProvider) Name() string { return config.ProviderHuggingFace }

func (p *HuggingFaceProvider) Available() bool { return p.apiKey != "" }

func (p *HuggingFaceProvider) Analyze(ctx context.Context, prompt string, images []scan.Image) (string, error) {
	payload, err := p.client.CompleteVision(ctx, prompt, imagePayloads(images))
	if err != nil {
		return "", fmt.Errorf("huggingface: %w", err)
	}
	return payload, nil
}

// HealthCheck verifies the API key and model respond.
func (p *HuggingFaceProvider) HealthCheck(ctx context.Context) error {
	if err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("huggingface: %w", err)
	}
	return nil
}
