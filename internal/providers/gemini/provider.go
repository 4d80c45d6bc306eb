// Package gemini implements the Gemini analysis provider on top of Google's
// genai SDK. Unlike the OpenAI-compatible providers, images are sent as inline
// byte parts rather than base64 data URLs.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"hemascan/internal/config"
	"hemascan/internal/scan"
)

const requestTemperature = 0.3

// Provider runs analysis against the Gemini API.
type Provider struct {
	apiKey string
	model  string
}

// NewProvider constructs the Gemini provider from its configuration block.
func NewProvider(settings config.Provider) *Provider {
	return &Provider{
		apiKey: strings.TrimSpace(settings.APIKey),
		model:  strings.TrimSpace(settings.Model),
	}
}

func (p *Provider) Name() string { return config.ProviderGemini }

func (p *Provider) Available() bool { return p.apiKey != "" }

// Analyze sends the prompt and images in one generation request and returns
// the raw text payload.
func (p *Provider) Analyze(ctx context.Context, prompt string, images []scan.Image) (string, error) {
	if p.apiKey == "" {
		return "", errors.New("gemini: api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", err)
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, image := range images {
		parts = append(parts, genai.NewPartFromBytes(image.Data, "image/jpeg"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(requestTemperature)),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// HealthCheck verifies the API key works by issuing a minimal generation request.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if p.apiKey == "" {
		return errors.New("gemini: api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	if err != nil {
		return fmt.Errorf("gemini: create client: %w", err)
	}
	contents := []*genai.Content{
		genai.NewContentFromText(`Respond with the JSON {"ok":true} and nothing else.`, genai.RoleUser),
	}
	resp, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return fmt.Errorf("gemini: generate content: %w", err)
	}
	if !strings.Contains(resp.Text(), "ok") {
		return errors.New("gemini: unexpected health check response")
	}
	return nil
}
