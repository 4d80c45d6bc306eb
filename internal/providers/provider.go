package providers

import (
	"context"

	"hemascan/internal/scan"
)

// Provider is one vision-capable model endpoint. Analyze sends the prompt and
// images and returns the raw text payload; decoding into a scan.Result happens
// in the manager so all providers share one parser.
type Provider interface {
	// Name returns the configuration name of the provider (for example "gemini").
	Name() string
	// Available reports whether the provider is configured well enough to try.
	// Unavailable providers are skipped without counting as a failed attempt.
	Available() bool
	// Analyze performs a single analysis attempt. Implementations must not
	// retry internally; the fallback chain owns failure handling.
	Analyze(ctx context.Context, prompt string, images []scan.Image) (string, error)
}

func imagePayloads(images []scan.Image) [][]byte {
	payloads := make([][]byte, 0, len(images))
	for _, image := range images {
		payloads = append(payloads, image.Data)
	}
	return payloads
}
