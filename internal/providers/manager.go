package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hemascan/internal/logging"
	"hemascan/internal/scan"
)

// ProviderFailure records one failed attempt in the fallback chain.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllProvidersError reports that every provider in the chain was tried (or
// skipped as unavailable) without producing a usable result.
type AllProvidersError struct {
	Failures []ProviderFailure
	Skipped  []string
}

func (e *AllProvidersError) Error() string {
	if len(e.Failures) == 0 {
		return "analysis failed: no providers available"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", failure.Provider, failure.Err))
	}
	return "analysis failed: all providers failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the last attempt's error, the most specific signal about what
// ultimately went wrong.
func (e *AllProvidersError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}

// Manager walks a fixed-priority provider chain. Providers are tried strictly
// in order, one attempt each, and the first decodable result wins. A provider
// that answers with malformed JSON counts as failed and the chain moves on.
type Manager struct {
	chain  []Provider
	logger *slog.Logger
}

// NewManager builds a manager over the given chain. Chain order is priority
// order and is preserved as given.
func NewManager(chain []Provider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		chain:  chain,
		logger: logging.NewComponentLogger(logger, "providers"),
	}
}

// Chain returns the provider names in priority order.
func (m *Manager) Chain() []string {
	names := make([]string, len(m.chain))
	for i, provider := range m.chain {
		names[i] = provider.Name()
	}
	return names
}

// Analyze runs the fallback chain for one capture session. On success the
// winning provider's name is recorded on the result. Context cancellation
// stops the chain immediately rather than burning attempts on a dead request.
func (m *Manager) Analyze(ctx context.Context, images []scan.Image, subject scan.Subject) (scan.Result, error) {
	if len(images) == 0 {
		return scan.Result{}, errors.New("analyze: at least one image required")
	}

	prompt := BuildPrompt(subject)
	chainErr := &AllProvidersError{}

	for _, provider := range m.chain {
		if err := ctx.Err(); err != nil {
			return scan.Result{}, fmt.Errorf("analyze: %w", err)
		}
		if !provider.Available() {
			m.logger.Debug("skipping unavailable provider", logging.String("provider", provider.Name()))
			chainErr.Skipped = append(chainErr.Skipped, provider.Name())
			continue
		}

		m.logger.Info("attempting provider",
			logging.String("provider", provider.Name()),
			logging.Int("images", len(images)))

		payload, err := provider.Analyze(ctx, prompt, images)
		if err != nil {
			m.logger.Warn("provider attempt failed",
				logging.String("provider", provider.Name()),
				logging.Error(err))
			chainErr.Failures = append(chainErr.Failures, ProviderFailure{Provider: provider.Name(), Err: err})
			continue
		}

		result, err := ParseResult(payload, provider.Name())
		if err != nil {
			m.logger.Warn("provider returned undecodable payload",
				logging.String("provider", provider.Name()),
				logging.Error(err))
			chainErr.Failures = append(chainErr.Failures, ProviderFailure{Provider: provider.Name(), Err: err})
			continue
		}

		m.logger.Info("provider analysis succeeded",
			logging.String("provider", provider.Name()),
			logging.String("stage", string(result.Stage)),
			logging.Float64("hemoglobin", result.HemoglobinEstimate))
		return result, nil
	}

	return scan.Result{}, chainErr
}
