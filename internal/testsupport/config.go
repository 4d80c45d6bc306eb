// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"hemascan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.BlobDir = filepath.Join(base, "blobs")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Paths.APIToken = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithProviderOrder overrides the provider fallback order.
func WithProviderOrder(order ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.Order = order
	}
}

// WithGroqKey sets the Groq API key and endpoint on the test config.
func WithGroqKey(key, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.Groq.APIKey = key
		if baseURL != "" {
			b.cfg.Providers.Groq.BaseURL = baseURL
		}
	}
}

// WithCorpus enables corpus collection on the test config.
func WithCorpus(consent bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Corpus.Enabled = true
		b.cfg.Corpus.Consent = consent
	}
}

// WithBackend points the backend sync at a test server.
func WithBackend(baseURL, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.Enabled = true
		b.cfg.Backend.BaseURL = baseURL
		b.cfg.Backend.APIToken = token
	}
}
