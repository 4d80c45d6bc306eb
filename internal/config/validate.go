package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateCorpus(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.BlobDir == "" {
		return errors.New("paths.blob_dir must be set")
	}
	return nil
}

func (c *Config) validateProviders() error {
	if len(c.Providers.Order) == 0 {
		return errors.New("providers.order must list at least one provider")
	}
	for _, name := range c.Providers.Order {
		if _, ok := c.ProviderSettings(name); !ok {
			return fmt.Errorf("providers.order: unknown provider %q (expected %s, %s, or %s)",
				name, ProviderGemini, ProviderGroq, ProviderHuggingFace)
		}
	}
	for name, p := range map[string]Provider{
		ProviderGroq:        c.Providers.Groq,
		ProviderHuggingFace: c.Providers.HuggingFace,
	} {
		if p.APIKey != "" && p.BaseURL == "" {
			return fmt.Errorf("providers.%s.base_url must be set when an api key is configured", name)
		}
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.Enabled && c.Backend.BaseURL == "" {
		return errors.New("backend.base_url must be set when backend.enabled is true")
	}
	return nil
}

func (c *Config) validateCorpus() error {
	if c.Corpus.Enabled && !c.Corpus.Consent {
		return errors.New("corpus.enabled requires corpus.consent; disable the corpus or record consent")
	}
	return nil
}
