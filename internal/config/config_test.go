package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"hemascan/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "hemascan")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.BlobDir != filepath.Join(wantData, "blobs") {
		t.Fatalf("unexpected blob dir: %q", cfg.Paths.BlobDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7421" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if got := cfg.Providers.Order; len(got) != 3 || got[0] != config.ProviderGemini || got[1] != config.ProviderGroq || got[2] != config.ProviderHuggingFace {
		t.Fatalf("unexpected provider order: %v", got)
	}
	if cfg.Providers.Groq.BaseURL == "" {
		t.Fatal("expected Groq base URL default")
	}
	if cfg.Providers.Gemini.TimeoutSeconds != 120 {
		t.Fatalf("unexpected provider timeout: %d", cfg.Providers.Gemini.TimeoutSeconds)
	}
	if cfg.Backend.Enabled {
		t.Fatal("expected backend disabled by default")
	}
	if !cfg.Corpus.Enabled || !cfg.Corpus.Consent {
		t.Fatal("expected corpus enabled with consent by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.BlobDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "hemascan.toml")

	type payload struct {
		Providers struct {
			Order []string `toml:"order"`
			Groq  struct {
				APIKey  string `toml:"api_key"`
				BaseURL string `toml:"base_url"`
				Model   string `toml:"model"`
			} `toml:"groq"`
		} `toml:"providers"`
		Backend struct {
			Enabled bool   `toml:"enabled"`
			BaseURL string `toml:"base_url"`
		} `toml:"backend"`
	}
	custom := payload{}
	custom.Providers.Order = []string{"groq"}
	custom.Providers.Groq.APIKey = "abc123"
	custom.Providers.Groq.BaseURL = "https://example.com/v1/chat/completions"
	custom.Providers.Groq.Model = "custom-model"
	custom.Backend.Enabled = true
	custom.Backend.BaseURL = "https://backend.example.com/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if got := cfg.Providers.Order; len(got) != 1 || got[0] != config.ProviderGroq {
		t.Fatalf("unexpected provider order: %v", got)
	}
	if cfg.Providers.Groq.APIKey != "abc123" {
		t.Fatalf("expected Groq key from file, got %q", cfg.Providers.Groq.APIKey)
	}
	if cfg.Providers.Groq.Model != "custom-model" {
		t.Fatalf("expected Groq model override, got %q", cfg.Providers.Groq.Model)
	}
	if cfg.Backend.BaseURL != "https://backend.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
}

func TestNormalizeProviderOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.Order = []string{" Gemini ", "groq", "", "GROQ", "gemini"}

	tempDir := t.TempDir()
	cfg.Paths.DataDir = tempDir
	cfg.Paths.BlobDir = filepath.Join(tempDir, "blobs")

	configPath := filepath.Join(tempDir, "hemascan.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{config.ProviderGemini, config.ProviderGroq}
	if len(loaded.Providers.Order) != len(want) {
		t.Fatalf("unexpected normalized order: %v", loaded.Providers.Order)
	}
	for i, name := range want {
		if loaded.Providers.Order[i] != name {
			t.Fatalf("unexpected normalized order: %v", loaded.Providers.Order)
		}
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "empty provider order",
			mutate:  func(c *config.Config) { c.Providers.Order = nil },
			wantErr: "providers.order",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *config.Config) { c.Providers.Order = []string{"openai"} },
			wantErr: "unknown provider",
		},
		{
			name: "groq key without base url",
			mutate: func(c *config.Config) {
				c.Providers.Groq.APIKey = "key"
				c.Providers.Groq.BaseURL = ""
			},
			wantErr: "providers.groq.base_url",
		},
		{
			name:    "backend enabled without base url",
			mutate:  func(c *config.Config) { c.Backend.Enabled = true },
			wantErr: "backend.base_url",
		},
		{
			name: "corpus enabled without consent",
			mutate: func(c *config.Config) {
				c.Corpus.Enabled = true
				c.Corpus.Consent = false
			},
			wantErr: "consent",
		},
		{
			name:    "missing data dir",
			mutate:  func(c *config.Config) { c.Paths.DataDir = "" },
			wantErr: "paths.data_dir",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("unexpected error %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestProviderSettingsLookup(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.HuggingFace.APIKey = "hf-key"

	settings, ok := cfg.ProviderSettings(" HuggingFace ")
	if !ok {
		t.Fatal("expected huggingface settings")
	}
	if settings.APIKey != "hf-key" {
		t.Fatalf("unexpected api key: %q", settings.APIKey)
	}
	if _, ok := cfg.ProviderSettings("openai"); ok {
		t.Fatal("expected lookup to fail for unknown provider")
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[providers]") {
		t.Fatal("expected sample config to contain providers section")
	}
}
