package config

// Provider names accepted in providers.order.
const (
	ProviderGemini      = "gemini"
	ProviderGroq        = "groq"
	ProviderHuggingFace = "huggingface"
)

const (
	defaultDataDir = "~/.local/share/hemascan"
	defaultBlobDir = "~/.local/share/hemascan/blobs"
	defaultLogDir  = "~/.local/share/hemascan/logs"
	defaultAPIBind = "127.0.0.1:7421"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultGeminiModel         = "gemini-2.0-flash"
	defaultGroqBaseURL         = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel           = "meta-llama/llama-4-scout-17b-16e-instruct"
	defaultHuggingFaceBaseURL  = "https://router.huggingface.co/v1/chat/completions"
	defaultHuggingFaceModel    = "Qwen/Qwen2.5-VL-72B-Instruct"
	defaultProviderTimeoutSecs = 120

	defaultBackendTimeoutSecs = 15
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			BlobDir: defaultBlobDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Providers: Providers{
			Order: []string{ProviderGemini, ProviderGroq, ProviderHuggingFace},
			Gemini: Provider{
				Model:          defaultGeminiModel,
				TimeoutSeconds: defaultProviderTimeoutSecs,
			},
			Groq: Provider{
				BaseURL:        defaultGroqBaseURL,
				Model:          defaultGroqModel,
				TimeoutSeconds: defaultProviderTimeoutSecs,
			},
			HuggingFace: Provider{
				BaseURL:        defaultHuggingFaceBaseURL,
				Model:          defaultHuggingFaceModel,
				TimeoutSeconds: defaultProviderTimeoutSecs,
			},
		},
		Backend: Backend{
			TimeoutSeconds: defaultBackendTimeoutSecs,
		},
		Corpus: Corpus{
			Enabled: true,
			Consent: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
