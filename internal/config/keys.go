package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "cur...abc"
}

// CheckAPIKeys returns the status of every credential the app can use.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("CurrencyAPI Key", cfg.Providers.CurrencyAPIKey, EnvPrefix+"_PROVIDERS_CURRENCYAPI_KEY", "CURRENCY_API_KEY"),
		checkKey("Gemini API Key", cfg.LLM.Gemini.APIKey, EnvPrefix+"_LLM_GEMINI_API_KEY", "GOOGLE_API_KEY"),
		checkKey("Groq (Llama 3) API Key", cfg.LLM.Llama3.APIKey, EnvPrefix+"_LLM_LLAMA3_API_KEY", "GROQ_API_KEY"),
		checkKey("Mistral API Key", cfg.LLM.Mistral.APIKey, EnvPrefix+"_LLM_MISTRAL_API_KEY", "MISTRAL_API_KEY"),
		checkKey("DeepSeek API Key", cfg.LLM.DeepSeek.APIKey, EnvPrefix+"_LLM_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value == "" {
		status.Source = KeySourceNone
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) == value {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
