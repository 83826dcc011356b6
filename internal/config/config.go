// Package config handles configuration loading for fininsight.
// It supports YAML config files, a local .env file, and environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "FININSIGHT"

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ProvidersConfig holds settings for the upstream data providers.
type ProvidersConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"           yaml:"timeout"`     // per-call bound
	Concurrency      int           `mapstructure:"concurrency"       yaml:"concurrency"` // parallel index price fetches
	RestCountriesURL string        `mapstructure:"restcountries_url" yaml:"restcountries_url"`
	CurrencyAPIURL   string        `mapstructure:"currencyapi_url"   yaml:"currencyapi_url"`
	CurrencyAPIKey   string        `mapstructure:"currencyapi_key"   yaml:"currencyapi_key"`
	YahooURL         string        `mapstructure:"yahoo_url"         yaml:"yahoo_url"`
}

// LLMConfig holds narrator provider configuration.
type LLMConfig struct {
	Provider    string             `mapstructure:"provider"    yaml:"provider"` // "gemini", "llama3", "mistral", "deepseek", "ollama"
	Temperature float64            `mapstructure:"temperature" yaml:"temperature"`
	Timeout     time.Duration      `mapstructure:"timeout"     yaml:"timeout"`
	Gemini      GeminiConfig       `mapstructure:"gemini"      yaml:"gemini"`
	Llama3      OpenAICompatConfig `mapstructure:"llama3"      yaml:"llama3"`
	Mistral     OpenAICompatConfig `mapstructure:"mistral"     yaml:"mistral"`
	DeepSeek    OpenAICompatConfig `mapstructure:"deepseek"    yaml:"deepseek"`
	Ollama      OllamaConfig       `mapstructure:"ollama"      yaml:"ollama"`
}

// GeminiConfig holds Google Gemini settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model"   yaml:"model"`
}

// OpenAICompatConfig holds settings for an OpenAI-compatible chat endpoint.
type OpenAICompatConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model"    yaml:"model"`
}

// OllamaConfig holds local Ollama settings.
type OllamaConfig struct {
	URL   string `mapstructure:"url"   yaml:"url"`
	Model string `mapstructure:"model" yaml:"model"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// A .env file in the working directory is loaded first when present.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.fininsight/config.yaml
//  3. /etc/fininsight/config.yaml
//
// Environment variables override config file values.
// Format: FININSIGHT_<SECTION>_<KEY>, e.g. FININSIGHT_PROVIDERS_CURRENCYAPI_KEY
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fininsight"))
	v.AddConfigPath("/etc/fininsight")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Address returns the host:port the API server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets defaults for every key so AutomaticEnv can bind them all.
func setDefaults(v *viper.Viper) {
	// Providers
	v.SetDefault("providers.timeout", 10*time.Second)
	v.SetDefault("providers.concurrency", 8)
	v.SetDefault("providers.restcountries_url", "https://restcountries.com/v3.1")
	v.SetDefault("providers.currencyapi_url", "https://api.currencyapi.com/v3")
	v.SetDefault("providers.currencyapi_key", "")
	v.SetDefault("providers.yahoo_url", "https://query1.finance.yahoo.com")

	// LLM
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.llama3.api_key", "")
	v.SetDefault("llm.llama3.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.llama3.model", "llama-3.1-70b-versatile")
	v.SetDefault("llm.mistral.api_key", "")
	v.SetDefault("llm.mistral.base_url", "https://api.mistral.ai/v1")
	v.SetDefault("llm.mistral.model", "mistral-large-latest")
	v.SetDefault("llm.deepseek.api_key", "")
	v.SetDefault("llm.deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.deepseek.model", "deepseek-chat")
	v.SetDefault("llm.ollama.url", "")
	v.SetDefault("llm.ollama.model", "llama3.1:8b")

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// legacyVar is a bare environment variable name used by earlier
// deployments, the field it fills, that field's built-in default and the
// prefixed variable that supersedes it.
type legacyVar struct {
	name     string
	field    *string
	def      string
	prefixed string
}

// legacyEnv lists the legacy variables. They only fill a field that is
// empty or still at its default, and never when the prefixed variable for
// the same field is set, so FININSIGHT_* variables and config file values win.
func legacyEnv(cfg *Config) []legacyVar {
	p := EnvPrefix + "_"
	return []legacyVar{
		{"CURRENCY_API_KEY", &cfg.Providers.CurrencyAPIKey, "", p + "PROVIDERS_CURRENCYAPI_KEY"},
		{"LLM_PROVIDER", &cfg.LLM.Provider, "gemini", p + "LLM_PROVIDER"},
		{"GOOGLE_API_KEY", &cfg.LLM.Gemini.APIKey, "", p + "LLM_GEMINI_API_KEY"},
		{"GEMINI_MODEL_NAME", &cfg.LLM.Gemini.Model, "gemini-2.0-flash", p + "LLM_GEMINI_MODEL"},
		{"GROQ_API_KEY", &cfg.LLM.Llama3.APIKey, "", p + "LLM_LLAMA3_API_KEY"},
		{"GROQ_BASE_URL", &cfg.LLM.Llama3.BaseURL, "https://api.groq.com/openai/v1", p + "LLM_LLAMA3_BASE_URL"},
		{"LLAMA3_MODEL_NAME", &cfg.LLM.Llama3.Model, "llama-3.1-70b-versatile", p + "LLM_LLAMA3_MODEL"},
		{"MISTRAL_API_KEY", &cfg.LLM.Mistral.APIKey, "", p + "LLM_MISTRAL_API_KEY"},
		{"MISTRAL_BASE_URL", &cfg.LLM.Mistral.BaseURL, "https://api.mistral.ai/v1", p + "LLM_MISTRAL_BASE_URL"},
		{"MISTRAL_MODEL_NAME", &cfg.LLM.Mistral.Model, "mistral-large-latest", p + "LLM_MISTRAL_MODEL"},
		{"DEEPSEEK_API_KEY", &cfg.LLM.DeepSeek.APIKey, "", p + "LLM_DEEPSEEK_API_KEY"},
		{"DEEPSEEK_BASE_URL", &cfg.LLM.DeepSeek.BaseURL, "https://api.deepseek.com/v1", p + "LLM_DEEPSEEK_BASE_URL"},
		{"DEEPSEEK_MODEL_NAME", &cfg.LLM.DeepSeek.Model, "deepseek-chat", p + "LLM_DEEPSEEK_MODEL"},
	}
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_PROVIDERS_CURRENCYAPI_KEY"); key != "" {
		cfg.Providers.CurrencyAPIKey = key
	}
	if key := os.Getenv(EnvPrefix + "_LLM_GEMINI_API_KEY"); key != "" {
		cfg.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv(EnvPrefix + "_LLM_LLAMA3_API_KEY"); key != "" {
		cfg.LLM.Llama3.APIKey = key
	}
	if key := os.Getenv(EnvPrefix + "_LLM_MISTRAL_API_KEY"); key != "" {
		cfg.LLM.Mistral.APIKey = key
	}
	if key := os.Getenv(EnvPrefix + "_LLM_DEEPSEEK_API_KEY"); key != "" {
		cfg.LLM.DeepSeek.APIKey = key
	}

	for _, lv := range legacyEnv(cfg) {
		if os.Getenv(lv.prefixed) != "" {
			continue
		}
		if val := os.Getenv(lv.name); val != "" && (*lv.field == "" || *lv.field == lv.def) {
			*lv.field = val
		}
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
}

// loadDotEnv loads ./.env into the process environment. A missing file is fine.
func loadDotEnv() {
	_ = godotenv.Load()
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
