package api

import (
	"net/http"

	"github.com/seenimoa/fininsight/internal/config"
)

// ConfigView is the running configuration without credentials.
type ConfigView struct {
	Providers struct {
		Timeout          string `json:"timeout"`
		Concurrency      int    `json:"concurrency"`
		RestCountriesURL string `json:"restcountries_url"`
		CurrencyAPIURL   string `json:"currencyapi_url"`
		YahooURL         string `json:"yahoo_url"`
	} `json:"providers"`
	LLM struct {
		Provider    string            `json:"provider"`
		Temperature float64           `json:"temperature"`
		Models      map[string]string `json:"models"`
	} `json:"llm"`
	API     config.APIConfig     `json:"api"`
	Logging config.LoggingConfig `json:"logging"`
}

func newConfigView(cfg *config.Config) ConfigView {
	var v ConfigView
	v.Providers.Timeout = cfg.Providers.Timeout.String()
	v.Providers.Concurrency = cfg.Providers.Concurrency
	v.Providers.RestCountriesURL = cfg.Providers.RestCountriesURL
	v.Providers.CurrencyAPIURL = cfg.Providers.CurrencyAPIURL
	v.Providers.YahooURL = cfg.Providers.YahooURL

	v.LLM.Provider = cfg.LLM.Provider
	v.LLM.Temperature = cfg.LLM.Temperature
	v.LLM.Models = map[string]string{
		"gemini":   cfg.LLM.Gemini.Model,
		"llama3":   cfg.LLM.Llama3.Model,
		"mistral":  cfg.LLM.Mistral.Model,
		"deepseek": cfg.LLM.DeepSeek.Model,
		"ollama":   cfg.LLM.Ollama.Model,
	}

	v.API = cfg.API
	v.Logging = cfg.Logging
	return v
}

// handleGetConfig returns the running configuration. Credentials are never
// included; see /config/keys for their status.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    newConfigView(s.cfg),
	})
}

// handleKeyStatus reports which credentials are set and where they came from.
func (s *Server) handleKeyStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
