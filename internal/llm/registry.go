package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/fininsight/internal/config"
	"github.com/seenimoa/fininsight/internal/logging"
)

// Registry holds the narrators that could be built from configuration.
type Registry struct {
	narrators   map[string]Narrator
	unavailable map[string]error
	defaultName string
}

// NewRegistry builds every provider whose credential (or, for Ollama, URL)
// is configured. Providers that cannot be built are remembered with the
// reason so Get can report it.
func NewRegistry(ctx context.Context, cfg config.LLMConfig, logger *logging.Logger) *Registry {
	logger = logging.OrSilent(logger)
	r := &Registry{
		narrators:   make(map[string]Narrator),
		unavailable: make(map[string]error),
		defaultName: strings.ToLower(strings.TrimSpace(cfg.Provider)),
	}
	if r.defaultName == "" {
		r.defaultName = ProviderGemini
	}

	temp := cfg.Temperature
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if gp, err := NewGeminiProvider(ctx, cfg.Gemini.APIKey,
		WithGeminiModel(cfg.Gemini.Model),
		WithGeminiTemperature(temp),
		WithGeminiTimeout(timeout),
	); err != nil {
		r.unavailable[ProviderGemini] = err
	} else {
		r.Register(gp)
	}

	compat := []struct {
		name string
		cfg  config.OpenAICompatConfig
	}{
		{ProviderLlama3, cfg.Llama3},
		{ProviderMistral, cfg.Mistral},
		{ProviderDeepSeek, cfg.DeepSeek},
	}
	for _, c := range compat {
		p, err := NewOpenAICompatProvider(c.name, c.cfg.APIKey,
			WithOpenAIBaseURL(c.cfg.BaseURL),
			WithOpenAIModel(c.cfg.Model),
			WithOpenAITemperature(temp),
			WithOpenAIHTTPClient(newHTTPClient(timeout)),
		)
		if err != nil {
			r.unavailable[c.name] = err
			continue
		}
		r.Register(p)
	}

	if cfg.Ollama.URL != "" {
		r.Register(NewOllamaProvider(cfg.Ollama.URL,
			WithOllamaModel(cfg.Ollama.Model),
			WithOllamaTemperature(temp),
			WithOllamaHTTPClient(newHTTPClient(timeout)),
		))
	} else {
		r.unavailable[ProviderOllama] = fmt.Errorf("%s: %w", ProviderOllama, ErrNoAPIKey)
	}

	logger.Debug().Strs("providers", r.Names()).Str("default", r.defaultName).Msg("narrators configured")
	return r
}

// Register adds or replaces a narrator under its Name.
func (r *Registry) Register(n Narrator) {
	r.narrators[n.Name()] = n
	delete(r.unavailable, n.Name())
}

// Get returns the named narrator; an empty name selects the configured
// default. Unconfigured providers wrap ErrNoAPIKey, unsupported names
// wrap ErrUnknownProvider.
func (r *Registry) Get(name string) (Narrator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.defaultName
	}
	if n, ok := r.narrators[name]; ok {
		return n, nil
	}
	if err, ok := r.unavailable[name]; ok {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Default returns the configured default provider name.
func (r *Registry) Default() string { return r.defaultName }

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.narrators))
	for name := range r.narrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
