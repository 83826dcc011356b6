package datasource

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// CurrencyAPI fetches latest FX rates from currencyapi.com.
type CurrencyAPI struct {
	base
	apiKey string
}

// NewCurrencyAPI creates a CurrencyAPI client. An empty apiKey is allowed;
// Latest then fails with ErrNotConfigured without touching the network.
func NewCurrencyAPI(apiKey string, opts ...Option) *CurrencyAPI {
	return &CurrencyAPI{
		base:   newBase("currencyapi.com", "https://api.currencyapi.com/v3", opts),
		apiKey: strings.TrimSpace(apiKey),
	}
}

// Name returns the provider name.
func (c *CurrencyAPI) Name() string { return c.name }

// Configured reports whether a credential is set.
func (c *CurrencyAPI) Configured() bool { return c.apiKey != "" }

// RateValue is one entry of the provider's data map. Value is whatever the
// JSON carried (float64, string, nil...); coercion is left to the caller.
type RateValue struct {
	Code  string `json:"code"`
	Value any    `json:"value"`
}

type latestResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

// Latest returns the value of one unit of baseCode in each of targets, keyed
// by currency code as the provider returned them. Entries that are not
// objects are skipped; the rest of the map is still returned.
func (c *CurrencyAPI) Latest(ctx context.Context, baseCode string, targets []string) (rates map[string]RateValue, err error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	defer func() { c.observe(start, err, err == nil && len(rates) == 0) }()

	query := url.Values{}
	query.Set("base_currency", baseCode)
	query.Set("currencies", strings.Join(targets, ","))

	var resp latestResponse
	headers := map[string]string{"apikey": c.apiKey}
	if err := c.getJSON(ctx, "/latest", query, headers, &resp); err != nil {
		c.logger.Debug().Err(err).Str("base", baseCode).Msg("currencyapi request failed")
		return nil, err
	}

	rates = make(map[string]RateValue, len(resp.Data))
	for code, raw := range resp.Data {
		var v RateValue
		if jerr := json.Unmarshal(raw, &v); jerr != nil {
			c.logger.Debug().Err(jerr).Str("code", code).Msg("skipping malformed rate entry")
			continue
		}
		rates[code] = v
	}
	return rates, nil
}
