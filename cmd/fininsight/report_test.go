package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fininsight/internal/config"
	"github.com/seenimoa/fininsight/internal/profile"
	"github.com/seenimoa/fininsight/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func TestRenderProfile_Full(t *testing.T) {
	p := &models.CountryFinancialProfile{
		Country: "India",
		Currency: models.CurrencyInfo{
			Country: "India", CurrencyName: "Indian Rupee", CurrencyCode: "INR",
			Source: models.SourceLocalMapping,
		},
		ExchangeRates: models.ExchangeRateSet{
			BaseCurrency: "INR",
			Provider:     "currencyapi.com",
			Rates:        map[string]float64{"EUR": 0.011, "USD": 0.012, "GBP": 0.0095},
		},
		Stocks: models.CountryStockProfile{
			Country: "India",
			Exchanges: []models.StockExchangeProfile{{
				Name: "National Stock Exchange of India", City: "Mumbai", Country: "India",
				HeadquartersAddress: "Exchange Plaza, Bandra Kurla Complex, Mumbai",
				Indices: []models.IndexQuote{
					{Symbol: "^NSEI", Name: "NIFTY 50", LastPrice: ptr(24567.456)},
					{Symbol: "^NSEBANK", Name: "NIFTY BANK"},
				},
			}},
		},
		MainExchangeHQAddress: ptr("Exchange Plaza, Bandra Kurla Complex, Mumbai"),
		GoogleMapsLink:        ptr("https://www.google.com/maps/search/?api=1&query=Exchange%20Plaza"),
	}

	var buf bytes.Buffer
	renderProfile(&buf, p)
	out := buf.String()

	assert.Contains(t, out, "India: Financial Profile")
	assert.Contains(t, out, "Indian Rupee (INR) [local_mapping]")
	assert.Contains(t, out, "1 INR, via currencyapi.com")
	assert.Contains(t, out, "24,567.46")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "query=Exchange%20Plaza")
	assert.NotContains(t, out, "⚠️")

	// Rates follow the fixed target order, not map order.
	usd := strings.Index(out, "USD")
	gbp := strings.Index(out, "GBP")
	eur := strings.Index(out, "EUR")
	require.True(t, usd >= 0 && gbp >= 0 && eur >= 0)
	assert.Less(t, usd, gbp)
	assert.Less(t, gbp, eur)
}

func TestRenderProfile_Errors(t *testing.T) {
	p := &models.CountryFinancialProfile{
		Country:       "Atlantis",
		Currency:      models.CurrencyInfo{Country: "Atlantis", Error: "no country data returned"},
		ExchangeRates: models.ExchangeRateSet{Error: "could not determine currency code; FX rates unavailable"},
		Stocks: models.CountryStockProfile{
			Country:   "Atlantis",
			Exchanges: []models.StockExchangeProfile{},
			Error:     "no stock exchange profile configured for this country",
		},
	}

	var buf bytes.Buffer
	renderProfile(&buf, p)
	out := buf.String()

	assert.Contains(t, out, "no country data returned")
	assert.Contains(t, out, "FX rates unavailable")
	assert.Contains(t, out, "no stock exchange profile configured")
	assert.NotContains(t, out, "Main Exchange HQ")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, &models.ProfileSummary{
		Country:     "Japan",
		Provider:    "ollama",
		Model:       "llama3.1:8b",
		Summary:     "Line one.\nLine two.",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	out := buf.String()
	assert.Contains(t, out, "ollama/llama3.1:8b, 2026-01-02T03:04:05Z")
	assert.Contains(t, out, "  Line one.\n  Line two.\n")

	buf.Reset()
	renderSummary(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestRenderCountries(t *testing.T) {
	var buf bytes.Buffer
	err := renderCountries(&buf, []profile.CatalogCountry{
		{Country: "India", CurrencyCode: "INR", Exchanges: []string{"NSE", "BSE"}},
		{Country: "Germany", Exchanges: []string{"Deutsche Börse"}},
		{Country: "Brazil", CurrencyCode: "BRL", Exchanges: []string{}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "COUNTRY"))
	assert.Contains(t, lines[1], "NSE, BSE")
	assert.Regexp(t, `^Germany\s+-\s+Deutsche Börse$`, lines[2])
	assert.Regexp(t, `^Brazil\s+BRL\s+-$`, lines[3])
}

func TestRenderStatus(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "gemini"
	cfg.Providers.Timeout = 10 * time.Second
	cfg.Providers.Concurrency = 8
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 8080
	cfg.Providers.CurrencyAPIKey = "cur_live_0123456789xyz"

	var buf bytes.Buffer
	renderStatus(&buf, cfg, "1.2.3", "abc123")
	out := buf.String()

	assert.Contains(t, out, "1.2.3 (abc123)")
	assert.Contains(t, out, "gemini")
	assert.Contains(t, out, "10s per call, 8 parallel quotes")
	assert.Contains(t, out, "cur...xyz")
	assert.NotContains(t, out, "cur_live_0123456789xyz")
	assert.Contains(t, out, "Gemini API Key:")
}
