package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fininsight/internal/config"
	"github.com/seenimoa/fininsight/internal/llm"
	"github.com/seenimoa/fininsight/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeBuilder struct {
	mu        sync.Mutex
	countries []string
}

func (f *fakeBuilder) BuildProfile(_ context.Context, country string) *models.CountryFinancialProfile {
	f.mu.Lock()
	f.countries = append(f.countries, country)
	f.mu.Unlock()
	return &models.CountryFinancialProfile{
		Country:  country,
		Currency: models.CurrencyInfo{Country: country, CurrencyCode: "JPY", CurrencyName: "Japanese Yen", Source: models.SourceLocalMapping},
		Stocks:   models.CountryStockProfile{Country: country, Exchanges: []models.StockExchangeProfile{}},
	}
}

type stubNarrator struct {
	reply string
	err   error
}

func (s stubNarrator) Name() string  { return "stub" }
func (s stubNarrator) Model() string { return "stub-1" }
func (s stubNarrator) Summarize(context.Context, llm.Prompt) (string, error) {
	return s.reply, s.err
}

type stubNarrators map[string]llm.Narrator

func (s stubNarrators) Get(name string) (llm.Narrator, error) {
	if name == "" {
		name = "stub"
	}
	if n, ok := s[name]; ok {
		return n, nil
	}
	if name == "gemini" {
		return nil, fmt.Errorf("gemini: %w", llm.ErrNoAPIKey)
	}
	return nil, fmt.Errorf("%w: %q", llm.ErrUnknownProvider, name)
}

func testServer(t *testing.T, narrators stubNarrators) (*Server, *fakeBuilder) {
	t.Helper()
	b := &fakeBuilder{}
	cfg := &config.Config{}
	cfg.Providers.CurrencyAPIKey = "cur_live_0123456789abcdef"
	cfg.LLM.Provider = "stub"
	srv := NewServer(cfg, WithProfileBuilder(b), WithNarrators(narrators), WithVersion("1.2.3"))
	return srv, b
}

func doGet(t *testing.T, srv *Server, target string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var resp APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// dataAs re-decodes the envelope's data into out.
func dataAs(t *testing.T, resp APIResponse, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// ════════════════════════════════════════════════════════════════════
// Endpoints
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, nil)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec, resp := doGet(t, srv, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.True(t, resp.Success)
		var data map[string]string
		dataAs(t, resp, &data)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "1.2.3", data["version"])
	}
}

func TestCountries(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec, resp := doGet(t, srv, "/api/v1/countries")
	require.Equal(t, http.StatusOK, rec.Code)

	var countries []struct {
		Country      string   `json:"country"`
		CurrencyCode string   `json:"currency_code"`
		Exchanges    []string `json:"exchanges"`
	}
	dataAs(t, resp, &countries)
	require.NotEmpty(t, countries)
	assert.Equal(t, "India", countries[0].Country)
	assert.Equal(t, "INR", countries[0].CurrencyCode)
}

func TestProfile(t *testing.T) {
	srv, b := testServer(t, nil)
	rec, resp := doGet(t, srv, "/api/v1/profile/South%20Korea%20")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	var p models.CountryFinancialProfile
	dataAs(t, resp, &p)
	assert.Equal(t, "South Korea", p.Country)
	assert.Equal(t, []string{"South Korea"}, b.countries)
	assert.Nil(t, p.GoogleMapsLink)
}

func TestProfileBlankCountry(t *testing.T) {
	srv, b := testServer(t, nil)
	rec, resp := doGet(t, srv, "/api/v1/profile/%20%20")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "country is required", resp.Error)
	assert.Empty(t, b.countries)
}

func TestSummary(t *testing.T) {
	srv, _ := testServer(t, stubNarrators{"stub": stubNarrator{reply: "The yen is a reserve currency."}})
	rec, resp := doGet(t, srv, "/api/v1/profile/Japan/summary")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data SummaryResponse
	dataAs(t, resp, &data)
	require.NotNil(t, data.Profile)
	require.NotNil(t, data.Summary)
	assert.Equal(t, "Japan", data.Profile.Country)
	assert.Equal(t, "The yen is a reserve currency.", data.Summary.Summary)
	assert.Equal(t, "stub", data.Summary.Provider)
}

func TestSummaryProviderErrors(t *testing.T) {
	srv, b := testServer(t, stubNarrators{"stub": stubNarrator{reply: "x"}})

	rec, resp := doGet(t, srv, "/api/v1/profile/Japan/summary?provider=gemini")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "API key not configured")

	rec, resp = doGet(t, srv, "/api/v1/profile/Japan/summary?provider=gpt-9")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "unsupported provider")

	assert.Empty(t, b.countries)
}

func TestSummaryNarratorFailure(t *testing.T) {
	srv, _ := testServer(t, stubNarrators{"stub": stubNarrator{err: errors.New("quota exhausted")}})
	rec, resp := doGet(t, srv, "/api/v1/profile/Japan/summary")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "quota exhausted")
}

func TestKeyStatusIsMasked(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec, resp := doGet(t, srv, "/api/v1/config/keys")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "cur_live_0123456789abcdef")

	var keys []config.KeyStatus
	dataAs(t, resp, &keys)
	require.Len(t, keys, 5)
	assert.True(t, keys[0].IsSet)
	assert.Equal(t, "cur...def", keys[0].Masked)
}

func TestConfigViewHasNoSecrets(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec, _ := doGet(t, srv, "/api/v1/config")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "cur_live_0123456789abcdef")
	assert.Contains(t, rec.Body.String(), `"provider":"stub"`)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := testServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/countries", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeaderAccepted(t *testing.T) {
	srv, _ := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// Full wiring against fake upstreams
// ════════════════════════════════════════════════════════════════════

func TestProfileAndMetricsEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":404,"message":"Not Found"}`))
	}))
	defer upstream.Close()

	cfg := &config.Config{}
	cfg.Providers.Timeout = 2 * time.Second
	cfg.Providers.Concurrency = 2
	cfg.Providers.RestCountriesURL = upstream.URL
	cfg.Providers.CurrencyAPIURL = upstream.URL
	cfg.Providers.YahooURL = upstream.URL
	srv := NewServer(cfg)

	rec, resp := doGet(t, srv, "/api/v1/profile/Atlantis")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.CountryFinancialProfile
	dataAs(t, resp, &p)
	assert.NotEmpty(t, p.Currency.Error)
	assert.Equal(t, "could not determine currency code; FX rates unavailable", p.ExchangeRates.Error)
	assert.NotEmpty(t, p.Stocks.Error)

	mrec := httptest.NewRecorder()
	srv.Router().ServeHTTP(mrec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, mrec.Code)
	body, _ := io.ReadAll(mrec.Body)
	assert.Contains(t, string(body), `fininsight_profiles_built_total{currency="error",rates="error",stocks="error"} 1`)
	assert.Contains(t, string(body), `fininsight_upstream_requests_total{outcome="error",provider="restcountries"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
