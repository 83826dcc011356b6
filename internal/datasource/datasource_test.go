package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fininsight/internal/metrics"
)

// fakeServer serves fn and counts requests.
func fakeServer(t *testing.T, fn http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fn(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestErrHTTPMessage(t *testing.T) {
	assert.Equal(t, "HTTP 404", (&ErrHTTP{StatusCode: 404}).Error())
	assert.Equal(t, "HTTP 401: bad key", (&ErrHTTP{StatusCode: 401, Body: "bad key"}).Error())
}

func TestDoGetTruncatesErrorBody(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 1000)))
	})

	_, err := doGet(context.Background(), srv.Client(), srv.URL, nil)
	var httpErr *ErrHTTP
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Len(t, httpErr.Body, MaxErrorBody)
}

func TestDoGetSendsHeaders(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		w.Write([]byte(`{}`))
	})

	body, err := doGet(context.Background(), srv.Client(), srv.URL, map[string]string{"apikey": "secret"})
	require.NoError(t, err)
	body.Close()
}

func TestGetJSONTimeout(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	b := newBase("slow", srv.URL, []Option{WithTimeout(20 * time.Millisecond)})
	var out map[string]any
	err := b.getJSON(context.Background(), "/", nil, nil, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRedactDropsQuery(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := doGet(context.Background(), http.DefaultClient, srv.URL+"/latest?apikey=topsecret", nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "topsecret")
}

// ── RestCountries ──

func TestRestCountriesKeepsCurrencyOrder(t *testing.T) {
	srv, calls := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/Bhutan", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("fullText"))
		assert.Equal(t, "currencies,name", r.URL.Query().Get("fields"))
		w.Write([]byte(`[{"name":{"common":"Bhutan","official":"Kingdom of Bhutan"},
			"currencies":{"BTN":{"name":"Bhutanese ngultrum","symbol":"Nu."},"INR":{"name":"Indian rupee","symbol":"₹"}}}]`))
	})

	rc := NewRestCountries(WithBaseURL(srv.URL))
	countries, err := rc.LookupByName(context.Background(), "  Bhutan ")
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.EqualValues(t, 1, calls.Load())

	c := countries[0]
	assert.Equal(t, "Bhutan", c.CommonName)
	assert.Equal(t, "Kingdom of Bhutan", c.OfficialName)
	require.Len(t, c.Currencies, 2)
	assert.Equal(t, Currency{Code: "BTN", Name: "Bhutanese ngultrum", Symbol: "Nu."}, c.Currencies[0])
	assert.Equal(t, "INR", c.Currencies[1].Code)
}

func TestRestCountriesEscapesName(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/Cote d'Ivoire", r.URL.Path)
		w.Write([]byte(`[]`))
	})

	countries, err := NewRestCountries(WithBaseURL(srv.URL)).LookupByName(context.Background(), "Cote d'Ivoire")
	require.NoError(t, err)
	assert.Empty(t, countries)
}

func TestRestCountriesMissingCurrencies(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":{"common":"Antarctica"},"currencies":{}},{"name":{"common":"Nowhere"}}]`))
	})

	countries, err := NewRestCountries(WithBaseURL(srv.URL)).LookupByName(context.Background(), "ant")
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Empty(t, countries[0].Currencies)
	assert.Empty(t, countries[1].Currencies)
}

func TestRestCountriesNotFoundStatus(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":404,"message":"Not Found"}`))
	})

	_, err := NewRestCountries(WithBaseURL(srv.URL)).LookupByName(context.Background(), "Atlantis")
	var httpErr *ErrHTTP
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestOrderedCurrenciesRejectsArray(t *testing.T) {
	var o orderedCurrencies
	assert.Error(t, o.UnmarshalJSON([]byte(`["USD"]`)))
	assert.NoError(t, o.UnmarshalJSON([]byte(`null`)))
	assert.Nil(t, o)
}

// ── CurrencyAPI ──

func TestCurrencyAPINotConfiguredSkipsNetwork(t *testing.T) {
	srv, calls := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {})

	api := NewCurrencyAPI("", WithBaseURL(srv.URL))
	assert.False(t, api.Configured())
	_, err := api.Latest(context.Background(), "INR", []string{"USD"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, calls.Load())
}

func TestCurrencyAPILatest(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("apikey"))
		assert.Empty(t, r.URL.Query().Get("apikey"))
		assert.Equal(t, "INR", r.URL.Query().Get("base_currency"))
		assert.Equal(t, "USD,GBP,EUR", r.URL.Query().Get("currencies"))
		w.Write([]byte(`{"meta":{"last_updated_at":"2026-10-14T23:59:59Z"},
			"data":{"USD":{"code":"USD","value":0.012},"GBP":{"code":"GBP","value":"0.0091"},"EUR":{"code":"EUR","value":null}}}`))
	})

	api := NewCurrencyAPI("key-123", WithBaseURL(srv.URL))
	rates, err := api.Latest(context.Background(), "INR", []string{"USD", "GBP", "EUR"})
	require.NoError(t, err)
	assert.Equal(t, 0.012, rates["USD"].Value)
	assert.Equal(t, "0.0091", rates["GBP"].Value)
	assert.Nil(t, rates["EUR"].Value)
	assert.Equal(t, "currencyapi.com", api.Name())
}

func TestCurrencyAPIErrorStatus(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid authentication credentials"}`))
	})

	_, err := NewCurrencyAPI("bad", WithBaseURL(srv.URL)).Latest(context.Background(), "USD", []string{"EUR"})
	var httpErr *ErrHTTP
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "Invalid authentication")
}

// ── Metrics wiring ──

func TestClientsRecordMetrics(t *testing.T) {
	srv, _ := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	m := metrics.New(prometheus.NewRegistry())

	_, err := NewRestCountries(WithBaseURL(srv.URL), WithMetrics(m)).LookupByName(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("restcountries", metrics.OutcomeEmpty)))
}
