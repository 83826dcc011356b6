// Package profile assembles a CountryFinancialProfile from the currency,
// exchange-rate and stock resolvers.
package profile

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fininsight/internal/config"
	"github.com/seenimoa/fininsight/internal/currency"
	"github.com/seenimoa/fininsight/internal/datasource"
	"github.com/seenimoa/fininsight/internal/logging"
	"github.com/seenimoa/fininsight/internal/maps"
	"github.com/seenimoa/fininsight/internal/metrics"
	"github.com/seenimoa/fininsight/internal/stocks"
	"github.com/seenimoa/fininsight/pkg/models"
)

// MsgNoCurrencyCode is the rates error when the currency step found no code.
const MsgNoCurrencyCode = "could not determine currency code; FX rates unavailable"

// CurrencyResolver resolves a country to its currency.
type CurrencyResolver interface {
	Resolve(ctx context.Context, country string) models.CurrencyInfo
}

// RateFetcher fetches exchange rates for a currency code.
type RateFetcher interface {
	Fetch(ctx context.Context, currencyCode string) models.ExchangeRateSet
}

// StockResolver resolves a country to its exchanges and index prices.
type StockResolver interface {
	Resolve(ctx context.Context, country string) models.CountryStockProfile
}

// Aggregator builds country profiles. It holds no per-request state and is
// safe for concurrent use.
type Aggregator struct {
	currency CurrencyResolver
	rates    RateFetcher
	stocks   StockResolver
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMetrics records profile builds on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// New creates an Aggregator from its three resolvers.
func New(cur CurrencyResolver, rates RateFetcher, st StockResolver, opts ...Option) *Aggregator {
	a := &Aggregator{currency: cur, rates: rates, stocks: st}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrSilent(a.logger)
	return a
}

// NewFromConfig wires the production providers described by cfg.
func NewFromConfig(cfg config.ProvidersConfig, m *metrics.Metrics, logger *logging.Logger) *Aggregator {
	logger = logging.OrSilent(logger)

	common := []datasource.Option{
		datasource.WithHTTPClient(newUpstreamClient(cfg.Concurrency)),
		datasource.WithTimeout(cfg.Timeout),
		datasource.WithMetrics(m),
		datasource.WithLogger(logger),
	}
	withURL := func(u string) []datasource.Option {
		opts := append([]datasource.Option{}, common...)
		if u != "" {
			opts = append(opts, datasource.WithBaseURL(u))
		}
		return opts
	}

	rc := datasource.NewRestCountries(withURL(cfg.RestCountriesURL)...)
	fx := datasource.NewCurrencyAPI(cfg.CurrencyAPIKey, withURL(cfg.CurrencyAPIURL)...)
	yf := datasource.NewYFinance(withURL(cfg.YahooURL)...)

	return New(
		currency.NewResolver(rc, currency.WithResolverLogger(logger)),
		currency.NewRateFetcher(fx, logger),
		stocks.NewResolver(yf, stocks.WithConcurrency(cfg.Concurrency), stocks.WithLogger(logger)),
		WithMetrics(m),
		WithLogger(logger),
	)
}

// newUpstreamClient returns the client shared by all upstream providers. The
// idle pool per host matches the index fan-out so parallel quote requests
// reuse connections.
func newUpstreamClient(concurrency int) *http.Client {
	if concurrency <= 0 {
		concurrency = stocks.DefaultConcurrency
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = concurrency
	return &http.Client{Transport: tr}
}

// BuildProfile never fails; every problem ends up in an Error field of the
// section it belongs to. Currency→rates and stocks run concurrently.
func (a *Aggregator) BuildProfile(ctx context.Context, country string) *models.CountryFinancialProfile {
	start := time.Now()
	country = strings.TrimSpace(country)
	log := a.logger.With("request_id", uuid.NewString(), "country", country)
	log.Debug().Msg("building profile")

	p := &models.CountryFinancialProfile{Country: country}

	// The two branches write disjoint fields of p.
	var g errgroup.Group
	g.Go(func() error {
		p.Currency = a.currency.Resolve(ctx, country)
		if p.Currency.HasCode() {
			p.ExchangeRates = a.rates.Fetch(ctx, p.Currency.CurrencyCode)
		} else {
			p.ExchangeRates = models.ExchangeRateSet{Error: MsgNoCurrencyCode}
		}
		return nil
	})
	g.Go(func() error {
		p.Stocks = a.stocks.Resolve(ctx, country)
		return nil
	})
	_ = g.Wait()

	if len(p.Stocks.Exchanges) > 0 {
		if addr := strings.TrimSpace(p.Stocks.Exchanges[0].HeadquartersAddress); addr != "" {
			link := maps.BuildLink(addr)
			p.MainExchangeHQAddress = &addr
			p.GoogleMapsLink = &link
		}
	}

	a.metrics.ObserveProfile(p.Currency.Error != "", p.ExchangeRates.Error != "", p.Stocks.Error != "", time.Since(start))

	ev := log.Info()
	if p.Currency.Error != "" || p.ExchangeRates.Error != "" || p.Stocks.Error != "" {
		ev = log.Warn().
			Str("currency_error", p.Currency.Error).
			Str("rates_error", p.ExchangeRates.Error).
			Str("stocks_error", p.Stocks.Error)
	}
	ev.Str("currency", p.Currency.CurrencyCode).
		Int("rates", len(p.ExchangeRates.Rates)).
		Int("exchanges", len(p.Stocks.Exchanges)).
		Dur("elapsed", time.Since(start)).
		Msg("profile built")

	return p
}
