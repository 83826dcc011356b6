package stocks

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fininsight/internal/logging"
	"github.com/seenimoa/fininsight/pkg/models"
)

// MsgNoProfile is the error reported for countries missing from the catalog.
const MsgNoProfile = "no stock exchange profile configured for this country"

// DefaultConcurrency bounds parallel price fetches for one country.
const DefaultConcurrency = 8

// PriceSource returns the latest close for a symbol. A nil price with a nil
// error means no usable recent data.
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (*float64, error)
}

// Resolver builds CountryStockProfiles from the catalog and a PriceSource.
type Resolver struct {
	catalog     *Catalog
	prices      PriceSource
	concurrency int
	logger      *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCatalog replaces the embedded catalog.
func WithCatalog(c *Catalog) Option {
	return func(r *Resolver) { r.catalog = c }
}

// WithConcurrency bounds parallel price fetches. Non-positive values are ignored.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver. prices may be nil; every index then
// reports a nil price.
func NewResolver(prices PriceSource, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:     DefaultCatalog(),
		prices:      prices,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrSilent(r.logger)
	return r
}

// Resolve never fails. Every configured exchange and index is returned;
// indices whose price could not be fetched carry a nil LastPrice.
func (r *Resolver) Resolve(ctx context.Context, country string) models.CountryStockProfile {
	country = strings.TrimSpace(country)

	entry, ok := r.catalog.Lookup(country)
	if !ok || len(entry.Exchanges) == 0 {
		return models.CountryStockProfile{
			Country:   country,
			Exchanges: []models.StockExchangeProfile{},
			Error:     MsgNoProfile,
		}
	}

	exchanges := make([]models.StockExchangeProfile, len(entry.Exchanges))
	for i, ex := range entry.Exchanges {
		indices := make([]models.IndexQuote, len(ex.Indices))
		for j, idx := range ex.Indices {
			indices[j] = models.IndexQuote{Symbol: idx.Symbol, Name: idx.Name}
		}
		exchanges[i] = models.StockExchangeProfile{
			Name:                ex.Name,
			City:                ex.City,
			Country:             entry.Country,
			HeadquartersAddress: ex.Address,
			Indices:             indices,
		}
	}

	if r.prices != nil {
		// Each goroutine owns one IndexQuote slot and never returns an
		// error, so a failed symbol cannot cancel its siblings.
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i := range exchanges {
			for j := range exchanges[i].Indices {
				quote := &exchanges[i].Indices[j]
				g.Go(func() error {
					quote.LastPrice = r.latestPrice(ctx, quote.Symbol)
					return nil
				})
			}
		}
		_ = g.Wait()
	}

	return models.CountryStockProfile{Country: country, Exchanges: exchanges}
}

func (r *Resolver) latestPrice(ctx context.Context, symbol string) (price *float64) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Str("symbol", symbol).Msg("price fetch panicked")
			price = nil
		}
	}()

	price, err := r.prices.LatestClose(ctx, symbol)
	if err != nil {
		r.logger.Warn().Err(err).Str("symbol", symbol).Msg("price fetch failed")
		return nil
	}
	return price
}
