package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seenimoa/fininsight/internal/datasource"
	"github.com/seenimoa/fininsight/internal/logging"
	"github.com/seenimoa/fininsight/pkg/models"
	"github.com/seenimoa/fininsight/pkg/utils"
)

// Result messages for lookups that reached the provider but found nothing usable.
const (
	MsgNoCountryData = "no country data returned"
	MsgNoCurrency    = "no currency information available"
)

// CountryLookup is the remote country reference used when the local table misses.
type CountryLookup interface {
	LookupByName(ctx context.Context, name string) ([]datasource.Country, error)
}

// Resolver maps a country name to its currency: local table first, remote
// lookup second.
type Resolver struct {
	catalog *Catalog
	lookup  CountryLookup
	logger  *logging.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCatalog replaces the embedded table.
func WithCatalog(c *Catalog) ResolverOption {
	return func(r *Resolver) { r.catalog = c }
}

// WithResolverLogger sets the logger.
func WithResolverLogger(l *logging.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver. lookup may be nil, in which case countries
// missing from the table resolve to an error.
func NewResolver(lookup CountryLookup, opts ...ResolverOption) *Resolver {
	r := &Resolver{catalog: DefaultCatalog(), lookup: lookup}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrSilent(r.logger)
	return r
}

// Resolve never fails: problems are reported in CurrencyInfo.Error.
func (r *Resolver) Resolve(ctx context.Context, country string) (info models.CurrencyInfo) {
	country = strings.TrimSpace(country)
	info.Country = country

	if e, ok := r.catalog.Lookup(country); ok {
		info.CurrencyCode = e.Code
		info.CurrencyName = e.Name
		info.Source = models.SourceLocalMapping
		return info
	}

	if r.lookup == nil {
		info.Error = "country lookup unavailable"
		return info
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Str("country", country).Msg("country lookup panicked")
			info = models.CurrencyInfo{Country: country, Error: fmt.Sprintf("country lookup failed: %v", p)}
		}
	}()

	matches, err := r.lookup.LookupByName(ctx, country)
	if err != nil {
		r.logger.Warn().Err(err).Str("country", country).Msg("remote currency lookup failed")
		info.Error = describeLookupError(err)
		return info
	}
	if len(matches) == 0 {
		info.Error = MsgNoCountryData
		return info
	}

	currencies := matches[0].Currencies
	if len(currencies) == 0 {
		info.Error = MsgNoCurrency
		return info
	}

	// First listed currency wins for multi-currency countries.
	first := currencies[0]
	code := utils.NormalizeCurrencyCode(first.Code)
	if !utils.IsCurrencyCode(code) {
		info.Error = MsgNoCurrency
		return info
	}
	info.CurrencyCode = code
	info.CurrencyName = first.Name
	info.Source = models.SourceRemoteLookup
	return info
}

func describeLookupError(err error) string {
	var httpErr *datasource.ErrHTTP
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("country lookup failed with status %d", httpErr.StatusCode)
	}
	return fmt.Sprintf("country lookup failed: %v", err)
}
