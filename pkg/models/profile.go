// Package models defines the data model shared by the resolvers, the
// aggregator and the outer surfaces (CLI and HTTP API).
package models

import "time"

// CurrencySource identifies where a currency resolution came from.
type CurrencySource string

const (
	SourceLocalMapping CurrencySource = "local_mapping"
	SourceRemoteLookup CurrencySource = "remote_lookup"
)

// CurrencyInfo is the outcome of resolving a country to its currency.
// Exactly one of CurrencyCode or Error is set.
type CurrencyInfo struct {
	Country      string         `json:"country"`
	CurrencyName string         `json:"currency_name,omitempty"`
	CurrencyCode string         `json:"currency_code,omitempty"`
	Source       CurrencySource `json:"source,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// HasCode reports whether a currency code was resolved.
func (c CurrencyInfo) HasCode() bool { return c.CurrencyCode != "" }

// ExchangeRateSet holds the value of one unit of BaseCurrency in each target
// currency the provider answered for. Rates only ever contains finite,
// positive magnitudes.
type ExchangeRateSet struct {
	BaseCurrency string             `json:"base_currency,omitempty"`
	Rates        map[string]float64 `json:"rates,omitempty"`
	Provider     string             `json:"provider,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// IndexQuote is a market index with its latest close. LastPrice is nil when
// the market-data provider had no usable recent history.
type IndexQuote struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	LastPrice *float64 `json:"last_price"`
}

// StockExchangeProfile describes one exchange and its indices, in catalog order.
type StockExchangeProfile struct {
	Name                string       `json:"name"`
	City                string       `json:"city"`
	Country             string       `json:"country"`
	HeadquartersAddress string       `json:"headquarters_address"`
	Indices             []IndexQuote `json:"indices"`
}

// CountryStockProfile lists the exchanges configured for a country.
// Error is set if and only if Exchanges is empty.
type CountryStockProfile struct {
	Country   string                 `json:"country"`
	Exchanges []StockExchangeProfile `json:"exchanges"`
	Error     string                 `json:"error,omitempty"`
}

// CountryFinancialProfile is the aggregate returned for a single request.
type CountryFinancialProfile struct {
	Country               string              `json:"country"`
	Currency              CurrencyInfo        `json:"currency"`
	ExchangeRates         ExchangeRateSet     `json:"exchange_rates"`
	Stocks                CountryStockProfile `json:"stocks"`
	MainExchangeHQAddress *string             `json:"main_exchange_hq_address"`
	GoogleMapsLink        *string             `json:"google_maps_link"`
}

// ProfileSummary is a model-written narration of a CountryFinancialProfile.
type ProfileSummary struct {
	Country     string    `json:"country"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model,omitempty"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}
