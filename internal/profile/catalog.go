package profile

import (
	"github.com/seenimoa/fininsight/internal/currency"
	"github.com/seenimoa/fininsight/internal/stocks"
)

// CatalogCountry is one country the static catalogs know about.
type CatalogCountry struct {
	Country      string   `json:"country"`
	Aliases      []string `json:"aliases,omitempty"`
	CurrencyCode string   `json:"currency_code,omitempty"`
	CurrencyName string   `json:"currency_name,omitempty"`
	Exchanges    []string `json:"exchanges"`
}

// Countries merges the embedded currency table and exchange catalog,
// exchange catalog order first, then currency-only countries.
func Countries() []CatalogCountry {
	cur := currency.DefaultCatalog()
	seen := make(map[string]bool)
	var out []CatalogCountry

	for _, e := range stocks.DefaultCatalog().Countries() {
		c := CatalogCountry{Country: e.Country, Aliases: e.Aliases, Exchanges: make([]string, 0, len(e.Exchanges))}
		for _, ex := range e.Exchanges {
			c.Exchanges = append(c.Exchanges, ex.Name)
		}
		if ce, ok := cur.Lookup(e.Country); ok {
			c.CurrencyCode = ce.Code
			c.CurrencyName = ce.Name
			seen[ce.Country] = true
		}
		out = append(out, c)
	}

	for _, ce := range cur.Entries() {
		if seen[ce.Country] {
			continue
		}
		out = append(out, CatalogCountry{
			Country:      ce.Country,
			Aliases:      ce.Aliases,
			CurrencyCode: ce.Code,
			CurrencyName: ce.Name,
			Exchanges:    []string{},
		})
	}
	return out
}
