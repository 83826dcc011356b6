// Package currency resolves a country to its official currency and fetches
// exchange rates for that currency against a fixed set of targets.
package currency

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/fininsight/pkg/utils"
)

//go:embed currencies.yaml
var currenciesYAML []byte

// Entry is one row of the country → currency table.
type Entry struct {
	Country string   `yaml:"country" json:"country"`
	Code    string   `yaml:"code" json:"currency_code"`
	Name    string   `yaml:"name" json:"currency_name"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Catalog is an immutable country → currency table with an alias index.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

var defaultCatalog = mustLoadCatalog(currenciesYAML)

// DefaultCatalog returns the embedded table.
func DefaultCatalog() *Catalog { return defaultCatalog }

// LoadCatalog parses a YAML currency table. Duplicate keys across countries
// and malformed codes are rejected.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Countries []Entry `yaml:"countries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse currency catalog: %w", err)
	}

	c := &Catalog{index: make(map[string]int)}
	for _, e := range doc.Countries {
		e.Code = utils.NormalizeCurrencyCode(e.Code)
		if !utils.IsCurrencyCode(e.Code) {
			return nil, fmt.Errorf("currency catalog: %q has invalid code %q", e.Country, e.Code)
		}
		pos := len(c.entries)
		for _, key := range append([]string{e.Country}, e.Aliases...) {
			norm := utils.NormalizeCountry(key)
			if norm == "" {
				continue
			}
			if prev, dup := c.index[norm]; dup {
				return nil, fmt.Errorf("currency catalog: key %q used by both %q and %q",
					norm, c.entries[prev].Country, e.Country)
			}
			c.index[norm] = pos
		}
		c.entries = append(c.entries, e)
	}
	return c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup finds a country by name or alias, ignoring case and surrounding space.
func (c *Catalog) Lookup(country string) (Entry, bool) {
	i, ok := c.index[utils.NormalizeCountry(country)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns the table in file order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
