// Package stocks maps a country to its major exchanges and enriches each
// listed index with its latest close.
package stocks

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/fininsight/pkg/utils"
)

//go:embed exchanges.yaml
var exchangesYAML []byte

// Index is a catalog index: ticker symbol and display name.
type Index struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

// Exchange is a catalog exchange record.
type Exchange struct {
	Name    string  `yaml:"name" json:"name"`
	City    string  `yaml:"city" json:"city"`
	Address string  `yaml:"address" json:"headquarters_address"`
	Indices []Index `yaml:"indices" json:"indices"`
}

// CountryEntry groups the exchanges of one canonical country.
type CountryEntry struct {
	Country   string     `yaml:"country" json:"country"`
	Aliases   []string   `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Exchanges []Exchange `yaml:"exchanges" json:"exchanges"`
}

// Catalog is an immutable country → exchanges table. Aliases are stored as
// pointers to the canonical entry, never as entries of their own.
type Catalog struct {
	entries []CountryEntry
	index   map[string]int
}

var defaultCatalog = mustLoadCatalog(exchangesYAML)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog { return defaultCatalog }

// LoadCatalog parses a YAML exchange catalog. Countries without exchanges,
// exchanges without indices and keys claimed twice are rejected.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Countries []CountryEntry `yaml:"countries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse exchange catalog: %w", err)
	}

	c := &Catalog{index: make(map[string]int)}
	for _, e := range doc.Countries {
		e.Country = strings.TrimSpace(e.Country)
		if len(e.Exchanges) == 0 {
			return nil, fmt.Errorf("exchange catalog: %q has no exchanges", e.Country)
		}
		for _, ex := range e.Exchanges {
			if len(ex.Indices) == 0 {
				return nil, fmt.Errorf("exchange catalog: %s/%s has no indices", e.Country, ex.Name)
			}
		}

		pos := len(c.entries)
		for _, key := range append([]string{e.Country}, e.Aliases...) {
			norm := utils.NormalizeCountry(key)
			if norm == "" {
				continue
			}
			if prev, dup := c.index[norm]; dup {
				return nil, fmt.Errorf("exchange catalog: key %q used by both %q and %q",
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

// Lookup resolves a country name or alias to its canonical entry.
func (c *Catalog) Lookup(country string) (CountryEntry, bool) {
	i, ok := c.index[utils.NormalizeCountry(country)]
	if !ok {
		return CountryEntry{}, false
	}
	return c.entries[i], true
}

// Countries returns the canonical entries in file order.
func (c *Catalog) Countries() []CountryEntry {
	out := make([]CountryEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
