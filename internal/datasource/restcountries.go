package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RestCountries looks countries up on restcountries.com (no key required).
type RestCountries struct {
	base
}

// NewRestCountries creates a RestCountries client.
func NewRestCountries(opts ...Option) *RestCountries {
	return &RestCountries{base: newBase("restcountries", "https://restcountries.com/v3.1", opts)}
}

// Name returns the provider name.
func (r *RestCountries) Name() string { return r.name }

// Currency is one entry of a country's currency mapping.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
}

// Country is one match returned by a name lookup. Currencies keeps the
// provider's order.
type Country struct {
	CommonName   string     `json:"common_name"`
	OfficialName string     `json:"official_name"`
	Currencies   []Currency `json:"currencies"`
}

type rcCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Currencies orderedCurrencies `json:"currencies"`
}

// LookupByName finds countries by full or partial name, requesting only the
// currency and name fields. An empty match list is returned as-is, not as
// an error; a 404 from the provider comes back as *ErrHTTP.
func (r *RestCountries) LookupByName(ctx context.Context, name string) (countries []Country, err error) {
	start := time.Now()
	defer func() { r.observe(start, err, err == nil && len(countries) == 0) }()

	name = strings.TrimSpace(name)
	query := url.Values{}
	query.Set("fullText", "false")
	query.Set("fields", "currencies,name")

	var raw []rcCountry
	if err := r.getJSON(ctx, "/name/"+url.PathEscape(name), query, nil, &raw); err != nil {
		r.logger.Debug().Err(err).Str("country", name).Msg("restcountries lookup failed")
		return nil, err
	}

	countries = make([]Country, 0, len(raw))
	for _, c := range raw {
		countries = append(countries, Country{
			CommonName:   c.Name.Common,
			OfficialName: c.Name.Official,
			Currencies:   []Currency(c.Currencies),
		})
	}
	return countries, nil
}

// orderedCurrencies decodes the {"INR": {"name": ..., "symbol": ...}}
// mapping while keeping key order, so "first currency" means the first one
// the provider listed.
type orderedCurrencies []Currency

func (o *orderedCurrencies) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("currencies: expected object, got %v", tok)
	}

	var out orderedCurrencies
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("currencies: unexpected key %v", keyTok)
		}
		var info struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		}
		if err := dec.Decode(&info); err != nil {
			return fmt.Errorf("currencies[%s]: %w", code, err)
		}
		out = append(out, Currency{Code: code, Name: info.Name, Symbol: info.Symbol})
	}
	*o = out
	return nil
}
