package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/seenimoa/fininsight/internal/config"
	"github.com/seenimoa/fininsight/internal/currency"
	"github.com/seenimoa/fininsight/internal/profile"
	"github.com/seenimoa/fininsight/pkg/models"
	"github.com/seenimoa/fininsight/pkg/utils"
)

const rule = "═══════════════════════════════════════"

// renderProfile prints a human-readable profile. Sections that failed show
// their error in place of data.
func renderProfile(w io.Writer, p *models.CountryFinancialProfile) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s: Financial Profile\n", p.Country)
	fmt.Fprintln(w, rule)

	// Currency
	if p.Currency.HasCode() {
		fmt.Fprintf(w, "  Currency:  %s (%s) [%s]\n", p.Currency.CurrencyName, p.Currency.CurrencyCode, p.Currency.Source)
	} else {
		fmt.Fprintf(w, "  Currency:  ⚠️  %s\n", p.Currency.Error)
	}
	fmt.Fprintln(w)

	// Rates, in target order
	if p.ExchangeRates.Error != "" {
		fmt.Fprintf(w, "  Exchange Rates:  ⚠️  %s\n", p.ExchangeRates.Error)
	} else {
		fmt.Fprintf(w, "  Exchange Rates (1 %s, via %s):\n", p.ExchangeRates.BaseCurrency, p.ExchangeRates.Provider)
		for _, code := range currency.Targets {
			if rate, ok := p.ExchangeRates.Rates[code]; ok {
				fmt.Fprintf(w, "    %-5s %s\n", code, utils.FormatRate(rate))
			}
		}
	}
	fmt.Fprintln(w)

	// Exchanges
	if p.Stocks.Error != "" {
		fmt.Fprintf(w, "  Stock Exchanges:  ⚠️  %s\n", p.Stocks.Error)
	} else {
		fmt.Fprintln(w, "  Stock Exchanges:")
		for _, ex := range p.Stocks.Exchanges {
			fmt.Fprintf(w, "    %s (%s)\n", ex.Name, ex.City)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
			for _, q := range ex.Indices {
				fmt.Fprintf(tw, "      %s\t%s\t%s\t\n", q.Name, q.Symbol, utils.FormatPrice(q.LastPrice))
			}
			tw.Flush()
		}
	}

	if p.MainExchangeHQAddress != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Main Exchange HQ:  %s\n", *p.MainExchangeHQAddress)
		if p.GoogleMapsLink != nil {
			fmt.Fprintf(w, "  Map:               %s\n", *p.GoogleMapsLink)
		}
	}
	fmt.Fprintln(w, rule)
}

func renderSummary(w io.Writer, s *models.ProfileSummary) {
	if s == nil {
		return
	}
	model := s.Provider
	if s.Model != "" {
		model += "/" + s.Model
	}
	fmt.Fprintf(w, "\n  Summary (%s, %s):\n\n", model, s.GeneratedAt.Format(time.RFC3339))
	for _, line := range strings.Split(strings.TrimSpace(s.Summary), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func renderCountries(w io.Writer, countries []profile.CatalogCountry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNTRY\tCURRENCY\tEXCHANGES")
	for _, c := range countries {
		cur := "-"
		if c.CurrencyCode != "" {
			cur = c.CurrencyCode
		}
		ex := "-"
		if len(c.Exchanges) > 0 {
			ex = strings.Join(c.Exchanges, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Country, cur, ex)
	}
	return tw.Flush()
}

func renderStatus(w io.Writer, cfg *config.Config, version, commit string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  fininsight: System Status")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Version:       %s (%s)\n", version, commit)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Configuration:")
	fmt.Fprintf(w, "    LLM Provider:    %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "    Upstream Limit:  %s per call, %d parallel quotes\n", cfg.Providers.Timeout, cfg.Providers.Concurrency)
	fmt.Fprintf(w, "    API Server:      %s\n", cfg.Address())
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  API Keys:")
	for _, k := range config.CheckAPIKeys(cfg) {
		status := "❌ not set"
		if k.IsSet {
			status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
		}
		fmt.Fprintf(w, "    %-25s %s\n", k.Name+":", status)
	}
	fmt.Fprintln(w, rule)
}
