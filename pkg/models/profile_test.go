package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// ── CurrencyInfo ──

func TestCurrencyInfoHasCode(t *testing.T) {
	if (CurrencyInfo{Country: "Atlantis", Error: "no country data returned"}).HasCode() {
		t.Fatal("HasCode() = true for an error result")
	}
	if !(CurrencyInfo{Country: "India", CurrencyCode: "INR"}).HasCode() {
		t.Fatal("HasCode() = false for a resolved code")
	}
}

func TestCurrencyInfoOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(CurrencyInfo{Country: "Atlantis", Error: "no country data returned"})
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	got := string(data)
	want := `{"country":"Atlantis","error":"no country data returned"}`
	if got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

// ── Profile shape ──

func TestProfileJSONNullsAndEmptyLists(t *testing.T) {
	p := CountryFinancialProfile{
		Country:       "Atlantis",
		Currency:      CurrencyInfo{Country: "Atlantis", Error: "no country data returned"},
		ExchangeRates: ExchangeRateSet{Error: "could not determine currency code; FX rates unavailable"},
		Stocks: CountryStockProfile{
			Country:   "Atlantis",
			Exchanges: []StockExchangeProfile{},
			Error:     "no stock exchange profile configured for this country",
		},
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	got := string(data)

	for _, want := range []string{
		`"main_exchange_hq_address":null`,
		`"google_maps_link":null`,
		`"exchanges":[]`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("json missing %s: %s", want, got)
		}
	}
	if strings.Contains(got, `"rates"`) {
		t.Errorf("failed rate set should omit rates: %s", got)
	}
}

func TestIndexQuoteNullPrice(t *testing.T) {
	data, err := json.Marshal(IndexQuote{Symbol: "^NSEI", Name: "NIFTY 50"})
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	if !strings.Contains(string(data), `"last_price":null`) {
		t.Errorf("json = %s, want last_price null", data)
	}

	price := 24567.5
	data, _ = json.Marshal(IndexQuote{Symbol: "^NSEI", Name: "NIFTY 50", LastPrice: &price})
	if !strings.Contains(string(data), `"last_price":24567.5`) {
		t.Errorf("json = %s, want last_price 24567.5", data)
	}
}
