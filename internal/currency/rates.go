package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/seenimoa/fininsight/internal/datasource"
	"github.com/seenimoa/fininsight/internal/logging"
	"github.com/seenimoa/fininsight/pkg/models"
	"github.com/seenimoa/fininsight/pkg/utils"
)

// Targets are the currencies every rate set is quoted against, in display order.
var Targets = []string{"USD", "INR", "GBP", "EUR"}

// Result messages for rate fetches.
const (
	MsgNotConfigured = "credential not configured"
	MsgNoValidRates  = "no valid rates returned"
)

// RateProvider answers "one unit of base is worth how much of each target".
type RateProvider interface {
	Name() string
	Configured() bool
	Latest(ctx context.Context, base string, targets []string) (map[string]datasource.RateValue, error)
}

// RateFetcher turns provider responses into an ExchangeRateSet.
type RateFetcher struct {
	provider RateProvider
	logger   *logging.Logger
}

// NewRateFetcher creates a RateFetcher. A nil logger is silent.
func NewRateFetcher(provider RateProvider, logger *logging.Logger) *RateFetcher {
	return &RateFetcher{provider: provider, logger: logging.OrSilent(logger)}
}

// Fetch never fails: problems are reported in ExchangeRateSet.Error. Entries
// that do not coerce to a finite positive number are dropped; a partial set
// is still a success.
func (f *RateFetcher) Fetch(ctx context.Context, currencyCode string) (set models.ExchangeRateSet) {
	base := utils.NormalizeCurrencyCode(currencyCode)
	set.BaseCurrency = base

	if f.provider == nil || !f.provider.Configured() {
		set.Error = MsgNotConfigured
		return set
	}

	defer func() {
		if p := recover(); p != nil {
			f.logger.Error().Interface("panic", p).Str("base", base).Msg("rate fetch panicked")
			set = models.ExchangeRateSet{BaseCurrency: base, Error: fmt.Sprintf("rates request failed: %v", p)}
		}
	}()

	targets := targetsFor(base)
	data, err := f.provider.Latest(ctx, base, targets)
	if err != nil {
		f.logger.Warn().Err(err).Str("base", base).Msg("rate fetch failed")
		set.Error = describeRatesError(err)
		return set
	}

	rates := make(map[string]float64, len(targets))
	for _, code := range targets {
		entry, ok := data[code]
		if !ok {
			continue
		}
		if v, ok := coerceRate(entry.Value); ok {
			rates[code] = v
		}
	}
	if len(rates) == 0 {
		set.Error = MsgNoValidRates
		return set
	}

	set.Rates = rates
	set.Provider = f.provider.Name()
	return set
}

// targetsFor drops the base itself from the fixed target list.
func targetsFor(base string) []string {
	out := make([]string, 0, len(Targets))
	for _, t := range Targets {
		if t != base {
			out = append(out, t)
		}
	}
	return out
}

func coerceRate(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

func describeRatesError(err error) string {
	if errors.Is(err, datasource.ErrNotConfigured) {
		return MsgNotConfigured
	}
	var httpErr *datasource.ErrHTTP
	if errors.As(err, &httpErr) {
		if httpErr.Body == "" {
			return fmt.Sprintf("rates request failed with status %d", httpErr.StatusCode)
		}
		return fmt.Sprintf("rates request failed with status %d: %s", httpErr.StatusCode, httpErr.Body)
	}
	return fmt.Sprintf("rates request failed: %v", err)
}
