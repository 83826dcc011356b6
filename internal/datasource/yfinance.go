package datasource

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// YFinance reads index history from the Yahoo Finance chart API.
type YFinance struct {
	base
}

// NewYFinance creates a Yahoo Finance client.
func NewYFinance(opts ...Option) *YFinance {
	return &YFinance{base: newBase("yahoo", "https://query1.finance.yahoo.com", opts)}
}

// Name returns the provider name.
func (y *YFinance) Name() string { return y.name }

// Candle is one daily OHLC row. Close is nil when the session has no
// closing print in the provider's data.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     *float64
	Volume    int64
}

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// DailyHistory returns daily candles for symbol over rng (e.g. "1d", "5d").
func (y *YFinance) DailyHistory(ctx context.Context, symbol, rng string) (candles []Candle, err error) {
	start := time.Now()
	defer func() { y.observe(start, err, err == nil && len(candles) == 0) }()

	query := url.Values{}
	query.Set("range", rng)
	query.Set("interval", "1d")

	var resp yfChartResponse
	if err := y.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, nil, &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}
	return parseYFCandles(resp.Chart.Result[0]), nil
}

// LatestClose returns the most recent daily close for symbol. A nil price
// with a nil error means the provider had no usable recent history.
func (y *YFinance) LatestClose(ctx context.Context, symbol string) (*float64, error) {
	// Five sessions so weekends and holidays still leave a last close.
	candles, err := y.DailyHistory(ctx, symbol, "5d")
	if err != nil {
		return nil, err
	}
	return lastClose(candles), nil
}

// --- Helpers ---

func lastClose(candles []Candle) *float64 {
	for i := len(candles) - 1; i >= 0; i-- {
		if c := candles[i].Close; c != nil {
			v := *c
			return &v
		}
	}
	return nil
}

func parseYFCandles(result yfChartResult) []Candle {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Close) && q.Close[i] != nil {
			v := *q.Close[i]
			c.Close = &v
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}
