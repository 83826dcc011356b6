// Package datasource provides HTTP clients for the upstream reference-data
// providers: RestCountries (country → currency), CurrencyAPI (FX rates) and
// Yahoo Finance (index closes). Clients return plain Go errors; mapping them
// into result fields is the caller's job.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/fininsight/internal/logging"
	"github.com/seenimoa/fininsight/internal/metrics"
)

// --- Sentinel errors ---

// ErrNotConfigured is returned when a provider needs a credential that is not set.
var ErrNotConfigured = errors.New("credential not configured")

// ErrHTTP wraps a non-success HTTP response. Body is truncated.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// MaxErrorBody is how much of a failed response body is kept in ErrHTTP.
const MaxErrorBody = 200

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 10 * time.Second

// --- Shared client plumbing ---

// base holds what every provider client shares.
type base struct {
	name    string
	baseURL string
	client  *http.Client
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// Option configures a provider client.
type Option func(*base)

// WithBaseURL overrides the provider endpoint (tests, proxies, mirrors).
func WithBaseURL(u string) Option {
	return func(b *base) { b.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) { b.client = c }
}

// WithTimeout sets the per-call timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *base) { b.logger = l }
}

func newBase(name, defaultURL string, opts []Option) base {
	b := base{
		name:    name,
		baseURL: defaultURL,
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  logging.NewSilent(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = logging.OrSilent(b.logger)
	return b
}

// getJSON performs a bounded GET and decodes a JSON body into out.
// endpoint is joined to the base URL; query may be nil.
func (b *base) getJSON(ctx context.Context, endpoint string, query url.Values, headers map[string]string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	target := b.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	body, err := doGet(ctx, b.client, target, headers)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", b.name, err)
	}
	return nil
}

// observe records the outcome of one call. A nil error with empty=true
// counts as an empty answer.
func (b *base) observe(start time.Time, err error, empty bool) {
	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case empty:
		outcome = metrics.OutcomeEmpty
	}
	b.metrics.ObserveUpstream(b.name, outcome, time.Since(start))
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, target string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		// *url.Error embeds the full URL; keep only the cause.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("GET %s: %w", redact(req.URL), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp.Body, nil
}

// redact drops the query string so credentials never end up in error text.
func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	return c.String()
}
