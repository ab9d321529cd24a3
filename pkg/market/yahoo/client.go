// Package yahoo implements the quote.Provider contract against the Yahoo
// Finance v7 quote endpoint.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"market-snapshot/internal/quote"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client wraps REST access to the quote endpoint. One GetQuote call issues
// exactly one outbound request; there is no retry or backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a quote client. An empty baseURL selects the public
// endpoint; timeout bounds each outbound call alongside the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "yahoo" }

// GetQuote fetches current market data for one ticker.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*quote.Quote, error) {
	params := url.Values{}
	params.Set("symbols", ticker)

	body, err := c.do(ctx, "/v7/finance/quote", params)
	if err != nil {
		return nil, err
	}

	var envelope quoteEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode quote response: %v", quote.ErrBadPayload, err)
	}
	if e := envelope.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("%w: %s: %s", quote.ErrNotFound, ticker, e.Code)
	}
	results := envelope.QuoteResponse.Result
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no data for %s", quote.ErrNotFound, ticker)
	}

	return mapQuote(ticker, results[0])
}

// mapQuote applies the price fallback chain (live price, post-market price,
// previous close) and recomputes the change percent when the endpoint omits
// it. Quotes with no usable price report ErrNotFound.
func mapQuote(ticker string, r quoteResult) (*quote.Quote, error) {
	price, ok := firstPositive(r.RegularMarketPrice, r.PostMarketPrice, r.RegularMarketPreviousClose)
	if !ok {
		return nil, fmt.Errorf("%w: no price data for %s", quote.ErrNotFound, ticker)
	}

	var change float64
	switch {
	case r.RegularMarketChangePercent != nil:
		change = *r.RegularMarketChangePercent
	case r.RegularMarketPreviousClose != nil && *r.RegularMarketPreviousClose > 0:
		change = (price - *r.RegularMarketPreviousClose) / *r.RegularMarketPreviousClose * 100
	}

	var volume int64
	if r.RegularMarketVolume != nil {
		volume = *r.RegularMarketVolume
	}

	symbol := r.Symbol
	if symbol == "" {
		symbol = ticker
	}
	return quote.New(symbol, price, change, volume, r.Beta)
}

// firstPositive returns the first candidate that is set and positive. NaN
// fails the comparison, so garbage values fall through to the next candidate.
func firstPositive(candidates ...*float64) (float64, bool) {
	for _, c := range candidates {
		if c != nil && *c > 0 {
			return *c, true
		}
	}
	return 0, false
}

// do issues one GET and sorts the transport and status outcome into the
// fetch error taxonomy.
func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if params != nil {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", quote.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "market-snapshot/1.0")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quote.ErrUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", quote.ErrUnavailable, err)
	}

	switch {
	case res.StatusCode == http.StatusOK:
		return body, nil
	case res.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: quote endpoint status 404", quote.ErrNotFound)
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, fmt.Errorf("%w: quote endpoint status %d", quote.ErrUnavailable, res.StatusCode)
	default:
		return nil, fmt.Errorf("%w: quote endpoint status %d", quote.ErrBadPayload, res.StatusCode)
	}
}
