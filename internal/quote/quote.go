// Package quote defines the market-data contract the snapshot service
// consumes. Providers fetch one ticker per call; results are normalized into
// a Quote before anything downstream sees them.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Fetch failures fall into these categories. Handlers consume them with
// errors.Is to pick a status code.
var (
	// ErrInvalidTicker rejects a request before any provider is contacted.
	ErrInvalidTicker = errors.New("invalid ticker")
	// ErrNotFound means the provider has no data for the ticker (unknown,
	// delisted, or missing a usable price).
	ErrNotFound = errors.New("ticker not found")
	// ErrUnavailable means the provider is unreachable, answered with a
	// server error, or timed out.
	ErrUnavailable = errors.New("quote provider unavailable")
	// ErrBadPayload means the provider answered but the body was malformed
	// or numerically invalid. Surfaced to callers as an internal error.
	ErrBadPayload = errors.New("malformed provider payload")
)

// Quote is the normalized market data for one ticker at one point in time.
// Beta is nil when the instrument has no published volatility coefficient;
// absence is meaningful and never collapsed to zero.
type Quote struct {
	Ticker        string
	Price         float64
	ChangePercent float64
	Volume        int64
	Beta          *float64
}

// Provider fetches current market data for a ticker. Implementations make at
// most one outbound call per invocation; there is no retry or caching at this
// boundary.
type Provider interface {
	GetQuote(ctx context.Context, ticker string) (*Quote, error)
	Name() string
}

// New validates raw provider fields and builds a Quote. Payloads carrying
// NaN/Inf numerics, a non-positive price, or a negative volume are rejected
// here so the classifier and assembler only ever see well-formed values.
func New(ticker string, price, changePercent float64, volume int64, beta *float64) (*Quote, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrBadPayload)
	}
	if !isFinite(price) || price <= 0 {
		return nil, fmt.Errorf("%w: price %v for %s", ErrBadPayload, price, ticker)
	}
	if !isFinite(changePercent) {
		return nil, fmt.Errorf("%w: change percent %v for %s", ErrBadPayload, changePercent, ticker)
	}
	if volume < 0 {
		return nil, fmt.Errorf("%w: volume %d for %s", ErrBadPayload, volume, ticker)
	}
	if beta != nil && !isFinite(*beta) {
		return nil, fmt.Errorf("%w: beta %v for %s", ErrBadPayload, *beta, ticker)
	}

	q := &Quote{
		Ticker:        ticker,
		Price:         price,
		ChangePercent: changePercent,
		Volume:        volume,
	}
	if beta != nil {
		b := *beta
		q.Beta = &b
	}
	return q, nil
}

// NormalizeTicker trims surrounding whitespace and uppercases the symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
