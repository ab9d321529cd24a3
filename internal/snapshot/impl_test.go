package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"market-snapshot/internal/monitor"
	"market-snapshot/internal/quote"
)

// stubProvider returns a fixed quote or error after an optional delay. Calls
// are counted so tests can assert the provider was (not) reached.
type stubProvider struct {
	quote      *quote.Quote
	err        error
	delay      time.Duration
	calls      int
	lastTicker string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GetQuote(ctx context.Context, ticker string) (*quote.Quote, error) {
	s.calls++
	s.lastTicker = ticker
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	q := *s.quote
	return &q, nil
}

func betaOf(v float64) *float64 { return &v }

func newTestImpl(p quote.Provider) (*Impl, *monitor.ServiceMetrics) {
	metrics := monitor.NewServiceMetrics()
	svc := NewImpl(Config{
		Provider:     p,
		FetchTimeout: 500 * time.Millisecond,
		Metrics:      metrics,
	})
	return svc, metrics
}

func TestGetSnapshotAssembly(t *testing.T) {
	provider := &stubProvider{
		quote: &quote.Quote{
			Ticker:        "NVDA",
			Price:         405.0,
			ChangePercent: 2.5,
			Volume:        35000000,
			Beta:          betaOf(1.8),
		},
	}
	svc, metrics := newTestImpl(provider)

	snap, err := svc.GetSnapshot(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}

	if snap.Meta.Ticker != "NVDA" {
		t.Fatalf("Meta.Ticker = %q, expected NVDA", snap.Meta.Ticker)
	}
	if snap.Data.Price != 405.0 || snap.Data.ChangePercent != 2.5 || snap.Data.Volume != 35000000 {
		t.Fatalf("unexpected market data: %+v", snap.Data)
	}
	if !strings.HasPrefix(snap.Reasoning.Thesis, "Strong Bullish") {
		t.Fatalf("Thesis = %q, expected strong bullish", snap.Reasoning.Thesis)
	}
	if !strings.HasPrefix(snap.Reasoning.Risk, "HIGH.") {
		t.Fatalf("Risk = %q, expected HIGH", snap.Reasoning.Risk)
	}

	ms := metrics.GetSnapshot()
	if ms.QuotesFetched != 1 || ms.SnapshotsServed != 1 || ms.QuoteErrors != 0 {
		t.Fatalf("unexpected counters: %+v", ms)
	}
}

// Prices arrive with arbitrary precision; the wire values carry two decimals.
func TestGetSnapshotRoundsToTwoDecimals(t *testing.T) {
	provider := &stubProvider{
		quote: &quote.Quote{Ticker: "AAPL", Price: 123.456, ChangePercent: 2.567, Volume: 100},
	}
	svc, _ := newTestImpl(provider)

	snap, err := svc.GetSnapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if snap.Data.Price != 123.46 {
		t.Fatalf("Price = %v, expected 123.46", snap.Data.Price)
	}
	if snap.Data.ChangePercent != 2.57 {
		t.Fatalf("ChangePercent = %v, expected 2.57", snap.Data.ChangePercent)
	}
}

// Classification reads the raw change percent, not the rounded one, so a
// value that rounds across a band boundary keeps its true band.
func TestGetSnapshotClassifiesRawChange(t *testing.T) {
	provider := &stubProvider{
		quote: &quote.Quote{Ticker: "EDGE", Price: 10, ChangePercent: 1.996, Volume: 1},
	}
	svc, _ := newTestImpl(provider)

	snap, err := svc.GetSnapshot(context.Background(), "EDGE")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if snap.Data.ChangePercent != 2.0 {
		t.Fatalf("ChangePercent = %v, expected 2.0 after rounding", snap.Data.ChangePercent)
	}
	if !strings.HasPrefix(snap.Reasoning.Thesis, "Modest Bullish") {
		t.Fatalf("Thesis = %q, expected the raw 1.996 to stay mild bullish", snap.Reasoning.Thesis)
	}
}

func TestGetSnapshotTimestampUTC(t *testing.T) {
	provider := &stubProvider{
		quote: &quote.Quote{Ticker: "AAPL", Price: 10, ChangePercent: 0, Volume: 1},
	}
	svc, _ := newTestImpl(provider)

	before := time.Now().UTC()
	snap, err := svc.GetSnapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	after := time.Now().UTC()

	ts := snap.Meta.Timestamp
	if ts.Location() != time.UTC {
		t.Fatalf("timestamp location = %v, expected UTC", ts.Location())
	}
	if ts.Before(before) || ts.After(after) {
		t.Fatalf("timestamp %v outside [%v, %v]", ts, before, after)
	}
}

func TestGetSnapshotNormalizesTicker(t *testing.T) {
	provider := &stubProvider{
		quote: &quote.Quote{Ticker: "AAPL", Price: 10, ChangePercent: 0, Volume: 1},
	}
	svc, _ := newTestImpl(provider)

	snap, err := svc.GetSnapshot(context.Background(), "  aapl ")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if provider.lastTicker != "AAPL" {
		t.Fatalf("provider saw %q, expected AAPL", provider.lastTicker)
	}
	if snap.Meta.Ticker != "AAPL" {
		t.Fatalf("Meta.Ticker = %q, expected AAPL", snap.Meta.Ticker)
	}
}

// Blank tickers are rejected before the provider is contacted.
func TestGetSnapshotEmptyTicker(t *testing.T) {
	provider := &stubProvider{}
	svc, _ := newTestImpl(provider)

	for _, ticker := range []string{"", "   ", "\t"} {
		_, err := svc.GetSnapshot(context.Background(), ticker)
		if !errors.Is(err, quote.ErrInvalidTicker) {
			t.Fatalf("ticker %q: expected ErrInvalidTicker, got %v", ticker, err)
		}
	}
	if provider.calls != 0 {
		t.Fatalf("provider contacted %d times for invalid tickers", provider.calls)
	}
}

// Provider sentinels pass through the assembler untouched so the HTTP layer
// can branch on them.
func TestGetSnapshotSentinelPassthrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", fmt.Errorf("%w: XYZ", quote.ErrNotFound), quote.ErrNotFound},
		{"unavailable", fmt.Errorf("%w: status 503", quote.ErrUnavailable), quote.ErrUnavailable},
		{"bad payload", fmt.Errorf("%w: truncated body", quote.ErrBadPayload), quote.ErrBadPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, metrics := newTestImpl(&stubProvider{err: tt.err})

			_, err := svc.GetSnapshot(context.Background(), "XYZ")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			ms := metrics.GetSnapshot()
			if ms.QuoteErrors != 1 || ms.SnapshotsServed != 0 {
				t.Fatalf("unexpected counters: %+v", ms)
			}
		})
	}
}

// A provider that outlives the fetch budget is reported as unavailable, not
// as a raw deadline error.
func TestGetSnapshotSlowProvider(t *testing.T) {
	provider := &stubProvider{
		quote: &quote.Quote{Ticker: "SLOW", Price: 10, ChangePercent: 0, Volume: 1},
		delay: 2 * time.Second,
	}
	metrics := monitor.NewServiceMetrics()
	svc := NewImpl(Config{
		Provider:     provider,
		FetchTimeout: 25 * time.Millisecond,
		Metrics:      metrics,
	})

	start := time.Now()
	_, err := svc.GetSnapshot(context.Background(), "SLOW")
	elapsed := time.Since(start)

	if !errors.Is(err, quote.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("deadline error leaked through: %v", err)
	}
	if elapsed > time.Second {
		t.Fatalf("fetch was not cut off by the timeout, took %v", elapsed)
	}
	if ms := metrics.GetSnapshot(); ms.QuoteErrors != 1 {
		t.Fatalf("QuoteErrors = %d, expected 1", ms.QuoteErrors)
	}
}

// A caller that already gave up propagates as unavailable as well.
func TestGetSnapshotCanceledCaller(t *testing.T) {
	provider := &stubProvider{
		quote: &quote.Quote{Ticker: "AAPL", Price: 10, ChangePercent: 0, Volume: 1},
		delay: 2 * time.Second,
	}
	svc, _ := newTestImpl(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetSnapshot(ctx, "AAPL")
	if !errors.Is(err, quote.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
