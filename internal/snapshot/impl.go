package snapshot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"market-snapshot/internal/monitor"
	"market-snapshot/internal/quote"
	"market-snapshot/internal/reasoning"
)

// Impl implements Service by composing a quote provider with the classifier.
type Impl struct {
	provider     quote.Provider
	fetchTimeout time.Duration
	metrics      *monitor.ServiceMetrics
	logger       *zap.Logger
}

// Config holds the dependencies for creating a snapshot service.
type Config struct {
	Provider     quote.Provider
	FetchTimeout time.Duration
	Metrics      *monitor.ServiceMetrics
	Logger       *zap.Logger
}

// NewImpl creates the snapshot service implementation.
func NewImpl(cfg Config) *Impl {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 2 * time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = monitor.NewServiceMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Impl{
		provider:     cfg.Provider,
		fetchTimeout: cfg.FetchTimeout,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
}

// GetSnapshot fetches the ticker's market data, classifies it, and assembles
// the response. The fetch runs under a deadline; a slow provider is reported
// as unavailable. Sentinel errors pass through untouched so the HTTP layer
// can map them to status codes. No retries, no caching, no partial results.
func (s *Impl) GetSnapshot(ctx context.Context, ticker string) (*Snapshot, error) {
	ticker = quote.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", quote.ErrInvalidTicker)
	}

	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	timer := monitor.NewTimer(s.metrics.FetchLatency)
	q, err := s.provider.GetQuote(ctx, ticker)
	timer.Stop()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: fetch for %s: %v", quote.ErrUnavailable, ticker, err)
		}
		s.metrics.IncrementQuoteErrors()
		s.logger.Warn("quote fetch failed",
			zap.String("ticker", ticker),
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.IncrementQuotesFetched()

	snap := &Snapshot{
		Meta: Meta{
			Ticker:    q.Ticker,
			Timestamp: time.Now().UTC(),
		},
		Data: MarketData{
			Price:         round2(q.Price),
			ChangePercent: round2(q.ChangePercent),
			Volume:        q.Volume,
		},
		Reasoning: reasoning.Classify(q.ChangePercent, q.Beta),
	}
	s.metrics.IncrementSnapshots()

	s.logger.Debug("snapshot assembled",
		zap.String("ticker", q.Ticker),
		zap.Float64("price", snap.Data.Price),
		zap.Float64("change_percent", snap.Data.ChangePercent),
		zap.String("risk", firstWord(snap.Reasoning.Risk)),
	)
	return snap, nil
}

// round2 keeps currency-like fields at two decimals on the wire.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// firstWord trims a risk label like "HIGH. ..." down to its leading token
// for compact log lines.
func firstWord(s string) string {
	if i := strings.IndexByte(s, '.'); i > 0 {
		return s[:i]
	}
	return s
}
