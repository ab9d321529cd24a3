package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"market-snapshot/internal/monitor"
	"market-snapshot/internal/quote"
)

// snapshotQuery binds and validates the snapshot query string. The length
// bounds match the ticker symbols real exchanges hand out.
type snapshotQuery struct {
	Ticker string `form:"ticker" binding:"required,min=1,max=10"`
}

func (q *snapshotQuery) normalize() {
	q.Ticker = quote.NormalizeTicker(q.Ticker)
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

// getSnapshot handles GET /api/snapshot?ticker=SYMBOL. Validation failures
// never reach the provider.
func (s *Server) getSnapshot(c *gin.Context) {
	var q snapshotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_TICKER", "ticker is required and must be 1-10 characters")
		return
	}
	q.normalize()
	if q.Ticker == "" {
		// Whitespace-only values pass the binding length check.
		respondError(c, http.StatusBadRequest, "INVALID_TICKER", "ticker is required and must be 1-10 characters")
		return
	}

	snap, err := s.Snapshots.GetSnapshot(c.Request.Context(), q.Ticker)
	if err != nil {
		s.respondSnapshotError(c, q.Ticker, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// respondSnapshotError maps fetch sentinels onto the HTTP error contract.
// Anything unrecognized (including malformed provider payloads) collapses to
// a generic 500 so internals never leak.
func (s *Server) respondSnapshotError(c *gin.Context, ticker string, err error) {
	switch {
	case errors.Is(err, quote.ErrInvalidTicker):
		respondError(c, http.StatusBadRequest, "INVALID_TICKER", fmt.Sprintf("invalid ticker %q", ticker))
	case errors.Is(err, quote.ErrNotFound):
		respondError(c, http.StatusNotFound, "TICKER_NOT_FOUND",
			fmt.Sprintf("ticker '%s' not found or no data available", ticker))
	case errors.Is(err, quote.ErrUnavailable):
		respondError(c, http.StatusBadGateway, "PROVIDER_UNAVAILABLE",
			fmt.Sprintf("could not fetch market data for '%s'", ticker))
	default:
		s.Logger.Error("snapshot assembly failed", zap.String("ticker", ticker), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// getSystemStatus exposes runtime mode and provider selection for operators.
func (s *Server) getSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider":          s.Meta.Provider,
		"use_mock_provider": s.Meta.UseMock,
		"version":           s.Meta.Version,
		"server_time":       time.Now().UTC(),
	})
}

// getMetrics returns the service metrics snapshot as JSON.
func (s *Server) getMetrics(c *gin.Context) {
	if s.Metrics == nil {
		respondError(c, http.StatusServiceUnavailable, "METRICS_UNAVAILABLE", "metrics not available")
		return
	}
	c.JSON(http.StatusOK, s.Metrics.GetSnapshot())
}

// getPromMetrics returns a minimal Prometheus text exposition of key metrics.
func (s *Server) getPromMetrics(c *gin.Context) {
	if s.Metrics == nil {
		c.String(http.StatusServiceUnavailable, "# metrics not available\n")
		return
	}
	snapshot := s.Metrics.GetSnapshot()

	var b strings.Builder
	// Counters
	fmt.Fprintf(&b, "snapshot_api_requests_total %d\n", snapshot.APIRequests)
	fmt.Fprintf(&b, "snapshot_api_errors_total %d\n", snapshot.APIErrors)
	fmt.Fprintf(&b, "snapshot_served_total %d\n", snapshot.SnapshotsServed)
	fmt.Fprintf(&b, "snapshot_quotes_fetched_total %d\n", snapshot.QuotesFetched)
	fmt.Fprintf(&b, "snapshot_quote_errors_total %d\n", snapshot.QuoteErrors)

	// Gauges for latency (ms)
	writeLatency := func(prefix string, ls monitor.LatencyStats) {
		if ls.Count == 0 {
			return
		}
		fmt.Fprintf(&b, "snapshot_%s_latency_ms_avg %f\n", prefix, ls.Avg)
		fmt.Fprintf(&b, "snapshot_%s_latency_ms_p50 %f\n", prefix, ls.P50)
		fmt.Fprintf(&b, "snapshot_%s_latency_ms_p95 %f\n", prefix, ls.P95)
		fmt.Fprintf(&b, "snapshot_%s_latency_ms_p99 %f\n", prefix, ls.P99)
	}
	writeLatency("api", snapshot.APILatency)
	writeLatency("fetch", snapshot.FetchLatency)

	// Gauges for process state
	fmt.Fprintf(&b, "snapshot_goroutines %d\n", snapshot.GoroutineCount)
	fmt.Fprintf(&b, "snapshot_heap_alloc_bytes %d\n", snapshot.HeapAlloc)
	fmt.Fprintf(&b, "snapshot_heap_sys_bytes %d\n", snapshot.HeapSys)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, b.String())
}
