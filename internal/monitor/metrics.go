package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ServiceMetrics tracks API and provider health for the snapshot service.
type ServiceMetrics struct {
	// Latency histograms
	APILatency   *LatencyHistogram
	FetchLatency *LatencyHistogram

	// Counters
	apiRequests     uint64
	apiErrors       uint64
	snapshotsServed uint64
	quotesFetched   uint64
	quoteErrors     uint64
}

// LatencyHistogram tracks latency samples in a sliding window. Stats are
// recomputed only when samples have changed since the last read.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool
	cachedStats LatencyStats
}

// NewServiceMetrics creates a new metrics instance.
func NewServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{
		APILatency:   NewLatencyHistogram(1000),
		FetchLatency: NewLatencyHistogram(1000),
	}
}

// NewLatencyHistogram creates a sliding window histogram.
func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		// Shift window: remove oldest
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// Stats returns min, max, avg, p50, p95, p99.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty && h.cachedStats.Count > 0 {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	var sum float64
	min, max := sorted[0], sorted[n-1]
	for _, v := range sorted {
		sum += v
	}

	h.cachedStats = LatencyStats{
		Min:   min,
		Max:   max,
		Avg:   sum / float64(n),
		P50:   sorted[n/2],
		P95:   sorted[int(float64(n)*0.95)],
		P99:   sorted[int(float64(n)*0.99)],
		Count: n,
	}
	h.dirty = false

	return h.cachedStats
}

// LatencyStats holds computed latency statistics.
type LatencyStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Count int     `json:"count"`
}

// IncrementAPI increments the served API request counter.
func (m *ServiceMetrics) IncrementAPI() {
	atomic.AddUint64(&m.apiRequests, 1)
}

// IncrementAPIErrors increments the 4xx/5xx response counter.
func (m *ServiceMetrics) IncrementAPIErrors() {
	atomic.AddUint64(&m.apiErrors, 1)
}

// IncrementSnapshots increments the assembled snapshot counter.
func (m *ServiceMetrics) IncrementSnapshots() {
	atomic.AddUint64(&m.snapshotsServed, 1)
}

// IncrementQuotesFetched increments the successful provider fetch counter.
func (m *ServiceMetrics) IncrementQuotesFetched() {
	atomic.AddUint64(&m.quotesFetched, 1)
}

// IncrementQuoteErrors increments the failed provider fetch counter.
func (m *ServiceMetrics) IncrementQuoteErrors() {
	atomic.AddUint64(&m.quoteErrors, 1)
}

// MetricsSnapshot is a point-in-time view of all counters and histograms.
type MetricsSnapshot struct {
	APILatency      LatencyStats `json:"api_latency"`
	FetchLatency    LatencyStats `json:"fetch_latency"`
	APIRequests     uint64       `json:"api_requests"`
	APIErrors       uint64       `json:"api_errors"`
	SnapshotsServed uint64       `json:"snapshots_served"`
	QuotesFetched   uint64       `json:"quotes_fetched"`
	QuoteErrors     uint64       `json:"quote_errors"`
	GoroutineCount  int          `json:"goroutine_count"`
	HeapAlloc       uint64       `json:"heap_alloc_bytes"`
	HeapSys         uint64       `json:"heap_sys_bytes"`
	Timestamp       time.Time    `json:"timestamp"`
}

// GetSnapshot returns a point-in-time metrics snapshot.
func (m *ServiceMetrics) GetSnapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return MetricsSnapshot{
		APILatency:      m.APILatency.Stats(),
		FetchLatency:    m.FetchLatency.Stats(),
		APIRequests:     atomic.LoadUint64(&m.apiRequests),
		APIErrors:       atomic.LoadUint64(&m.apiErrors),
		SnapshotsServed: atomic.LoadUint64(&m.snapshotsServed),
		QuotesFetched:   atomic.LoadUint64(&m.quotesFetched),
		QuoteErrors:     atomic.LoadUint64(&m.quoteErrors),
		GoroutineCount:  runtime.NumGoroutine(),
		HeapAlloc:       memStats.HeapAlloc,
		HeapSys:         memStats.HeapSys,
		Timestamp:       time.Now(),
	}
}

// Timer helps measure operation duration.
type Timer struct {
	start     time.Time
	histogram *LatencyHistogram
}

// NewTimer creates a timer that records to the given histogram.
func NewTimer(h *LatencyHistogram) *Timer {
	return &Timer{
		start:     time.Now(),
		histogram: h,
	}
}

// Stop records elapsed time to histogram.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.RecordDuration(elapsed)
	}
	return elapsed
}
