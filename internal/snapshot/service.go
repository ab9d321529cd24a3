// Package snapshot assembles the per-request market snapshot: one provider
// fetch, one classification, one timestamped response. The API layer only
// interacts with the assembler through the Service interface.
package snapshot

import (
	"context"
	"time"

	"market-snapshot/internal/reasoning"
)

// Service defines the snapshot operations consumed by the API layer.
type Service interface {
	GetSnapshot(ctx context.Context, ticker string) (*Snapshot, error)
}

// Meta identifies the ticker and the generation time of a snapshot. The
// timestamp is wall-clock UTC at assembly, not market time.
type Meta struct {
	Ticker    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
}

// MarketData carries the numeric fields returned to callers. Price and
// change percent are rounded to two decimals.
type MarketData struct {
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

// Snapshot is the full payload for one ticker at one point in time. It is
// built fresh per request and never cached.
type Snapshot struct {
	Meta      Meta                `json:"meta"`
	Data      MarketData          `json:"data"`
	Reasoning reasoning.Reasoning `json:"reasoning"`
}
