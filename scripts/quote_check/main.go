// Command quote_check exercises the live quote provider without starting the
// HTTP server. Useful for verifying upstream connectivity and the heuristic
// output before deploying.
//
// Usage:
//
//	CHECK_TICKERS=AAPL,NVDA go run ./scripts/quote_check
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"market-snapshot/internal/reasoning"
	"market-snapshot/pkg/config"
	"market-snapshot/pkg/market/yahoo"
)

func main() {
	tickers := strings.Split(envOr("CHECK_TICKERS", "AAPL,NVDA"), ",")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := yahoo.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout())
	log.Printf("checking %d tickers against %s provider", len(tickers), client.Name())

	ok := 0
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Provider.Timeout())
		q, err := client.GetQuote(ctx, t)
		cancel()
		if err != nil {
			log.Printf("FAIL %-6s %v", t, err)
			continue
		}

		r := reasoning.Classify(q.ChangePercent, q.Beta)
		log.Printf("OK   %-6s price=%.2f change=%+.2f%% volume=%d", q.Ticker, q.Price, q.ChangePercent, q.Volume)
		log.Printf("     thesis: %s", r.Thesis)
		log.Printf("     risk:   %s", r.Risk)
		ok++
	}

	log.Printf("done: %d/%d tickers ok", ok, len(tickers))
	if ok == 0 {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
