package quote

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is one canned quote entry in YAML. Omitting the beta key yields a
// nil Beta, which downstream treats as "volatility data unavailable".
type Fixture struct {
	Ticker        string   `yaml:"ticker"`
	Price         float64  `yaml:"price"`
	ChangePercent float64  `yaml:"change_percent"`
	Volume        int64    `yaml:"volume"`
	Beta          *float64 `yaml:"beta"`
}

// FixtureFile is the top-level YAML structure for mock quotes.
type FixtureFile struct {
	Quotes []Fixture `yaml:"quotes"`
}

// MockProvider serves canned quotes for local development and tests. It is
// deterministic: the same ticker always returns the same quote.
type MockProvider struct {
	quotes map[string]*Quote
}

// NewMockProvider builds a provider from an in-memory fixture set. Each
// fixture passes the same validation as a live payload.
func NewMockProvider(fixtures []Fixture) (*MockProvider, error) {
	quotes := make(map[string]*Quote, len(fixtures))
	for _, f := range fixtures {
		q, err := New(f.Ticker, f.Price, f.ChangePercent, f.Volume, f.Beta)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", f.Ticker, err)
		}
		quotes[q.Ticker] = q
	}
	return &MockProvider{quotes: quotes}, nil
}

// LoadMockProvider reads fixtures from a YAML file.
func LoadMockProvider(path string) (*MockProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file FixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	if len(file.Quotes) == 0 {
		return nil, fmt.Errorf("fixtures %s: no quotes defined", path)
	}

	return NewMockProvider(file.Quotes)
}

func (m *MockProvider) Name() string { return "mock" }

// GetQuote returns a copy of the canned quote for the ticker. Unknown tickers
// report ErrNotFound; an expired context reports ErrUnavailable, matching the
// live provider's timeout behavior.
func (m *MockProvider) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	q, ok := m.quotes[NormalizeTicker(ticker)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}

	out := *q
	if q.Beta != nil {
		b := *q.Beta
		out.Beta = &b
	}
	return &out, nil
}
