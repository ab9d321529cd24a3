// Package reasoning derives short heuristic commentary from market numbers:
// a directional thesis from the daily change percent and a qualitative risk
// label from beta.
package reasoning

// Reasoning pairs a directional thesis with a qualitative risk label.
type Reasoning struct {
	Thesis string `json:"thesis"`
	Risk   string `json:"risk"`
}

// Thesis bands on daily change percent. Evaluated top-down; the first
// matching band wins.
const (
	thesisStrongBullish = "Strong Bullish momentum detected. Price is significantly outperforming daily baseline."
	thesisMildBullish   = "Modest Bullish trend. Stock is trading positively but within normal variance."
	thesisNeutral       = "Neutral/Consolidation. Price is chopping sideways with no clear direction."
	thesisMildBearish   = "Bearish sentiment. Stock is underperforming daily baseline."
	thesisStrongBearish = "Strong Bearish pressure. Significant sell-off detected today."
)

// Risk bands on beta. A missing beta gets its own message instead of being
// treated as beta=0.
const (
	riskHigh        = "HIGH. This asset historically moves significantly more than the market."
	riskMedium      = "MEDIUM. This asset moves roughly in line with the market."
	riskLow         = "LOW. This asset historically moves less than the market."
	riskBetaMissing = "MEDIUM. Volatility data unavailable; assume market-average risk."
)

// Classify maps (changePercent, beta) to fixed commentary strings. It is pure
// and deterministic; callers guarantee finite inputs, so there is no error
// path.
func Classify(changePercent float64, beta *float64) Reasoning {
	return Reasoning{
		Thesis: thesisFor(changePercent),
		Risk:   riskFor(beta),
	}
}

func thesisFor(changePercent float64) string {
	switch {
	case changePercent >= 2.0:
		return thesisStrongBullish
	case changePercent >= 0.5:
		return thesisMildBullish
	case changePercent > -0.5:
		return thesisNeutral
	case changePercent > -2.0:
		return thesisMildBearish
	default:
		return thesisStrongBearish
	}
}

func riskFor(beta *float64) string {
	switch {
	case beta == nil:
		return riskBetaMissing
	case *beta > 1.5:
		return riskHigh
	case *beta >= 0.8:
		return riskMedium
	default:
		return riskLow
	}
}
