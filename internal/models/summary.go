package models

import "github.com/shopspring/decimal"

// IndexQuote is one major index with its level and day change. Decimal keeps
// the exact digits; translated output must carry them through unchanged.
type IndexQuote struct {
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	ChangePct decimal.Decimal `json:"change_pct"`
}

// Movers lists the day's notable gainers and losers.
type Movers struct {
	Gainers []string `json:"gainers"`
	Losers  []string `json:"losers"`
}

// MarketSummary is the structured output of the analysis stage.
type MarketSummary struct {
	Indices   []IndexQuote `json:"indices"`
	Headlines []string     `json:"headlines"`
	Movers    Movers       `json:"movers"`
	Outlook   []string     `json:"outlook"`

	// Degraded marks a summary rebuilt from raw completion text after the
	// structured response failed validation twice.
	Degraded bool `json:"degraded,omitempty"`
}
