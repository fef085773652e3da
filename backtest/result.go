package backtest

import (
	"time"

	"github.com/rustyeddy/stocksim/ledger"
	"github.com/rustyeddy/stocksim/metrics"
)

// Result aggregates everything one replay run produced. Immutable once
// returned.
type Result struct {
	Symbol   string `json:"symbol"`
	Strategy string `json:"strategy"`

	Trades []ledger.RealizedTrade `json:"trades"`

	// EquityCurve is portfolio value minus initial capital, one sample
	// per processed bar. PortfolioValues and Dates run parallel to it.
	EquityCurve     []float64   `json:"equity_curve"`
	PortfolioValues []float64   `json:"portfolio_values"`
	Dates           []time.Time `json:"dates"`

	Metrics metrics.Summary `json:"metrics"`
}
