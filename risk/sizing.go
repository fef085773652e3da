// Package risk computes suggested position sizes from an account-risk
// percentage and a reference price.
package risk

import "math"

// Sizing is the position sizing advice for one trade.
type Sizing struct {
	Symbol            string  `json:"symbol,omitempty"`
	RiskAmount        float64 `json:"risk_amount"`
	SuggestedQuantity int64   `json:"suggested_quantity,omitempty"`
	AccountPercent    float64 `json:"account_percent"`
}

// PositionSizing sizes a trade so that it deploys accountRiskPercent of
// the portfolio. With a positive reference price it also suggests a whole
// share quantity and the resulting actual account percentage; without one
// it returns only the risk amount and the requested percentage.
func PositionSizing(portfolioValue, accountRiskPercent, referencePrice float64) Sizing {
	s := Sizing{
		RiskAmount:     portfolioValue * accountRiskPercent / 100,
		AccountPercent: accountRiskPercent,
	}

	if referencePrice > 0 {
		s.SuggestedQuantity = int64(math.Floor(s.RiskAmount / referencePrice))
		if portfolioValue > 0 {
			s.AccountPercent = float64(s.SuggestedQuantity) * referencePrice / portfolioValue * 100
		} else {
			s.AccountPercent = 0
		}
	}
	return s
}
