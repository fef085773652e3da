// Package metrics derives aggregate performance statistics from a
// realized-trade log and an equity-sample sequence. Pure functions, no
// side effects. Every ratio resolves to 0 under a zero denominator —
// never NaN or ±Inf. That policy is deliberate and load-bearing: both the
// replay engine and the paper session serialize these numbers directly.
package metrics

import (
	"math"

	"github.com/rustyeddy/stocksim/ledger"
)

// tradingDaysPerYear annualizes the Sharpe ratio for daily bars. Applied
// regardless of the bar interval actually used.
const tradingDaysPerYear = 252

// Summary is the full metrics block computed over one run or session.
type Summary struct {
	TotalTrades         int     `json:"total_trades"`
	WinningTrades       int     `json:"winning_trades"`
	LosingTrades        int     `json:"losing_trades"`
	WinRate             float64 `json:"win_rate"`
	TotalPnL            float64 `json:"total_pnl"`
	GrossProfit         float64 `json:"gross_profit"`
	GrossLoss           float64 `json:"gross_loss"`
	AvgWin              float64 `json:"avg_win"`
	AvgLoss             float64 `json:"avg_loss"`
	ProfitFactor        float64 `json:"profit_factor"`
	MaxDrawdown         float64 `json:"max_drawdown"`
	TotalReturnPercent  float64 `json:"total_return_percent"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	FinalPortfolioValue float64 `json:"final_portfolio_value"`
}

// Compute builds a Summary from a trade log, a portfolio-value series (one
// sample per bar), and the starting cash. Either input may be empty.
func Compute(trades []ledger.RealizedTrade, values []float64, initialCash float64) Summary {
	s := Summary{
		TotalTrades:         len(trades),
		FinalPortfolioValue: initialCash,
	}

	for _, t := range trades {
		s.TotalPnL += t.PnL
		switch {
		case t.PnL > 0:
			s.WinningTrades++
			s.GrossProfit += t.PnL
		case t.PnL < 0:
			s.LosingTrades++
			s.GrossLoss += -t.PnL
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	}
	if s.WinningTrades > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LosingTrades)
	}
	if s.GrossLoss != 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}

	s.MaxDrawdown = MaxDrawdown(values)
	s.SharpeRatio = Sharpe(values)

	if len(values) > 0 {
		s.FinalPortfolioValue = values[len(values)-1]
	}
	if initialCash != 0 {
		s.TotalReturnPercent = (s.FinalPortfolioValue - initialCash) / initialCash * 100
	}

	return s
}

// MaxDrawdown reports the largest percentage decline from a running peak,
// in [0, 100] for a positive series. Empty or non-positive-peak series
// yield 0.
func MaxDrawdown(values []float64) float64 {
	peak := 0.0
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	if maxDD < 0 {
		return 0
	}
	return maxDD * 100
}

// Sharpe computes the annualized Sharpe ratio from simple period-over-period
// returns of the value series. Fewer than two samples, or a zero standard
// deviation, yield 0.
func Sharpe(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			return 0
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}
