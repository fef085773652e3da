package metrics

import (
	"math"
	"testing"

	"github.com/rustyeddy/stocksim/ledger"
	"github.com/stretchr/testify/assert"
)

func trade(pnl float64) ledger.RealizedTrade {
	return ledger.RealizedTrade{Symbol: "AAPL", Quantity: 1, PnL: pnl}
}

func TestComputeEmptyInputs(t *testing.T) {
	t.Parallel()

	s := Compute(nil, nil, 100_000)

	assert.Equal(t, 0, s.TotalTrades)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.TotalPnL)
	assert.Zero(t, s.ProfitFactor)
	assert.Zero(t, s.MaxDrawdown)
	assert.Zero(t, s.SharpeRatio)
	assert.Zero(t, s.TotalReturnPercent)
	assert.InDelta(t, 100_000, s.FinalPortfolioValue, 1e-9)
}

func TestComputeKnownTradeLog(t *testing.T) {
	t.Parallel()

	trades := []ledger.RealizedTrade{trade(100), trade(50), trade(-30)}
	values := []float64{100_000, 100_100, 100_150, 100_120}

	s := Compute(trades, values, 100_000)

	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 200.0/3, s.WinRate, 1e-9)
	assert.InDelta(t, 120, s.TotalPnL, 1e-9)
	assert.InDelta(t, 150, s.GrossProfit, 1e-9)
	assert.InDelta(t, 30, s.GrossLoss, 1e-9)
	assert.InDelta(t, 75, s.AvgWin, 1e-9)
	assert.InDelta(t, 30, s.AvgLoss, 1e-9)
	assert.InDelta(t, 5, s.ProfitFactor, 1e-9)
	assert.InDelta(t, 100_120, s.FinalPortfolioValue, 1e-9)
	assert.InDelta(t, 0.12, s.TotalReturnPercent, 1e-9)
}

func TestProfitFactorZeroWithoutLosses(t *testing.T) {
	t.Parallel()

	s := Compute([]ledger.RealizedTrade{trade(100), trade(50)}, nil, 100_000)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Zero(t, s.LosingTrades)
	assert.Zero(t, s.AvgLoss)
	assert.Zero(t, s.ProfitFactor)
	assert.InDelta(t, 100, s.WinRate, 1e-9)
}

func TestMaxDrawdownKnownCurve(t *testing.T) {
	t.Parallel()

	// Peak 120, trough 90: (120-90)/120 = 25%.
	dd := MaxDrawdown([]float64{100, 120, 90, 130, 110})
	assert.InDelta(t, 25, dd, 1e-9)
}

func TestMaxDrawdownBounds(t *testing.T) {
	t.Parallel()

	assert.Zero(t, MaxDrawdown(nil))
	assert.Zero(t, MaxDrawdown([]float64{100, 110, 120}))

	// A fall to zero is a full drawdown, never more.
	dd := MaxDrawdown([]float64{100, 0})
	assert.InDelta(t, 100, dd, 1e-9)
	assert.LessOrEqual(t, dd, 100.0)
	assert.GreaterOrEqual(t, dd, 0.0)
}

func TestSharpeEdgeCases(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Sharpe(nil))
	assert.Zero(t, Sharpe([]float64{100}))
	// Constant series: zero standard deviation.
	assert.Zero(t, Sharpe([]float64{100, 100, 100}))
	// A zero sample would make the next return undefined.
	assert.Zero(t, Sharpe([]float64{100, 0, 100}))
}

func TestSharpeKnownSeries(t *testing.T) {
	t.Parallel()

	// Returns 0.1 and -1/22; mean/std = 0.375.
	want := 0.375 * math.Sqrt(252)
	assert.InDelta(t, want, Sharpe([]float64{100, 110, 105}), 1e-6)
}

func TestSummaryNeverNaN(t *testing.T) {
	t.Parallel()

	s := Compute(nil, []float64{0, 0}, 0)
	assert.False(t, math.IsNaN(s.WinRate))
	assert.False(t, math.IsNaN(s.ProfitFactor))
	assert.False(t, math.IsNaN(s.MaxDrawdown))
	assert.False(t, math.IsNaN(s.SharpeRatio))
	assert.False(t, math.IsNaN(s.TotalReturnPercent))
}
