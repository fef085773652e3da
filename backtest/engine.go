// Package backtest replays a signal evaluator over a historical bar
// sequence, driving a fresh ledger through full-cash entries and full
// exits, and produces the complete trade log, equity curve, and metrics
// in one pass. The engine holds no state across runs.
package backtest

import (
	"fmt"

	"github.com/rustyeddy/stocksim/internal/id"
	"github.com/rustyeddy/stocksim/ledger"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/metrics"
	"github.com/rustyeddy/stocksim/strategies"
)

// Config selects the instrument and starting capital for one run.
type Config struct {
	Symbol         string
	InitialCapital float64
}

// Run replays ev over bars. Evaluators that implement
// strategies.SeriesBuilder derive their own indicator series from the
// closes; others see only the close series. An empty or too-short bar
// sequence yields an empty Result, not an error.
func Run(cfg Config, bars []market.Bar, ev strategies.Evaluator) (Result, error) {
	if ev == nil {
		return Result{}, fmt.Errorf("backtest: nil evaluator")
	}

	closes := market.Closes(bars)
	hist := strategies.History{Closes: closes}
	if b, ok := ev.(strategies.SeriesBuilder); ok {
		h, err := b.BuildHistory(closes)
		if err != nil {
			return Result{}, fmt.Errorf("backtest: %w", err)
		}
		hist = h
	}
	return RunWithHistory(cfg, bars, hist, ev)
}

// RunWithHistory replays ev over bars against caller-supplied pre-aligned
// indicator series.
func RunWithHistory(cfg Config, bars []market.Bar, hist strategies.History, ev strategies.Evaluator) (Result, error) {
	if ev == nil {
		return Result{}, fmt.Errorf("backtest: nil evaluator")
	}
	if cfg.InitialCapital <= 0 {
		return Result{}, fmt.Errorf("backtest: initial capital must be positive, got %g", cfg.InitialCapital)
	}

	res := Result{
		Symbol:   cfg.Symbol,
		Strategy: ev.Name(),
	}

	// Start at the first index where every required indicator window is
	// populated. Bar 0 has no prior bar, so the floor is 1.
	start := ev.Warmup()
	if start < 1 {
		start = 1
	}
	if len(bars) <= start {
		// Upstream data unavailable or too short: an empty result,
		// not an error.
		return res, nil
	}

	led := ledger.New(cfg.InitialCapital)

	for i := start; i < len(bars); i++ {
		bar := bars[i]
		price := bar.Close
		_, open := led.Position(cfg.Symbol)

		switch ev.Evaluate(hist, i, open) {
		case strategies.Enter:
			if open {
				break
			}
			quantity := int64(led.Cash() / price)
			if quantity == 0 {
				// Cash cannot cover a single share: a no-op,
				// not an error.
				break
			}
			if _, err := led.ExecuteBuy(cfg.Symbol, quantity, price, bar.Date, id.New()); err != nil {
				return Result{}, fmt.Errorf("backtest: bar %d: %w", i, err)
			}
		case strategies.Exit:
			if !open {
				break
			}
			pos, _ := led.Position(cfg.Symbol)
			if _, _, err := led.ExecuteSell(cfg.Symbol, pos.Quantity, price, bar.Date, id.New()); err != nil {
				return Result{}, fmt.Errorf("backtest: bar %d: %w", i, err)
			}
		}

		led.Mark(cfg.Symbol, price)

		value := led.PortfolioValue()
		res.PortfolioValues = append(res.PortfolioValues, value)
		res.EquityCurve = append(res.EquityCurve, value-cfg.InitialCapital)
		res.Dates = append(res.Dates, bar.Date)
	}

	// Open positions are not force-closed; a run may end long.
	res.Trades = led.Trades()
	res.Metrics = metrics.Compute(res.Trades, res.PortfolioValues, cfg.InitialCapital)
	return res, nil
}
