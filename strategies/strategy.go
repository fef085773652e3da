// Package strategies defines signal evaluators: pure decision functions
// mapping a price/indicator history and a bar index to Enter/Exit/Hold.
package strategies

import (
	"fmt"
	"strings"
)

// Decision is the per-bar output of an evaluator.
type Decision int

const (
	Hold Decision = iota
	Enter
	Exit
)

func (d Decision) String() string {
	switch d {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	default:
		return "hold"
	}
}

// History carries the close series and the pre-aligned indicator series an
// evaluator may read. All slices are indexed identically to the bar
// sequence; indexes before an indicator's warmup hold NaN.
type History struct {
	Closes []float64
	RSI    []float64
	FastMA []float64
	SlowMA []float64
}

// Evaluator decides Enter/Exit/Hold for one bar at a time, in order.
// Evaluate must be pure: no state between calls, no I/O.
type Evaluator interface {
	Name() string

	// Warmup returns the first index at which all required indicator
	// windows are populated.
	Warmup() int

	// Evaluate returns the decision at index i. open reports whether a
	// position is currently held.
	Evaluate(h History, i int, open bool) Decision
}

// SeriesBuilder is implemented by evaluators that can derive their own
// indicator series from a close series. The replay engine uses it when the
// caller does not supply pre-computed indicators.
type SeriesBuilder interface {
	BuildHistory(closes []float64) (History, error)
}

// Func adapts a caller-supplied decision function, enabling arbitrary
// strategies without modifying the replay engine.
type Func struct {
	Rule       func(h History, i int, open bool) Decision
	WarmupBars int
	Label      string
}

func (f Func) Name() string {
	if f.Label == "" {
		return "custom"
	}
	return f.Label
}

func (f Func) Warmup() int { return f.WarmupBars }

func (f Func) Evaluate(h History, i int, open bool) Decision {
	return f.Rule(h, i, open)
}

// Params holds the strategy-specific knobs accepted by FromParams. Zero
// values fall back to the defaults of the named strategy.
type Params struct {
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64
	FastPeriod    int
	SlowPeriod    int
}

// FromParams builds a named built-in evaluator. An unknown name is an
// input contract violation, surfaced immediately.
func FromParams(name string, p Params) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rsi":
		e := NewRSIThreshold(p.RSIPeriod, p.RSIOversold, p.RSIOverbought)
		return e, nil
	case "sma_crossover", "sma-crossover", "crossover":
		e := NewMACrossover(p.FastPeriod, p.SlowPeriod)
		return e, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: rsi, sma_crossover)", name)
	}
}
