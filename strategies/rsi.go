package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/stocksim/indicators"
)

// RSIThreshold enters when RSI drops below the oversold threshold with no
// position open, and exits when RSI rises above the overbought threshold
// with a position open.
type RSIThreshold struct {
	Period     int
	Oversold   float64
	Overbought float64
}

// NewRSIThreshold builds an RSI threshold evaluator. Zero arguments fall
// back to the 14-period, 30/70 defaults.
func NewRSIThreshold(period int, oversold, overbought float64) *RSIThreshold {
	if period <= 0 {
		period = indicators.RSIPeriod
	}
	if oversold <= 0 {
		oversold = 30
	}
	if overbought <= 0 {
		overbought = 70
	}
	return &RSIThreshold{Period: period, Oversold: oversold, Overbought: overbought}
}

func (s *RSIThreshold) Name() string {
	return fmt.Sprintf("rsi(%d,%g/%g)", s.Period, s.Oversold, s.Overbought)
}

func (s *RSIThreshold) Warmup() int { return s.Period }

func (s *RSIThreshold) Evaluate(h History, i int, open bool) Decision {
	if i >= len(h.RSI) {
		return Hold
	}
	v := h.RSI[i]
	if math.IsNaN(v) {
		return Hold
	}
	switch {
	case !open && v < s.Oversold:
		return Enter
	case open && v > s.Overbought:
		return Exit
	default:
		return Hold
	}
}

func (s *RSIThreshold) BuildHistory(closes []float64) (History, error) {
	rsi, err := indicators.RSISeries(closes, s.Period)
	if err != nil {
		return History{}, err
	}
	return History{Closes: closes, RSI: rsi}, nil
}
