package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/stocksim/indicators"
)

// MACrossover enters when the fast moving average is above the slow one
// with no position open, and exits when the fast average is below the slow
// one with a position open. A tie is Hold, never Enter or Exit.
type MACrossover struct {
	FastPeriod int
	SlowPeriod int
}

// NewMACrossover builds a moving-average crossover evaluator. Zero periods
// fall back to the 50/200 defaults.
func NewMACrossover(fast, slow int) *MACrossover {
	if fast <= 0 {
		fast = 50
	}
	if slow <= 0 {
		slow = 200
	}
	return &MACrossover{FastPeriod: fast, SlowPeriod: slow}
}

func (s *MACrossover) Name() string {
	return fmt.Sprintf("sma_crossover(%d/%d)", s.FastPeriod, s.SlowPeriod)
}

func (s *MACrossover) Warmup() int {
	if s.FastPeriod > s.SlowPeriod {
		return s.FastPeriod
	}
	return s.SlowPeriod
}

func (s *MACrossover) Evaluate(h History, i int, open bool) Decision {
	if i >= len(h.FastMA) || i >= len(h.SlowMA) {
		return Hold
	}
	fast, slow := h.FastMA[i], h.SlowMA[i]
	if math.IsNaN(fast) || math.IsNaN(slow) {
		return Hold
	}
	switch {
	case !open && fast > slow:
		return Enter
	case open && fast < slow:
		return Exit
	default:
		return Hold
	}
}

func (s *MACrossover) BuildHistory(closes []float64) (History, error) {
	fast, err := indicators.SMASeries(closes, s.FastPeriod)
	if err != nil {
		return History{}, err
	}
	slow, err := indicators.SMASeries(closes, s.SlowPeriod)
	if err != nil {
		return History{}, err
	}
	return History{Closes: closes, FastMA: fast, SlowMA: slow}, nil
}
