package strategies

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSIThresholdDecisions(t *testing.T) {
	t.Parallel()

	s := NewRSIThreshold(14, 30, 70)
	h := History{RSI: []float64{math.NaN(), 25, 50, 75}}

	assert.Equal(t, Hold, s.Evaluate(h, 0, false))
	assert.Equal(t, Enter, s.Evaluate(h, 1, false))
	// Already open: an oversold reading does not pyramid.
	assert.Equal(t, Hold, s.Evaluate(h, 1, true))
	assert.Equal(t, Hold, s.Evaluate(h, 2, false))
	assert.Equal(t, Hold, s.Evaluate(h, 2, true))
	assert.Equal(t, Exit, s.Evaluate(h, 3, true))
	assert.Equal(t, Hold, s.Evaluate(h, 3, false))
	// Out of range.
	assert.Equal(t, Hold, s.Evaluate(h, 10, false))
}

func TestRSIThresholdBoundariesAreHold(t *testing.T) {
	t.Parallel()

	s := NewRSIThreshold(14, 30, 70)
	h := History{RSI: []float64{30, 70}}

	assert.Equal(t, Hold, s.Evaluate(h, 0, false))
	assert.Equal(t, Hold, s.Evaluate(h, 1, true))
}

func TestRSIThresholdDefaults(t *testing.T) {
	t.Parallel()

	s := NewRSIThreshold(0, 0, 0)
	assert.Equal(t, 14, s.Period)
	assert.InDelta(t, 30, s.Oversold, 1e-9)
	assert.InDelta(t, 70, s.Overbought, 1e-9)
	assert.Equal(t, 14, s.Warmup())
}

func TestMACrossoverDecisions(t *testing.T) {
	t.Parallel()

	s := NewMACrossover(2, 4)
	h := History{
		FastMA: []float64{math.NaN(), 10, 12, 9},
		SlowMA: []float64{math.NaN(), 11, 11, 11},
	}

	assert.Equal(t, Hold, s.Evaluate(h, 0, false))
	assert.Equal(t, Hold, s.Evaluate(h, 1, false))
	assert.Equal(t, Enter, s.Evaluate(h, 2, false))
	assert.Equal(t, Hold, s.Evaluate(h, 2, true))
	assert.Equal(t, Exit, s.Evaluate(h, 3, true))
	assert.Equal(t, Hold, s.Evaluate(h, 3, false))
}

func TestMACrossoverTieIsHold(t *testing.T) {
	t.Parallel()

	s := NewMACrossover(50, 200)
	h := History{
		FastMA: []float64{100},
		SlowMA: []float64{100},
	}

	assert.Equal(t, Hold, s.Evaluate(h, 0, false))
	assert.Equal(t, Hold, s.Evaluate(h, 0, true))
}

func TestMACrossoverWarmupIsSlowPeriod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 200, NewMACrossover(50, 200).Warmup())
	assert.Equal(t, 50, (&MACrossover{FastPeriod: 50, SlowPeriod: 20}).Warmup())
}

func TestMACrossoverBuildHistory(t *testing.T) {
	t.Parallel()

	closes := []float64{1, 2, 3, 4, 5, 6}
	s := NewMACrossover(2, 3)

	h, err := s.BuildHistory(closes)
	assert.NoError(t, err)
	assert.Len(t, h.FastMA, len(closes))
	assert.Len(t, h.SlowMA, len(closes))
	assert.True(t, math.IsNaN(h.SlowMA[1]))
	assert.InDelta(t, 1.5, h.FastMA[1], 1e-9)
	assert.InDelta(t, 2, h.SlowMA[2], 1e-9)
}

func TestFromParams(t *testing.T) {
	t.Parallel()

	ev, err := FromParams("rsi", Params{RSIPeriod: 7, RSIOversold: 20, RSIOverbought: 80})
	assert.NoError(t, err)
	rsi, ok := ev.(*RSIThreshold)
	assert.True(t, ok)
	assert.Equal(t, 7, rsi.Period)
	assert.InDelta(t, 20, rsi.Oversold, 1e-9)

	for _, name := range []string{"sma_crossover", "sma-crossover", "crossover", " SMA_CROSSOVER "} {
		ev, err := FromParams(name, Params{FastPeriod: 10, SlowPeriod: 30})
		assert.NoError(t, err, name)
		cross, ok := ev.(*MACrossover)
		assert.True(t, ok, name)
		assert.Equal(t, 10, cross.FastPeriod)
	}

	_, err = FromParams("momentum", Params{})
	assert.Error(t, err)
}

func TestFuncAdapter(t *testing.T) {
	t.Parallel()

	calls := 0
	f := Func{
		Rule: func(h History, i int, open bool) Decision {
			calls++
			if !open && h.Closes[i] < 10 {
				return Enter
			}
			return Hold
		},
		WarmupBars: 3,
		Label:      "dip-buyer",
	}

	assert.Equal(t, "dip-buyer", f.Name())
	assert.Equal(t, 3, f.Warmup())

	h := History{Closes: []float64{5, 15}}
	assert.Equal(t, Enter, f.Evaluate(h, 0, false))
	assert.Equal(t, Hold, f.Evaluate(h, 1, false))
	assert.Equal(t, 2, calls)

	assert.Equal(t, "custom", Func{}.Name())
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hold", Hold.String())
	assert.Equal(t, "enter", Enter.String())
	assert.Equal(t, "exit", Exit.String())
}
