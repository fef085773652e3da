package indicators

import (
	"fmt"
	"math"
)

// Batch series are aligned with their input: out[i] is the indicator value
// at closes[i], and indexes before the warmup window is populated hold NaN.
// Evaluators treat NaN as "window not populated yet" and hold.

// SMASeries computes the simple moving average series for the given period.
func SMASeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma: period must be positive, got %d", period)
	}

	out := nanSeries(len(closes))
	if len(closes) < period {
		return out, nil
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMASeries computes the exponential moving average series for the given
// period, seeded with the SMA of the first period closes.
func EMASeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema: period must be positive, got %d", period)
	}

	out := nanSeries(len(closes))
	if len(closes) < period {
		return out, nil
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out, nil
}

// RSIPeriod is the default RSI smoothing window.
const RSIPeriod = 14

// RSISeries computes the relative strength index series using Wilder-style
// smoothed average gain/loss. The first populated index is closes[period].
// A zero average loss yields RSI 100 (fully overbought), never an error.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi: period must be positive, got %d", period)
	}

	out := nanSeries(len(closes))
	if len(closes) <= period {
		return out, nil
	}

	// Seed the averages with a simple mean over the first window.
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	n := float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		var g, l float64
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*(n-1) + g) / n
		avgLoss = (avgLoss*(n-1) + l) / n
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
