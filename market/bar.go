package market

import "time"

// Bar is one OHLCV bar of price history, ascending by date.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Quote is a real-time price snapshot used to mark open positions.
type Quote struct {
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        float64
	Time          time.Time
}

// Closes extracts the close series from a bar sequence.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Between returns the bars whose date falls within [start, end].
// A zero start or end leaves that side unbounded.
func Between(bars []Bar, start, end time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !start.IsZero() && b.Date.Before(start) {
			continue
		}
		if !end.IsZero() && b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}
