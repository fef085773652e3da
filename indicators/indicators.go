// Package indicators provides the technical series consumed by signal
// evaluators: batch SMA and RSI series aligned index-for-index with a bar
// sequence, plus streaming variants for incremental consumers.
package indicators

// Indicator computes a single streaming value from closing prices.
// It is deterministic and safe to use in live and replay paths.
type Indicator interface {
	// Name returns a stable identifier like "SMA(50)" or "EMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closing price.
	Update(close float64)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. Callers should always
	// check Ready() first.
	Value() float64
}
