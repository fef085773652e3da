// Package journal persists realized trades and equity snapshots produced
// by the paper session and the backtest CLI. The simulation core never
// journals on its own; callers attach a Journal where they want one.
package journal

import "time"

// TradeRecord mirrors the trades table.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Quantity   int64
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
	PnLPercent float64
	ExitTime   time.Time
}

// EquitySnapshot mirrors the equity table.
type EquitySnapshot struct {
	Time        time.Time
	Cash        float64
	StocksValue float64
	TotalValue  float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards all records. Used where journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
