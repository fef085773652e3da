// Package paper is the live execution service: a session-lifetime wrapper
// around one Ledger, driven by externally issued buy/sell commands. The
// caller decides sizing; this service applies orders atomically and
// answers consistent snapshot queries.
package paper

import (
	"errors"
	"sync"
	"time"

	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/ledger"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/metrics"
	"github.com/rustyeddy/stocksim/risk"
)

// DefaultInitialCash seeds sessions created without an explicit amount.
const DefaultInitialCash = 100000

// PortfolioValue is the session account snapshot.
type PortfolioValue struct {
	Cash          float64 `json:"cash"`
	StocksValue   float64 `json:"stocks_value"`
	TotalValue    float64 `json:"total_value"`
	Return        float64 `json:"return"`
	ReturnPercent float64 `json:"return_percent"`
}

// PositionView is one open position with its mark-to-market P&L.
type PositionView struct {
	Symbol        string  `json:"symbol"`
	Quantity      int64   `json:"quantity"`
	AvgPrice      float64 `json:"avg_price"`
	CurrentPrice  float64 `json:"current_price"`
	Value         float64 `json:"value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// Session owns one long-lived Ledger. All mutating operations are
// serialized under one mutex so overlapping orders can never interleave
// their check-then-update sequences; reads snapshot under the same lock.
type Session struct {
	mu      sync.Mutex
	led     *ledger.Ledger
	journal journal.Journal
	now     func() time.Time
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithJournal attaches a journal that records every realized trade and
// the equity snapshot taken after it.
func WithJournal(j journal.Journal) Option {
	return func(s *Session) { s.journal = j }
}

// NewSession starts a paper trading session. A non-positive initialCash
// falls back to DefaultInitialCash.
func NewSession(initialCash float64, opts ...Option) *Session {
	if initialCash <= 0 {
		initialCash = DefaultInitialCash
	}
	s := &Session{
		led: ledger.New(initialCash),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Buy places a buy order at the supplied price. orderID may be empty; the
// ledger then derives a deterministic identifier from the side, symbol,
// and order sequence number. Business refusals come back as
// *ledger.Rejection.
func (s *Session) Buy(symbol string, quantity int64, price float64, orderID string) (ledger.Order, PortfolioValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.led.ExecuteBuy(symbol, quantity, price, s.now(), orderID)
	if err != nil {
		return ledger.Order{}, s.portfolioValueLocked(), err
	}
	return order, s.portfolioValueLocked(), nil
}

// Sell places a sell order at the supplied price, realizing P&L against
// the position's average cost.
func (s *Session) Sell(symbol string, quantity int64, price float64, orderID string) (ledger.Order, ledger.RealizedTrade, PortfolioValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, trade, err := s.led.ExecuteSell(symbol, quantity, price, s.now(), orderID)
	if err != nil {
		return ledger.Order{}, ledger.RealizedTrade{}, s.portfolioValueLocked(), err
	}

	if err := s.recordLocked(order.ID, trade); err != nil {
		return order, trade, s.portfolioValueLocked(), err
	}
	return order, trade, s.portfolioValueLocked(), nil
}

// Mark updates the mark price of an open position from a real-time quote
// without trading. Unknown symbols are a no-op.
func (s *Session) Mark(symbol string, q market.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.led.Mark(symbol, q.Price)
}

// Reset discards all session state and reinitializes with a new starting
// cash amount. Destructive and explicit, never implicit.
func (s *Session) Reset(initialCash float64) PortfolioValue {
	if initialCash <= 0 {
		initialCash = DefaultInitialCash
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.led = ledger.New(initialCash)
	return s.portfolioValueLocked()
}

// PortfolioValue returns the current account snapshot.
func (s *Session) PortfolioValue() PortfolioValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolioValueLocked()
}

// Positions lists open positions with unrealized P&L, sorted by symbol.
func (s *Session) Positions() []PositionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := s.led.Positions()
	out := make([]PositionView, 0, len(positions))
	for _, p := range positions {
		out = append(out, PositionView{
			Symbol:        p.Symbol,
			Quantity:      p.Quantity,
			AvgPrice:      p.AverageCost,
			CurrentPrice:  p.LastMarkPrice,
			Value:         p.MarketValue(),
			UnrealizedPnL: p.UnrealizedPnL(),
		})
	}
	return out
}

// TradeHistory returns the realized-trade log.
func (s *Session) TradeHistory() []ledger.RealizedTrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led.Trades()
}

// Orders returns the order history in execution order.
func (s *Session) Orders() []ledger.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led.Orders()
}

// Performance computes the account snapshot plus the metrics summary over
// the realized-trade log. The equity series for drawdown and Sharpe is
// initial cash compounded trade by trade.
func (s *Session) Performance() (PortfolioValue, metrics.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trades := s.led.Trades()
	values := make([]float64, 0, len(trades)+1)
	v := s.led.InitialCash()
	values = append(values, v)
	for _, t := range trades {
		v += t.PnL
		values = append(values, v)
	}

	return s.portfolioValueLocked(), metrics.Compute(trades, values, s.led.InitialCash())
}

// PositionSizing suggests a share quantity for the given account-risk
// percentage and optional reference price.
func (s *Session) PositionSizing(accountRiskPercent, referencePrice float64) risk.Sizing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return risk.PositionSizing(s.led.PortfolioValue(), accountRiskPercent, referencePrice)
}

// IsRejection reports whether err is a business refusal rather than a
// contract violation.
func IsRejection(err error) (*ledger.Rejection, bool) {
	var rej *ledger.Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

func (s *Session) portfolioValueLocked() PortfolioValue {
	cash := s.led.Cash()
	stocks := s.led.StocksValue()
	total := cash + stocks
	initial := s.led.InitialCash()

	pv := PortfolioValue{
		Cash:        cash,
		StocksValue: stocks,
		TotalValue:  total,
		Return:      total - initial,
	}
	if initial != 0 {
		pv.ReturnPercent = pv.Return / initial * 100
	}
	return pv
}

func (s *Session) recordLocked(tradeID string, t ledger.RealizedTrade) error {
	if s.journal == nil {
		return nil
	}

	if err := s.journal.RecordTrade(journal.TradeRecord{
		TradeID:    tradeID,
		Symbol:     t.Symbol,
		Quantity:   t.Quantity,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		PnL:        t.PnL,
		PnLPercent: t.PnLPercent,
		ExitTime:   t.ExitTime,
	}); err != nil {
		return err
	}

	return s.journal.RecordEquity(journal.EquitySnapshot{
		Time:        t.ExitTime,
		Cash:        s.led.Cash(),
		StocksValue: s.led.StocksValue(),
		TotalValue:  s.led.PortfolioValue(),
	})
}
