// Package ledger owns cash and position state and enforces the buy/sell
// accounting invariants. Both the replay engine and the live paper session
// drive the same Ledger; neither duplicates the arithmetic.
//
// A Ledger is not safe for concurrent use. The paper session serializes
// access with its own mutex; the replay engine is single-threaded and
// constructs a fresh Ledger per run.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Side is the order direction.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// RejectReason classifies an expected business refusal.
type RejectReason string

const (
	InsufficientCash     RejectReason = "InsufficientCash"
	InsufficientPosition RejectReason = "InsufficientPosition"
)

// Rejection is a business-rule refusal: expected, frequent, and left to the
// caller to translate into a user-facing message. It is distinct from a
// contract violation (non-positive quantity or price), which is a plain
// error. Callers branch with errors.As.
type Rejection struct {
	Reason RejectReason
	Msg    string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Msg)
}

// Order is an immutable execution record.
type Order struct {
	ID        string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"type"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// RealizedTrade is a closed round trip (full or partial), produced only by
// a sell. Appended to the trade log, never mutated.
type RealizedTrade struct {
	Symbol     string    `json:"symbol"`
	Quantity   int64     `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	PnL        float64   `json:"pnl"`
	PnLPercent float64   `json:"pnl_percent"`
	ExitTime   time.Time `json:"exit_date"`
}

// Position is an open holding in one symbol. AverageCost is the
// quantity-weighted mean of all unclosed buy lots.
type Position struct {
	Symbol        string
	Quantity      int64
	AverageCost   float64
	LastMarkPrice float64
}

// UnrealizedPnL is the mark-to-market P&L of the open quantity.
func (p Position) UnrealizedPnL() float64 {
	return float64(p.Quantity) * (p.LastMarkPrice - p.AverageCost)
}

// MarketValue is the position's worth at the last mark price.
func (p Position) MarketValue() float64 {
	return float64(p.Quantity) * p.LastMarkPrice
}

// Ledger tracks one account: cash, open positions, and the append-only
// order and realized-trade logs.
type Ledger struct {
	initialCash float64
	cash        float64
	positions   map[string]*Position
	orders      []Order
	trades      []RealizedTrade
}

// New creates a Ledger with the given starting cash.
func New(initialCash float64) *Ledger {
	return &Ledger{
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[string]*Position),
	}
}

// ExecuteBuy debits cash and opens or extends a position. A cost greater
// than available cash is rejected with InsufficientCash and leaves state
// untouched. An empty orderID gets a deterministic {SIDE}_{SYMBOL}_{seq}
// identifier derived from the order sequence number.
func (l *Ledger) ExecuteBuy(symbol string, quantity int64, price float64, at time.Time, orderID string) (Order, error) {
	if err := checkOrderArgs(symbol, quantity, price); err != nil {
		return Order{}, err
	}

	cost := float64(quantity) * price
	if cost > l.cash {
		return Order{}, &Rejection{
			Reason: InsufficientCash,
			Msg:    fmt.Sprintf("cost %.2f exceeds cash %.2f", cost, l.cash),
		}
	}

	l.cash -= cost

	pos, ok := l.positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol, AverageCost: price}
		l.positions[symbol] = pos
	} else {
		// Recompute the weighted mean exactly, never approximate.
		held := float64(pos.Quantity) * pos.AverageCost
		pos.AverageCost = (held + cost) / float64(pos.Quantity+quantity)
	}
	pos.Quantity += quantity
	pos.LastMarkPrice = price

	order := l.appendOrder(Buy, symbol, quantity, price, at, orderID)
	return order, nil
}

// ExecuteSell credits proceeds, shrinks or removes the position, and emits
// a RealizedTrade. Selling more than the held quantity (or an unknown
// symbol) is rejected with InsufficientPosition and leaves state untouched.
func (l *Ledger) ExecuteSell(symbol string, quantity int64, price float64, at time.Time, orderID string) (Order, RealizedTrade, error) {
	if err := checkOrderArgs(symbol, quantity, price); err != nil {
		return Order{}, RealizedTrade{}, err
	}

	pos, ok := l.positions[symbol]
	if !ok || pos.Quantity < quantity {
		held := int64(0)
		if ok {
			held = pos.Quantity
		}
		return Order{}, RealizedTrade{}, &Rejection{
			Reason: InsufficientPosition,
			Msg:    fmt.Sprintf("sell %d %s but holding %d", quantity, symbol, held),
		}
	}

	proceeds := float64(quantity) * price
	l.cash += proceeds

	costBasis := float64(quantity) * pos.AverageCost
	pnl := proceeds - costBasis
	pnlPercent := 0.0
	if costBasis != 0 {
		pnlPercent = pnl / costBasis * 100
	}

	trade := RealizedTrade{
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: pos.AverageCost,
		ExitPrice:  price,
		PnL:        pnl,
		PnLPercent: pnlPercent,
		ExitTime:   at,
	}
	l.trades = append(l.trades, trade)

	pos.Quantity -= quantity
	if pos.Quantity == 0 {
		// Closed positions are removed, not zeroed; average cost is
		// not retained across round trips.
		delete(l.positions, symbol)
	} else {
		pos.LastMarkPrice = price
	}

	order := l.appendOrder(Sell, symbol, quantity, price, at, orderID)
	return order, trade, nil
}

// Mark updates the last mark price of an open position without trading.
// Unknown symbols are a no-op.
func (l *Ledger) Mark(symbol string, price float64) {
	if pos, ok := l.positions[symbol]; ok {
		pos.LastMarkPrice = price
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// InitialCash returns the starting cash balance.
func (l *Ledger) InitialCash() float64 { return l.initialCash }

// StocksValue returns the mark-to-market value of all open positions.
func (l *Ledger) StocksValue() float64 {
	v := 0.0
	for _, pos := range l.positions {
		v += pos.MarketValue()
	}
	return v
}

// PortfolioValue returns cash plus the mark-to-market value of positions.
func (l *Ledger) PortfolioValue() float64 {
	return l.cash + l.StocksValue()
}

// Position returns a copy of the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all open positions, sorted by symbol.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Trades returns a copy of the realized-trade log in execution order.
func (l *Ledger) Trades() []RealizedTrade {
	out := make([]RealizedTrade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Orders returns a copy of the order history in execution order.
func (l *Ledger) Orders() []Order {
	out := make([]Order, len(l.orders))
	copy(out, l.orders)
	return out
}

func (l *Ledger) appendOrder(side Side, symbol string, quantity int64, price float64, at time.Time, orderID string) Order {
	if orderID == "" {
		orderID = fmt.Sprintf("%s_%s_%d", strings.ToUpper(string(side)), symbol, len(l.orders))
	}
	order := Order{
		ID:        orderID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Value:     float64(quantity) * price,
		Timestamp: at,
	}
	l.orders = append(l.orders, order)
	return order
}

func checkOrderArgs(symbol string, quantity int64, price float64) error {
	if symbol == "" {
		return fmt.Errorf("ledger: empty symbol")
	}
	if quantity <= 0 {
		return fmt.Errorf("ledger: quantity must be positive, got %d", quantity)
	}
	if price <= 0 {
		return fmt.Errorf("ledger: price must be positive, got %g", price)
	}
	return nil
}
