package api

import (
	"fmt"
	"time"

	"github.com/rustyeddy/stocksim/backtest"
	"github.com/rustyeddy/stocksim/market"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errPayload(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// BarPayload is one OHLCV bar in a request body.
type BarPayload struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (b BarPayload) toBar() (market.Bar, error) {
	date, err := parseDate(b.Date)
	if err != nil {
		return market.Bar{}, err
	}
	return market.Bar{
		Date:   date,
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}, nil
}

// BacktestRequest selects a strategy and the bars to replay it over. Bars
// come inline or from a CSV dataset path; market-data retrieval itself is
// the caller's business.
type BacktestRequest struct {
	Symbol         string  `json:"symbol" binding:"required"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Strategy       string  `json:"strategy" binding:"required"`
	InitialCapital float64 `json:"initial_capital"`

	RSIPeriod     int     `json:"rsi_period"`
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
	SMAFast       int     `json:"sma_fast"`
	SMASlow       int     `json:"sma_slow"`

	Bars    []BarPayload `json:"bars"`
	Dataset string       `json:"dataset"`
}

// BacktestResponse wraps one run result.
type BacktestResponse struct {
	Symbol   string          `json:"symbol"`
	Strategy string          `json:"strategy"`
	Period   Period          `json:"period"`
	Result   backtest.Result `json:"result"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TradeRequest is a paper buy or sell command.
type TradeRequest struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Quantity int64   `json:"quantity" binding:"required"`
	Price    float64 `json:"price" binding:"required"`
	OrderID  string  `json:"order_id"`
}

// MarkRequest feeds a real-time quote to mark an open position.
type MarkRequest struct {
	Symbol        string  `json:"symbol" binding:"required"`
	Price         float64 `json:"price" binding:"required"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        float64 `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// PositionSizingRequest asks for a suggested quantity at the given risk.
type PositionSizingRequest struct {
	AccountRiskPercent float64 `json:"account_risk_percent"`
	Symbol             string  `json:"symbol"`
	Price              float64 `json:"price"`
}

// ResetRequest reinitializes a session with new starting cash.
type ResetRequest struct {
	InitialCash float64 `json:"initial_cash"`
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want YYYY-MM-DD or RFC3339)", s)
	}
	return t, nil
}
