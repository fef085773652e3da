package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/stocksim/config"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, log)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func errCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestPaperBuySellFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	w, body := doJSON(t, h, http.MethodPost, "/api/paper-trading/buy", map[string]any{
		"symbol":   "AAPL",
		"quantity": 10,
		"price":    150,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	order := body["order"].(map[string]any)
	assert.Equal(t, "BUY_AAPL_0", order["order_id"])
	assert.Equal(t, "buy", order["type"])

	pv := body["portfolio_value"].(map[string]any)
	assert.InDelta(t, 98_500, pv["cash"].(float64), 1e-6)
	assert.InDelta(t, 100_000, pv["total_value"].(float64), 1e-6)

	w, body = doJSON(t, h, http.MethodPost, "/api/paper-trading/sell", map[string]any{
		"symbol":   "AAPL",
		"quantity": 10,
		"price":    160,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	trade := body["trade"].(map[string]any)
	assert.InDelta(t, 100, trade["pnl"].(float64), 1e-6)

	w, body = doJSON(t, h, http.MethodGet, "/api/paper-trading/trade-history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1, body["total_trades"].(float64), 1e-9)
}

func TestPaperBuyRejectedOnInsufficientCash(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/paper-trading/buy", map[string]any{
		"symbol":   "AAPL",
		"quantity": 10_000,
		"price":    500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InsufficientCash", errCode(body))
}

func TestPaperSellRejectedWithoutPosition(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/paper-trading/sell", map[string]any{
		"symbol":   "AAPL",
		"quantity": 1,
		"price":    150,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InsufficientPosition", errCode(body))
}

func TestPaperInvalidRequestBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	// Missing required fields.
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/paper-trading/buy", map[string]any{
		"symbol": "AAPL",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(body))
}

func TestPaperUnknownSession(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodGet, "/api/paper-trading/portfolio-value?session=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", errCode(body))
}

func TestPaperSessionLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	w, body := doJSON(t, h, http.MethodPost, "/api/paper-trading/sessions", map[string]any{
		"initial_cash": 5_000,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	handle := body["session"].(string)
	assert.NotEmpty(t, handle)

	path := "/api/paper-trading/portfolio-value?session=" + handle
	w, body = doJSON(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 5_000, body["cash"].(float64), 1e-6)

	// Sessions are isolated from the default one.
	w, body = doJSON(t, h, http.MethodGet, "/api/paper-trading/portfolio-value", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 100_000, body["cash"].(float64), 1e-6)

	w, _ = doJSON(t, h, http.MethodDelete, "/api/paper-trading/sessions/"+handle, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaperReset(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	_, _ = doJSON(t, h, http.MethodPost, "/api/paper-trading/buy", map[string]any{
		"symbol": "AAPL", "quantity": 10, "price": 150,
	})

	w, body := doJSON(t, h, http.MethodPost, "/api/paper-trading/reset", map[string]any{
		"initial_cash": 25_000,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	pv := body["portfolio"].(map[string]any)
	assert.InDelta(t, 25_000, pv["cash"].(float64), 1e-6)
	assert.Zero(t, pv["stocks_value"].(float64))
}

func TestPaperPositionSizing(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/paper-trading/position-sizing", map[string]any{
		"account_risk_percent": 2,
		"symbol":               "AAPL",
		"price":                150,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 2_000, body["risk_amount"].(float64), 1e-6)
	assert.InDelta(t, 13, body["suggested_quantity"].(float64), 1e-9)
	assert.Equal(t, "AAPL", body["symbol"])
}

func inlineBars() []map[string]any {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100-float64(i))
	}
	for i := 1; i <= 20; i++ {
		closes = append(closes, 81+float64(i)*3)
	}

	bars := make([]map[string]any, len(closes))
	for i, c := range closes {
		bars[i] = map[string]any{
			"date":   start.AddDate(0, 0, i).Format("2006-01-02"),
			"open":   c,
			"high":   c + 1,
			"low":    c - 1,
			"close":  c,
			"volume": 1000,
		}
	}
	return bars
}

func TestBacktestRun(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/backtest/run", map[string]any{
		"symbol":   "AAPL",
		"strategy": "rsi",
		"bars":     inlineBars(),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AAPL", body["symbol"])

	result := body["result"].(map[string]any)
	trades := result["trades"].([]any)
	assert.Len(t, trades, 1)

	metrics := result["metrics"].(map[string]any)
	assert.InDelta(t, 1, metrics["total_trades"].(float64), 1e-9)
	assert.Greater(t, metrics["final_portfolio_value"].(float64), 100_000.0)
}

func barsCSV() string {
	var b bytes.Buffer
	b.WriteString("date,open,high,low,close,volume\n")
	for _, bar := range inlineBars() {
		fmt.Fprintf(&b, "%s,%v,%v,%v,%v,%v\n",
			bar["date"], bar["open"], bar["high"], bar["low"], bar["close"], bar["volume"])
	}
	return b.String()
}

func TestBacktestDatasetPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "aapl.csv"), []byte(barsCSV()), 0644))

	cfg := config.Default()
	cfg.Server.DataDir = dir
	s := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := s.Handler()

	w, body := doJSON(t, h, http.MethodPost, "/api/backtest/run", map[string]any{
		"symbol":   "AAPL",
		"strategy": "rsi",
		"dataset":  "aapl.csv",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	result := body["result"].(map[string]any)
	assert.Len(t, result["trades"].([]any), 1)

	// Names may not escape the data directory.
	w, body = doJSON(t, h, http.MethodPost, "/api/backtest/run", map[string]any{
		"symbol":   "AAPL",
		"strategy": "rsi",
		"dataset":  "../aapl.csv",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(body))

	w, _ = doJSON(t, h, http.MethodPost, "/api/backtest/run", map[string]any{
		"symbol":   "AAPL",
		"strategy": "rsi",
		"dataset":  "missing.csv",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBacktestDatasetDisabledWithoutDataDir(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/backtest/run", map[string]any{
		"symbol":   "AAPL",
		"strategy": "rsi",
		"dataset":  "aapl.csv",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(body))
}

func TestBacktestUnknownStrategy(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/backtest/run", map[string]any{
		"symbol":   "AAPL",
		"strategy": "momentum",
		"bars":     inlineBars(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STRATEGY", errCode(body))
}

func TestBacktestDateWindow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/backtest/run", map[string]any{
		"symbol":     "AAPL",
		"strategy":   "rsi",
		"bars":       inlineBars(),
		"start_date": "2024-01-01",
		"end_date":   "2024-01-05",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Only 5 bars survive the window: too short for the warmup, so the
	// run is empty rather than an error.
	result := body["result"].(map[string]any)
	assert.Empty(t, result["trades"])

	period := body["period"].(map[string]any)
	assert.Equal(t, "2024-01-01", period["start"])
	assert.Equal(t, "2024-01-05", period["end"])
}

func TestBacktestCompareStrategies(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	w, body := doJSON(t, s.Handler(), http.MethodPost, "/api/backtest/compare-strategies/AAPL", map[string]any{
		"symbol":   "AAPL",
		"strategy": "rsi",
		"bars":     inlineBars(),
		"sma_fast": 5,
		"sma_slow": 15,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AAPL", body["symbol"])

	results := body["results"].(map[string]any)
	assert.Contains(t, results, "rsi")
	assert.Contains(t, results, "sma_crossover")
}

func TestMarkUpdatesPortfolio(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	_, _ = doJSON(t, h, http.MethodPost, "/api/paper-trading/buy", map[string]any{
		"symbol": "AAPL", "quantity": 10, "price": 150,
	})

	w, body := doJSON(t, h, http.MethodPost, "/api/paper-trading/mark", map[string]any{
		"symbol": "AAPL",
		"price":  165,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	pv := body["portfolio_value"].(map[string]any)
	assert.InDelta(t, 100_150, pv["total_value"].(float64), 1e-6)

	w, body = doJSON(t, h, http.MethodGet, "/api/paper-trading/positions", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	positions := body["positions"].([]any)
	assert.Len(t, positions, 1)
	pos := positions[0].(map[string]any)
	assert.InDelta(t, 165, pos["current_price"].(float64), 1e-6)
	assert.InDelta(t, 150, pos["unrealized_pnl"].(float64), 1e-6)
}

func TestPerformanceEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := s.Handler()

	_, _ = doJSON(t, h, http.MethodPost, "/api/paper-trading/buy", map[string]any{
		"symbol": "AAPL", "quantity": 10, "price": 100,
	})
	_, _ = doJSON(t, h, http.MethodPost, "/api/paper-trading/sell", map[string]any{
		"symbol": "AAPL", "quantity": 10, "price": 110,
	})

	w, body := doJSON(t, h, http.MethodGet, "/api/paper-trading/performance", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	m := body["metrics"].(map[string]any)
	assert.InDelta(t, 1, m["total_trades"].(float64), 1e-9)
	assert.InDelta(t, 100, m["win_rate"].(float64), 1e-6)
	assert.InDelta(t, 100, m["total_pnl"].(float64), 1e-6)

	pv := body["portfolio"].(map[string]any)
	assert.InDelta(t, 100_100, pv["total_value"].(float64), 1e-6)
}
