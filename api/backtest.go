package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/stocksim/backtest"
	"github.com/rustyeddy/stocksim/config"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/strategies"
)

// BacktestHandler runs historical replays on request. Defaults for
// strategy parameters come from the loaded configuration.
type BacktestHandler struct {
	defaults config.StrategyConfig
	// dataDir restricts dataset CSV loads; empty disables them.
	dataDir string
}

func NewBacktestHandler(defaults config.StrategyConfig, dataDir string) *BacktestHandler {
	return &BacktestHandler{defaults: defaults, dataDir: dataDir}
}

// Run handles POST /api/backtest/run
func (h *BacktestHandler) Run(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}

	ev, err := h.evaluator(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_STRATEGY", err.Error()))
		return
	}

	bars, start, end, err := h.bars(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}

	capital := req.InitialCapital
	if capital <= 0 {
		capital = 100000
	}

	res, err := backtest.Run(backtest.Config{Symbol: req.Symbol, InitialCapital: capital}, bars, ev)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errPayload("BACKTEST_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, BacktestResponse{
		Symbol:   req.Symbol,
		Strategy: ev.Name(),
		Period:   periodOf(bars, start, end),
		Result:   res,
	})
}

// CompareStrategies handles POST /api/backtest/compare-strategies/:symbol.
// Bars arrive in the body the same way as a single run; each built-in
// strategy replays over the identical series.
func (h *BacktestHandler) CompareStrategies(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}
	req.Symbol = c.Param("symbol")

	bars, start, end, err := h.bars(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}

	capital := req.InitialCapital
	if capital <= 0 {
		capital = 100000
	}

	results := make(map[string]backtest.Result, 2)
	for _, name := range []string{"rsi", "sma_crossover"} {
		req.Strategy = name
		ev, err := h.evaluator(req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload("INVALID_STRATEGY", err.Error()))
			return
		}
		res, err := backtest.Run(backtest.Config{Symbol: req.Symbol, InitialCapital: capital}, bars, ev)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, errPayload("BACKTEST_FAILED", err.Error()))
			return
		}
		results[name] = res
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":  req.Symbol,
		"period":  periodOf(bars, start, end),
		"results": results,
	})
}

func (h *BacktestHandler) evaluator(req BacktestRequest) (strategies.Evaluator, error) {
	p := strategies.Params{
		RSIPeriod:     h.defaults.RSIPeriod,
		RSIOversold:   h.defaults.RSIOversold,
		RSIOverbought: h.defaults.RSIOverbought,
		FastPeriod:    h.defaults.SMAFast,
		SlowPeriod:    h.defaults.SMASlow,
	}
	if req.RSIPeriod > 0 {
		p.RSIPeriod = req.RSIPeriod
	}
	if req.RSIOversold > 0 {
		p.RSIOversold = req.RSIOversold
	}
	if req.RSIOverbought > 0 {
		p.RSIOverbought = req.RSIOverbought
	}
	if req.SMAFast > 0 {
		p.FastPeriod = req.SMAFast
	}
	if req.SMASlow > 0 {
		p.SlowPeriod = req.SMASlow
	}
	return strategies.FromParams(req.Strategy, p)
}

// bars resolves the request's bar source, then applies the date window.
func (h *BacktestHandler) bars(req BacktestRequest) ([]market.Bar, time.Time, time.Time, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}

	var bars []market.Bar
	switch {
	case len(req.Bars) > 0:
		bars = make([]market.Bar, 0, len(req.Bars))
		for _, p := range req.Bars {
			b, err := p.toBar()
			if err != nil {
				return nil, time.Time{}, time.Time{}, err
			}
			bars = append(bars, b)
		}
	case req.Dataset != "":
		loaded, err := h.loadDataset(req.Dataset)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		bars = loaded
	}

	return market.Between(bars, start, end), start, end, nil
}

// loadDataset reads a named CSV from the configured data directory.
// Names must stay inside the directory.
func (h *BacktestHandler) loadDataset(name string) ([]market.Bar, error) {
	if h.dataDir == "" {
		return nil, fmt.Errorf("dataset loading is not enabled")
	}
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("bad dataset name %q", name)
	}
	return market.LoadBarsCSV(filepath.Join(h.dataDir, name))
}

func periodOf(bars []market.Bar, start, end time.Time) Period {
	p := Period{}
	if !start.IsZero() {
		p.Start = start.Format("2006-01-02")
	} else if len(bars) > 0 {
		p.Start = bars[0].Date.Format("2006-01-02")
	}
	if !end.IsZero() {
		p.End = end.Format("2006-01-02")
	} else if len(bars) > 0 {
		p.End = bars[len(bars)-1].Date.Format("2006-01-02")
	}
	return p
}
