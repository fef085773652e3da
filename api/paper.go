package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/paper"
)

// PaperHandler exposes the live execution service over HTTP.
type PaperHandler struct {
	sessions *SessionRegistry
}

func NewPaperHandler(sessions *SessionRegistry) *PaperHandler {
	return &PaperHandler{sessions: sessions}
}

// session resolves the ?session= query parameter to a live session,
// writing a 404 if the handle is unknown.
func (h *PaperHandler) session(c *gin.Context) (*paper.Session, bool) {
	s, ok := h.sessions.Get(c.Query("session"))
	if !ok {
		c.JSON(http.StatusNotFound, errPayload("SESSION_NOT_FOUND", "unknown session handle"))
		return nil, false
	}
	return s, true
}

// writeTradeErr maps ledger failures: business rejections become 400s with
// the rejection reason as code; contract violations become 422s.
func writeTradeErr(c *gin.Context, err error) {
	if rej, ok := paper.IsRejection(err); ok {
		c.JSON(http.StatusBadRequest, errPayload(string(rej.Reason), rej.Msg))
		return
	}
	c.JSON(http.StatusUnprocessableEntity, errPayload("INVALID_ORDER", err.Error()))
}

// Buy handles POST /api/paper-trading/buy
func (h *PaperHandler) Buy(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}

	order, pv, err := s.Buy(req.Symbol, req.Quantity, req.Price, req.OrderID)
	if err != nil {
		writeTradeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"order":           order,
		"portfolio_value": pv,
	})
}

// Sell handles POST /api/paper-trading/sell
func (h *PaperHandler) Sell(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}

	order, trade, pv, err := s.Sell(req.Symbol, req.Quantity, req.Price, req.OrderID)
	if err != nil {
		writeTradeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"order":           order,
		"trade":           trade,
		"portfolio_value": pv,
	})
}

// Mark handles POST /api/paper-trading/mark
func (h *PaperHandler) Mark(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", "price must be positive"))
		return
	}

	ts, err := parseDate(req.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	s.Mark(req.Symbol, market.Quote{
		Price:         req.Price,
		Change:        req.Change,
		ChangePercent: req.ChangePercent,
		Volume:        req.Volume,
		Time:          ts,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"portfolio_value": s.PortfolioValue(),
	})
}

// PortfolioValue handles GET /api/paper-trading/portfolio-value
func (h *PaperHandler) PortfolioValue(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.PortfolioValue())
}

// Positions handles GET /api/paper-trading/positions
func (h *PaperHandler) Positions(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	positions := s.Positions()
	c.JSON(http.StatusOK, gin.H{
		"positions":   positions,
		"total_value": s.PortfolioValue().TotalValue,
	})
}

// TradeHistory handles GET /api/paper-trading/trade-history
func (h *PaperHandler) TradeHistory(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	trades := s.TradeHistory()
	c.JSON(http.StatusOK, gin.H{
		"trades":       trades,
		"total_trades": len(trades),
	})
}

// Performance handles GET /api/paper-trading/performance
func (h *PaperHandler) Performance(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	pv, m := s.Performance()
	c.JSON(http.StatusOK, gin.H{
		"portfolio": pv,
		"metrics":   m,
	})
}

// PositionSizing handles POST /api/paper-trading/position-sizing
func (h *PaperHandler) PositionSizing(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	req := PositionSizingRequest{AccountRiskPercent: 2.0}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
			return
		}
	}

	sizing := s.PositionSizing(req.AccountRiskPercent, req.Price)
	sizing.Symbol = req.Symbol
	c.JSON(http.StatusOK, sizing)
}

// Reset handles POST /api/paper-trading/reset
func (h *PaperHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	req := ResetRequest{InitialCash: paper.DefaultInitialCash}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
			return
		}
	}
	if req.InitialCash <= 0 {
		c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", "initial_cash must be positive"))
		return
	}

	pv := s.Reset(req.InitialCash)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"portfolio": pv,
	})
}

// CreateSession handles POST /api/paper-trading/sessions
func (h *PaperHandler) CreateSession(c *gin.Context) {
	req := ResetRequest{InitialCash: paper.DefaultInitialCash}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload("INVALID_REQUEST", err.Error()))
			return
		}
	}

	id := h.sessions.Create(req.InitialCash)
	s, _ := h.sessions.Get(id)
	c.JSON(http.StatusOK, gin.H{
		"session":   id,
		"portfolio": s.PortfolioValue(),
	})
}

// DeleteSession handles DELETE /api/paper-trading/sessions/:id
func (h *PaperHandler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, errPayload("SESSION_NOT_FOUND", "unknown session handle"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
