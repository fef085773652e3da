// Package api exposes the replay engine and the paper trading service
// over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rustyeddy/stocksim/config"
	"github.com/rustyeddy/stocksim/paper"
)

// Server wires the handlers onto a gin router and wraps it with CORS.
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	sessions *SessionRegistry
	log      *slog.Logger
}

// NewServer builds the full route table. opts are applied to the default
// paper session (journal attachment, typically).
func NewServer(cfg *config.Config, log *slog.Logger, opts ...paper.Option) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		sessions: NewSessionRegistry(cfg.Account.InitialCash, opts...),
		log:      log,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bt := NewBacktestHandler(cfg.Strategy, cfg.Server.DataDir)
	pt := NewPaperHandler(s.sessions)

	api := router.Group("/api")
	{
		api.POST("/backtest/run", bt.Run)
		api.POST("/backtest/compare-strategies/:symbol", bt.CompareStrategies)

		trading := api.Group("/paper-trading")
		{
			trading.POST("/buy", pt.Buy)
			trading.POST("/sell", pt.Sell)
			trading.POST("/mark", pt.Mark)
			trading.POST("/reset", pt.Reset)
			trading.POST("/position-sizing", pt.PositionSizing)
			trading.GET("/portfolio-value", pt.PortfolioValue)
			trading.GET("/positions", pt.Positions)
			trading.GET("/trade-history", pt.TradeHistory)
			trading.GET("/performance", pt.Performance)
			trading.POST("/sessions", pt.CreateSession)
			trading.DELETE("/sessions/:id", pt.DeleteSession)
		}
	}

	s.router = router
	return s
}

// Sessions exposes the registry, mainly for tests.
func (s *Server) Sessions() *SessionRegistry { return s.sessions }

// Handler returns the router wrapped with the CORS policy from the
// configuration.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Serve runs the HTTP server on the configured address, blocking until it
// exits.
func (s *Server) Serve() error {
	s.log.Info("listening", "addr", s.cfg.Server.Addr)
	return http.ListenAndServe(s.cfg.Server.Addr, s.Handler())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
