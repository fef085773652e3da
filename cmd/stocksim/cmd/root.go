package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stocksim",
	Short: "A stock trading simulator: historical backtests and live paper trading",
	Long: `Stocksim is a trade simulation engine written in Go.

It provides tools for:
  - Backtesting RSI and moving-average crossover strategies over OHLCV data
  - Running a paper trading session over an HTTP API
  - Journaling realized trades and equity snapshots to CSV or SQLite
  - Risk-based position sizing`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
